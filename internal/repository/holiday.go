package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HolidayRepository struct {
	db *pgxpool.Pool
}

// NewHolidayRepository создает репозиторий праздничных дат.
func NewHolidayRepository(db *pgxpool.Pool) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListDates возвращает праздничные даты в формате ISO.
func (r *HolidayRepository) ListDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT holiday_date
		 FROM bank_holidays
		 ORDER BY holiday_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var date time.Time

		if err := rows.Scan(&date); err != nil {
			return nil, err
		}

		dates = append(dates, date.Format(dateLayout))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}
