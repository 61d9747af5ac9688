package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-budget/backend/internal/models"
)

type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository создает репозиторий записей прогресса цикла.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func scanProgress(row pgx.Row) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	var start time.Time

	err := row.Scan(&record.HouseholdID, &start, &record.OccurrenceKey, &record.IsPaid, &record.ActualAmount, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record, ErrNotFound
		}
		return record, err
	}

	record.CycleKey = start.Format(dateLayout)
	return record, nil
}

// Get возвращает запись прогресса по составному ключу. Отсутствие строки —
// ожидающее вхождение.
func (r *ProgressRepository) Get(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) (models.ProgressRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT household_id, cycle_start, occurrence_key, is_paid, actual_amount, updated_at
		 FROM budget_progress
		 WHERE household_id = $1 AND cycle_start = $2 AND occurrence_key = $3`,
		householdID, cycleKey, occurrenceKey,
	)

	return scanProgress(row)
}

// ListByCycle возвращает все записи прогресса одного цикла.
func (r *ProgressRepository) ListByCycle(ctx context.Context, householdID uuid.UUID, cycleKey string) ([]models.ProgressRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT household_id, cycle_start, occurrence_key, is_paid, actual_amount, updated_at
		 FROM budget_progress
		 WHERE household_id = $1 AND cycle_start = $2
		 ORDER BY occurrence_key`,
		householdID, cycleKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.ProgressRecord, 0)
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert записывает состояние вхождения, перезаписывая прежнее:
// одновременные писатели дают last-write-wins.
func (r *ProgressRepository) Upsert(ctx context.Context, record models.ProgressRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO budget_progress (household_id, cycle_start, occurrence_key, is_paid, actual_amount)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (household_id, cycle_start, occurrence_key)
		 DO UPDATE SET is_paid = EXCLUDED.is_paid,
		               actual_amount = EXCLUDED.actual_amount,
		               updated_at = NOW()`,
		record.HouseholdID, record.CycleKey, record.OccurrenceKey, record.IsPaid, record.ActualAmount,
	)

	return err
}

// Delete убирает запись, возвращая вхождение в ожидание.
func (r *ProgressRepository) Delete(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM budget_progress
		 WHERE household_id = $1 AND cycle_start = $2 AND occurrence_key = $3`,
		householdID, cycleKey, occurrenceKey,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
