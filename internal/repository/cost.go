package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-budget/backend/internal/models"
)

type CostRepository struct {
	db *pgxpool.Pool
}

// NewCostRepository создает репозиторий повторяющихся расходов.
func NewCostRepository(db *pgxpool.Pool) *CostRepository {
	return &CostRepository{db: db}
}

const costColumns = `id, household_id, name, amount, frequency, day_of_month, day_of_week, start_date, adjust_to_working_day, category, owner_type, owner_id, metadata, is_active, created_at, updated_at`

func scanCost(row pgx.Row) (models.RecurringCost, error) {
	var cost models.RecurringCost

	err := row.Scan(&cost.ID, &cost.HouseholdID, &cost.Name, &cost.Amount, &cost.Frequency, &cost.DayOfMonth, &cost.DayOfWeek, &cost.StartDate, &cost.AdjustToWorkingDay, &cost.Category, &cost.OwnerType, &cost.OwnerID, &cost.Metadata, &cost.IsActive, &cost.CreatedAt, &cost.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cost, ErrNotFound
		}
		return cost, err
	}

	return cost, nil
}

// ListByHousehold возвращает расходы домохозяйства; activeOnly отбирает
// только участвующие в планировании.
func (r *CostRepository) ListByHousehold(ctx context.Context, householdID uuid.UUID, activeOnly bool) ([]models.RecurringCost, error) {
	query := `SELECT ` + costColumns + `
		 FROM recurring_costs
		 WHERE household_id = $1
		 ORDER BY category, name`
	if activeOnly {
		query = `SELECT ` + costColumns + `
		 FROM recurring_costs
		 WHERE household_id = $1 AND is_active
		 ORDER BY category, name`
	}

	rows, err := r.db.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make([]models.RecurringCost, 0)
	for rows.Next() {
		cost, err := scanCost(rows)
		if err != nil {
			return nil, err
		}

		costs = append(costs, cost)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return costs, nil
}

// Create создает повторяющийся расход с метаданными категории.
func (r *CostRepository) Create(ctx context.Context, cost models.RecurringCost) (models.RecurringCost, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO recurring_costs (id, household_id, name, amount, frequency, day_of_month, day_of_week, start_date, adjust_to_working_day, category, owner_type, owner_id, metadata, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+costColumns,
		uuid.New(), cost.HouseholdID, cost.Name, cost.Amount, cost.Frequency, cost.DayOfMonth, cost.DayOfWeek, cost.StartDate, cost.AdjustToWorkingDay, cost.Category, cost.OwnerType, cost.OwnerID, cost.Metadata, cost.IsActive,
	)

	return scanCost(row)
}

// Update обновляет повторяющийся расход.
func (r *CostRepository) Update(ctx context.Context, cost models.RecurringCost) (models.RecurringCost, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE recurring_costs
		 SET name = $3,
		     amount = $4,
		     frequency = $5,
		     day_of_month = $6,
		     day_of_week = $7,
		     start_date = $8,
		     adjust_to_working_day = $9,
		     category = $10,
		     owner_type = $11,
		     owner_id = $12,
		     metadata = $13,
		     is_active = $14,
		     updated_at = NOW()
		 WHERE id = $2 AND household_id = $1
		 RETURNING `+costColumns,
		cost.HouseholdID, cost.ID, cost.Name, cost.Amount, cost.Frequency, cost.DayOfMonth, cost.DayOfWeek, cost.StartDate, cost.AdjustToWorkingDay, cost.Category, cost.OwnerType, cost.OwnerID, cost.Metadata, cost.IsActive,
	)

	return scanCost(row)
}

// Delete удаляет повторяющийся расход.
func (r *CostRepository) Delete(ctx context.Context, householdID, costID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM recurring_costs
		 WHERE id = $2 AND household_id = $1`,
		householdID, costID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateOneOff создает разовую датированную запись вне повторяющегося
// механизма.
func (r *CostRepository) CreateOneOff(ctx context.Context, entry models.OneOffEntry) (models.OneOffEntry, error) {
	var created models.OneOffEntry

	err := r.db.QueryRow(ctx,
		`INSERT INTO one_off_entries (id, household_id, name, amount, due_date, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, household_id, name, amount, due_date, category, created_at`,
		uuid.New(), entry.HouseholdID, entry.Name, entry.Amount, entry.DueDate, entry.Category,
	).Scan(&created.ID, &created.HouseholdID, &created.Name, &created.Amount, &created.DueDate, &created.Category, &created.CreatedAt)
	if err != nil {
		return models.OneOffEntry{}, err
	}

	return created, nil
}

// ListOneOffs возвращает разовые записи домохозяйства в интервале дат.
func (r *CostRepository) ListOneOffs(ctx context.Context, householdID uuid.UUID) ([]models.OneOffEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, household_id, name, amount, due_date, category, created_at
		 FROM one_off_entries
		 WHERE household_id = $1
		 ORDER BY due_date`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.OneOffEntry, 0)
	for rows.Next() {
		var entry models.OneOffEntry

		err := rows.Scan(&entry.ID, &entry.HouseholdID, &entry.Name, &entry.Amount, &entry.DueDate, &entry.Category, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
