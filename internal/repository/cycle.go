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

const dateLayout = "2006-01-02"

type CycleRepository struct {
	db *pgxpool.Pool
}

// NewCycleRepository создает репозиторий циклов бюджета.
func NewCycleRepository(db *pgxpool.Pool) *CycleRepository {
	return &CycleRepository{db: db}
}

func scanCycle(row pgx.Row) (models.BudgetCycle, error) {
	var cycle models.BudgetCycle
	var start time.Time

	err := row.Scan(&cycle.HouseholdID, &start, &cycle.ActualPay, &cycle.CurrentBalance, &cycle.BankAccountID, &cycle.CreatedAt, &cycle.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cycle, ErrNotFound
		}
		return cycle, err
	}

	cycle.CycleKey = start.Format(dateLayout)
	return cycle, nil
}

// Get возвращает цикл по ключу.
func (r *CycleRepository) Get(ctx context.Context, householdID uuid.UUID, cycleKey string) (models.BudgetCycle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT household_id, cycle_start, actual_pay, current_balance, bank_account_id, created_at, updated_at
		 FROM budget_cycles
		 WHERE household_id = $1 AND cycle_start = $2`,
		householdID, cycleKey,
	)

	return scanCycle(row)
}

// GetLatestBefore возвращает последний цикл строго раньше ключа, для
// настройки копированием предыдущего.
func (r *CycleRepository) GetLatestBefore(ctx context.Context, householdID uuid.UUID, cycleKey string) (models.BudgetCycle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT household_id, cycle_start, actual_pay, current_balance, bank_account_id, created_at, updated_at
		 FROM budget_cycles
		 WHERE household_id = $1 AND cycle_start < $2
		 ORDER BY cycle_start DESC
		 LIMIT 1`,
		householdID, cycleKey,
	)

	return scanCycle(row)
}

// List возвращает определенные циклы домохозяйства, новые первыми.
func (r *CycleRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.BudgetCycle, error) {
	rows, err := r.db.Query(ctx,
		`SELECT household_id, cycle_start, actual_pay, current_balance, bank_account_id, created_at, updated_at
		 FROM budget_cycles
		 WHERE household_id = $1
		 ORDER BY cycle_start DESC`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cycles := make([]models.BudgetCycle, 0)
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}

		cycles = append(cycles, cycle)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cycles, nil
}

// Upsert записывает настройки цикла по составному ключу.
func (r *CycleRepository) Upsert(ctx context.Context, cycle models.BudgetCycle) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO budget_cycles (household_id, cycle_start, actual_pay, current_balance, bank_account_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (household_id, cycle_start)
		 DO UPDATE SET actual_pay = EXCLUDED.actual_pay,
		               current_balance = EXCLUDED.current_balance,
		               bank_account_id = EXCLUDED.bank_account_id,
		               updated_at = NOW()`,
		cycle.HouseholdID, cycle.CycleKey, cycle.ActualPay, cycle.CurrentBalance, cycle.BankAccountID,
	)

	return err
}

// Delete удаляет строку цикла: нужен откату первой настройки.
func (r *CycleRepository) Delete(ctx context.Context, householdID uuid.UUID, cycleKey string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM budget_cycles
		 WHERE household_id = $1 AND cycle_start = $2`,
		householdID, cycleKey,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
