package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/models"
)

type IncomeRepository struct {
	db *pgxpool.Pool
}

// NewIncomeRepository создает репозиторий источников дохода.
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// ListByHousehold возвращает источники дохода домохозяйства.
func (r *IncomeRepository) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]models.IncomeSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, household_id, payer, amount, payment_day, adjust_to_working_day, bank_account_id, is_primary, created_at, updated_at
		 FROM income_sources
		 WHERE household_id = $1
		 ORDER BY is_primary DESC, created_at`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]models.IncomeSource, 0)
	for rows.Next() {
		var income models.IncomeSource

		err := rows.Scan(&income.ID, &income.HouseholdID, &income.Payer, &income.Amount, &income.PaymentDay, &income.AdjustToWorkingDay, &income.BankAccountID, &income.IsPrimary, &income.CreatedAt, &income.UpdatedAt)
		if err != nil {
			return nil, err
		}

		incomes = append(incomes, income)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incomes, nil
}

// Create создает источник дохода. Пометка основного снимает флаг с
// остальных источников домохозяйства в одной транзакции.
func (r *IncomeRepository) Create(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.IncomeSource{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if income.IsPrimary {
		_, err = tx.Exec(ctx,
			`UPDATE income_sources SET is_primary = FALSE, updated_at = NOW()
			 WHERE household_id = $1 AND is_primary`,
			income.HouseholdID,
		)
		if err != nil {
			return models.IncomeSource{}, err
		}
	}

	var created models.IncomeSource
	err = tx.QueryRow(ctx,
		`INSERT INTO income_sources (id, household_id, payer, amount, payment_day, adjust_to_working_day, bank_account_id, is_primary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, household_id, payer, amount, payment_day, adjust_to_working_day, bank_account_id, is_primary, created_at, updated_at`,
		uuid.New(), income.HouseholdID, income.Payer, income.Amount, income.PaymentDay, income.AdjustToWorkingDay, income.BankAccountID, income.IsPrimary,
	).Scan(&created.ID, &created.HouseholdID, &created.Payer, &created.Amount, &created.PaymentDay, &created.AdjustToWorkingDay, &created.BankAccountID, &created.IsPrimary, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return models.IncomeSource{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.IncomeSource{}, err
	}

	return created, nil
}

// Update обновляет источник дохода.
func (r *IncomeRepository) Update(ctx context.Context, householdID, incomeID uuid.UUID, payer string, amount decimal.Decimal, paymentDay int, adjust bool, bankAccountID *uuid.UUID, isPrimary bool) (models.IncomeSource, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.IncomeSource{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if isPrimary {
		_, err = tx.Exec(ctx,
			`UPDATE income_sources SET is_primary = FALSE, updated_at = NOW()
			 WHERE household_id = $1 AND is_primary AND id <> $2`,
			householdID, incomeID,
		)
		if err != nil {
			return models.IncomeSource{}, err
		}
	}

	var income models.IncomeSource
	err = tx.QueryRow(ctx,
		`UPDATE income_sources
		 SET payer = $3,
		     amount = $4,
		     payment_day = $5,
		     adjust_to_working_day = $6,
		     bank_account_id = $7,
		     is_primary = $8,
		     updated_at = NOW()
		 WHERE id = $2 AND household_id = $1
		 RETURNING id, household_id, payer, amount, payment_day, adjust_to_working_day, bank_account_id, is_primary, created_at, updated_at`,
		householdID, incomeID, payer, amount, paymentDay, adjust, bankAccountID, isPrimary,
	).Scan(&income.ID, &income.HouseholdID, &income.Payer, &income.Amount, &income.PaymentDay, &income.AdjustToWorkingDay, &income.BankAccountID, &income.IsPrimary, &income.CreatedAt, &income.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.IncomeSource{}, ErrNotFound
		}
		return models.IncomeSource{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.IncomeSource{}, err
	}

	return income, nil
}

// Delete удаляет источник дохода.
func (r *IncomeRepository) Delete(ctx context.Context, householdID, incomeID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM income_sources
		 WHERE id = $2 AND household_id = $1`,
		householdID, incomeID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
