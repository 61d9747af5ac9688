package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-budget/backend/internal/models"
)

// ObligationRepository читает карты, пенсии, инвестиции и накопительные
// счета — каждую как одно списание за цикл.
type ObligationRepository struct {
	db *pgxpool.Pool
}

// NewObligationRepository создает репозиторий обязательств.
func NewObligationRepository(db *pgxpool.Pool) *ObligationRepository {
	return &ObligationRepository{db: db}
}

var obligationTables = []struct {
	table string
	kind  models.SourceType
}{
	{"credit_cards", models.SourceCard},
	{"pensions", models.SourcePension},
	{"investments", models.SourceInvestment},
	{"savings_pots", models.SourcePot},
}

// ListByHousehold собирает обязательства домохозяйства из всех таблиц.
func (r *ObligationRepository) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]models.Obligation, error) {
	obligations := make([]models.Obligation, 0)

	for _, src := range obligationTables {
		rows, err := r.db.Query(ctx,
			`SELECT id, household_id, name, amount, payment_day, adjust_to_working_day
			 FROM `+src.table+`
			 WHERE household_id = $1
			 ORDER BY name`,
			householdID,
		)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			obligation := models.Obligation{Kind: src.kind}

			err := rows.Scan(&obligation.ID, &obligation.HouseholdID, &obligation.Name, &obligation.Amount, &obligation.PaymentDay, &obligation.AdjustToWorkingDay)
			if err != nil {
				rows.Close()
				return nil, err
			}

			obligations = append(obligations, obligation)
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return obligations, nil
}

// GetAccount возвращает банковский счет с лимитом овердрафта.
func (r *ObligationRepository) GetAccount(ctx context.Context, householdID, accountID uuid.UUID) (models.BankAccount, error) {
	var account models.BankAccount

	err := r.db.QueryRow(ctx,
		`SELECT id, household_id, name, overdraft_limit
		 FROM bank_accounts
		 WHERE id = $2 AND household_id = $1`,
		householdID, accountID,
	).Scan(&account.ID, &account.HouseholdID, &account.Name, &account.OverdraftLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrNotFound
		}
		return account, err
	}

	return account, nil
}

// ListAccounts возвращает текущие счета домохозяйства.
func (r *ObligationRepository) ListAccounts(ctx context.Context, householdID uuid.UUID) ([]models.BankAccount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, household_id, name, overdraft_limit
		 FROM bank_accounts
		 WHERE household_id = $1
		 ORDER BY name`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.BankAccount, 0)
	for rows.Next() {
		var account models.BankAccount

		err := rows.Scan(&account.ID, &account.HouseholdID, &account.Name, &account.OverdraftLimit)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
