package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Frequency string

type SourceType string

type PaidState int8

type OwnerType string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyOneOff    Frequency = "one_off"

	SourceIncome     SourceType = "income"
	SourceRecurring  SourceType = "recurring"
	SourceCard       SourceType = "card"
	SourcePension    SourceType = "pension"
	SourceInvestment SourceType = "investment"
	SourcePot        SourceType = "pot"
	SourceOneOff     SourceType = "oneoff"

	PaidStatePending PaidState = 0
	PaidStatePaid    PaidState = 1
	PaidStateSkipped PaidState = -1

	OwnerHousehold OwnerType = "household"
	OwnerMember    OwnerType = "member"
	OwnerVehicle   OwnerType = "vehicle"
	OwnerPet       OwnerType = "pet"
)

type IncomeSource struct {
	ID                 uuid.UUID       `json:"id"`
	HouseholdID        uuid.UUID       `json:"household_id"`
	Payer              string          `json:"payer"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentDay         int             `json:"payment_day"`
	AdjustToWorkingDay bool            `json:"adjust_to_working_day"`
	BankAccountID      *uuid.UUID      `json:"bank_account_id,omitempty"`
	IsPrimary          bool            `json:"is_primary"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type RecurringCost struct {
	ID                 uuid.UUID         `json:"id"`
	HouseholdID        uuid.UUID         `json:"household_id"`
	Name               string            `json:"name"`
	Amount             decimal.Decimal   `json:"amount"`
	Frequency          Frequency         `json:"frequency"`
	DayOfMonth         *int              `json:"day_of_month,omitempty"`
	DayOfWeek          *int              `json:"day_of_week,omitempty"`
	StartDate          *time.Time        `json:"start_date,omitempty"`
	AdjustToWorkingDay bool              `json:"adjust_to_working_day"`
	Category           string            `json:"category"`
	OwnerType          OwnerType         `json:"owner_type"`
	OwnerID            *uuid.UUID        `json:"owner_id,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	IsActive           bool              `json:"is_active"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Obligation — платеж по карте, пенсии, инвестиции или накопительному
// счету: одно списание за цикл в фиксированный день месяца.
type Obligation struct {
	ID                 uuid.UUID       `json:"id"`
	HouseholdID        uuid.UUID       `json:"household_id"`
	Kind               SourceType      `json:"kind"`
	Name               string          `json:"name"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentDay         int             `json:"payment_day"`
	AdjustToWorkingDay bool            `json:"adjust_to_working_day"`
}

type OneOffEntry struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type BankAccount struct {
	ID             uuid.UUID       `json:"id"`
	HouseholdID    uuid.UUID       `json:"household_id"`
	Name           string          `json:"name"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
}

// BudgetCycle — одна строка на домохозяйство и дату начала цикла. Создается
// только явным действием настройки, никогда неявно планировщиком.
type BudgetCycle struct {
	HouseholdID    uuid.UUID       `json:"household_id"`
	CycleKey       string          `json:"cycle_key"`
	ActualPay      decimal.Decimal `json:"actual_pay"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	BankAccountID  *uuid.UUID      `json:"bank_account_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProgressRecord — состояние оплаты одного вхождения в цикле. У ожидающего
// вхождения строки нет вовсе: строка появляется только при оплате или пропуске.
type ProgressRecord struct {
	HouseholdID   uuid.UUID       `json:"household_id"`
	CycleKey      string          `json:"cycle_key"`
	OccurrenceKey string          `json:"occurrence_key"`
	IsPaid        PaidState       `json:"is_paid"`
	ActualAmount  decimal.Decimal `json:"actual_amount"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
