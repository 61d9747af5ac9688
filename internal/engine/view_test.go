package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/models"
)

const dateLayout = "2006-01-02"

func date(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func intPtr(v int) *int {
	return &v
}

func baseSnapshot() (Snapshot, uuid.UUID, uuid.UUID) {
	householdID := uuid.New()
	costID := uuid.New()

	snap := Snapshot{
		Incomes: []models.IncomeSource{{
			ID:          uuid.New(),
			HouseholdID: householdID,
			Payer:       "Employer",
			Amount:      decimal.NewFromInt(3000),
			PaymentDay:  28,
			IsPrimary:   true,
		}},
		Costs: []models.RecurringCost{{
			ID:          costID,
			HouseholdID: householdID,
			Name:        "Netflix",
			Amount:      decimal.NewFromInt(18),
			Frequency:   models.FrequencyMonthly,
			DayOfMonth:  intPtr(20),
			Category:    "subscription",
			IsActive:    true,
		}},
		Cycle: &models.BudgetCycle{
			HouseholdID:    householdID,
			CycleKey:       "2025-12-26",
			ActualPay:      decimal.NewFromInt(3000),
			CurrentBalance: decimal.NewFromInt(500),
		},
		Reference: date("2026-01-15"),
	}

	return snap, householdID, costID
}

// TestDeriveCycleViewSetupRequired проверяет состояние до явной настройки
// цикла.
func TestDeriveCycleViewSetupRequired(t *testing.T) {
	snap, _, _ := baseSnapshot()
	snap.Cycle = nil

	view, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !view.SetupRequired {
		t.Fatal("expected setup required without a cycle row")
	}

	if len(view.Groups) != 0 {
		t.Fatal("expected no schedule before setup")
	}

	if view.Window.Key != "2025-12-26" {
		t.Fatalf("expected resolved window key 2025-12-26, got %s", view.Window.Key)
	}
}

// TestDeriveCycleViewNoAnchor проверяет ошибку конфигурации без якоря.
func TestDeriveCycleViewNoAnchor(t *testing.T) {
	snap, _, _ := baseSnapshot()
	snap.Incomes = nil

	if _, err := DeriveCycleView(snap); !errors.Is(err, cycle.ErrNoAnchorIncome) {
		t.Fatalf("expected ErrNoAnchorIncome, got %v", err)
	}
}

// TestDeriveCycleViewGroupsAndTotals проверяет группировку и итоги.
func TestDeriveCycleViewGroupsAndTotals(t *testing.T) {
	snap, _, _ := baseSnapshot()

	view, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !view.TotalIncome.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected income 3000, got %s", view.TotalIncome)
	}

	if !view.TotalDue.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("expected due 18, got %s", view.TotalDue)
	}

	var subscription *Group
	for i := range view.Groups {
		if view.Groups[i].Category == "subscription" {
			subscription = &view.Groups[i]
		}
	}

	if subscription == nil || len(subscription.Items) != 1 {
		t.Fatalf("expected one subscription item, got %+v", view.Groups)
	}

	if !subscription.Items[0].DueDate.Equal(date("2026-01-20")) {
		t.Fatalf("expected due 2026-01-20, got %s", subscription.Items[0].DueDate.Format(dateLayout))
	}
}

// TestDeriveCycleViewSkippedExcluded проверяет исключение пропущенных
// вхождений из итогов и прогноза.
func TestDeriveCycleViewSkippedExcluded(t *testing.T) {
	snap, householdID, costID := baseSnapshot()

	key := fmt.Sprintf("recurring_%s_2001", costID)
	snap.Progress = []models.ProgressRecord{{
		HouseholdID:   householdID,
		CycleKey:      "2025-12-26",
		OccurrenceKey: key,
		IsPaid:        models.PaidStateSkipped,
	}}

	view, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !view.TotalDue.IsZero() {
		t.Fatalf("expected skipped cost out of totals, got %s", view.TotalDue)
	}

	if len(view.Skipped) != 1 || view.Skipped[0].Key != key {
		t.Fatalf("expected one skipped item, got %+v", view.Skipped)
	}

	// The skipped cost must not drag the forecast down; only the income
	// remains unpaid.
	if view.Forecast.Deficit {
		t.Fatal("expected no deficit with the only cost skipped")
	}
}

// TestDeriveCycleViewOverride проверяет действие переопределенной суммы.
func TestDeriveCycleViewOverride(t *testing.T) {
	snap, householdID, costID := baseSnapshot()

	key := fmt.Sprintf("recurring_%s_2001", costID)
	snap.Progress = []models.ProgressRecord{{
		HouseholdID:   householdID,
		CycleKey:      "2025-12-26",
		OccurrenceKey: key,
		IsPaid:        models.PaidStatePending,
		ActualAmount:  decimal.NewFromInt(25),
	}}

	view, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !view.TotalDue.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected overridden due 25, got %s", view.TotalDue)
	}
}

// TestDeriveCycleViewDeterministic проверяет чистоту проекции.
func TestDeriveCycleViewDeterministic(t *testing.T) {
	snap, _, _ := baseSnapshot()

	first, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := DeriveCycleView(snap)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.TotalDue.Cmp(second.TotalDue) != 0 || len(first.Groups) != len(second.Groups) {
		t.Fatal("expected identical views for identical snapshots")
	}

	if !first.Forecast.Lowest.Equal(second.Forecast.Lowest) {
		t.Fatal("expected identical forecasts for identical snapshots")
	}
}
