package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/schedule"
)

const dateLayout = "2006-01-02"

func date(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func window(start, end string) cycle.Window {
	return cycle.Window{Start: date(start), End: date(end), Key: start}
}

// TestProjectDeficit проверяет прогноз минимума и флаг дефицита.
func TestProjectDeficit(t *testing.T) {
	win := window("2026-01-01", "2026-01-31")
	today := date("2026-01-10")

	unpaid := []schedule.Occurrence{
		{Name: "Car repair", Amount: decimal.NewFromInt(700), DueDate: date("2026-01-11")},
	}

	forecast := Project(win, today, decimal.NewFromInt(500), decimal.Zero, unpaid)

	if !forecast.Lowest.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("expected lowest -200, got %s", forecast.Lowest)
	}

	if !forecast.LowestDate.Equal(date("2026-01-11")) {
		t.Fatalf("expected lowest on 2026-01-11, got %s", forecast.LowestDate.Format(dateLayout))
	}

	if !forecast.Deficit {
		t.Fatal("expected deficit to be flagged")
	}
}

// TestProjectOpeningBalanceHoldsBeforeToday проверяет, что дни до опорной
// даты сохраняют объявленный остаток.
func TestProjectOpeningBalanceHoldsBeforeToday(t *testing.T) {
	win := window("2026-01-01", "2026-01-10")
	today := date("2026-01-05")

	unpaid := []schedule.Occurrence{
		{Name: "Old bill", Amount: decimal.NewFromInt(100), DueDate: date("2026-01-02")},
	}

	forecast := Project(win, today, decimal.NewFromInt(300), decimal.Zero, unpaid)

	for _, day := range forecast.Series {
		if day.Date.Before(today) && !day.Balance.Equal(decimal.NewFromInt(300)) {
			t.Fatalf("expected opening balance on %s, got %s", day.Date.Format(dateLayout), day.Balance)
		}
	}

	if forecast.Deficit {
		t.Fatal("expected no deficit when the only unpaid item is in the past")
	}
}

// TestProjectIncomeOffsetsCosts проверяет сложение доходов и вычитание
// расходов в один день.
func TestProjectIncomeOffsetsCosts(t *testing.T) {
	win := window("2026-01-01", "2026-01-05")
	today := date("2026-01-01")

	unpaid := []schedule.Occurrence{
		{Name: "Salary", Amount: decimal.NewFromInt(2000), DueDate: date("2026-01-03"), IsIncome: true},
		{Name: "Rent", Amount: decimal.NewFromInt(900), DueDate: date("2026-01-03")},
	}

	forecast := Project(win, today, decimal.NewFromInt(50), decimal.Zero, unpaid)

	last := forecast.Series[len(forecast.Series)-1]
	if !last.Balance.Equal(decimal.NewFromInt(1150)) {
		t.Fatalf("expected closing balance 1150, got %s", last.Balance)
	}
}

// TestProjectOverdraftLimit проверяет допуск овердрафта при оценке дефицита.
func TestProjectOverdraftLimit(t *testing.T) {
	win := window("2026-01-01", "2026-01-05")
	today := date("2026-01-01")

	unpaid := []schedule.Occurrence{
		{Name: "Boiler", Amount: decimal.NewFromInt(400), DueDate: date("2026-01-02")},
	}

	forecast := Project(win, today, decimal.NewFromInt(100), decimal.NewFromInt(500), unpaid)

	if forecast.Deficit {
		t.Fatal("expected no deficit inside the overdraft limit")
	}

	forecast = Project(win, today, decimal.NewFromInt(100), decimal.NewFromInt(200), unpaid)
	if !forecast.Deficit {
		t.Fatal("expected deficit beyond the overdraft limit")
	}
}
