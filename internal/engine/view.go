package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/calendar"
	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/projection"
	"example.com/household-budget/backend/internal/schedule"
)

// Snapshot — неизменяемые входы производного представления цикла. Все
// срезы — снимки внешнего хранилища на момент запроса.
type Snapshot struct {
	Incomes     []models.IncomeSource
	Costs       []models.RecurringCost
	Obligations []models.Obligation
	OneOffs     []models.OneOffEntry
	Cycle       *models.BudgetCycle
	Account     *models.BankAccount
	Progress    []models.ProgressRecord
	Holidays    []string
	Reference   time.Time
}

// Item — вхождение расписания, аннотированное состоянием оплаты.
// Amount — действующая сумма: переопределение из реестра либо плановая.
type Item struct {
	schedule.Occurrence
	State       models.PaidState `json:"state"`
	HasOverride bool             `json:"has_override"`
}

// Group — категория расписания с итогом по действующим суммам.
type Group struct {
	Category string          `json:"category"`
	Items    []Item          `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// CycleView — полное производное состояние цикла для одного запроса.
type CycleView struct {
	Window         cycle.Window        `json:"window"`
	SetupRequired  bool                `json:"setup_required"`
	Cycle          *models.BudgetCycle `json:"cycle,omitempty"`
	Groups         []Group             `json:"groups"`
	Skipped        []Item              `json:"skipped"`
	TotalIncome    decimal.Decimal     `json:"total_income"`
	TotalDue       decimal.Decimal     `json:"total_due"`
	TotalPaid      decimal.Decimal     `json:"total_paid"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`
	Forecast       projection.Forecast `json:"forecast"`
}

// DeriveCycleView — чистая проекция: одинаковые снимки всегда дают
// одинаковое представление, что позволяет тестировать движок без живого
// хранилища. Возвращает ErrNoAnchorIncome из резолвера, когда цикл нечем
// закрепить; при отсутствии строки цикла помечает представление как
// требующее настройки и не раскрывает расписание.
func DeriveCycleView(snap Snapshot) (CycleView, error) {
	cal := calendar.New(snap.Holidays)

	win, err := cycle.Resolve(snap.Incomes, snap.Reference, cal)
	if err != nil {
		return CycleView{}, err
	}

	view := CycleView{Window: win, Groups: []Group{}, Skipped: []Item{}}

	if snap.Cycle == nil {
		view.SetupRequired = true
		return view, nil
	}
	view.Cycle = snap.Cycle

	occurrences := schedule.Expand(schedule.Input{
		Window:      win,
		Calendar:    cal,
		Incomes:     snap.Incomes,
		Costs:       snap.Costs,
		Obligations: snap.Obligations,
		OneOffs:     snap.OneOffs,
	})

	progressByKey := make(map[string]models.ProgressRecord, len(snap.Progress))
	for _, record := range snap.Progress {
		if record.CycleKey == win.Key {
			progressByKey[record.OccurrenceKey] = record
		}
	}

	groupIndex := make(map[string]int)
	var unpaid []schedule.Occurrence

	for _, occ := range occurrences {
		item := Item{Occurrence: occ}

		if record, ok := progressByKey[occ.Key]; ok {
			item.State = record.IsPaid
			if record.IsPaid != models.PaidStateSkipped {
				item.HasOverride = true
				item.Amount = record.ActualAmount
			}
		}

		if item.State == models.PaidStateSkipped {
			view.Skipped = append(view.Skipped, item)
			continue
		}

		if item.IsIncome {
			view.TotalIncome = view.TotalIncome.Add(item.Amount)
		} else {
			view.TotalDue = view.TotalDue.Add(item.Amount)
			if item.State == models.PaidStatePaid {
				view.TotalPaid = view.TotalPaid.Add(item.Amount)
			}
		}

		if item.State == models.PaidStatePending {
			unpaid = append(unpaid, item.Occurrence)
		}

		idx, ok := groupIndex[item.Category]
		if !ok {
			idx = len(view.Groups)
			groupIndex[item.Category] = idx
			view.Groups = append(view.Groups, Group{Category: item.Category})
		}

		view.Groups[idx].Items = append(view.Groups[idx].Items, item)
		view.Groups[idx].Total = view.Groups[idx].Total.Add(item.Amount)
	}

	view.TotalRemaining = view.TotalDue.Sub(view.TotalPaid)

	overdraft := decimal.Zero
	if snap.Account != nil {
		overdraft = snap.Account.OverdraftLimit
	}

	view.Forecast = projection.Project(win, snap.Reference, snap.Cycle.CurrentBalance, overdraft, unpaid)
	return view, nil
}
