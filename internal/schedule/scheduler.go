package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/calendar"
	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/models"
)

// Occurrence — одна запланированная дата платежа внутри цикла. Ключ
// детерминирован, чтобы реестр оплат переживал пересчет расписания.
type Occurrence struct {
	Key        string            `json:"key"`
	SourceType models.SourceType `json:"source_type"`
	SourceID   uuid.UUID         `json:"source_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Amount     decimal.Decimal   `json:"amount"`
	DueDate    time.Time         `json:"due_date"`
	IsIncome   bool              `json:"is_income"`
}

// Input — неизменяемые снимки, из которых раскрывается расписание цикла.
type Input struct {
	Window      cycle.Window
	Calendar    calendar.Calendar
	Incomes     []models.IncomeSource
	Costs       []models.RecurringCost
	Obligations []models.Obligation
	OneOffs     []models.OneOffEntry
}

// Expand раскрывает источники дохода и повторяющиеся обязательства в
// датированные вхождения внутри окна цикла. Повторный запуск на тех же
// входах дает те же ключи.
func Expand(in Input) []Occurrence {
	occurrences := make([]Occurrence, 0, len(in.Incomes)+len(in.Costs)+len(in.Obligations)+len(in.OneOffs))

	for _, income := range in.Incomes {
		if income.PaymentDay <= 0 {
			continue
		}

		due := monthlyDueDate(in.Window, income.PaymentDay)
		if income.AdjustToWorkingDay {
			due = in.Calendar.NextWorkingDay(due)
		}

		occurrences = append(occurrences, Occurrence{
			SourceType: models.SourceIncome,
			SourceID:   income.ID,
			Name:       income.Payer,
			Category:   "income",
			Amount:     income.Amount,
			DueDate:    due,
			IsIncome:   true,
		})
	}

	for _, cost := range in.Costs {
		if !cost.IsActive {
			continue
		}

		for _, due := range costDueDates(in.Window, cost) {
			if cost.AdjustToWorkingDay {
				due = in.Calendar.NextWorkingDay(due)
			}

			occurrences = append(occurrences, Occurrence{
				SourceType: models.SourceRecurring,
				SourceID:   cost.ID,
				Name:       cost.Name,
				Category:   cost.Category,
				Amount:     cost.Amount,
				DueDate:    due,
			})
		}
	}

	for _, obligation := range in.Obligations {
		if obligation.PaymentDay <= 0 {
			continue
		}

		due := monthlyDueDate(in.Window, obligation.PaymentDay)
		if obligation.AdjustToWorkingDay {
			due = in.Calendar.NextWorkingDay(due)
		}

		occurrences = append(occurrences, Occurrence{
			SourceType: obligation.Kind,
			SourceID:   obligation.ID,
			Name:       obligation.Name,
			Category:   string(obligation.Kind),
			Amount:     obligation.Amount,
			DueDate:    due,
		})
	}

	// One-off entries are posted as-is, never expanded.
	for _, entry := range in.OneOffs {
		due := calendar.Truncate(entry.DueDate)
		if !in.Window.Contains(due) {
			continue
		}

		occurrences = append(occurrences, Occurrence{
			SourceType: models.SourceOneOff,
			SourceID:   entry.ID,
			Name:       entry.Name,
			Category:   entry.Category,
			Amount:     entry.Amount,
			DueDate:    due,
		})
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].DueDate.Equal(occurrences[j].DueDate) {
			return occurrences[i].DueDate.Before(occurrences[j].DueDate)
		}
		return occurrences[i].Name < occurrences[j].Name
	})

	assignKeys(occurrences)
	return occurrences
}

// monthlyDueDate помещает день месяца в месяц начала цикла, откатываясь на
// месяц вперед, если сырая дата оказалась раньше начала окна.
func monthlyDueDate(win cycle.Window, day int) time.Time {
	due := clampedDate(win.Start.Year(), win.Start.Month(), day)
	if due.Before(win.Start) {
		due = clampedDate(win.Start.Year(), win.Start.Month()+1, day)
	}

	return due
}

func costDueDates(win cycle.Window, cost models.RecurringCost) []time.Time {
	switch cost.Frequency {
	case models.FrequencyMonthly:
		if cost.DayOfMonth == nil || *cost.DayOfMonth <= 0 {
			return nil
		}
		return []time.Time{monthlyDueDate(win, *cost.DayOfMonth)}

	case models.FrequencyWeekly:
		return steppedDueDates(win, cost.StartDate, func(d time.Time) time.Time {
			return d.AddDate(0, 0, 7)
		})

	case models.FrequencyQuarterly:
		return steppedDueDates(win, cost.StartDate, func(d time.Time) time.Time {
			return d.AddDate(0, 3, 0)
		})

	case models.FrequencyYearly:
		return steppedDueDates(win, cost.StartDate, func(d time.Time) time.Time {
			return d.AddDate(1, 0, 0)
		})

	default:
		// One-off costs never reach the expander.
		return nil
	}
}

// steppedDueDates шагает от объявленной даты начала с периодом, пока не
// выйдет за окно; каждая дата внутри окна попадает в расписание.
func steppedDueDates(win cycle.Window, start *time.Time, step func(time.Time) time.Time) []time.Time {
	if start == nil {
		return nil
	}

	var dates []time.Time
	for d := calendar.Truncate(*start); d.Before(win.End); d = step(d) {
		if !d.Before(win.Start) {
			dates = append(dates, d)
		}
	}

	return dates
}

// assignKeys назначает детерминированные ключи вхождений. Повторный ключ
// внутри цикла получает порядковый суффикс, первое вхождение сохраняет
// голый ключ ради уже существующих записей реестра.
func assignKeys(occurrences []Occurrence) {
	seen := make(map[string]int, len(occurrences))
	for i := range occurrences {
		base := fmt.Sprintf("%s_%s_%s", occurrences[i].SourceType, occurrences[i].SourceID, occurrences[i].DueDate.Format("0201"))

		seen[base]++
		if seen[base] == 1 {
			occurrences[i].Key = base
			continue
		}

		occurrences[i].Key = fmt.Sprintf("%s_%d", base, seen[base])
	}
}

func clampedDate(year int, month time.Month, day int) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
