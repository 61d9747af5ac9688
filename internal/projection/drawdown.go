package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/calendar"
	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/schedule"
)

// DayBalance — прогнозный остаток на конец одного календарного дня.
type DayBalance struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Forecast — траектория остатка по циклу и ее минимум от сегодня вперед.
type Forecast struct {
	Series     []DayBalance    `json:"series"`
	Lowest     decimal.Decimal `json:"lowest"`
	LowestDate time.Time       `json:"lowest_date"`
	Deficit    bool            `json:"deficit"`
}

// Project симулирует остаток счета по дням окна цикла. Инвариант
// openingBalanceHoldsBeforeToday: дни до опорной даты сохраняют объявленный
// остаток без изменений — прошлые неоплаченные позиции считаются уже
// учтенными в нем. Дефицит фиксируется, когда минимум от сегодня до конца
// цикла уходит ниже нуля с поправкой на овердрафт.
func Project(win cycle.Window, today time.Time, opening decimal.Decimal, overdraftLimit decimal.Decimal, unpaid []schedule.Occurrence) Forecast {
	curToday := calendar.Truncate(today)

	deltaByDay := make(map[string]decimal.Decimal, len(unpaid))
	for _, occ := range unpaid {
		key := occ.DueDate.Format("2006-01-02")
		delta := occ.Amount
		if !occ.IsIncome {
			delta = delta.Neg()
		}
		deltaByDay[key] = deltaByDay[key].Add(delta)
	}

	forecast := Forecast{Lowest: opening, LowestDate: curToday}
	balance := opening

	for day := win.Start; !day.After(win.End); day = day.AddDate(0, 0, 1) {
		if !day.Before(curToday) {
			balance = balance.Add(deltaByDay[day.Format("2006-01-02")])

			if balance.LessThan(forecast.Lowest) {
				forecast.Lowest = balance
				forecast.LowestDate = day
			}
		}

		forecast.Series = append(forecast.Series, DayBalance{Date: day, Balance: balance})
	}

	forecast.Deficit = forecast.Lowest.LessThan(overdraftLimit.Neg())
	return forecast
}
