package cycle

import (
	"errors"
	"time"

	"example.com/household-budget/backend/internal/calendar"
	"example.com/household-budget/backend/internal/models"
)

const dateLayout = "2006-01-02"

// ErrNoAnchorIncome возникает, когда ни один источник дохода не может
// закрепить границы цикла: настройка обязательна, умолчаний нет.
var ErrNoAnchorIncome = errors.New("no income source anchors the cycle")

// Window — разрешенное окно цикла [Start, End) и его ключ хранения.
type Window struct {
	Start time.Time
	End   time.Time
	Key   string
}

// Contains сообщает, попадает ли дата в окно цикла.
func (w Window) Contains(d time.Time) bool {
	day := calendar.Truncate(d)
	return !day.Before(w.Start) && day.Before(w.End)
}

// Resolve выводит окно активного цикла из основного источника дохода и
// просматриваемой даты. Чистая функция: одинаковые входы дают одинаковые
// границы.
func Resolve(incomes []models.IncomeSource, reference time.Time, cal calendar.Calendar) (Window, error) {
	primary, ok := primaryIncome(incomes)
	if !ok {
		return Window{}, ErrNoAnchorIncome
	}

	ref := calendar.Truncate(reference)
	payDay := primary.PaymentDay

	year, month := ref.Year(), ref.Month()
	if ref.Day() < payDay {
		month--
	}

	anchor := clampedDate(year, month, payDay)
	// Shift the pay day, not the clamped anchor, so a day-31 pay survives
	// crossing a short month.
	nextAnchor := clampedDate(year, month+1, payDay)

	start := cal.PriorWorkingDay(anchor)
	end := cal.PriorWorkingDay(nextAnchor)

	return Window{Start: start, End: end, Key: start.Format(dateLayout)}, nil
}

// AnchorReference возвращает первый якорный день не раньше start. Начало
// окна — откат якоря на рабочий день, поэтому резолвер с самим началом в
// качестве опорной даты привязался бы к предыдущему месяцу, когда день
// начала оказался ниже дня выплаты.
func AnchorReference(incomes []models.IncomeSource, start time.Time) (time.Time, error) {
	primary, ok := primaryIncome(incomes)
	if !ok {
		return time.Time{}, ErrNoAnchorIncome
	}

	day := calendar.Truncate(start)
	anchor := clampedDate(day.Year(), day.Month(), primary.PaymentDay)
	if anchor.Before(day) {
		anchor = clampedDate(day.Year(), day.Month()+1, primary.PaymentDay)
	}

	return anchor, nil
}

func primaryIncome(incomes []models.IncomeSource) (models.IncomeSource, bool) {
	for _, income := range incomes {
		if income.IsPrimary && income.PaymentDay > 0 {
			return income, true
		}
	}

	for _, income := range incomes {
		if income.PaymentDay > 0 {
			return income, true
		}
	}

	return models.IncomeSource{}, false
}

// clampedDate строит дату, прижимая день к длине месяца вместо переноса
// в следующий месяц, который сделал бы time.Date.
func clampedDate(year int, month time.Month, day int) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
