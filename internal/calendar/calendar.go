package calendar

import "time"

const dateLayout = "2006-01-02"

// Calendar классифицирует дни как рабочие и нерабочие по выходным и
// набору праздничных дат. Все методы чистые.
type Calendar struct {
	holidays map[string]struct{}
}

// New создает календарь из списка праздничных дат в формате ISO.
func New(holidayDates []string) Calendar {
	holidays := make(map[string]struct{}, len(holidayDates))
	for _, date := range holidayDates {
		if parsed, err := time.Parse(dateLayout, date); err == nil {
			holidays[parsed.Format(dateLayout)] = struct{}{}
		}
	}

	return Calendar{holidays: holidays}
}

// IsWorkingDay сообщает, является ли день рабочим: не выходной и не праздник.
func (c Calendar) IsWorkingDay(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}

	_, holiday := c.holidays[d.Format(dateLayout)]
	return !holiday
}

// NextWorkingDay возвращает ближайший рабочий день не раньше d.
func (c Calendar) NextWorkingDay(d time.Time) time.Time {
	day := Truncate(d)
	for !c.IsWorkingDay(day) {
		day = day.AddDate(0, 0, 1)
	}

	return day
}

// PriorWorkingDay возвращает ближайший рабочий день не позже d.
func (c Calendar) PriorWorkingDay(d time.Time) time.Time {
	day := Truncate(d)
	for !c.IsWorkingDay(day) {
		day = day.AddDate(0, 0, -1)
	}

	return day
}

// Truncate отбрасывает время, оставляя дату в UTC.
func Truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
