package calendar

import (
	"testing"
	"time"
)

func date(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// TestIsWorkingDay проверяет классификацию выходных и праздников.
func TestIsWorkingDay(t *testing.T) {
	cal := New([]string{"2026-01-01"})

	if cal.IsWorkingDay(date("2026-01-03")) {
		t.Fatal("expected Saturday to be non-working")
	}

	if cal.IsWorkingDay(date("2026-01-04")) {
		t.Fatal("expected Sunday to be non-working")
	}

	if cal.IsWorkingDay(date("2026-01-01")) {
		t.Fatal("expected holiday to be non-working")
	}

	if !cal.IsWorkingDay(date("2026-01-05")) {
		t.Fatal("expected Monday to be working")
	}
}

// TestNextWorkingDay проверяет сдвиг вперед и неподвижность рабочего дня.
func TestNextWorkingDay(t *testing.T) {
	cal := New([]string{"2026-01-01", "2026-01-02"})

	// Thursday holiday, Friday holiday, weekend: lands on Monday.
	got := cal.NextWorkingDay(date("2026-01-01"))
	if !got.Equal(date("2026-01-05")) {
		t.Fatalf("expected 2026-01-05, got %s", got.Format(dateLayout))
	}

	got = cal.NextWorkingDay(date("2026-01-05"))
	if !got.Equal(date("2026-01-05")) {
		t.Fatalf("expected working day unchanged, got %s", got.Format(dateLayout))
	}
}

// TestPriorWorkingDay проверяет сдвиг назад через выходные.
func TestPriorWorkingDay(t *testing.T) {
	cal := New(nil)

	got := cal.PriorWorkingDay(date("2026-01-04"))
	if !got.Equal(date("2026-01-02")) {
		t.Fatalf("expected 2026-01-02, got %s", got.Format(dateLayout))
	}

	got = cal.PriorWorkingDay(date("2026-01-02"))
	if !got.Equal(date("2026-01-02")) {
		t.Fatalf("expected working day unchanged, got %s", got.Format(dateLayout))
	}
}

// TestNewIgnoresMalformedDates проверяет устойчивость к мусорным датам.
func TestNewIgnoresMalformedDates(t *testing.T) {
	cal := New([]string{"not-a-date", "2026-01-06"})

	if cal.IsWorkingDay(date("2026-01-06")) {
		t.Fatal("expected valid holiday to be applied")
	}

	if !cal.IsWorkingDay(date("2026-01-05")) {
		t.Fatal("expected unrelated day to stay working")
	}
}
