package handlers

import (
	"testing"
	"time"

	"example.com/household-budget/backend/internal/models"
)

// TestParseDateParamFallback проверяет подстановку опорной даты при пустом параметре.
func TestParseDateParamFallback(t *testing.T) {
	fallback := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	got, err := parseDateParam("", fallback)
	if err != nil {
		t.Fatalf("parseDateParam: %v", err)
	}
	if !got.Equal(fallback) {
		t.Fatalf("expected fallback %v, got %v", fallback, got)
	}

	got, err = parseDateParam("2026-02-01", fallback)
	if err != nil {
		t.Fatalf("parseDateParam: %v", err)
	}
	if got.Format(dateLayout) != "2026-02-01" {
		t.Fatalf("expected 2026-02-01, got %v", got)
	}

	if _, err := parseDateParam("01/02/2026", fallback); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

// TestValidateMetadata проверяет сверку метаданных с реестром категории.
func TestValidateMetadata(t *testing.T) {
	if err := validateMetadata("utilities", map[string]string{"provider": "Octopus"}); err != nil {
		t.Fatalf("known key rejected: %v", err)
	}

	if err := validateMetadata("utilities", map[string]string{"flavour": "green"}); err == nil {
		t.Fatal("expected error for unknown metadata key")
	}

	// Категории вне реестра принимают любые ключи.
	if err := validateMetadata("hobby", map[string]string{"anything": "goes"}); err != nil {
		t.Fatalf("unregistered category rejected: %v", err)
	}
}

// TestStateLabel проверяет метки состояний в выгрузке.
func TestStateLabel(t *testing.T) {
	if got := stateLabel(models.PaidStatePaid); got != "paid" {
		t.Fatalf("expected paid, got %q", got)
	}
	if got := stateLabel(models.PaidStateSkipped); got != "skipped" {
		t.Fatalf("expected skipped, got %q", got)
	}
	if got := stateLabel(models.PaidStatePending); got != "pending" {
		t.Fatalf("expected pending, got %q", got)
	}
}
