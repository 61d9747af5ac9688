package models

import (
	"encoding/json"
	"testing"
)

type amountPayload struct {
	Value Amount `json:"value"`
}

func unmarshalAmount(t *testing.T, raw string) Amount {
	t.Helper()

	var payload amountPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}

	return payload.Value
}

// TestAmountUnmarshalNumber проверяет разбор числовой суммы.
func TestAmountUnmarshalNumber(t *testing.T) {
	got := unmarshalAmount(t, `{"value": 54.99}`)
	if got.String() != "54.99" {
		t.Fatalf("expected 54.99, got %s", got.String())
	}
}

// TestAmountUnmarshalQuotedString проверяет разбор суммы в числовой строке.
func TestAmountUnmarshalQuotedString(t *testing.T) {
	got := unmarshalAmount(t, `{"value": "120.50"}`)
	if got.String() != "120.5" {
		t.Fatalf("expected 120.5, got %s", got.String())
	}
}

// TestAmountUnmarshalNull проверяет, что null становится нулем.
func TestAmountUnmarshalNull(t *testing.T) {
	got := unmarshalAmount(t, `{"value": null}`)
	if !got.IsZero() {
		t.Fatalf("expected zero, got %s", got.String())
	}
}

// TestAmountUnmarshalMissing проверяет, что отсутствующее поле дает ноль.
func TestAmountUnmarshalMissing(t *testing.T) {
	got := unmarshalAmount(t, `{}`)
	if !got.IsZero() {
		t.Fatalf("expected zero, got %s", got.String())
	}
}

// TestAmountUnmarshalGarbage проверяет, что нечисловой ввод становится
// нулем вместо ошибки: арифметика планирования остается тотальной.
func TestAmountUnmarshalGarbage(t *testing.T) {
	for _, raw := range []string{
		`{"value": "not a number"}`,
		`{"value": ""}`,
		`{"value": {"nested": true}}`,
		`{"value": [1, 2]}`,
	} {
		got := unmarshalAmount(t, raw)
		if !got.IsZero() {
			t.Fatalf("expected zero for %s, got %s", raw, got.String())
		}
	}
}
