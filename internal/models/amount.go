package models

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Amount — денежная сумма во входном JSON. Внешний коллаборатор передает
// суммы то числами, то числовыми строками; все, что не парсится, становится
// нулем, чтобы арифметика планирования оставалась тотальной.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}

	var parsed decimal.Decimal
	if err := parsed.UnmarshalJSON(trimmed); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}

	a.Decimal = parsed
	return nil
}
