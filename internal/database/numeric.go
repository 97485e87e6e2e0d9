package database

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseNumeric converts a NUMERIC column selected as text (col::text) into a decimal.
// Selecting as text keeps scanning identical for real pools and pgxmock rows.
func ParseNumeric(column string, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q in column %s: %w", value, column, err)
	}
	return d, nil
}

// NullableId maps the zero id produced by COALESCE(col, 0) back to nil.
func NullableId(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}
