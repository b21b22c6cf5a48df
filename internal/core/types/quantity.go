package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a fixed-point quantity with 4 decimal places (scale = 1e4).
//
// Stored as BIGINT (scaled integer). JSON is a number with 4 decimals.
type Quantity int64

const QuantityScale int64 = 10_000

func NewQuantity(v float64) Quantity {
	return Quantity(decimal.NewFromFloat(v).Round(4).Shift(4).IntPart())
}

// NewQuantityFromInt creates a whole-unit quantity.
func NewQuantityFromInt(units int64) Quantity { return Quantity(units * QuantityScale) }

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -4) }

func (q Quantity) Float64() float64 { return q.Decimal().InexactFloat64() }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Times returns q * rate rounded to 2 places (line amount).
func (q Quantity) Times(rate Money) Money {
	return MoneyFromDecimal(q.Decimal().Mul(rate.Decimal()))
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	return q.Decimal().StringFixed(4)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 4 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string. Digits beyond 4 places are rounded.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	d, err := decodeDecimal(data)
	if err != nil {
		return fmt.Errorf("parse quantity: %w", err)
	}
	*q = Quantity(d.Round(4).Shift(4).IntPart())
	return nil
}
