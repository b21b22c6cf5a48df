// Package types provides fixed-point value types shared by documents and ledgers.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in minor units (2 decimal places).
// Stored as BIGINT / int64 so every backend keeps it exact.
// JSON uses major units: 1180.5 is encoded as 1180.50.
type Money int64

// MoneyScale is the number of minor units in one major unit.
const MoneyScale int64 = 100

// NewMoney creates Money from a float, rounding half away from zero to 2 places.
func NewMoney(f float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(f))
}

// NewMoneyFromString parses a decimal string like "1180.00".
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money: %w", err)
	}
	return MoneyFromDecimal(d), nil
}

// MustMoney parses s and panics on error. Use only for constants and tests.
func MustMoney(s string) Money {
	m, err := NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal rounds d to 2 places and converts it to minor units.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(2).Shift(2).IntPart())
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

func (m Money) Float64() float64 { return m.Decimal().InexactFloat64() }

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }
func (m Money) Neg() Money       { return -m }

func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// MulPercent returns m * p / 100 rounded to 2 places.
func (m Money) MulPercent(p Percent) Money {
	return MoneyFromDecimal(m.Decimal().Mul(p.Decimal()).Div(decimal.NewFromInt(100)))
}

// String returns the amount with exactly 2 fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes Money as a JSON number with 2 fractional digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decodeDecimal(data)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}

// SumMoney adds up amounts.
func SumMoney(values ...Money) Money {
	var total Money
	for _, v := range values {
		total += v
	}
	return total
}

// Percent is a rate with 2 decimal places (18% is stored as 1800).
type Percent int64

// NewPercent creates a Percent from a float such as 18 or 12.5.
func NewPercent(f float64) Percent {
	return Percent(decimal.NewFromFloat(f).Round(2).Shift(2).IntPart())
}

func (p Percent) Decimal() decimal.Decimal { return decimal.New(int64(p), -2) }

func (p Percent) Float64() float64 { return p.Decimal().InexactFloat64() }

func (p Percent) String() string { return p.Decimal().String() }

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal().String()), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	d, err := decodeDecimal(data)
	if err != nil {
		return fmt.Errorf("percent: %w", err)
	}
	*p = Percent(d.Round(2).Shift(2).IntPart())
	return nil
}

// decodeDecimal reads a JSON number or string token. null and empty decode to zero.
func decodeDecimal(data []byte) (decimal.Decimal, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return decimal.Zero, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return decimal.Zero, err
		}
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}
	return decimal.NewFromString(string(data))
}
