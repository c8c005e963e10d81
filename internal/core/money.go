// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for every amount in the system.
// Amounts are exact decimals; nothing is ever routed through float64.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fraction digits every stored amount carries.
const AmountScale = 2

// maxIntegerDigits keeps cents inside int64 for the SQLite store.
const maxIntegerDigits = 15

// CentsSplit divides stored cents into a high and a low part whose
// separate sums stay inside int64 for any realistic row count.
const (
	centsSplitDigits       = 9
	CentsSplit       int64 = 1_000_000_000
)

// Money is an exact decimal amount. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// ParseAmount converts a user supplied decimal string to a normalized Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs and exponents are rejected,
// so the result is always non-negative.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35 (rounds up)
//	ParseAmount("0")      -> 0.00
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return Money{}, ErrInvalidAmount
		}
	}
	if len(strings.TrimLeft(intPart, "0")) > maxIntegerDigits {
		return Money{}, ErrAmountTooLarge
	}
	if fracPart == "" {
		fracPart = "0"
	}
	d, err := decimal.NewFromString(intPart + "." + fracPart)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d.Round(AmountScale)}, nil
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -AmountScale)}
}

// MoneyFromSplitCents builds hi*CentsSplit + lo cents. Sums too large for
// one int64 arrive from the SQLite store in this form.
func MoneyFromSplitCents(hi, lo int64) Money {
	return Money{d: decimal.New(hi, centsSplitDigits-AmountScale).Add(decimal.New(lo, -AmountScale))}
}

// Cents returns the amount in cents. Exact for normalized amounts.
func (m Money) Cents() int64 {
	return m.d.Shift(AmountScale).Round(0).IntPart()
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub returns m - o. The result may be negative (profit figures).
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// Cmp compares m and o and returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

// Equal reports whether m and o represent the same amount.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// IsZero reports whether the amount is 0.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether the amount is below 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// String returns the canonical representation with two fraction digits.
func (m Money) String() string {
	return m.d.StringFixed(AmountScale)
}

// MarshalJSON encodes the amount as a JSON string to avoid float drift in clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal. Negative values are allowed
// here because computed figures such as profit round-trip through JSON.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", s, ErrInvalidAmount)
	}
	*m = Money{d: d}
	return nil
}
