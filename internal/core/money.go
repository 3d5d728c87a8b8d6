// Package core holds the commission domain: money and financial-year value
// objects, the commission/transaction/partner entities and their invariants.
//
// Everything in this package is a pure, immutable value. Construction
// validates every invariant and fails with an error wrapping ErrValidation;
// an invalid instance is never handed back to the caller.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a caller does not supply one.
const DefaultCurrency = "INR"

// Money is an immutable currency-tagged amount. The amount is kept as a
// fixed-point decimal rounded half-up to two places on every construction,
// so repeated arithmetic never drifts by more than one rounding step per
// operation.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money from a decimal amount and a 3-letter currency code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidCurrency, currency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", ErrInvalidAmount)
	}
	// Round is half away from zero, which for non-negative amounts is the
	// half-up rounding the ledger requires.
	return Money{amount: amount.Round(2), currency: currency}, nil
}

// MoneyFromFloat builds a Money from a float value.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// MoneyFromInt builds a Money from a whole amount.
func MoneyFromInt(amount int64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount), currency)
}

// ZeroMoney builds a zero amount in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the 3-letter currency code.
func (m Money) Currency() string { return m.currency }

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

// Subtract returns the difference of two amounts in the same currency.
// A result below zero is a validation failure.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrCurrencyMismatch, other.currency, m.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%w: subtraction would produce a negative amount", ErrInvalidAmount)
	}
	return NewMoney(result, m.currency)
}

// Multiply scales the amount by a non-negative factor.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: cannot multiply by negative factor", ErrInvalidAmount)
	}
	return NewMoney(m.amount.Mul(factor), m.currency)
}

// Divide splits the amount by a positive divisor.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.Sign() <= 0 {
		return Money{}, fmt.Errorf("%w: cannot divide by zero or negative divisor", ErrInvalidAmount)
	}
	return NewMoney(m.amount.Div(divisor), m.currency)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Float64 returns the amount as a float for display and aggregation output.
// Use decimal arithmetic for anything that feeds back into money.
func (m Money) Float64() float64 { return m.amount.InexactFloat64() }

// Equal reports whether amount and currency both match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Cmp compares two amounts in the same currency. It returns -1, 0 or 1.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: cannot compare %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) String() string {
	return m.currency + " " + m.amount.StringFixed(2)
}
