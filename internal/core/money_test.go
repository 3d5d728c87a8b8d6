package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		currency   string
		wantErr    error
		wantAmount string
	}{
		{
			name:       "plain amount",
			amount:     "100",
			currency:   "INR",
			wantAmount: "100.00",
		},
		{
			name:       "rounds half up at two places",
			amount:     "1250.505",
			currency:   "INR",
			wantAmount: "1250.51",
		},
		{
			name:       "rounds down below half",
			amount:     "10.004",
			currency:   "INR",
			wantAmount: "10.00",
		},
		{
			name:       "zero is allowed",
			amount:     "0",
			currency:   "USD",
			wantAmount: "0.00",
		},
		{
			name:     "negative amount rejected",
			amount:   "-5",
			currency: "INR",
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "currency too long",
			amount:   "100",
			currency: "RUPEES",
			wantErr:  ErrInvalidCurrency,
		},
		{
			name:     "currency empty",
			amount:   "100",
			currency: "",
			wantErr:  ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(mustDecimal(t, tt.amount), tt.currency)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewMoney() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMoney() unexpected error: %v", err)
			}
			if got := m.Amount().StringFixed(2); got != tt.wantAmount {
				t.Errorf("amount = %s, want %s", got, tt.wantAmount)
			}
			if m.Currency() != tt.currency {
				t.Errorf("currency = %s, want %s", m.Currency(), tt.currency)
			}
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	inr := func(s string) Money {
		m, err := NewMoney(mustDecimal(t, s), "INR")
		if err != nil {
			t.Fatalf("build money %s: %v", s, err)
		}
		return m
	}

	t.Run("add", func(t *testing.T) {
		sum, err := inr("100.10").Add(inr("0.05"))
		if err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if got := sum.Amount().StringFixed(2); got != "100.15" {
			t.Errorf("sum = %s, want 100.15", got)
		}
	})

	t.Run("add currency mismatch", func(t *testing.T) {
		usd, _ := NewMoney(mustDecimal(t, "1"), "USD")
		if _, err := inr("1").Add(usd); !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("Add() error = %v, want ErrCurrencyMismatch", err)
		}
	})

	t.Run("subtract below zero rejected", func(t *testing.T) {
		if _, err := inr("10").Subtract(inr("20")); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Subtract() error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("multiply rounds result", func(t *testing.T) {
		got, err := inr("10.01").Multiply(mustDecimal(t, "0.5"))
		if err != nil {
			t.Fatalf("Multiply() error: %v", err)
		}
		// 5.005 rounds half up to 5.01
		if s := got.Amount().StringFixed(2); s != "5.01" {
			t.Errorf("product = %s, want 5.01", s)
		}
	})

	t.Run("multiply by negative rejected", func(t *testing.T) {
		if _, err := inr("10").Multiply(mustDecimal(t, "-1")); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Multiply() error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("divide", func(t *testing.T) {
		got, err := inr("100").Divide(mustDecimal(t, "3"))
		if err != nil {
			t.Fatalf("Divide() error: %v", err)
		}
		if s := got.Amount().StringFixed(2); s != "33.33" {
			t.Errorf("quotient = %s, want 33.33", s)
		}
	})

	t.Run("divide by zero rejected", func(t *testing.T) {
		if _, err := inr("100").Divide(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Divide() error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("cmp", func(t *testing.T) {
		got, err := inr("10").Cmp(inr("20"))
		if err != nil {
			t.Fatalf("Cmp() error: %v", err)
		}
		if got != -1 {
			t.Errorf("Cmp() = %d, want -1", got)
		}
		if _, err := inr("10").Cmp(Money{amount: decimal.Zero, currency: "USD"}); !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("Cmp() across currencies error = %v, want ErrCurrencyMismatch", err)
		}
	})
}

func TestMoney_EqualAndString(t *testing.T) {
	a, _ := MoneyFromFloat(100.0, "INR")
	b, _ := MoneyFromInt(100, "INR")
	c, _ := MoneyFromInt(100, "USD")

	if !a.Equal(b) {
		t.Error("equal amounts in same currency should be Equal")
	}
	if a.Equal(c) {
		t.Error("same amount in different currency should not be Equal")
	}
	if got := a.String(); got != "INR 100.00" {
		t.Errorf("String() = %q, want %q", got, "INR 100.00")
	}
}

func TestZeroMoney(t *testing.T) {
	z, err := ZeroMoney("INR")
	if err != nil {
		t.Fatalf("ZeroMoney() error: %v", err)
	}
	if !z.IsZero() || z.IsPositive() {
		t.Errorf("zero money IsZero=%v IsPositive=%v, want true/false", z.IsZero(), z.IsPositive())
	}
}
