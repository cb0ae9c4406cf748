// pkg/valueobjects/money.go
package valueobjects

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tripweave/tripweave-backend/errors"
)

// Currency is an upper-case ISO 4217 code.
type Currency string

const DefaultCurrency Currency = "USD"

var hundred = decimal.NewFromInt(100)

// ParseCurrency accepts any three-letter alphabetic code, case-insensitively.
func ParseCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return Currency(code), true
}

// Money is a non-negative amount with at most two decimal places.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (*Money, error) {
	if _, ok := ParseCurrency(string(currency)); !ok {
		return nil, errors.ValidationFailed(
			"invalid currency",
			fmt.Sprintf("currency %q is not an ISO 4217 code", currency),
		)
	}
	if amount.LessThan(decimal.Zero) {
		return nil, errors.ValidationFailed("invalid amount", "amount cannot be negative")
	}
	if amount.Exponent() < -2 {
		return nil, errors.ValidationFailed("invalid amount", "amount cannot have more than 2 decimal places")
	}
	return &Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat rounds to cents before validating.
func NewMoneyFromFloat(amount float64, currency Currency) (*Money, error) {
	return NewMoney(decimal.NewFromFloat(amount).Round(2), currency)
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) Float() float64 {
	f, _ := m.amount.Float64()
	return f
}

func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.ValidationFailed(
			"currency mismatch",
			fmt.Sprintf("cannot add %s to %s", other.currency, m.currency),
		)
	}
	return &Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Split divides the amount into n shares of whole cents. Leftover cents go
// to the first shares, so the shares always sum to the original amount.
func (m Money) Split(n int) ([]*Money, error) {
	if n <= 0 {
		return nil, errors.ValidationFailed("invalid split", "number of parts must be positive")
	}

	cents := m.amount.Mul(hundred).Round(0)
	count := decimal.NewFromInt(int64(n))
	base := cents.Div(count).Floor()
	remainder := cents.Sub(base.Mul(count)).IntPart()

	out := make([]*Money, n)
	for i := 0; i < n; i++ {
		part := base
		if int64(i) < remainder {
			part = part.Add(decimal.NewFromInt(1))
		}
		out[i] = &Money{amount: part.Div(hundred).Round(2), currency: m.currency}
	}
	return out, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// SplitAmount splits a float amount into n cent-exact shares.
func SplitAmount(amount float64, n int) ([]float64, error) {
	m, err := NewMoneyFromFloat(amount, DefaultCurrency)
	if err != nil {
		return nil, err
	}
	parts, err := m.Split(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		out[i] = p.Float()
	}
	return out, nil
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SumRounded adds values in decimal space and rounds to cents.
func SumRounded(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}
