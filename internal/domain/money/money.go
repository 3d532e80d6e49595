// Package money implements an exact, non-negative monetary amount tagged with
// a currency.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 style currency code.
type Currency string

// EGP is the cafeteria's base currency.
const EGP Currency = "EGP"

var (
	// ErrCurrencyMismatch is returned by binary operations on different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrNegativeResult is returned when an operation would produce a negative amount.
	ErrNegativeResult = errors.New("negative money amount")
)

// Money is an immutable amount of a single currency. The zero value is not
// usable; construct values with New, MustNew or Zero.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New returns amount in currency. Negative amounts are rejected.
func New(amount decimal.Decimal, currency Currency) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errors.Wrapf(ErrNegativeResult, "amount %s", amount)
	}
	if currency == "" {
		return Money{}, errors.New("currency is required")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNew parses amount and panics on error. Intended for constants and tests.
func MustNew(amount string, currency Currency) Money {
	m, err := New(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount of currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency tag.
func (m Money) Currency() Currency { return m.currency }

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch(m, other)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. The result may not be negative.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch(m, other)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, errors.Wrapf(ErrNegativeResult, "%s - %s", m, other)
	}
	return Money{amount: result, currency: m.currency}, nil
}

// SubFloor returns max(0, m - d) where d is an amount in m's currency.
// Negative d is treated as zero.
func (m Money) SubFloor(d decimal.Decimal) Money {
	if d.IsNegative() {
		d = decimal.Zero
	}
	result := m.amount.Sub(d)
	if result.IsNegative() {
		result = decimal.Zero
	}
	return Money{amount: result, currency: m.currency}
}

// Mul returns m * factor.
func (m Money) Mul(factor int) (Money, error) {
	if factor < 0 {
		return Money{}, errors.Wrapf(ErrNegativeResult, "factor %d", factor)
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(factor))), currency: m.currency}, nil
}

// Equal reports whether both amount and currency match. Trailing zeros are
// insignificant: 25.0 EGP equals 25.00 EGP.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Key returns a canonical string usable as a map key. Equal values have equal keys.
func (m Money) Key() string {
	return m.amount.String() + " " + string(m.currency)
}

// Cmp compares amounts of the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, mismatch(m, other)
	}
	return m.amount.Cmp(other.amount), nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Floor returns the whole currency units in m, rounding down.
func (m Money) Floor() int64 { return m.amount.Floor().IntPart() }

// String formats m as "25.00 EGP".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

func mismatch(a, b Money) error {
	return errors.Wrapf(ErrCurrencyMismatch, "%s vs %s", a.currency, b.currency)
}
