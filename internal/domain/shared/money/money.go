package money

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money is an amount in integer minor units (cents) tagged with an uppercase
// 3-letter currency code. Float arithmetic never touches monetary values.
type Money struct {
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`
}

func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must is New for fixtures and literals; panics on a bad currency code.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero(currency string) Money {
	return Money{Currency: strings.ToUpper(currency)}
}

// Add sums two values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		if m.Currency == "" || other.Currency == "" {
			return Money{}, ErrInvalidCurrency
		}
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply scales the amount, e.g. a nightly rate by the number of nights.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// SameCurrency reports whether the two values can be summed or compared.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency != "" && m.Currency == other.Currency
}

// String renders the amount as a decimal with the code, e.g. "330.00 USD".
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}
