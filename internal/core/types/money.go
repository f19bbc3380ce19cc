// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the way the shop frontend sends them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// LineTotal returns price * quantity rounded to paise.
func LineTotal(price Money, quantity int) Money {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Percent returns pct percent of amount rounded to paise.
func Percent(amount, pct Money) Money {
	return amount.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
