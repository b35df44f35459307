// Package money wraps exact decimal arithmetic for all monetary math.
// Transaction amounts are summed many times per month; native floating
// point drifts at the cent level over that many additions, so every
// operation here stays in decimal space.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by Div when the divisor is exactly zero.
// A zero divisor outside the Percentage helper indicates a caller bug.
var ErrDivisionByZero = errors.New("money: division by zero")

// Add returns a + b.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Sub returns a - b.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

// Mul returns a * b.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Div returns a / b, failing on a zero divisor.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.Div(b), nil
}

// Percentage returns part / total * 100. A zero total yields 0 rather
// than an error: a zero-limit budget reads as 0% used, not a failure.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100))
}

// Round rounds to the given number of fractional digits, half up.
func Round(value decimal.Decimal, places int32) decimal.Decimal {
	return value.Round(places)
}

// Sum adds a series of amounts, starting from zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
