package calculator

import (
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits in the smallest currency
// unit. Every amount entering or leaving the calculator has at most this many.
const CurrencyPlaces int32 = 2

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// HasCurrencyPrecision reports whether d can be expressed in whole minor units.
func HasCurrencyPrecision(d decimal.Decimal) bool {
	units := d.Shift(CurrencyPlaces)
	return units.Equal(units.Truncate(0))
}

// apportion divides total in proportion to weights, working in minor units.
// Each slot first gets the floor of its exact portion; the units left over
// are handed out one at a time to positive-weight slots in the order given.
// Callers pass weights in ascending member ID order. Weights must be
// non-negative with a positive sum.
func apportion(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	units := total.Shift(CurrencyPlaces)

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}

	portions := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		q, _ := units.Mul(w).QuoRem(sum, 0)
		portions[i] = q
		allocated = allocated.Add(q)
	}

	remainder := units.Sub(allocated)
	for i := 0; remainder.IsPositive() && i < len(weights); i++ {
		if !weights[i].IsPositive() {
			continue
		}
		portions[i] = portions[i].Add(one)
		remainder = remainder.Sub(one)
	}

	for i := range portions {
		portions[i] = portions[i].Shift(-CurrencyPlaces)
	}
	return portions
}
