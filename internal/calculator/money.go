package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// shareTolerance is the allowed gap between an expense amount and the
	// sum of its shares before normalization.
	shareTolerance = 0.01

	// settledTolerance is the magnitude below which a balance counts as settled.
	settledTolerance = 0.01

	// residualTolerance is the normalization gap that is left unadjusted.
	residualTolerance = 0.001
)

var (
	cent = decimal.New(1, -2)
	half = decimal.New(5, -1)
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round2 rounds v to cents with halves going toward +Inf,
// so 0.005 becomes 0.01 and -0.005 becomes 0.
func round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Shift(2).Add(half).Floor().Shift(-2).InexactFloat64()
}

// sharesMismatch reports whether total and amount differ by more than a
// cent. Finite values are compared exactly in decimal.
func sharesMismatch(total decimal.Decimal, amount float64) bool {
	if !finite(amount) {
		return math.Abs(total.InexactFloat64()-amount) > shareTolerance
	}
	return total.Sub(decimal.NewFromFloat(amount)).Abs().GreaterThan(cent)
}

// toCents converts an amount to whole cents.
func toCents(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

// fromCents converts whole cents back to an amount.
func fromCents(c int64) float64 {
	return decimal.New(c, -2).InexactFloat64()
}
