package reports

import "databank/internal/core"

// Simple (non-compounding) interest at a 6% nominal annual rate spread
// evenly across 12 months. The rate is a fixed constant of the report
// definition, not configuration.
const (
	annualRateBasisPoints = 600
	monthsPerYear         = 12
)

// SimpleInterestMonthlyGrowth projects one month of simple-interest
// growth on a customer's initial data allocation: initial * (1 + 0.06/12).
// Computed in integer cents with half-up rounding, so 1000.00 grows to
// exactly 1005.00. The initial allocation is a caller-supplied
// per-customer attribute; it does not exist in the three core relations.
func SimpleInterestMonthlyGrowth(initial core.Money) core.Money {
	const denom = monthsPerYear * 10000 // basis points to a fraction, per month
	numer := initial.Cents * (denom + annualRateBasisPoints)
	return core.Money{Cents: (numer + denom/2) / denom}
}
