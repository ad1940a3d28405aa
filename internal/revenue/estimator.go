// Package revenue computes monetary estimates from revenue formula
// specifications and client portfolio values.
package revenue

import (
	"errors"
	"fmt"
	"math"

	"OpportunityScout/internal/model"
)

// ErrInvalidPortfolioValue signals a caller error: negative or non-finite
// portfolio value. It aborts the single estimation, not the batch run.
var ErrInvalidPortfolioValue = errors.New("portfolio value must be finite and non-negative")

// Estimate computes the revenue amount for the given formula and portfolio
// value.
func Estimate(f model.RevenueFormula, portfolioValue float64) (float64, error) {
	if portfolioValue < 0 || math.IsNaN(portfolioValue) || math.IsInf(portfolioValue, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPortfolioValue, portfolioValue)
	}
	if err := f.Validate(); err != nil {
		return 0, fmt.Errorf("invalid revenue formula: %w", err)
	}

	switch f.Kind {
	case model.FormulaPercentage:
		return portfolioValue * f.Rate, nil
	case model.FormulaFlatFee:
		return f.Amount, nil
	case model.FormulaTiered:
		return estimateTiered(f.Breakpoints, portfolioValue), nil
	case model.FormulaAUMBased:
		return portfolioValue * f.Bps / 10000, nil
	}
	return 0, fmt.Errorf("unknown formula kind %q", f.Kind)
}

// estimateTiered applies the highest breakpoint whose threshold does not
// exceed the portfolio value. Breakpoints are validated ascending, so a
// forward scan with last-match-wins is correct. A value below the lowest
// threshold earns nothing.
func estimateTiered(breakpoints []model.Breakpoint, portfolioValue float64) float64 {
	amount := 0.0
	for _, bp := range breakpoints {
		if bp.Threshold <= portfolioValue {
			amount = bp.Amount
		}
	}
	return amount
}
