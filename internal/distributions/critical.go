package distributions

import (
	"math"

	"statbook/internal/errors"
)

// zTable holds the two-sided z critical values used in the lessons' lookup tables.
var zTable = []struct {
	level float64
	z     float64
}{
	{0.80, 1.282},
	{0.90, 1.645},
	{0.95, 1.960},
	{0.98, 2.326},
	{0.99, 2.576},
	{0.998, 3.090},
}

const levelTolerance = 1e-9

// ValidateLevel checks that a confidence level lies strictly inside (0,1)
func ValidateLevel(level float64) error {
	if math.IsNaN(level) || level <= 0 || level >= 1 {
		return errors.InvalidInput("confidence level must be in (0,1), got %v", level)
	}
	return nil
}

// ValidateAlpha checks that a significance level lies strictly inside (0,1)
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return errors.InvalidInput("significance level must be in (0,1), got %v", alpha)
	}
	return nil
}

// ZCritical returns the two-sided z critical value for any confidence level in (0,1).
func ZCritical(level float64) (float64, error) {
	if err := ValidateLevel(level); err != nil {
		return 0, err
	}
	return NormalQuantile(1 - (1-level)/2)
}

// ZCriticalFromTable returns the rounded textbook value for a tabulated level.
// Levels that are not in the table are rejected rather than mapped to 1.96.
func ZCriticalFromTable(level float64) (float64, error) {
	if err := ValidateLevel(level); err != nil {
		return 0, err
	}
	for _, row := range zTable {
		if math.Abs(row.level-level) < levelTolerance {
			return row.z, nil
		}
	}
	return 0, errors.InvalidInput("no tabulated z critical value for confidence level %v", level)
}

// TabulatedLevels lists the confidence levels that ZCriticalFromTable knows
func TabulatedLevels() []float64 {
	levels := make([]float64, len(zTable))
	for i, row := range zTable {
		levels[i] = row.level
	}
	return levels
}

// ZCriticalPreferTable uses the textbook table for tabulated levels and the
// inverse CDF otherwise, so worked examples reproduce the printed answers.
func ZCriticalPreferTable(level float64) (float64, error) {
	if z, err := ZCriticalFromTable(level); err == nil {
		return z, nil
	}
	return ZCritical(level)
}

// TCritical returns the two-sided t critical value for a confidence level and df.
func TCritical(level float64, df int) (float64, error) {
	if err := ValidateLevel(level); err != nil {
		return 0, err
	}
	return TQuantile(1-(1-level)/2, df)
}

// FCritical returns the upper-tail critical value F such that P(F > x) = alpha.
// The F quantile has no closed form, so the CDF is inverted by bisection.
func FCritical(alpha float64, df1, df2 int) (float64, error) {
	if err := ValidateAlpha(alpha); err != nil {
		return 0, err
	}
	if df1 < 1 || df2 < 1 {
		return 0, errors.DegenerateData("F distribution needs df1, df2 >= 1, got (%d, %d)", df1, df2)
	}

	target := 1 - alpha
	lo, hi := 0.0, 1.0
	for FCDF(hi, df1, df2) < target {
		lo = hi
		hi *= 2
		if hi > 1e12 {
			return 0, errors.InternalError("F critical value search did not converge")
		}
	}
	for i := 0; i < 200 && hi-lo > 1e-12*math.Max(1, hi); i++ {
		mid := (lo + hi) / 2
		if FCDF(mid, df1, df2) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
