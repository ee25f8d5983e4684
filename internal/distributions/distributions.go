package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"statbook/internal/errors"
)

// NormalPDF is the density of N(mu, sigma^2) at x
func NormalPDF(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Prob(x)
}

// NormalCDF computes the cumulative distribution function for standard normal
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the quantile function (inverse CDF) for standard normal
func NormalQuantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, errors.InvalidInput("normal quantile probability must be in (0,1), got %v", p)
	}
	return distuv.UnitNormal.Quantile(p), nil
}

func studentsT(df float64) distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
}

// TPDF is the density of Student's t with df degrees of freedom
func TPDF(x float64, df int) float64 {
	return studentsT(float64(df)).Prob(x)
}

// TCDF is the cumulative distribution function of Student's t
func TCDF(x float64, df int) float64 {
	return studentsT(float64(df)).CDF(x)
}

// TQuantile is the inverse CDF of Student's t
func TQuantile(p float64, df int) (float64, error) {
	if df < 1 {
		return 0, errors.DegenerateData("t distribution needs df >= 1, got %d", df)
	}
	if !(p > 0 && p < 1) {
		return 0, errors.InvalidInput("t quantile probability must be in (0,1), got %v", p)
	}
	return studentsT(float64(df)).Quantile(p), nil
}

// TTestPValue computes the two-tailed p-value for a t statistic
func TTestPValue(tStatistic float64, degreesOfFreedom int) (float64, error) {
	if degreesOfFreedom < 1 {
		return 0, errors.DegenerateData("t test needs df >= 1, got %d", degreesOfFreedom)
	}
	if math.IsNaN(tStatistic) {
		return 0, errors.InvalidInput("t statistic is NaN")
	}
	// Survival is computed via the lower tail of -|t| to avoid cancellation for large |t|.
	p := 2 * studentsT(float64(degreesOfFreedom)).CDF(-math.Abs(tStatistic))
	return clamp01(p), nil
}

// FPDF is the density of the F distribution with (df1, df2) degrees of freedom
func FPDF(x float64, df1, df2 int) float64 {
	return distuv.F{D1: float64(df1), D2: float64(df2)}.Prob(x)
}

// FCDF is the cumulative distribution function of the F distribution
func FCDF(x float64, df1, df2 int) float64 {
	return distuv.F{D1: float64(df1), D2: float64(df2)}.CDF(x)
}

// FTestPValue computes the upper-tail p-value for an F statistic (ANOVA, regression)
func FTestPValue(fStatistic float64, df1, df2 int) (float64, error) {
	if df1 < 1 || df2 < 1 {
		return 0, errors.DegenerateData("F test needs df1, df2 >= 1, got (%d, %d)", df1, df2)
	}
	if math.IsNaN(fStatistic) || fStatistic < 0 {
		return 0, errors.InvalidInput("F statistic must be >= 0, got %v", fStatistic)
	}
	return clamp01(1 - FCDF(fStatistic, df1, df2)), nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
