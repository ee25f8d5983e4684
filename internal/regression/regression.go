// Package regression fits simple linear regression by ordinary least squares and
// derives the ANOVA decomposition, slope/F tests, and mean-response and
// prediction intervals from the fit.
package regression

import (
	"math"

	domain "statbook/domain/stats"
	"statbook/internal/descriptive"
	"statbook/internal/distributions"
	"statbook/internal/errors"
	"statbook/internal/estimate"
	"statbook/internal/hypothesis"
)

// MinObservations is the smallest n with residual degrees of freedom n-2 >= 1
const MinObservations = 3

// identityTolerance is the relative tolerance for SST = SSR + SSE
const identityTolerance = 1e-6

// Fit computes the OLS line for paired samples x and y
func Fit(x, y []float64) (domain.RegressionFit, error) {
	if len(x) != len(y) {
		return domain.RegressionFit{}, errors.InvalidInput("x and y lengths differ: %d vs %d", len(x), len(y))
	}
	if err := descriptive.ValidateSample(x); err != nil {
		return domain.RegressionFit{}, errors.Wrap(err, "x")
	}
	if err := descriptive.ValidateSample(y); err != nil {
		return domain.RegressionFit{}, errors.Wrap(err, "y")
	}
	n := len(x)
	if n < MinObservations {
		return domain.RegressionFit{}, errors.DegenerateData("regression needs n >= %d, got %d", MinObservations, n)
	}

	nf := float64(n)
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / nf
	meanY := sumY / nf

	// Centered sums are numerically safer than Σxy − ΣxΣy/n and equal to it algebraically.
	var sxx, sxy float64
	for i := range x {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if !isFinite(meanX) || !isFinite(meanY) || !isFinite(sxx) || !isFinite(sxy) {
		return domain.RegressionFit{}, errors.DegenerateData("sums of x and y overflow; rescale the data")
	}
	if sxx <= 0 {
		return domain.RegressionFit{}, errors.DegenerateData("all x values are identical; slope is undefined")
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	fit := domain.RegressionFit{
		Slope:     slope,
		Intercept: intercept,
		N:         n,
		MeanX:     meanX,
		MeanY:     meanY,
		Sxx:       sxx,
		Sxy:       sxy,
	}
	fit.SST, fit.SSR, fit.SSE = sumsOfSquares(x, y, fit)
	if !isFinite(fit.SST) || !isFinite(fit.SSR) || !isFinite(fit.SSE) {
		return domain.RegressionFit{}, errors.DegenerateData("sums of squares overflow; rescale the data")
	}
	fit.MSE = fit.SSE / float64(n-2)
	fit.ResidualStdErr = math.Sqrt(fit.MSE)
	if fit.SST > 0 {
		fit.RSquared = fit.SSR / fit.SST
	}
	return fit, nil
}

// Predict returns the fitted value at x
func Predict(fit domain.RegressionFit, x float64) float64 {
	return fit.Intercept + fit.Slope*x
}

// sumsOfSquares measures deviations around the sample mean of y itself, not a
// mean carried on the fit, so a hand-edited fit cannot mask a broken identity.
func sumsOfSquares(x, y []float64, fit domain.RegressionFit) (sst, ssr, sse float64) {
	meanY := 0.0
	for _, v := range y {
		meanY += v
	}
	meanY /= float64(len(y))

	for i := range y {
		yHat := Predict(fit, x[i])
		sst += (y[i] - meanY) * (y[i] - meanY)
		ssr += (yHat - meanY) * (yHat - meanY)
		sse += (y[i] - yHat) * (y[i] - yHat)
	}
	return sst, ssr, sse
}

// ANOVA decomposes the variation in y around the supplied line. The line must be
// the OLS fit of the same data: a line fit any other way breaks SST = SSR + SSE
// and is rejected.
func ANOVA(x, y []float64, fit domain.RegressionFit) (domain.ANOVATable, error) {
	if len(x) != len(y) || len(x) != fit.N {
		return domain.ANOVATable{}, errors.InvalidInput("data length %d/%d does not match fit n=%d", len(x), len(y), fit.N)
	}
	if fit.N < MinObservations {
		return domain.ANOVATable{}, errors.DegenerateData("ANOVA needs n >= %d, got %d", MinObservations, fit.N)
	}

	sst, ssr, sse := sumsOfSquares(x, y, fit)
	if !identityHolds(sst, ssr, sse) {
		return domain.ANOVATable{}, errors.InvalidInput(
			"SST=%.6g differs from SSR+SSE=%.6g; the line is not the least-squares fit of this data", sst, ssr+sse)
	}

	dfErr := fit.N - 2
	table := domain.ANOVATable{
		SST:          sst,
		SSR:          ssr,
		SSE:          sse,
		DFRegression: 1,
		DFError:      dfErr,
		DFTotal:      fit.N - 1,
		MSR:          ssr,
		MSE:          sse / float64(dfErr),
	}
	// F stays 0 for a perfect fit (MSE = 0), where the ratio is undefined.
	if table.MSE > 0 {
		table.F = table.MSR / table.MSE
	}
	return table, nil
}

func identityHolds(sst, ssr, sse float64) bool {
	scale := math.Max(sst, 1e-12)
	return math.Abs(sst-(ssr+sse))/scale <= identityTolerance
}

// SlopeStdErr is s/sqrt(Sxx), the standard error of the slope
func SlopeStdErr(fit domain.RegressionFit) (float64, error) {
	if err := checkFit(fit); err != nil {
		return 0, err
	}
	return fit.ResidualStdErr / math.Sqrt(fit.Sxx), nil
}

// SlopeTest tests H0: slope = 0 with t = b1/SE(b1) and n-2 df
func SlopeTest(fit domain.RegressionFit, alpha float64) (domain.HypothesisTestResult, error) {
	se, err := SlopeStdErr(fit)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	if se == 0 {
		return domain.HypothesisTestResult{}, errors.DegenerateData("residuals are all zero; slope test is undefined")
	}
	return hypothesis.TwoSidedT(domain.TestRegressionSlope, fit.Slope/se, fit.N-2, alpha)
}

// FTest tests overall significance with F = MSR/MSE on (1, n-2) df.
// For one predictor F equals the square of the slope t statistic.
func FTest(fit domain.RegressionFit, alpha float64) (domain.HypothesisTestResult, error) {
	if err := checkFit(fit); err != nil {
		return domain.HypothesisTestResult{}, err
	}
	if fit.MSE == 0 {
		return domain.HypothesisTestResult{}, errors.DegenerateData("residuals are all zero; F test is undefined")
	}
	return hypothesis.UpperTailF(domain.TestRegressionF, fit.SSR/fit.MSE, 1, fit.N-2, alpha)
}

// MeanResponseInterval is the confidence interval for E[y | x0]
func MeanResponseInterval(fit domain.RegressionFit, x0, level float64) (domain.IntervalEstimate, error) {
	return responseInterval(fit, x0, level, 0, domain.IntervalMeanResponse)
}

// PredictionInterval is the interval for a single new observation at x0
func PredictionInterval(fit domain.RegressionFit, x0, level float64) (domain.IntervalEstimate, error) {
	return responseInterval(fit, x0, level, 1, domain.IntervalPrediction)
}

func responseInterval(fit domain.RegressionFit, x0, level, extra float64, kind domain.IntervalKind) (domain.IntervalEstimate, error) {
	if err := checkFit(fit); err != nil {
		return domain.IntervalEstimate{}, err
	}
	if math.IsNaN(x0) || math.IsInf(x0, 0) {
		return domain.IntervalEstimate{}, errors.InvalidInput("x0 must be finite, got %v", x0)
	}
	t, err := distributions.TCritical(level, fit.N-2)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	dx := x0 - fit.MeanX
	se := math.Sqrt(fit.MSE * (extra + 1/float64(fit.N) + dx*dx/fit.Sxx))
	return estimate.Build(kind, Predict(fit, x0), se, t, level)
}

func checkFit(fit domain.RegressionFit) error {
	if fit.N < MinObservations {
		return errors.DegenerateData("regression needs n >= %d, got %d", MinObservations, fit.N)
	}
	if fit.Sxx <= 0 {
		return errors.DegenerateData("fit has Sxx <= 0")
	}
	if fit.MSE < 0 || math.IsNaN(fit.MSE) {
		return errors.InvalidInput("fit has invalid MSE %v", fit.MSE)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
