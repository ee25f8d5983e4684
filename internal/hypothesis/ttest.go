// Package hypothesis builds two-sided significance tests.
package hypothesis

import (
	"math"

	domain "statbook/domain/stats"
	"statbook/internal/descriptive"
	"statbook/internal/distributions"
	"statbook/internal/errors"
)

// OneSampleT tests H0: mu = mu0 against a two-sided alternative
func OneSampleT(sample []float64, mu0, alpha float64) (domain.HypothesisTestResult, error) {
	summary, err := descriptive.Summarize(sample)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	return OneSampleTFromSummary(summary.N, summary.Mean, summary.StdDev, mu0, alpha)
}

// OneSampleTFromSummary computes t = (mean - mu0)/(s/sqrt(n)) with n-1 df
func OneSampleTFromSummary(n int, mean, s, mu0, alpha float64) (domain.HypothesisTestResult, error) {
	if n < 2 {
		return domain.HypothesisTestResult{}, errors.DegenerateData("t test needs n >= 2, got %d", n)
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(mu0) || math.IsInf(mu0, 0) {
		return domain.HypothesisTestResult{}, errors.InvalidInput("mean and hypothesized mean must be finite")
	}
	if math.IsNaN(s) || s < 0 {
		return domain.HypothesisTestResult{}, errors.InvalidInput("sample standard deviation must be >= 0, got %v", s)
	}
	if s == 0 {
		return domain.HypothesisTestResult{}, errors.DegenerateData("t test is undefined for a sample with zero spread")
	}

	se := s / math.Sqrt(float64(n))
	return TwoSidedT(domain.TestOneSampleT, (mean-mu0)/se, n-1, alpha)
}

// TwoSidedT turns a t statistic into a decision at level alpha
func TwoSidedT(kind domain.TestKind, statistic float64, df int, alpha float64) (domain.HypothesisTestResult, error) {
	if err := distributions.ValidateAlpha(alpha); err != nil {
		return domain.HypothesisTestResult{}, err
	}
	crit, err := distributions.TCritical(1-alpha, df)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	p, err := distributions.TTestPValue(statistic, df)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	return domain.HypothesisTestResult{
		Kind:             kind,
		Statistic:        statistic,
		DegreesOfFreedom: df,
		PValue:           p,
		CriticalValue:    crit,
		Alpha:            alpha,
		Reject:           math.Abs(statistic) > crit,
	}, nil
}

// UpperTailF turns an F statistic into a decision at level alpha
func UpperTailF(kind domain.TestKind, statistic float64, df1, df2 int, alpha float64) (domain.HypothesisTestResult, error) {
	if err := distributions.ValidateAlpha(alpha); err != nil {
		return domain.HypothesisTestResult{}, err
	}
	crit, err := distributions.FCritical(alpha, df1, df2)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	p, err := distributions.FTestPValue(statistic, df1, df2)
	if err != nil {
		return domain.HypothesisTestResult{}, err
	}
	return domain.HypothesisTestResult{
		Kind:             kind,
		Statistic:        statistic,
		DegreesOfFreedom: df1,
		DenominatorDF:    df2,
		PValue:           p,
		CriticalValue:    crit,
		Alpha:            alpha,
		Reject:           statistic > crit,
	}, nil
}
