// Package estimate builds confidence intervals and sample-size requirements.
package estimate

import (
	"fmt"
	"math"

	domain "statbook/domain/stats"
	"statbook/internal/descriptive"
	"statbook/internal/distributions"
	"statbook/internal/errors"
)

// MinExpectedCount is the n*p and n*(1-p) threshold for the normal approximation
const MinExpectedCount = 10.0

// Build assembles an IntervalEstimate as point ± crit*se.
func Build(kind domain.IntervalKind, point, se, crit, level float64) (domain.IntervalEstimate, error) {
	if err := distributions.ValidateLevel(level); err != nil {
		return domain.IntervalEstimate{}, err
	}
	if !isFinite(point) {
		return domain.IntervalEstimate{}, errors.InvalidInput("point estimate is not finite: %v", point)
	}
	if !isFinite(se) || se < 0 {
		return domain.IntervalEstimate{}, errors.InvalidInput("standard error must be finite and >= 0, got %v", se)
	}
	if !isFinite(crit) || crit < 0 {
		return domain.IntervalEstimate{}, errors.InvalidInput("critical value must be finite and >= 0, got %v", crit)
	}

	margin := crit * se
	return domain.IntervalEstimate{
		Kind:            kind,
		PointEstimate:   point,
		Lower:           point - margin,
		Upper:           point + margin,
		StandardError:   se,
		CriticalValue:   crit,
		ConfidenceLevel: level,
		MarginOfError:   margin,
	}, nil
}

// MeanKnownSigma is the z interval for a mean when the population sigma is known
func MeanKnownSigma(mean, sigma float64, n int, level float64) (domain.IntervalEstimate, error) {
	if n < 1 {
		return domain.IntervalEstimate{}, errors.InvalidInput("sample size must be >= 1, got %d", n)
	}
	if !isFinite(sigma) || sigma <= 0 {
		return domain.IntervalEstimate{}, errors.InvalidInput("population standard deviation must be > 0, got %v", sigma)
	}
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	se := sigma / math.Sqrt(float64(n))
	return Build(domain.IntervalMeanKnownSigma, mean, se, z, level)
}

// MeanUnknownSigma is the t interval for the mean of a sample
func MeanUnknownSigma(sample []float64, level float64) (domain.IntervalEstimate, error) {
	summary, err := descriptive.Summarize(sample)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	return MeanUnknownSigmaFromSummary(summary.N, summary.Mean, summary.StdDev, level)
}

// MeanUnknownSigmaFromSummary is the t interval from n, sample mean and sample standard deviation
func MeanUnknownSigmaFromSummary(n int, mean, s, level float64) (domain.IntervalEstimate, error) {
	if n < 2 {
		return domain.IntervalEstimate{}, errors.DegenerateData("t interval needs n >= 2, got %d", n)
	}
	if !isFinite(s) || s < 0 {
		return domain.IntervalEstimate{}, errors.InvalidInput("sample standard deviation must be >= 0, got %v", s)
	}
	t, err := distributions.TCritical(level, n-1)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	se := s / math.Sqrt(float64(n))
	return Build(domain.IntervalMeanUnknownSigma, mean, se, t, level)
}

// Proportion is the Wald interval for successes out of n trials, clamped to [0,1]
func Proportion(successes, n int, level float64) (domain.IntervalEstimate, error) {
	if n < 1 {
		return domain.IntervalEstimate{}, errors.InvalidInput("trial count must be >= 1, got %d", n)
	}
	if successes < 0 || successes > n {
		return domain.IntervalEstimate{}, errors.InvalidInput("successes must be in [0, %d], got %d", n, successes)
	}
	return ProportionFromEstimate(float64(successes)/float64(n), n, level)
}

// ProportionFromEstimate builds the interval from a reported sample proportion
func ProportionFromEstimate(pHat float64, n int, level float64) (domain.IntervalEstimate, error) {
	if n < 1 {
		return domain.IntervalEstimate{}, errors.InvalidInput("trial count must be >= 1, got %d", n)
	}
	if math.IsNaN(pHat) || pHat < 0 || pHat > 1 {
		return domain.IntervalEstimate{}, errors.InvalidInput("sample proportion must be in [0,1], got %v", pHat)
	}
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}

	se := math.Sqrt(pHat * (1 - pHat) / float64(n))
	interval, err := Build(domain.IntervalProportion, pHat, se, z, level)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	if interval.Lower < 0 || interval.Upper > 1 {
		interval.Warnings = append(interval.Warnings, domain.Warning{
			Code:    domain.WarningBoundsClamped,
			Message: fmt.Sprintf("interval [%.4f, %.4f] clamped to [0, 1]", interval.Lower, interval.Upper),
		})
		interval.Lower = math.Max(0, interval.Lower)
		interval.Upper = math.Min(1, interval.Upper)
	}

	if w, ok := NormalApproximationCheck(pHat, n); !ok {
		interval.Warnings = append(interval.Warnings, w)
	}
	return interval, nil
}

// NormalApproximationCheck reports whether n*p and n*(1-p) both reach MinExpectedCount.
// When they do not, the returned warning explains which count fell short.
func NormalApproximationCheck(p float64, n int) (domain.Warning, bool) {
	successes := float64(n) * p
	failures := float64(n) * (1 - p)
	if successes >= MinExpectedCount && failures >= MinExpectedCount {
		return domain.Warning{}, true
	}
	return domain.Warning{
		Code: domain.WarningNormalApproximation,
		Message: fmt.Sprintf("normal approximation unreliable: n*p=%.2f, n*(1-p)=%.2f (need both >= %.0f)",
			successes, failures, MinExpectedCount),
	}, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
