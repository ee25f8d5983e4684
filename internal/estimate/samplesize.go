package estimate

import (
	"math"

	domain "statbook/domain/stats"
	"statbook/internal/distributions"
	"statbook/internal/errors"
)

// ConservativeProportion is the maximum-variance guess used when p is unknown
const ConservativeProportion = 0.5

// roundingSlack absorbs floating-point noise so an exact integer like 216.0000000001
// is not pushed to 217.
const roundingSlack = 1e-9

// SampleSizeForMean is the smallest n with z*sigma/sqrt(n) <= E, i.e. ceil((z*sigma/E)^2)
func SampleSizeForMean(marginOfError, sigma, level float64) (domain.SampleSizeResult, error) {
	if !isFinite(marginOfError) || marginOfError <= 0 {
		return domain.SampleSizeResult{}, errors.InvalidInput("margin of error must be > 0, got %v", marginOfError)
	}
	if !isFinite(sigma) || sigma < 0 {
		return domain.SampleSizeResult{}, errors.InvalidInput("standard deviation must be >= 0, got %v", sigma)
	}
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		return domain.SampleSizeResult{}, err
	}

	ratio := z * sigma / marginOfError
	return sampleSize(ratio*ratio, marginOfError, level, z)
}

// SampleSizeForProportion is ceil((z/E)^2 * p(1-p)). A negative p means "unknown"
// and uses ConservativeProportion.
func SampleSizeForProportion(marginOfError, p, level float64) (domain.SampleSizeResult, error) {
	if !isFinite(marginOfError) || marginOfError <= 0 {
		return domain.SampleSizeResult{}, errors.InvalidInput("margin of error must be > 0, got %v", marginOfError)
	}
	if math.IsNaN(p) || p > 1 {
		return domain.SampleSizeResult{}, errors.InvalidInput("planning proportion must be in [0,1], got %v", p)
	}
	if p < 0 {
		p = ConservativeProportion
	}
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		return domain.SampleSizeResult{}, err
	}

	ratio := z / marginOfError
	return sampleSize(ratio*ratio*p*(1-p), marginOfError, level, z)
}

func sampleSize(exact, marginOfError, level, z float64) (domain.SampleSizeResult, error) {
	if !isFinite(exact) || exact >= float64(math.MaxInt) {
		return domain.SampleSizeResult{}, errors.InvalidInput(
			"margin of error %v is too small: required sample size %v is not representable", marginOfError, exact)
	}
	n := int(math.Ceil(exact - roundingSlack))
	if n < 1 {
		n = 1
	}
	return domain.SampleSizeResult{
		N:               n,
		Exact:           exact,
		MarginOfError:   marginOfError,
		ConfidenceLevel: level,
		CriticalValue:   z,
	}, nil
}

// MarginOfErrorForMean is z*sigma/sqrt(n), the inverse of SampleSizeForMean
func MarginOfErrorForMean(n int, sigma, level float64) (float64, error) {
	if n < 1 {
		return 0, errors.InvalidInput("sample size must be >= 1, got %d", n)
	}
	if !isFinite(sigma) || sigma < 0 {
		return 0, errors.InvalidInput("standard deviation must be >= 0, got %v", sigma)
	}
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		return 0, err
	}
	return z * sigma / math.Sqrt(float64(n)), nil
}
