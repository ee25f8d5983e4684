// Package descriptive computes summary statistics for a single sample.
package descriptive

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	domain "statbook/domain/stats"
	"statbook/internal/errors"
)

// ValidateSample rejects empty samples and non-finite values
func ValidateSample(sample []float64) error {
	if len(sample) == 0 {
		return errors.InvalidInput("sample is empty")
	}
	for i, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.InvalidInput("sample value at index %d is not finite: %v", i, v)
		}
	}
	return nil
}

func requireSpread(sample []float64) error {
	if len(sample) < 2 {
		return errors.DegenerateData("variance needs at least 2 observations, got %d", len(sample))
	}
	return nil
}

// Summarize computes the full SummaryStatistics record for a sample
func Summarize(sample []float64) (domain.SummaryStatistics, error) {
	if err := ValidateSample(sample); err != nil {
		return domain.SummaryStatistics{}, err
	}
	if err := requireSpread(sample); err != nil {
		return domain.SummaryStatistics{}, err
	}

	sum, err := stats.Sum(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "sum")
	}
	mean, err := stats.Mean(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "mean")
	}
	variance, err := stats.SampleVariance(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "variance")
	}
	median, err := stats.Median(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "median")
	}
	minV, err := stats.Min(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "min")
	}
	maxV, err := stats.Max(sample)
	if err != nil {
		return domain.SummaryStatistics{}, errors.Wrap(err, "max")
	}
	modes, err := Modes(sample)
	if err != nil {
		return domain.SummaryStatistics{}, err
	}

	return domain.SummaryStatistics{
		N:        len(sample),
		Sum:      sum,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Median:   median,
		Modes:    modes,
		Min:      minV,
		Max:      maxV,
	}, nil
}

// Mean is the arithmetic mean; defined for n >= 1
func Mean(sample []float64) (float64, error) {
	if err := ValidateSample(sample); err != nil {
		return 0, err
	}
	mean, err := stats.Mean(sample)
	if err != nil {
		return 0, errors.Wrap(err, "mean")
	}
	return mean, nil
}

// Variance is the sample variance with Bessel's correction; defined for n >= 2
func Variance(sample []float64) (float64, error) {
	if err := ValidateSample(sample); err != nil {
		return 0, err
	}
	if err := requireSpread(sample); err != nil {
		return 0, err
	}
	v, err := stats.SampleVariance(sample)
	if err != nil {
		return 0, errors.Wrap(err, "sample variance")
	}
	return v, nil
}

// StdDev is the square root of Variance
func StdDev(sample []float64) (float64, error) {
	v, err := Variance(sample)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Median is the middle value (mean of the two middle values for even n)
func Median(sample []float64) (float64, error) {
	if err := ValidateSample(sample); err != nil {
		return 0, err
	}
	m, err := stats.Median(sample)
	if err != nil {
		return 0, errors.Wrap(err, "median")
	}
	return m, nil
}

// Modes returns the most frequent value(s) in ascending order, or an empty slice
// when no value repeats. Ties between all distinct values (e.g. [1,1,2,2]) report
// every tied value.
func Modes(sample []float64) ([]float64, error) {
	if err := ValidateSample(sample); err != nil {
		return nil, err
	}
	if len(sample) == 1 {
		return []float64{sample[0]}, nil
	}

	counts := make(map[float64]int, len(sample))
	maxCount := 0
	for _, v := range sample {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
		}
	}
	if maxCount == 1 {
		return []float64{}, nil
	}

	modes := make([]float64, 0)
	for v, c := range counts {
		if c == maxCount {
			modes = append(modes, v)
		}
	}
	sort.Float64s(modes)
	return modes, nil
}

// SumSquaredDeviations is sum((x - mean)^2)
func SumSquaredDeviations(sample []float64) (float64, error) {
	mean, err := Mean(sample)
	if err != nil {
		return 0, err
	}
	ss := 0.0
	for _, v := range sample {
		d := v - mean
		ss += d * d
	}
	return ss, nil
}
