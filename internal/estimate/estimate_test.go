package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "statbook/domain/stats"
	"statbook/internal/errors"
	"statbook/internal/testkit"
)

func TestProportion_PollScenario(t *testing.T) {
	successes, n := testkit.PollCounts()
	ci, err := Proportion(successes, n, 0.95)
	require.NoError(t, err)

	assert.Equal(t, domain.IntervalProportion, ci.Kind)
	assert.InDelta(t, 0.52, ci.PointEstimate, 1e-12)
	assert.InDelta(t, math.Sqrt(0.52*0.48/1000), ci.StandardError, 1e-12)
	assert.InDelta(t, 0.01578, ci.StandardError, 1e-4)
	assert.InDelta(t, 0.4891, ci.Lower, 5e-4)
	assert.InDelta(t, 0.5509, ci.Upper, 5e-4)
	assert.Empty(t, ci.Warnings)
}

func TestProportion_ClampedAndWarned(t *testing.T) {
	ci, err := Proportion(1, 20, 0.95)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, ci.Lower, 0.0)
	assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
	assert.True(t, ci.HasWarning(domain.WarningNormalApproximation))

	assert.True(t, ci.HasWarning(domain.WarningBoundsClamped))
	assert.Equal(t, 0.0, ci.Lower)

	ci, err = Proportion(19, 20, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ci.Upper)
	assert.True(t, ci.HasWarning(domain.WarningBoundsClamped))

	// zero spread: the interval collapses onto 1 and nothing is cut
	ci, err = Proportion(20, 20, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ci.Upper)
	assert.True(t, ci.HasWarning(domain.WarningNormalApproximation))
	assert.False(t, ci.HasWarning(domain.WarningBoundsClamped))
}

func TestProportion_InvalidInput(t *testing.T) {
	_, err := Proportion(5, 0, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Proportion(11, 10, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = ProportionFromEstimate(1.2, 100, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Proportion(5, 10, 1.0)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestNormalApproximationCheck(t *testing.T) {
	_, ok := NormalApproximationCheck(0.5, 20)
	assert.True(t, ok)

	w, ok := NormalApproximationCheck(0.05, 100)
	assert.False(t, ok)
	assert.Equal(t, domain.WarningNormalApproximation, w.Code)
	assert.Contains(t, w.Message, "n*p=5.00")
}

func TestMeanKnownSigma(t *testing.T) {
	ci, err := MeanKnownSigma(100, 15, 25, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, ci.StandardError, 1e-12)
	assert.Equal(t, 1.960, ci.CriticalValue)
	assert.InDelta(t, 94.12, ci.Lower, 1e-9)
	assert.InDelta(t, 105.88, ci.Upper, 1e-9)

	_, err = MeanKnownSigma(100, 0, 25, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
	_, err = MeanKnownSigma(100, 15, 0, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestMeanUnknownSigma_ExamScores(t *testing.T) {
	ci, err := MeanUnknownSigma(testkit.ExamScores(), 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 82.3, ci.PointEstimate, 1e-9)
	assert.InDelta(t, 2.262, ci.CriticalValue, 1e-3)
	assert.InDelta(t, math.Sqrt(576.1/9)/math.Sqrt(10), ci.StandardError, 1e-9)
	assert.True(t, ci.Contains(82.3))

	_, err = MeanUnknownSigma([]float64{1}, 0.95)
	assert.True(t, errors.IsDegenerateData(err))
}

func TestIntervalWidthMonotonicity(t *testing.T) {
	// wider with higher confidence (larger critical value)
	prev := 0.0
	for _, level := range []float64{0.80, 0.90, 0.95, 0.99} {
		ci, err := MeanUnknownSigmaFromSummary(30, 50, 8, level)
		require.NoError(t, err)
		assert.Greater(t, ci.Width(), prev)
		prev = ci.Width()
	}

	// wider with larger standard deviation
	prev = 0.0
	for _, s := range []float64{1, 2, 5, 10} {
		ci, err := MeanUnknownSigmaFromSummary(30, 50, s, 0.95)
		require.NoError(t, err)
		assert.Greater(t, ci.Width(), prev)
		prev = ci.Width()
	}

	// narrower with larger n
	prev = math.Inf(1)
	for _, n := range []int{5, 10, 30, 100, 1000} {
		ci, err := MeanUnknownSigmaFromSummary(n, 50, 8, 0.95)
		require.NoError(t, err)
		assert.Less(t, ci.Width(), prev)
		assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
		assert.GreaterOrEqual(t, ci.Upper, ci.PointEstimate)
		prev = ci.Width()
	}
}

func TestBuild_RejectsNegativeInputs(t *testing.T) {
	_, err := Build(domain.IntervalMeanKnownSigma, 1, -1, 1.96, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Build(domain.IntervalMeanKnownSigma, 1, 1, -1.96, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Build(domain.IntervalMeanKnownSigma, math.NaN(), 1, 1.96, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSampleSizeForMean(t *testing.T) {
	res, err := SampleSizeForMean(2, 15, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 217, res.N)
	assert.InDelta(t, 216.09, res.Exact, 1e-9)

	// always rounds up, even when the exact value is just over an integer
	res, err = SampleSizeForMean(1, 1.02, 0.95)
	require.NoError(t, err)
	assert.Equal(t, int(math.Ceil(res.Exact)), res.N)
	assert.GreaterOrEqual(t, float64(res.N), res.Exact)
}

func TestSampleSizeForMean_HalvingQuadruples(t *testing.T) {
	for _, e := range []float64{0.5, 1, 2, 3, 5} {
		full, err := SampleSizeForMean(e, 12, 0.99)
		require.NoError(t, err)
		half, err := SampleSizeForMean(e/2, 12, 0.99)
		require.NoError(t, err)

		assert.InDelta(t, 4*full.Exact, half.Exact, 1e-6)
		assert.InDelta(t, float64(4*full.N), float64(half.N), 4, "E=%v", e)
	}
}

func TestSampleSizeForMean_InvalidInput(t *testing.T) {
	_, err := SampleSizeForMean(0, 15, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
	_, err = SampleSizeForMean(-1, 15, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
	_, err = SampleSizeForMean(2, -15, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
	_, err = SampleSizeForMean(2, 15, 95)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSampleSize_UnrepresentableIsRejected(t *testing.T) {
	_, err := SampleSizeForMean(1e-200, 15, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	// (1.96*15/1e-10)^2 is far beyond the largest int
	_, err = SampleSizeForMean(1e-10, 15, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = SampleSizeForProportion(1e-200, -1, 0.95)
	assert.True(t, errors.IsInvalidInput(err))

	res, err := SampleSizeForMean(1e-3, 15, 0.95)
	require.NoError(t, err)
	assert.Greater(t, res.N, 800_000_000)
}

func TestSampleSizeForProportion(t *testing.T) {
	// classic 3 percentage point poll: ceil((1.96/0.03)^2 * 0.25) = 1068
	res, err := SampleSizeForProportion(0.03, -1, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1068, res.N)

	// any known p needs no more than the conservative guess
	known, err := SampleSizeForProportion(0.03, 0.2, 0.95)
	require.NoError(t, err)
	assert.Less(t, known.N, res.N)

	_, err = SampleSizeForProportion(0.03, 1.5, 0.95)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestMarginOfErrorForMean_InvertsSampleSize(t *testing.T) {
	res, err := SampleSizeForMean(2, 15, 0.95)
	require.NoError(t, err)

	e, err := MarginOfErrorForMean(res.N, 15, 0.95)
	require.NoError(t, err)
	assert.LessOrEqual(t, e, 2.0)

	e, err = MarginOfErrorForMean(res.N-1, 15, 0.95)
	require.NoError(t, err)
	assert.Greater(t, e, 2.0)
}
