package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	domain "statbook/domain/stats"
	"statbook/internal/errors"
	"statbook/internal/testkit"
)

func TestFit_MatchesGonum(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	assert.InDelta(t, slope, fit.Slope, 1e-9)
	assert.InDelta(t, intercept, fit.Intercept, 1e-9)
	assert.InDelta(t, stat.RSquared(x, y, nil, intercept, slope), fit.RSquared, 1e-9)
	assert.Equal(t, len(x), fit.N)
}

func TestFit_TextbookSums(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	n := float64(len(x))
	var sx, sy, sxy, sxx float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sxx += x[i] * x[i]
	}
	assert.InDelta(t, sxy-sx*sy/n, fit.Sxy, 1e-8)
	assert.InDelta(t, sxx-sx*sx/n, fit.Sxx, 1e-8)
	assert.InDelta(t, sy/n-fit.Slope*sx/n, fit.Intercept, 1e-9)
}

func TestANOVA_IdentityHolds(t *testing.T) {
	gen := testkit.NewGenerator(11)
	for i := 0; i < 25; i++ {
		x, y, err := gen.RegressionPairs(5+i*3, 10, 1.5, 4, -5, 20)
		require.NoError(t, err)

		fit, err := Fit(x, y)
		require.NoError(t, err)
		assert.InEpsilon(t, fit.SST, fit.SSR+fit.SSE, 1e-6)

		table, err := ANOVA(x, y, fit)
		require.NoError(t, err)
		assert.InEpsilon(t, table.SST, table.SSR+table.SSE, 1e-6)
		assert.Equal(t, 1, table.DFRegression)
		assert.Equal(t, fit.N-2, table.DFError)
		assert.Equal(t, fit.N-1, table.DFTotal)
	}
}

func TestANOVA_RejectsNonLeastSquaresLine(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	tweaked := fit
	tweaked.Slope += 0.75
	_, err = ANOVA(x, y, tweaked)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = ANOVA(x[:5], y[:5], fit)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFTest_EqualsSquaredSlopeT(t *testing.T) {
	gen := testkit.NewGenerator(21)
	for i := 0; i < 20; i++ {
		x, y, err := gen.RegressionPairs(8+i, 3, 0.2*float64(i), 5, 0, 10)
		require.NoError(t, err)
		fit, err := Fit(x, y)
		require.NoError(t, err)

		tRes, err := SlopeTest(fit, 0.05)
		require.NoError(t, err)
		fRes, err := FTest(fit, 0.05)
		require.NoError(t, err)

		assert.InEpsilon(t, tRes.Statistic*tRes.Statistic, fRes.Statistic, 1e-9)
		assert.InDelta(t, tRes.PValue, fRes.PValue, 1e-6)
		assert.Equal(t, tRes.Reject, fRes.Reject)
		assert.Equal(t, fit.N-2, tRes.DegreesOfFreedom)
		assert.Equal(t, 1, fRes.DegreesOfFreedom)
		assert.Equal(t, fit.N-2, fRes.DenominatorDF)
	}
}

func TestSlopeTest_StudyHours(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	res, err := SlopeTest(fit, 0.05)
	require.NoError(t, err)
	assert.Equal(t, domain.TestRegressionSlope, res.Kind)
	assert.True(t, res.Reject)
	assert.Less(t, res.PValue, 0.001)

	se, err := SlopeStdErr(fit)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(fit.SSE/float64(fit.N-2))/math.Sqrt(fit.Sxx), se, 1e-12)
}

func TestPredictionIntervalWiderThanConfidence(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	for _, level := range []float64{0.90, 0.95, 0.99} {
		for x0 := -2.0; x0 <= 12; x0 += 0.5 {
			ci, err := MeanResponseInterval(fit, x0, level)
			require.NoError(t, err)
			pi, err := PredictionInterval(fit, x0, level)
			require.NoError(t, err)

			assert.Equal(t, ci.PointEstimate, pi.PointEstimate)
			assert.Greater(t, pi.StandardError, ci.StandardError)
			assert.Greater(t, pi.Width(), ci.Width())
			assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
			assert.GreaterOrEqual(t, pi.Upper, pi.PointEstimate)
		}
	}
}

func TestMeanResponseInterval_NarrowestAtMeanX(t *testing.T) {
	x, y := testkit.StudyHours()
	fit, err := Fit(x, y)
	require.NoError(t, err)

	atMean, err := MeanResponseInterval(fit, fit.MeanX, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(fit.MSE/float64(fit.N)), atMean.StandardError, 1e-12)
	assert.InDelta(t, fit.MeanY, atMean.PointEstimate, 1e-9)

	away, err := MeanResponseInterval(fit, fit.MeanX+3, 0.95)
	require.NoError(t, err)
	assert.Greater(t, away.Width(), atMean.Width())
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{1, 2})
	assert.True(t, errors.IsDegenerateData(err))

	_, err = Fit([]float64{1, 2, 3}, []float64{1, 2})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Fit([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.True(t, errors.IsDegenerateData(err))

	_, err = Fit([]float64{1, 2, math.NaN()}, []float64{1, 2, 3})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFit_OverflowIsDegenerate(t *testing.T) {
	_, err := Fit([]float64{-1e200, 0, 1e200}, []float64{1, 2, 3})
	assert.True(t, errors.IsDegenerateData(err))

	_, err = Fit([]float64{1e308, 1e308, 1e307}, []float64{1, 2, 3})
	assert.True(t, errors.IsDegenerateData(err))

	_, err = Fit([]float64{1, 2, 3}, []float64{-1e200, 0, 1e200})
	assert.True(t, errors.IsDegenerateData(err))
}

func TestTests_PerfectFitIsDegenerate(t *testing.T) {
	fit, err := Fit([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2, fit.Slope, 1e-12)
	assert.InDelta(t, 1, fit.Intercept, 1e-12)

	if fit.SSE == 0 {
		_, err = SlopeTest(fit, 0.05)
		assert.True(t, errors.IsDegenerateData(err))
		_, err = FTest(fit, 0.05)
		assert.True(t, errors.IsDegenerateData(err))
	}
}
