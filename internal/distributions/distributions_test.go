package distributions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbook/internal/errors"
)

func TestZCritical_InverseCDF(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0.80, 1.2816},
		{0.90, 1.6449},
		{0.95, 1.9600},
		{0.98, 2.3263},
		{0.99, 2.5758},
		{0.998, 3.0902},
	}

	for _, tt := range tests {
		z, err := ZCritical(tt.level)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, z, 1e-3, "level %v", tt.level)
	}
}

func TestZCriticalFromTable(t *testing.T) {
	z, err := ZCriticalFromTable(0.95)
	require.NoError(t, err)
	assert.Equal(t, 1.960, z)

	z, err = ZCriticalFromTable(0.998)
	require.NoError(t, err)
	assert.Equal(t, 3.090, z)

	// No silent fallback to 1.96
	_, err = ZCriticalFromTable(0.93)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestZCriticalPreferTable(t *testing.T) {
	z, err := ZCriticalPreferTable(0.95)
	require.NoError(t, err)
	assert.Equal(t, 1.960, z)

	z, err = ZCriticalPreferTable(0.93)
	require.NoError(t, err)
	assert.InDelta(t, 1.8119, z, 1e-3)
}

func TestLevelValidation(t *testing.T) {
	for _, level := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := ZCritical(level)
		assert.True(t, errors.IsInvalidInput(err), "level %v", level)

		_, err = TCritical(level, 10)
		assert.True(t, errors.IsInvalidInput(err), "level %v", level)
	}
}

func TestTCritical(t *testing.T) {
	tests := []struct {
		level float64
		df    int
		want  float64
	}{
		{0.95, 9, 2.262},
		{0.95, 15, 2.131},
		{0.99, 15, 2.947},
		{0.90, 30, 1.697},
	}

	for _, tt := range tests {
		got, err := TCritical(tt.level, tt.df)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-3, "level=%v df=%d", tt.level, tt.df)
	}

	_, err := TCritical(0.95, 0)
	assert.True(t, errors.IsDegenerateData(err))
}

func TestTCritical_ApproachesZ(t *testing.T) {
	z, _ := ZCritical(0.95)
	prev := math.Inf(1)
	for _, df := range []int{2, 5, 10, 30, 100, 1000} {
		tc, err := TCritical(0.95, df)
		require.NoError(t, err)
		assert.Greater(t, tc, z)
		assert.Less(t, tc, prev)
		prev = tc
	}
	assert.InDelta(t, z, prev, 2e-3)
}

func TestTTestPValue(t *testing.T) {
	tc, err := TCritical(0.95, 15)
	require.NoError(t, err)

	p, err := TTestPValue(tc, 15)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, p, 1e-6)

	pNeg, err := TTestPValue(-tc, 15)
	require.NoError(t, err)
	assert.InDelta(t, p, pNeg, 1e-12)

	p0, err := TTestPValue(0, 15)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p0, 1e-12)

	_, err = TTestPValue(1, 0)
	assert.True(t, errors.IsDegenerateData(err))
}

func TestFCritical_MatchesSquaredT(t *testing.T) {
	for _, df2 := range []int{3, 8, 15, 40} {
		tc, err := TCritical(0.95, df2)
		require.NoError(t, err)

		fc, err := FCritical(0.05, 1, df2)
		require.NoError(t, err)
		assert.InEpsilon(t, tc*tc, fc, 1e-5, "df2=%d", df2)
	}
}

func TestFTestPValue(t *testing.T) {
	fc, err := FCritical(0.05, 2, 20)
	require.NoError(t, err)
	assert.InDelta(t, 3.4928, fc, 1e-3)

	p, err := FTestPValue(fc, 2, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, p, 1e-6)

	_, err = FTestPValue(-1, 1, 10)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestDensities(t *testing.T) {
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), NormalPDF(0, 0, 1), 1e-12)
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-12)
	assert.InDelta(t, 0.5, TCDF(0, 7), 1e-12)
	// t is heavier-tailed than the normal
	assert.Less(t, TPDF(0, 3), NormalPDF(0, 0, 1))
	assert.Greater(t, TPDF(3, 3), NormalPDF(3, 0, 1))
	assert.Greater(t, FPDF(1, 3, 10), 0.0)
}
