package simulate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbook/internal/errors"
)

func TestCoverage_NearNominalLevel(t *testing.T) {
	cfg := DefaultCoverageConfig()
	cfg.Trials = 4000
	cfg.SampleSize = 15

	res, err := Coverage(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 4000, res.Trials)
	assert.InDelta(t, 0.95, res.Rate, 0.02)
	assert.Len(t, res.Intervals, cfg.KeepIntervals)
	assert.Greater(t, res.MeanWidth, 0.0)
}

func TestCoverage_IndependentOfWorkerCount(t *testing.T) {
	cfg := DefaultCoverageConfig()
	cfg.Trials = 1000
	cfg.BatchSize = 64

	cfg.Workers = 1
	serial, err := Coverage(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := Coverage(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, serial.Captured, parallel.Captured)
	assert.Equal(t, serial.MeanWidth, parallel.MeanWidth)
	assert.Equal(t, serial.Intervals, parallel.Intervals)
}

func TestCoverage_HigherLevelCapturesMore(t *testing.T) {
	cfg := DefaultCoverageConfig()
	cfg.Trials = 2000

	cfg.Level = 0.80
	low, err := Coverage(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Level = 0.99
	high, err := Coverage(context.Background(), cfg)
	require.NoError(t, err)

	assert.Greater(t, high.Rate, low.Rate)
	assert.Greater(t, high.MeanWidth, low.MeanWidth)
}

func TestCoverage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Coverage(ctx, DefaultCoverageConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoverage_InvalidConfig(t *testing.T) {
	cfg := DefaultCoverageConfig()
	cfg.Trials = 0
	_, err := Coverage(context.Background(), cfg)
	assert.True(t, errors.IsInvalidInput(err))

	cfg = DefaultCoverageConfig()
	cfg.SampleSize = 1
	_, err = Coverage(context.Background(), cfg)
	assert.True(t, errors.IsDegenerateData(err))

	cfg = DefaultCoverageConfig()
	cfg.Level = 1.2
	_, err = Coverage(context.Background(), cfg)
	assert.True(t, errors.IsInvalidInput(err))
}
