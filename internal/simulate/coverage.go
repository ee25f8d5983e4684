// Package simulate runs repeated-sampling experiments, such as checking how often
// confidence intervals capture the true mean.
package simulate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	domain "statbook/domain/stats"
	"statbook/internal/distributions"
	"statbook/internal/errors"
	"statbook/internal/estimate"
	"statbook/internal/testkit"
)

// CoverageConfig configures a confidence-interval coverage experiment
type CoverageConfig struct {
	Trials        int     `json:"trials" yaml:"trials"`
	SampleSize    int     `json:"sample_size" yaml:"sample_size"`
	Mu            float64 `json:"mu" yaml:"mu"`
	Sigma         float64 `json:"sigma" yaml:"sigma"`
	Level         float64 `json:"level" yaml:"level"`
	Seed          int64   `json:"seed" yaml:"seed"`
	Workers       int     `json:"-" yaml:"workers"`
	BatchSize     int     `json:"-" yaml:"batch_size"` // Feeds the per-batch seeds
	KeepIntervals int     `json:"keep_intervals" yaml:"keep_intervals"` // How many intervals to return for plotting
}

// DefaultCoverageConfig mirrors the "100 intervals" classroom demonstration
func DefaultCoverageConfig() CoverageConfig {
	return CoverageConfig{
		Trials:        100,
		SampleSize:    25,
		Mu:            50,
		Sigma:         10,
		Level:         0.95,
		Seed:          42,
		Workers:       4,
		BatchSize:     250,
		KeepIntervals: 100,
	}
}

// CoverageResult summarizes how many intervals contained Mu
type CoverageResult struct {
	Trials    int                       `json:"trials"`
	Captured  int                       `json:"captured"`
	Rate      float64                   `json:"rate"`
	MeanWidth float64                   `json:"mean_width"`
	Intervals []domain.IntervalEstimate `json:"intervals,omitempty"`
}

func (c CoverageConfig) validate() error {
	if c.Trials < 1 {
		return errors.InvalidInput("trials must be >= 1, got %d", c.Trials)
	}
	if c.SampleSize < 2 {
		return errors.DegenerateData("each trial needs a sample of at least 2, got %d", c.SampleSize)
	}
	if !(c.Sigma > 0) {
		return errors.InvalidInput("sigma must be > 0, got %v", c.Sigma)
	}
	if c.KeepIntervals < 0 {
		return errors.InvalidInput("keep_intervals must be >= 0, got %d", c.KeepIntervals)
	}
	return distributions.ValidateLevel(c.Level)
}

type batchResult struct {
	captured  int
	widths    []float64
	intervals []domain.IntervalEstimate
}

// batchSeed derives an independent seed per batch so the outcome does not
// depend on which worker ran which batch. It does depend on BatchSize.
func batchSeed(base int64, batch int) int64 {
	return base*1_000_003 + int64(batch)*7_919 + 1
}

// Coverage draws Trials samples of size SampleSize from N(Mu, Sigma^2), builds a
// t interval for each and counts how many contain Mu.
func Coverage(ctx context.Context, cfg CoverageConfig) (CoverageResult, error) {
	if err := cfg.validate(); err != nil {
		return CoverageResult{}, err
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = DefaultCoverageConfig().BatchSize
	}
	batches := (cfg.Trials + batchSize - 1) / batchSize

	start := time.Now()
	results := make([]batchResult, batches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for b := 0; b < batches; b++ {
		first := b * batchSize
		count := min(batchSize, cfg.Trials-first)
		keep := max(0, min(count, cfg.KeepIntervals-first))

		g.Go(func() error {
			res, err := runBatch(ctx, cfg, testkit.NewGenerator(batchSeed(cfg.Seed, b)), count, keep)
			if err != nil {
				return errors.Wrapf(err, "coverage batch %d", b)
			}
			results[b] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CoverageResult{}, err
	}

	out := CoverageResult{Trials: cfg.Trials}
	widths := make([]float64, 0, cfg.Trials)
	for _, res := range results {
		out.Captured += res.captured
		widths = append(widths, res.widths...)
		out.Intervals = append(out.Intervals, res.intervals...)
	}
	out.Rate = float64(out.Captured) / float64(out.Trials)
	out.MeanWidth = stat.Mean(widths, nil)

	slog.Debug("coverage simulation complete",
		"trials", cfg.Trials,
		"batches", batches,
		"workers", workers,
		"rate", out.Rate,
		"duration", time.Since(start))
	return out, nil
}

func runBatch(ctx context.Context, cfg CoverageConfig, gen *testkit.Generator, count, keep int) (batchResult, error) {
	res := batchResult{widths: make([]float64, 0, count)}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return batchResult{}, err
		}
		sample, err := gen.NormalSample(cfg.SampleSize, cfg.Mu, cfg.Sigma)
		if err != nil {
			return batchResult{}, err
		}
		ci, err := estimate.MeanUnknownSigma(sample, cfg.Level)
		if err != nil {
			return batchResult{}, err
		}
		if ci.Contains(cfg.Mu) {
			res.captured++
		}
		res.widths = append(res.widths, ci.Width())
		if i < keep {
			res.intervals = append(res.intervals, ci)
		}
	}
	return res, nil
}
