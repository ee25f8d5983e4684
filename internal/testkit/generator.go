package testkit

import (
	"math"
	"math/rand"

	"statbook/internal/errors"
)

// GeneratorConfig configures synthetic lesson data
type GeneratorConfig struct {
	Seed int64 `json:"seed"`
}

// DefaultGeneratorConfig returns the seed the lessons use when none is configured
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42}
}

// Generator produces reproducible example datasets from an injected seed.
// A Generator is not safe for concurrent use; give each goroutine its own.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed int64) *Generator {
	return NewGeneratorWithConfig(GeneratorConfig{Seed: seed})
}

// NewGeneratorWithConfig creates a generator from a config
func NewGeneratorWithConfig(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Seed returns the seed the generator was created with
func (g *Generator) Seed() int64 {
	return g.config.Seed
}

// Float64 returns a uniform value in [0,1)
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Normal draws one value from N(mu, sigma^2)
func (g *Generator) Normal(mu, sigma float64) float64 {
	return mu + sigma*g.rng.NormFloat64()
}

// NormalSample draws n independent values from N(mu, sigma^2)
func (g *Generator) NormalSample(n int, mu, sigma float64) ([]float64, error) {
	if n < 1 {
		return nil, errors.InvalidInput("sample size must be >= 1, got %d", n)
	}
	if sigma < 0 || math.IsNaN(sigma) {
		return nil, errors.InvalidInput("standard deviation must be >= 0, got %v", sigma)
	}
	sample := make([]float64, n)
	for i := range sample {
		sample[i] = g.Normal(mu, sigma)
	}
	return sample, nil
}

// RegressionPairs draws n points with x uniform in [xMin, xMax] and
// y = intercept + slope*x + N(0, noise^2)
func (g *Generator) RegressionPairs(n int, intercept, slope, noise, xMin, xMax float64) ([]float64, []float64, error) {
	if n < 3 {
		return nil, nil, errors.InvalidInput("regression data needs n >= 3, got %d", n)
	}
	if noise < 0 {
		return nil, nil, errors.InvalidInput("noise must be >= 0, got %v", noise)
	}
	if !(xMax > xMin) {
		return nil, nil, errors.InvalidInput("x range is empty: [%v, %v]", xMin, xMax)
	}
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xMin + g.rng.Float64()*(xMax-xMin)
		y[i] = intercept + slope*x[i] + noise*g.rng.NormFloat64()
	}
	return x, y, nil
}

// ExamScores draws n whole-number scores around mean, clamped to [0,100]
func (g *Generator) ExamScores(n int, mean, sd float64) ([]float64, error) {
	raw, err := g.NormalSample(n, mean, sd)
	if err != nil {
		return nil, err
	}
	for i, v := range raw {
		raw[i] = math.Max(0, math.Min(100, math.Round(v)))
	}
	return raw, nil
}

// BernoulliCount returns the number of successes in n trials with success probability p
func (g *Generator) BernoulliCount(n int, p float64) (int, error) {
	if n < 1 {
		return 0, errors.InvalidInput("trial count must be >= 1, got %d", n)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, errors.InvalidInput("success probability must be in [0,1], got %v", p)
	}
	successes := 0
	for i := 0; i < n; i++ {
		if g.rng.Float64() < p {
			successes++
		}
	}
	return successes, nil
}
