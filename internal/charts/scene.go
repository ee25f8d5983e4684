// Package charts maps computed statistics to plot-ready scenes (curves, shaded
// intervals, scatter points) and renders them to SVG.
package charts

import (
	"math"

	domain "statbook/domain/stats"
	"statbook/internal/distributions"
	"statbook/internal/errors"
	"statbook/internal/estimate"
	"statbook/internal/regression"
)

// SeriesKind controls how a series is drawn
type SeriesKind string

const (
	SeriesLine   SeriesKind = "line"
	SeriesArea   SeriesKind = "area"
	SeriesPoints SeriesKind = "points"
	SeriesDashed SeriesKind = "dashed"
)

// Series is a named sequence of (x, y) coordinates
type Series struct {
	Name string     `json:"name"`
	Kind SeriesKind `json:"kind"`
	X    []float64  `json:"x"`
	Y    []float64  `json:"y"`
}

// Band marks an interval on the x axis (e.g. a confidence interval)
type Band struct {
	Name  string  `json:"name"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Scene is everything a widget needs to draw one chart
type Scene struct {
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
	Bands  []Band   `json:"bands,omitempty"`
}

// MinPoints is the fewest samples a curve may be drawn with
const MinPoints = 2

func checkPoints(points int) error {
	if points < MinPoints {
		return errors.InvalidInput("a curve needs at least %d points, got %d", MinPoints, points)
	}
	return nil
}

func linspace(lo, hi float64, points int) []float64 {
	xs := make([]float64, points)
	step := (hi - lo) / float64(points-1)
	for i := range xs {
		xs[i] = lo + step*float64(i)
	}
	return xs
}

func curve(name string, kind SeriesKind, xs []float64, f func(float64) float64) Series {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return Series{Name: name, Kind: kind, X: xs, Y: ys}
}

// NormalCurve is the N(mu, sigma^2) density over mu ± 4 sigma
func NormalCurve(mu, sigma float64, points int) (Scene, error) {
	if err := checkPoints(points); err != nil {
		return Scene{}, err
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return Scene{}, errors.InvalidInput("standard deviation must be > 0, got %v", sigma)
	}
	xs := linspace(mu-4*sigma, mu+4*sigma, points)
	return Scene{
		Title:  "Normal distribution",
		XLabel: "x",
		YLabel: "density",
		Series: []Series{curve("normal", SeriesLine, xs, func(x float64) float64 {
			return distributions.NormalPDF(x, mu, sigma)
		})},
	}, nil
}

// TCurve overlays the Student's t density with df degrees of freedom on the standard normal
func TCurve(df, points int) (Scene, error) {
	if err := checkPoints(points); err != nil {
		return Scene{}, err
	}
	if df < 1 {
		return Scene{}, errors.DegenerateData("t distribution needs df >= 1, got %d", df)
	}
	xs := linspace(-4, 4, points)
	return Scene{
		Title:  "Student's t vs standard normal",
		XLabel: "t",
		YLabel: "density",
		Series: []Series{
			curve("t", SeriesLine, xs, func(x float64) float64 { return distributions.TPDF(x, df) }),
			curve("standard normal", SeriesDashed, xs, func(x float64) float64 { return distributions.NormalPDF(x, 0, 1) }),
		},
	}, nil
}

// IntervalScene draws the approximate sampling distribution N(estimate, SE^2)
// with the interval shaded underneath it.
func IntervalScene(interval domain.IntervalEstimate, points int) (Scene, error) {
	if err := checkPoints(points); err != nil {
		return Scene{}, err
	}
	se := interval.StandardError
	if !(se > 0) {
		return Scene{}, errors.DegenerateData("interval has zero standard error; nothing to draw")
	}
	center := interval.PointEstimate
	density := func(x float64) float64 { return distributions.NormalPDF(x, center, se) }

	xs := linspace(center-4*se, center+4*se, points)
	shaded := linspace(interval.Lower, interval.Upper, points)
	return Scene{
		Title:  "Confidence interval",
		XLabel: "estimate",
		YLabel: "density",
		Series: []Series{
			curve("sampling distribution", SeriesLine, xs, density),
			curve("interval", SeriesArea, shaded, density),
		},
		Bands: []Band{{Name: "interval", Lower: interval.Lower, Upper: interval.Upper}},
	}, nil
}

// SampleSizeTradeoff plots required n against margin of error over [eMin, eMax]
func SampleSizeTradeoff(sigma, level, eMin, eMax float64, points int) (Scene, error) {
	if err := checkPoints(points); err != nil {
		return Scene{}, err
	}
	if !(eMin > 0) || !(eMax > eMin) {
		return Scene{}, errors.InvalidInput("margin of error range must satisfy 0 < min < max, got [%v, %v]", eMin, eMax)
	}

	xs := linspace(eMin, eMax, points)
	ys := make([]float64, len(xs))
	for i, e := range xs {
		res, err := estimate.SampleSizeForMean(e, sigma, level)
		if err != nil {
			return Scene{}, err
		}
		ys[i] = float64(res.N)
	}
	return Scene{
		Title:  "Sample size vs margin of error",
		XLabel: "margin of error",
		YLabel: "required n",
		Series: []Series{{Name: "required n", Kind: SeriesLine, X: xs, Y: ys}},
	}, nil
}

// RegressionScene draws the data, the fitted line and the confidence and
// prediction bands across the observed x range.
func RegressionScene(x, y []float64, fit domain.RegressionFit, level float64, points int) (Scene, error) {
	if err := checkPoints(points); err != nil {
		return Scene{}, err
	}
	if len(x) != len(y) || len(x) == 0 {
		return Scene{}, errors.InvalidInput("x and y must be non-empty and equal length")
	}

	lo, hi := x[0], x[0]
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	xs := linspace(lo, hi, points)

	line := make([]float64, points)
	ciLo, ciHi := make([]float64, points), make([]float64, points)
	piLo, piHi := make([]float64, points), make([]float64, points)
	for i, x0 := range xs {
		ci, err := regression.MeanResponseInterval(fit, x0, level)
		if err != nil {
			return Scene{}, err
		}
		pi, err := regression.PredictionInterval(fit, x0, level)
		if err != nil {
			return Scene{}, err
		}
		line[i] = ci.PointEstimate
		ciLo[i], ciHi[i] = ci.Lower, ci.Upper
		piLo[i], piHi[i] = pi.Lower, pi.Upper
	}

	return Scene{
		Title:  "Simple linear regression",
		XLabel: "x",
		YLabel: "y",
		Series: []Series{
			{Name: "observations", Kind: SeriesPoints, X: x, Y: y},
			{Name: "fitted line", Kind: SeriesLine, X: xs, Y: line},
			{Name: "confidence lower", Kind: SeriesDashed, X: xs, Y: ciLo},
			{Name: "confidence upper", Kind: SeriesDashed, X: xs, Y: ciHi},
			{Name: "prediction lower", Kind: SeriesDashed, X: xs, Y: piLo},
			{Name: "prediction upper", Kind: SeriesDashed, X: xs, Y: piHi},
		},
	}, nil
}
