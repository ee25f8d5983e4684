package ui

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "statbook/domain/stats"
	"statbook/internal/charts"
	"statbook/internal/config"
	"statbook/internal/errors"
	"statbook/internal/estimate"
	"statbook/internal/regression"
	"statbook/internal/testkit"
)

const curvePoints = 121

// renderChart writes scene as SVG using the requested or configured size
func (s *Server) renderChart(c *gin.Context, kind string, scene charts.Scene, err error) {
	if err != nil {
		s.fail(c, kind, err)
		return
	}
	width, err := chartSize(c, "width", s.config.Charts.Width)
	if err != nil {
		s.fail(c, kind, err)
		return
	}
	height, err := chartSize(c, "height", s.config.Charts.Height)
	if err != nil {
		s.fail(c, kind, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderSVG(scene, width, height, &buf); err != nil {
		s.fail(c, kind, err)
		return
	}
	computations.WithLabelValues(kind, "ok").Inc()
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func chartSize(c *gin.Context, key string, def int) (int, error) {
	v, err := queryInt(c, key, def)
	if err != nil {
		return 0, err
	}
	if v < config.MinChartSize || v > config.MaxChartSize {
		return 0, errors.InvalidInput("%s must be in [%d, %d], got %d", key, config.MinChartSize, config.MaxChartSize, v)
	}
	return v, nil
}

func (s *Server) handleNormalChart(c *gin.Context) {
	mu, err := queryFloat(c, "mu", 0)
	if err != nil {
		s.fail(c, "chart_normal", err)
		return
	}
	sigma, err := queryFloat(c, "sigma", 1)
	if err != nil {
		s.fail(c, "chart_normal", err)
		return
	}
	scene, err := charts.NormalCurve(mu, sigma, curvePoints)
	s.renderChart(c, "chart_normal", scene, err)
}

func (s *Server) handleTChart(c *gin.Context) {
	df, err := queryInt(c, "df", 5)
	if err != nil {
		s.fail(c, "chart_t", err)
		return
	}
	scene, err := charts.TCurve(df, curvePoints)
	s.renderChart(c, "chart_t", scene, err)
}

// handleIntervalChart shades a proportion interval by default, or a known-sigma
// mean interval when sigma is given
func (s *Server) handleIntervalChart(c *gin.Context) {
	level, err := queryFloat(c, "level", s.config.Stats.DefaultConfidence)
	if err != nil {
		s.fail(c, "chart_interval", err)
		return
	}

	var ci domain.IntervalEstimate
	if c.Query("sigma") != "" {
		ci, err = s.meanIntervalFromQuery(c, level)
	} else {
		defSuccesses, defN := testkit.PollCounts()
		var successes, n int
		if successes, err = queryInt(c, "successes", defSuccesses); err == nil {
			if n, err = queryInt(c, "n", defN); err == nil {
				ci, err = estimate.Proportion(successes, n, level)
			}
		}
	}
	if err != nil {
		s.fail(c, "chart_interval", err)
		return
	}
	scene, err := charts.IntervalScene(ci, curvePoints)
	s.renderChart(c, "chart_interval", scene, err)
}

func (s *Server) meanIntervalFromQuery(c *gin.Context, level float64) (domain.IntervalEstimate, error) {
	mean, err := queryFloat(c, "mean", 0)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	sigma, err := queryFloat(c, "sigma", 1)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	n, err := queryInt(c, "n", 30)
	if err != nil {
		return domain.IntervalEstimate{}, err
	}
	return estimate.MeanKnownSigma(mean, sigma, n, level)
}

func (s *Server) handleSampleSizeChart(c *gin.Context) {
	params := map[string]float64{"sigma": 15, "e_min": 1, "e_max": 10}
	for key, def := range params {
		v, err := queryFloat(c, key, def)
		if err != nil {
			s.fail(c, "chart_sample_size", err)
			return
		}
		params[key] = v
	}
	level, err := queryFloat(c, "level", s.config.Stats.DefaultConfidence)
	if err != nil {
		s.fail(c, "chart_sample_size", err)
		return
	}
	scene, err := charts.SampleSizeTradeoff(params["sigma"], level, params["e_min"], params["e_max"], 60)
	s.renderChart(c, "chart_sample_size", scene, err)
}

// handleRegressionChart plots the study-hours data, or a freshly generated
// data set when a seed is given
func (s *Server) handleRegressionChart(c *gin.Context) {
	level, err := queryFloat(c, "level", s.config.Stats.DefaultConfidence)
	if err != nil {
		s.fail(c, "chart_regression", err)
		return
	}

	x, y := testkit.StudyHours()
	if c.Query("seed") != "" {
		seed, err := queryInt(c, "seed", 0)
		if err != nil {
			s.fail(c, "chart_regression", err)
			return
		}
		x, y, err = testkit.NewGenerator(int64(seed)).RegressionPairs(30, 40, 5, 6, 0, 10)
		if err != nil {
			s.fail(c, "chart_regression", err)
			return
		}
	}

	fit, err := regression.Fit(x, y)
	if err != nil {
		s.fail(c, "chart_regression", err)
		return
	}
	scene, err := charts.RegressionScene(x, y, fit, level, 50)
	s.renderChart(c, "chart_regression", scene, err)
}
