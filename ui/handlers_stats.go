package ui

import (
	stderrors "errors"
	"io"

	"github.com/gin-gonic/gin"

	domain "statbook/domain/stats"
	"statbook/internal/descriptive"
	"statbook/internal/distributions"
	"statbook/internal/errors"
	"statbook/internal/estimate"
	"statbook/internal/hypothesis"
	"statbook/internal/regression"
	"statbook/internal/simulate"
)

type sampleRequest struct {
	Sample []float64 `json:"sample" binding:"required"`
}

func (s *Server) handleDescribe(c *gin.Context) {
	var req sampleRequest
	if !s.bind(c, "describe", &req) {
		return
	}
	summary, err := descriptive.Summarize(req.Sample)
	if err != nil {
		s.fail(c, "describe", err)
		return
	}
	s.respond(c, "describe", summary)
}

// meanRequest accepts either raw data or a summary (n, mean, s)
type meanRequest struct {
	Sample []float64 `json:"sample"`
	N      int       `json:"n"`
	Mean   float64   `json:"mean"`
	S      float64   `json:"s"`
	Sigma  float64   `json:"sigma"` // Known population SD; 0 means unknown
	Level  float64   `json:"level"`
	Mu0    float64   `json:"mu0"`
	Alpha  float64   `json:"alpha"`
}

func (s *Server) handleMeanInterval(c *gin.Context) {
	var req meanRequest
	if !s.bind(c, "interval_mean", &req) {
		return
	}
	level := s.level(req.Level)

	var (
		ci  domain.IntervalEstimate
		err error
	)
	switch {
	case req.Sigma != 0:
		mean, n := req.Mean, req.N
		if len(req.Sample) > 0 {
			n = len(req.Sample)
			mean, err = descriptive.Mean(req.Sample)
			if err != nil {
				break
			}
		}
		ci, err = estimate.MeanKnownSigma(mean, req.Sigma, n, level)
	case len(req.Sample) > 0:
		ci, err = estimate.MeanUnknownSigma(req.Sample, level)
	default:
		ci, err = estimate.MeanUnknownSigmaFromSummary(req.N, req.Mean, req.S, level)
	}
	if err != nil {
		s.fail(c, "interval_mean", err)
		return
	}
	s.respond(c, "interval_mean", ci)
}

type proportionRequest struct {
	Successes *int     `json:"successes"`
	PHat      *float64 `json:"p_hat"`
	N         int      `json:"n"`
	Level     float64  `json:"level"`
}

func (s *Server) handleProportionInterval(c *gin.Context) {
	var req proportionRequest
	if !s.bind(c, "interval_proportion", &req) {
		return
	}
	level := s.level(req.Level)

	var (
		ci  domain.IntervalEstimate
		err error
	)
	switch {
	case req.Successes != nil:
		ci, err = estimate.Proportion(*req.Successes, req.N, level)
	case req.PHat != nil:
		ci, err = estimate.ProportionFromEstimate(*req.PHat, req.N, level)
	default:
		err = errors.InvalidInput("either successes or p_hat is required")
	}
	if err != nil {
		s.fail(c, "interval_proportion", err)
		return
	}
	s.respond(c, "interval_proportion", ci)
}

type sampleSizeRequest struct {
	MarginOfError float64  `json:"margin_of_error"`
	Sigma         float64  `json:"sigma"`
	P             *float64 `json:"p"` // Planning proportion; omitted means unknown
	Level         float64  `json:"level"`
}

func (s *Server) handleSampleSizeMean(c *gin.Context) {
	var req sampleSizeRequest
	if !s.bind(c, "samplesize_mean", &req) {
		return
	}
	res, err := estimate.SampleSizeForMean(req.MarginOfError, req.Sigma, s.level(req.Level))
	if err != nil {
		s.fail(c, "samplesize_mean", err)
		return
	}
	s.respond(c, "samplesize_mean", res)
}

func (s *Server) handleSampleSizeProportion(c *gin.Context) {
	var req sampleSizeRequest
	if !s.bind(c, "samplesize_proportion", &req) {
		return
	}
	p := -1.0
	if req.P != nil {
		p = *req.P
		if p < 0 {
			s.fail(c, "samplesize_proportion", errors.InvalidInput("planning proportion must be in [0,1], got %v", p))
			return
		}
	}
	res, err := estimate.SampleSizeForProportion(req.MarginOfError, p, s.level(req.Level))
	if err != nil {
		s.fail(c, "samplesize_proportion", err)
		return
	}
	s.respond(c, "samplesize_proportion", res)
}

func (s *Server) handleMeanTest(c *gin.Context) {
	var req meanRequest
	if !s.bind(c, "ttest", &req) {
		return
	}
	alpha := s.alpha(req.Alpha)

	var (
		res domain.HypothesisTestResult
		err error
	)
	if len(req.Sample) > 0 {
		res, err = hypothesis.OneSampleT(req.Sample, req.Mu0, alpha)
	} else {
		res, err = hypothesis.OneSampleTFromSummary(req.N, req.Mean, req.S, req.Mu0, alpha)
	}
	if err != nil {
		s.fail(c, "ttest", err)
		return
	}
	s.respond(c, "ttest", res)
}

type regressionRequest struct {
	X     []float64 `json:"x" binding:"required"`
	Y     []float64 `json:"y" binding:"required"`
	X0    *float64  `json:"x0"` // Optional point for mean-response and prediction intervals
	Level float64   `json:"level"`
	Alpha float64   `json:"alpha"`
}

type regressionResponse struct {
	Fit          domain.RegressionFit        `json:"fit"`
	ANOVA        domain.ANOVATable           `json:"anova"`
	SlopeTest    domain.HypothesisTestResult `json:"slope_test"`
	FTest        domain.HypothesisTestResult `json:"f_test"`
	MeanResponse *domain.IntervalEstimate    `json:"mean_response,omitempty"`
	Prediction   *domain.IntervalEstimate    `json:"prediction,omitempty"`
}

// analyzeRegression runs everything the regression lesson shows for one data set
func analyzeRegression(x, y []float64, x0 *float64, level, alpha float64) (regressionResponse, error) {
	fit, err := regression.Fit(x, y)
	if err != nil {
		return regressionResponse{}, err
	}
	out := regressionResponse{Fit: fit}
	if out.ANOVA, err = regression.ANOVA(x, y, fit); err != nil {
		return regressionResponse{}, err
	}
	if out.SlopeTest, err = regression.SlopeTest(fit, alpha); err != nil {
		return regressionResponse{}, err
	}
	if out.FTest, err = regression.FTest(fit, alpha); err != nil {
		return regressionResponse{}, err
	}
	if x0 == nil {
		return out, nil
	}

	ci, err := regression.MeanResponseInterval(fit, *x0, level)
	if err != nil {
		return regressionResponse{}, err
	}
	pi, err := regression.PredictionInterval(fit, *x0, level)
	if err != nil {
		return regressionResponse{}, err
	}
	out.MeanResponse, out.Prediction = &ci, &pi
	return out, nil
}

func (s *Server) handleRegression(c *gin.Context) {
	var req regressionRequest
	if !s.bind(c, "regression", &req) {
		return
	}
	res, err := analyzeRegression(req.X, req.Y, req.X0, s.level(req.Level), s.alpha(req.Alpha))
	if err != nil {
		s.fail(c, "regression", err)
		return
	}
	s.respond(c, "regression", res)
}

func (s *Server) handleCoverage(c *gin.Context) {
	cfg := simulate.DefaultCoverageConfig()
	cfg.Seed = s.config.Data.Seed
	if err := c.ShouldBindJSON(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		s.badRequest(c, "coverage", err)
		return
	}
	cfg.Workers = s.config.Simulation.Workers
	cfg.BatchSize = s.config.Simulation.BatchSize
	if err := checkMax("trials", cfg.Trials, s.config.Simulation.MaxTrials); err != nil {
		s.fail(c, "coverage", err)
		return
	}
	if err := checkMax("sample_size", cfg.SampleSize, s.config.Data.MaxSampleSize); err != nil {
		s.fail(c, "coverage", err)
		return
	}

	res, err := simulate.Coverage(c.Request.Context(), cfg)
	if err != nil {
		s.fail(c, "coverage", err)
		return
	}
	s.respond(c, "coverage", res)
}

type criticalValue struct {
	Level            float64 `json:"level"`
	DegreesOfFreedom int     `json:"degrees_of_freedom,omitempty"`
	Value            float64 `json:"value"`
	Exact            float64 `json:"exact,omitempty"`
	Tabulated        bool    `json:"tabulated,omitempty"`
}

func (s *Server) handleZCritical(c *gin.Context) {
	level, err := queryFloat(c, "level", s.config.Stats.DefaultConfidence)
	if err != nil {
		s.fail(c, "critical_z", err)
		return
	}
	// value is what the interval and sample size endpoints use; exact is the inverse CDF
	z, err := distributions.ZCriticalPreferTable(level)
	if err != nil {
		s.fail(c, "critical_z", err)
		return
	}
	exact, err := distributions.ZCritical(level)
	if err != nil {
		s.fail(c, "critical_z", err)
		return
	}
	_, tableErr := distributions.ZCriticalFromTable(level)
	s.respond(c, "critical_z", criticalValue{Level: level, Value: z, Exact: exact, Tabulated: tableErr == nil})
}

func (s *Server) handleTCritical(c *gin.Context) {
	level, err := queryFloat(c, "level", s.config.Stats.DefaultConfidence)
	if err != nil {
		s.fail(c, "critical_t", err)
		return
	}
	df, err := queryInt(c, "df", 0)
	if err != nil {
		s.fail(c, "critical_t", err)
		return
	}
	t, err := distributions.TCritical(level, df)
	if err != nil {
		s.fail(c, "critical_t", err)
		return
	}
	s.respond(c, "critical_t", criticalValue{Level: level, DegreesOfFreedom: df, Value: t})
}
