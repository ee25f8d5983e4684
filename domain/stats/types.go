package stats

// ============================================================================
// RECORDS (recomputed on every interaction, never mutated in place)
// ============================================================================

// SummaryStatistics describes a single sample
// INVARIANTS:
// - N >= 1
// - Variance and StdDev use the n-1 divisor and are >= 0
type SummaryStatistics struct {
	N        int       `json:"n"`
	Sum      float64   `json:"sum"`
	Mean     float64   `json:"mean"`
	Variance float64   `json:"variance"`
	StdDev   float64   `json:"std_dev"`
	Median   float64   `json:"median"`
	Modes    []float64 `json:"modes,omitempty"` // Empty when every value occurs once
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
}

// IntervalKind names the estimator an interval was built for
type IntervalKind string

const (
	IntervalMeanKnownSigma   IntervalKind = "mean_known_sigma"
	IntervalMeanUnknownSigma IntervalKind = "mean_unknown_sigma"
	IntervalProportion       IntervalKind = "proportion"
	IntervalMeanResponse     IntervalKind = "regression_mean_response"
	IntervalPrediction       IntervalKind = "regression_prediction"
)

// IntervalEstimate is a point estimate with a symmetric margin of error
// INVARIANTS:
// - Lower <= PointEstimate <= Upper
// - Proportion intervals are clamped to [0,1]
type IntervalEstimate struct {
	Kind            IntervalKind `json:"kind"`
	PointEstimate   float64      `json:"point_estimate"`
	Lower           float64      `json:"lower"`
	Upper           float64      `json:"upper"`
	StandardError   float64      `json:"standard_error"`
	CriticalValue   float64      `json:"critical_value"`
	ConfidenceLevel float64      `json:"confidence_level"`
	MarginOfError   float64      `json:"margin_of_error"`
	Warnings        []Warning    `json:"warnings,omitempty"`
}

// Width returns Upper - Lower
func (e IntervalEstimate) Width() float64 {
	return e.Upper - e.Lower
}

// Contains reports whether v lies inside the closed interval
func (e IntervalEstimate) Contains(v float64) bool {
	return v >= e.Lower && v <= e.Upper
}

// HasWarning reports whether the interval carries the given warning code
func (e IntervalEstimate) HasWarning(code WarningCode) bool {
	for _, w := range e.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// RegressionFit is an ordinary least squares line y = Intercept + Slope*x
// INVARIANTS:
// - N >= 3
// - SST = SSR + SSE within floating-point tolerance
type RegressionFit struct {
	Slope          float64 `json:"slope"`
	Intercept      float64 `json:"intercept"`
	N              int     `json:"n"`
	MeanX          float64 `json:"mean_x"`
	MeanY          float64 `json:"mean_y"`
	Sxx            float64 `json:"sxx"`
	Sxy            float64 `json:"sxy"`
	SSE            float64 `json:"sse"`
	SSR            float64 `json:"ssr"`
	SST            float64 `json:"sst"`
	MSE            float64 `json:"mse"`              // SSE/(n-2)
	ResidualStdErr float64 `json:"residual_std_err"` // sqrt(MSE)
	RSquared       float64 `json:"r_squared"`
}

// ANOVATable is the sum-of-squares decomposition for simple linear regression
type ANOVATable struct {
	SST          float64 `json:"sst"`
	SSR          float64 `json:"ssr"`
	SSE          float64 `json:"sse"`
	DFRegression int     `json:"df_regression"`
	DFError      int     `json:"df_error"`
	DFTotal      int     `json:"df_total"`
	MSR          float64 `json:"msr"`
	MSE          float64 `json:"mse"`
	F            float64 `json:"f"`
}

// TestKind names the hypothesis test that produced a result
type TestKind string

const (
	TestOneSampleT      TestKind = "one_sample_t"
	TestRegressionSlope TestKind = "regression_slope_t"
	TestRegressionF     TestKind = "regression_f"
)

// HypothesisTestResult is the outcome of a test at significance level Alpha
// INVARIANTS:
// - DegreesOfFreedom >= 1 (numerator df for F tests)
// - PValue in [0,1]
// - Reject == |Statistic| > CriticalValue
type HypothesisTestResult struct {
	Kind             TestKind `json:"kind"`
	Statistic        float64  `json:"statistic"`
	DegreesOfFreedom int      `json:"degrees_of_freedom"`
	DenominatorDF    int      `json:"denominator_df,omitempty"` // F tests only
	PValue           float64  `json:"p_value"`
	CriticalValue    float64  `json:"critical_value"`
	Alpha            float64  `json:"alpha"`
	Reject           bool     `json:"reject"`
}

// SampleSizeResult is the minimum sample size for a target margin of error
type SampleSizeResult struct {
	N               int     `json:"n"`
	Exact           float64 `json:"exact"` // Value before rounding up
	MarginOfError   float64 `json:"margin_of_error"`
	ConfidenceLevel float64 `json:"confidence_level"`
	CriticalValue   float64 `json:"critical_value"`
}

// WarningCode represents structured, non-fatal precondition failures
type WarningCode string

const (
	WarningNormalApproximation WarningCode = "NORMAL_APPROXIMATION" // n*p or n*(1-p) below 10
	WarningBoundsClamped       WarningCode = "BOUNDS_CLAMPED"       // interval cut back to [0,1]
)

// Warning is attached to a result that was computed but may be unreliable
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
