package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "statbook/domain/stats"
	"statbook/internal/config"
	"statbook/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(config.Default(), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribe_DefaultsToExamScores(t *testing.T) {
	out, err := run(t, "describe", "--json")
	require.NoError(t, err)

	var summary domain.SummaryStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 10, summary.N)
	assert.InDelta(t, 82.3, summary.Mean, 1e-9)
}

func TestDescribe_Text(t *testing.T) {
	out, err := run(t, "describe", "--values", "1,2,2,3")
	require.NoError(t, err)
	assert.Contains(t, out, "mean      2.0000")
	assert.Contains(t, out, "modes     [2]")
}

func TestIntervalProportion(t *testing.T) {
	out, err := run(t, "interval", "proportion", "--successes", "520", "--n", "1000", "--json")
	require.NoError(t, err)

	var ci domain.IntervalEstimate
	require.NoError(t, json.Unmarshal([]byte(out), &ci))
	assert.InDelta(t, 0.4891, ci.Lower, 1e-3)
	assert.InDelta(t, 0.5509, ci.Upper, 1e-3)

	out, err = run(t, "interval", "proportion", "--successes", "3", "--n", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")

	_, err = run(t, "interval", "proportion", "--n", "20")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestIntervalMean_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exam.csv")
	require.NoError(t, os.WriteFile(path, []byte("score\n78\n85\n92\n67\n88\n91\n73\n84\n79\n86\n"), 0o600))

	out, err := run(t, "interval", "mean", "--file", path, "--column", "score", "--json")
	require.NoError(t, err)

	var ci domain.IntervalEstimate
	require.NoError(t, json.Unmarshal([]byte(out), &ci))
	assert.Equal(t, domain.IntervalMeanUnknownSigma, ci.Kind)
	assert.InDelta(t, 82.3, ci.PointEstimate, 1e-9)

	_, err = run(t, "interval", "mean", "--file", path)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSampleSize(t *testing.T) {
	out, err := run(t, "samplesize", "mean", "--margin", "2", "--sigma", "15", "--json")
	require.NoError(t, err)
	var res domain.SampleSizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 217, res.N)

	out, err = run(t, "samplesize", "proportion", "--margin", "0.03")
	require.NoError(t, err)
	assert.Contains(t, out, "required n  1068")
}

func TestTTest(t *testing.T) {
	out, err := run(t, "ttest", "--n", "16", "--mean", "17.318", "--s", "0.968", "--mu0", "16.6")
	require.NoError(t, err)
	assert.Contains(t, out, "reject H0")
	assert.NotContains(t, out, "fail to reject")
}

func TestRegress(t *testing.T) {
	out, err := run(t, "regress", "--x0", "5", "--json")
	require.NoError(t, err)

	var report regressionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Prediction)
	assert.Greater(t, report.Prediction.Width(), report.MeanResponse.Width())
	assert.Equal(t, 10, report.ANOVA.DFError)

	_, err = run(t, "regress", "--xs", "1,2", "--ys", "3,4")
	assert.True(t, errors.IsDegenerateData(err))
}

func TestSimulate(t *testing.T) {
	out, err := run(t, "simulate", "--trials", "400", "--seed", "9", "--json")
	require.NoError(t, err)

	var res struct {
		Trials   int     `json:"trials"`
		Captured int     `json:"captured"`
		Rate     float64 `json:"rate"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 400, res.Trials)
	assert.InDelta(t, 0.95, res.Rate, 0.05)
}

func TestCritical(t *testing.T) {
	out, err := run(t, "critical", "t", "--df", "15", "--json")
	require.NoError(t, err)
	var res struct {
		Value float64 `json:"value"`
		DF    int     `json:"degrees_of_freedom"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 2.131, res.Value, 1e-3)
	assert.Equal(t, 15, res.DF)

	out, err = run(t, "critical", "z", "--level", "0.95", "--json")
	require.NoError(t, err)
	var z struct {
		Value float64 `json:"value"`
		Exact float64 `json:"exact"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &z))
	assert.Equal(t, 1.960, z.Value)
	assert.InDelta(t, 1.959964, z.Exact, 1e-5)

	_, err = run(t, "critical", "f")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestChart(t *testing.T) {
	out, err := run(t, "chart", "normal", "--mu", "100", "--sigma", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")

	path := filepath.Join(t.TempDir(), "reg.svg")
	_, err = run(t, "chart", "regression", "--out", path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<svg")
}
