package ui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"statbook/internal/dataset"
	"statbook/internal/descriptive"
	"statbook/internal/errors"
	"statbook/internal/testkit"
)

// maxUploadBytes caps uploaded data files
const maxUploadBytes = 8 << 20

type datasetView struct {
	Name      string    `json:"name"`
	Seed      *int64    `json:"seed,omitempty"`
	Values    []float64 `json:"values,omitempty"`
	X         []float64 `json:"x,omitempty"`
	Y         []float64 `json:"y,omitempty"`
	Successes int       `json:"successes,omitempty"`
	N         int       `json:"n,omitempty"`
}

// handleDataset serves the fixed data sets the lessons are written around
func (s *Server) handleDataset(c *gin.Context) {
	name := c.Param("name")
	switch name {
	case "exam-scores":
		s.respond(c, "dataset", datasetView{Name: name, Values: testkit.ExamScores()})
	case "study-hours":
		x, y := testkit.StudyHours()
		s.respond(c, "dataset", datasetView{Name: name, X: x, Y: y})
	case "poll":
		successes, n := testkit.PollCounts()
		s.respond(c, "dataset", datasetView{Name: name, Successes: successes, N: n})
	default:
		s.fail(c, "dataset", errors.NotFound("dataset "+name))
	}
}

// handleGenerate draws a reproducible synthetic data set. The same seed always
// returns the same values.
func (s *Server) handleGenerate(c *gin.Context) {
	kind := c.Param("kind")
	seed64, err := queryInt(c, "seed", int(s.config.Data.Seed))
	if err != nil {
		s.fail(c, "generate", err)
		return
	}
	seed := int64(seed64)
	gen := testkit.NewGenerator(seed)
	view := datasetView{Name: kind, Seed: &seed}

	switch kind {
	case "normal", "exam":
		var n int
		var mu, sigma float64
		if n, err = queryInt(c, "n", 25); err != nil {
			break
		}
		if err = checkMax("n", n, s.config.Data.MaxSampleSize); err != nil {
			break
		}
		defMu, defSigma := 50.0, 10.0
		if kind == "exam" {
			defMu, defSigma = 78, 9
		}
		if mu, err = queryFloat(c, "mu", defMu); err != nil {
			break
		}
		if sigma, err = queryFloat(c, "sigma", defSigma); err != nil {
			break
		}
		if kind == "exam" {
			view.Values, err = gen.ExamScores(n, mu, sigma)
		} else {
			view.Values, err = gen.NormalSample(n, mu, sigma)
		}
	case "regression":
		params := map[string]float64{"intercept": 40, "slope": 5, "noise": 6, "x_min": 0, "x_max": 10}
		for key, def := range params {
			if params[key], err = queryFloat(c, key, def); err != nil {
				break
			}
		}
		if err != nil {
			break
		}
		var n int
		if n, err = queryInt(c, "n", 30); err != nil {
			break
		}
		if err = checkMax("n", n, s.config.Data.MaxSampleSize); err != nil {
			break
		}
		view.X, view.Y, err = gen.RegressionPairs(n, params["intercept"], params["slope"], params["noise"], params["x_min"], params["x_max"])
	case "proportion":
		var n int
		var p float64
		if n, err = queryInt(c, "n", 1000); err != nil {
			break
		}
		if err = checkMax("n", n, s.config.Data.MaxSampleSize); err != nil {
			break
		}
		if p, err = queryFloat(c, "p", 0.5); err != nil {
			break
		}
		view.N = n
		view.Successes, err = gen.BernoulliCount(n, p)
	default:
		err = errors.NotFound("generator " + kind)
	}
	if err != nil {
		s.fail(c, "generate", err)
		return
	}
	s.respond(c, "generate", view)
}

type uploadView struct {
	File    string      `json:"file"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	Summary any         `json:"summary,omitempty"`
}

// handleDatasetUpload accepts a CSV, Excel or JSON file plus one or more
// column names (comma separated) and returns the parsed numeric columns.
// A single column also gets its summary statistics.
func (s *Server) handleDatasetUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		s.badRequest(c, "upload", err)
		return
	}
	var columns []string
	for _, col := range strings.Split(c.PostForm("columns"), ",") {
		if col = strings.TrimSpace(col); col != "" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		s.fail(c, "upload", errors.InvalidInput("at least one column name is required"))
		return
	}
	if _, err := dataset.DetectFormat(header.Filename); err != nil {
		s.fail(c, "upload", err)
		return
	}

	dir, err := os.MkdirTemp("", "statbook-upload-")
	if err != nil {
		s.fail(c, "upload", errors.Wrap(err, "failed to create upload directory"))
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(header.Filename))
	if err := c.SaveUploadedFile(header, path); err != nil {
		s.fail(c, "upload", errors.Wrap(err, "failed to store upload"))
		return
	}

	values, err := dataset.LoadColumns(path, columns...)
	if err != nil {
		s.fail(c, "upload", err)
		return
	}
	view := uploadView{File: header.Filename, Columns: columns, Values: values}
	if len(values) == 1 {
		if summary, err := descriptive.Summarize(values[0]); err == nil {
			view.Summary = summary
		}
	}
	s.respond(c, "upload", view)
}
