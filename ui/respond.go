package ui

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statbook/internal/errors"
)

// envelope wraps every API result so a client can quote the computation it saw
type envelope struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind,omitempty"`
	Result any       `json:"result,omitempty"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeDegenerateData:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respond(c *gin.Context, kind string, result any) {
	computations.WithLabelValues(kind, "ok").Inc()
	c.JSON(http.StatusOK, envelope{ID: uuid.NewString(), Kind: kind, Result: result})
}

func (s *Server) fail(c *gin.Context, kind string, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if status == http.StatusInternalServerError {
		slog.Error("computation failed", "kind", kind, "error", err)
		code = errors.CodeInternalError
	}
	computations.WithLabelValues(kind, "error").Inc()
	c.AbortWithStatusJSON(status, envelope{
		ID:    uuid.NewString(),
		Kind:  kind,
		Error: &apiError{Code: code, Message: err.Error()},
	})
}

// bind decodes a JSON body, reporting malformed input as 400
func (s *Server) bind(c *gin.Context, kind string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.badRequest(c, kind, err)
		return false
	}
	return true
}

func (s *Server) badRequest(c *gin.Context, kind string, err error) {
	computations.WithLabelValues(kind, "error").Inc()
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
		ID:    uuid.NewString(),
		Kind:  kind,
		Error: &apiError{Code: errors.CodeInvalidInput, Message: err.Error()},
	})
}

// level returns the request's confidence level or the configured default
func (s *Server) level(requested float64) float64 {
	if requested == 0 {
		return s.config.Stats.DefaultConfidence
	}
	return requested
}

func (s *Server) alpha(requested float64) float64 {
	if requested == 0 {
		return s.config.Stats.DefaultAlpha
	}
	return requested
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput("query parameter %s: %q is not a number", key, raw)
	}
	return v, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput("query parameter %s: %q is not an integer", key, raw)
	}
	return v, nil
}

// checkMax rejects sizes above a configured limit before anything is allocated
func checkMax(name string, v, max int) error {
	if v > max {
		return errors.InvalidInput("%s must be <= %d, got %d", name, max, v)
	}
	return nil
}

// renderTemplate executes a template into a buffer first so a failure never
// leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, templateName string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		slog.Error("template error", "template", templateName, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template rendering failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
