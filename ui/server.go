package ui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statbook/internal/config"
	"statbook/internal/errors"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server represents the web server for the statbook textbook
type Server struct {
	router    *gin.Engine
	config    *config.Config
	templates *template.Template
}

// NewServer creates a server with templates parsed and routes registered
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		router:    gin.New(),
		config:    cfg,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger())
	s.router.Use(requestMetrics())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/lessons/:slug", s.handleLessonPage)
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.POST("/describe", s.handleDescribe)
		api.POST("/intervals/mean", s.handleMeanInterval)
		api.POST("/intervals/proportion", s.handleProportionInterval)
		api.POST("/samplesize/mean", s.handleSampleSizeMean)
		api.POST("/samplesize/proportion", s.handleSampleSizeProportion)
		api.POST("/tests/mean", s.handleMeanTest)
		api.POST("/regression", s.handleRegression)
		api.POST("/simulate/coverage", s.handleCoverage)
		api.POST("/datasets/upload", s.handleDatasetUpload)

		api.GET("/critical/z", s.handleZCritical)
		api.GET("/critical/t", s.handleTCritical)
		api.GET("/datasets/:name", s.handleDataset)
		api.GET("/generate/:kind", s.handleGenerate)

		api.GET("/lessons", s.handleLessonList)
		api.POST("/lessons/:slug/progress", s.handleLessonProgress)
	}

	charts := s.router.Group("/charts")
	{
		charts.GET("/normal.svg", s.handleNormalChart)
		charts.GET("/t.svg", s.handleTChart)
		charts.GET("/interval.svg", s.handleIntervalChart)
		charts.GET("/sample-size.svg", s.handleSampleSizeChart)
		charts.GET("/regression.svg", s.handleRegressionChart)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	slog.Info("starting statbook", "addr", addr, "mode", gin.Mode())
	return s.router.Run(addr)
}
