// Package ui serves the analysis engine over HTTP.
package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/app"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/logging"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/metrics"
	"github.com/keatontom/salesforce-opportunity-analysis/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server represents the web server for the analysis API
type Server struct {
	router  *gin.Engine
	service *app.ReportService
	logger  logging.Logger
	metrics *metrics.Metrics
	opts    Options
	httpSrv *http.Server
}

// NewServer creates the server and registers its routes. m may be nil, in
// which case /metrics is not served.
func NewServer(service *app.ReportService, logger logging.Logger, m *metrics.Metrics, opts Options) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logger.Named("http"),
		metrics: m,
		opts:    opts,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.Observe(s.logger, s.metrics))
	s.router.Use(middleware.CORS(s.opts.AllowedOrigins))
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/reports", s.handleListReports)
		api.GET("/reports/:id", s.handleGetReport)
		api.GET("/reports/:id/html", s.handleGetReportHTML)
		api.GET("/reports/:id/markdown", s.handleGetReportMarkdown)
	}
}

// Start listens on addr until Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server listening", logging.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
