package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/tickprof/internal/config"
	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/monitoring"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP router and the tracer it reports on
type Server struct {
	router  *gin.Engine
	tracer  *profiler.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
	config  config.ServerConfig
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	State          string              `json:"state"`
	Enabled        bool                `json:"enabled"`
	Events         int                 `json:"events"`
	LongTickRatio  *float64            `json:"longTickRatio,omitempty"`
	PanicTickRatio *float64            `json:"panicTickRatio,omitempty"`
	Limit          float64             `json:"limit"`
	TickLimit      float64             `json:"tickLimit"`
	Totals         monitoring.Snapshot `json:"totals"`
}

// New creates a server for tracer. metrics may be nil.
func New(cfg config.ServerConfig, tracer *profiler.Tracer, metrics *monitoring.Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics(nil)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORS(cfg.AllowOrigins))

	s := &Server{
		router:  router,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		config:  cfg,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/state", s.state)
	router.GET("/report", s.currentReport)
	router.POST("/report", RateLimit(cfg.RequestsPerSecond, cfg.Burst), s.requestReport)

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting status server", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shut down status server", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) state(c *gin.Context) {
	budget := s.tracer.Budget()
	c.JSON(http.StatusOK, StateResponse{
		State:          s.tracer.State().String(),
		Enabled:        s.tracer.Enabled(),
		Events:         len(s.tracer.Events()),
		LongTickRatio:  s.tracer.LongTickRatio(),
		PanicTickRatio: s.tracer.PanicTickRatio(),
		Limit:          budget.Limit,
		TickLimit:      budget.Hard(),
		Totals:         s.metrics.Snapshot(),
	})
}

func (s *Server) currentReport(c *gin.Context) {
	data, err := profiler.Report{TraceEvents: s.tracer.Events()}.Marshal()
	if err != nil {
		s.logger.Error("failed to encode trace report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) requestReport(c *gin.Context) {
	s.tracer.RequestReport()
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}
