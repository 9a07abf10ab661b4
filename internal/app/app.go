package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GriffinCanCode/tickprof/internal/config"
	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/memory"
	"github.com/GriffinCanCode/tickprof/internal/monitoring"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"github.com/GriffinCanCode/tickprof/internal/report"
	"github.com/GriffinCanCode/tickprof/internal/script"
	"github.com/GriffinCanCode/tickprof/internal/server"
	"github.com/GriffinCanCode/tickprof/internal/usage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options overrides collaborators that are normally built from config.
type Options struct {
	Stdout   io.Writer            // Report output when stdout reports are on; defaults to os.Stdout
	Clock    usage.Clock          // Usage clock; built from Profiler.Clock when nil
	Registry *prometheus.Registry // Metrics registry; a fresh one when nil
}

// App orchestrates the tracer and the script it runs
type App struct {
	config  *config.Config
	logger  *logging.Logger
	store   memory.Store
	memory  *profiler.Memory
	tracer  *profiler.Tracer
	metrics *monitoring.Metrics
	runtime *script.Runtime
	server  *server.Server
}

// Summary describes a finished run.
type Summary struct {
	Turns  int
	Failed int
	Totals monitoring.Snapshot
}

// New builds an App from cfg.
func New(cfg *config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	clock := opts.Clock
	if clock == nil {
		c, err := usage.New(usage.Kind(cfg.Profiler.Clock))
		if err != nil {
			return nil, err
		}
		clock = c
	}

	var store memory.Store = &memory.InMemory{}
	if cfg.State.Path != "" {
		store = memory.NewFileStore(cfg.State.Path)
	}
	mem, err := store.Load()
	if err != nil {
		return nil, err
	}

	sink, err := buildSink(cfg.Report, opts.Stdout, logger)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics(opts.Registry)

	tracer := profiler.New(mem, clock,
		profiler.WithBudget(usage.Budget{
			Limit:     cfg.Profiler.Limit,
			TickLimit: cfg.Profiler.TickLimit,
		}),
		profiler.WithSink(sink),
		profiler.WithObserver(metrics),
		profiler.WithLogger(logger.Component("profiler")),
	)

	// Configured ratios win over persisted ones
	if r := cfg.Profiler.LongTickRatio; r != nil {
		tracer.SetLongTickRatio(*r)
	}
	if r := cfg.Profiler.PanicTickRatio; r != nil {
		tracer.SetPanicTickRatio(*r)
	}

	rt, err := script.New(tracer, logger, script.Config{
		Timeout:       cfg.Script.Timeout.Std(),
		EnableConsole: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create script runtime: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  logger,
		store:   store,
		memory:  mem,
		tracer:  tracer,
		metrics: metrics,
		runtime: rt,
	}
	if cfg.Server.Enabled {
		a.server = server.New(cfg.Server, tracer, metrics, logger.Component("server"))
	}

	logger.Info("tickprof initialized",
		zap.Float64("limit", cfg.Profiler.Limit),
		zap.Float64("tick_limit", cfg.Profiler.TickLimit),
		zap.String("clock", cfg.Profiler.Clock),
		zap.String("state", cfg.State.Path),
	)
	return a, nil
}

func buildSink(cfg config.ReportConfig, stdout io.Writer, logger *logging.Logger) (profiler.ReportSink, error) {
	var sinks report.Multi
	if cfg.Stdout {
		sinks = append(sinks, report.NewWriterSink(stdout))
	}
	if cfg.Dir != "" {
		files, err := report.NewFileSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, report.NewBreaker("files", files, report.DefaultBreakerSettings(), logger))
	}
	if cfg.Log {
		sinks = append(sinks, report.NewLogSink(logger.Component("report")))
	}
	return sinks, nil
}

// Tracer returns the App's tracer.
func (a *App) Tracer() *profiler.Tracer {
	return a.tracer
}

// Metrics returns the App's metrics.
func (a *App) Metrics() *monitoring.Metrics {
	return a.metrics
}

// Runtime returns the script runtime.
func (a *App) Runtime() *script.Runtime {
	return a.runtime
}

// LoadScript reads and loads the script at path.
func (a *App) LoadScript(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return a.Load(ctx, path, string(src))
}

// Load loads script source under name.
func (a *App) Load(ctx context.Context, name, src string) error {
	return a.runtime.Load(ctx, name, src)
}

// Run executes the configured number of turns. A failing turn is logged
// and counted; the run continues with the next turn.
func (a *App) Run(ctx context.Context) (Summary, error) {
	summary := Summary{}

	for turn := 1; turn <= a.config.Script.Turns; turn++ {
		if err := ctx.Err(); err != nil {
			return a.finish(summary), err
		}

		err := a.runtime.Tick(ctx)
		summary.Turns++
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return a.finish(summary), err
			}
			summary.Failed++
			a.logger.Error("turn failed", zap.Int("turn", turn), zap.Error(err))
		}

		if err := a.store.Save(a.memory); err != nil {
			return a.finish(summary), err
		}
	}
	return a.finish(summary), nil
}

func (a *App) finish(s Summary) Summary {
	s.Totals = a.metrics.Snapshot()
	return s
}

// Serve runs the status server until ctx is done. It returns immediately
// when the server is disabled.
func (a *App) Serve(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Run(ctx)
}

// Close releases the runtime and flushes the logger.
func (a *App) Close() error {
	err := a.runtime.Close()
	_ = a.logger.Sync()
	return err
}
