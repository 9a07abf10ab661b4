package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/tickprof/internal/app"
	"github.com/GriffinCanCode/tickprof/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type runFlags struct {
	turns      int
	limit      float64
	tickLimit  float64
	longRatio  float64
	panicRatio float64
	clock      string
	reportDir  string
	noStdout   bool
	state      string
	serve      bool
	addr       string
	hold       bool
}

func newRunCommand(global *globalFlags) *cobra.Command {
	return bindRunCommand(global, &runFlags{})
}

func bindRunCommand(global *globalFlags, flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.js>",
		Short: "Run a script for a number of traced turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			return runScript(cmd.Context(), cfg, args[0], flags.hold)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.turns, "turns", "n", 0, "Number of turns to run")
	f.Float64Var(&flags.limit, "limit", 0, "Normal per-turn budget in ms")
	f.Float64Var(&flags.tickLimit, "tick-limit", 0, "Hard per-turn ceiling in ms")
	f.Float64Var(&flags.longRatio, "long-ratio", 0, "Dump the trace when a turn ends above limit*ratio")
	f.Float64Var(&flags.panicRatio, "panic-ratio", 0, "Emergency flush at tick-limit*ratio")
	f.StringVar(&flags.clock, "clock", "", "Usage clock: cpu, wall or manual")
	f.StringVar(&flags.reportDir, "report-dir", "", "Write each report to a file in this directory")
	f.BoolVar(&flags.noStdout, "no-stdout", false, "Do not print reports to stdout")
	f.StringVar(&flags.state, "state", "", "File persisting turn state between runs")
	f.BoolVar(&flags.serve, "serve", false, "Serve /health, /metrics, /state and /report")
	f.StringVar(&flags.addr, "addr", "", "Status server listen address")
	f.BoolVar(&flags.hold, "hold", false, "Keep serving after the last turn until interrupted")

	return cmd
}

// apply copies flags the user actually set onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("turns") {
		cfg.Script.Turns = f.turns
	}
	if changed("limit") {
		cfg.Profiler.Limit = f.limit
	}
	if changed("tick-limit") {
		cfg.Profiler.TickLimit = f.tickLimit
	}
	if changed("long-ratio") {
		cfg.Profiler.LongTickRatio = &f.longRatio
	}
	if changed("panic-ratio") {
		cfg.Profiler.PanicTickRatio = &f.panicRatio
	}
	if changed("clock") {
		cfg.Profiler.Clock = f.clock
	}
	if changed("report-dir") {
		cfg.Report.Dir = f.reportDir
	}
	if changed("no-stdout") {
		cfg.Report.Stdout = !f.noStdout
	}
	if changed("state") {
		cfg.State.Path = f.state
	}
	if changed("serve") {
		cfg.Server.Enabled = f.serve
	}
	if changed("addr") {
		cfg.Server.Addr = f.addr
	}
}

func runScript(parent context.Context, cfg *config.Config, path string, hold bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.LoadScript(ctx, path); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()

	g.Go(func() error {
		return a.Serve(serveCtx)
	})
	g.Go(func() error {
		if !hold {
			defer stopServe()
		}
		summary, err := a.Run(gctx)
		logger.Info("run finished",
			zap.Int("turns", summary.Turns),
			zap.Int("failed", summary.Failed),
			zap.Int64("reports", summary.Totals.Reports),
			zap.Int64("panics", summary.Totals.Panics),
			zap.Float64("avg_usage_ms", summary.Totals.AverageUsage()),
			zap.Float64("max_usage_ms", summary.Totals.MaxUsage),
		)
		return err
	})
	return g.Wait()
}
