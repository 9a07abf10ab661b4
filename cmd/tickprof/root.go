package main

import (
	"github.com/GriffinCanCode/tickprof/internal/config"
	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	logLevel   string
	dev        bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "tickprof",
		Short: "tickprof - call tracing under a per-turn CPU budget",
		Long: `tickprof runs a turn-based script and records nested call spans against
the CPU time used in each turn. Traces are written in the Chrome trace event
format and can be opened in chrome://tracing or Perfetto.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a .toml or .yaml config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.dev, "dev", false, "Development logging")

	cmd.AddCommand(newRunCommand(flags))
	return cmd
}

// loadConfig reads env and the optional config file.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.dev {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	return logging.New(logCfg)
}
