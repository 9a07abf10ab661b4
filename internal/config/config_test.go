package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Profiler config
	assert.Equal(t, 20.0, cfg.Profiler.Limit)
	assert.Equal(t, 500.0, cfg.Profiler.TickLimit)
	assert.Nil(t, cfg.Profiler.LongTickRatio)
	assert.Nil(t, cfg.Profiler.PanicTickRatio)
	assert.Equal(t, "cpu", cfg.Profiler.Clock)

	// Report config
	assert.True(t, cfg.Report.Stdout)
	assert.Empty(t, cfg.Report.Dir)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Server config
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, ":9102", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 5, cfg.Server.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Server.Burst)

	// Script config
	assert.Equal(t, 1, cfg.Script.Turns)
	assert.Equal(t, 5*time.Second, cfg.Script.Timeout.Std())

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"TICKPROF_LIMIT":            "50",
		"TICKPROF_TICK_LIMIT":       "300",
		"TICKPROF_LONG_TICK_RATIO":  "0.9",
		"TICKPROF_PANIC_TICK_RATIO": "0.95",
		"TICKPROF_CLOCK":            "wall",
		"TICKPROF_REPORT_DIR":       "/tmp/reports",
		"TICKPROF_REPORT_STDOUT":    "false",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"SERVER_ENABLED":            "true",
		"CORS_ORIGINS":              "https://ui.perfetto.dev,http://localhost:3000",
		"TICKPROF_TURNS":            "10",
		"TICKPROF_SCRIPT_TIMEOUT":   "250ms",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Profiler.Limit)
	assert.Equal(t, 300.0, cfg.Profiler.TickLimit)
	require.NotNil(t, cfg.Profiler.LongTickRatio)
	assert.Equal(t, 0.9, *cfg.Profiler.LongTickRatio)
	require.NotNil(t, cfg.Profiler.PanicTickRatio)
	assert.Equal(t, 0.95, *cfg.Profiler.PanicTickRatio)
	assert.Equal(t, "wall", cfg.Profiler.Clock)
	assert.Equal(t, "/tmp/reports", cfg.Report.Dir)
	assert.False(t, cfg.Report.Stdout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, []string{"https://ui.perfetto.dev", "http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 10, cfg.Script.Turns)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout.Std())
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("TICKPROF_LIMIT", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 20.0, cfg.Profiler.Limit)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "tickprof.toml",
			content: `
[profiler]
limit = 30
long_tick_ratio = 0.8

[report]
dir = "reports"

[script]
timeout = "2s"
`,
		},
		{
			name: "yaml",
			file: "tickprof.yaml",
			content: `
profiler:
  limit: 30
  long_tick_ratio: 0.8
report:
  dir: reports
script:
  timeout: 2s
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := LoadFile(path)
			require.NoError(t, err)

			assert.Equal(t, 30.0, cfg.Profiler.Limit)
			require.NotNil(t, cfg.Profiler.LongTickRatio)
			assert.Equal(t, 0.8, *cfg.Profiler.LongTickRatio)
			assert.Equal(t, "reports", cfg.Report.Dir)
			assert.Equal(t, 2*time.Second, cfg.Script.Timeout.Std())

			// keys absent from the file keep their defaults
			assert.Equal(t, 500.0, cfg.Profiler.TickLimit)
			assert.True(t, cfg.Report.Stdout)
			assert.Nil(t, cfg.Profiler.PanicTickRatio)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "tickprof.ini")
	require.NoError(t, os.WriteFile(ini, []byte("limit=1"), 0o644))
	_, err = LoadFile(ini)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[profiler\nlimit ="), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestLoadFileRejectsBadTimeout(t *testing.T) {
	for name, content := range map[string]string{
		"tickprof.toml": "[script]\ntimeout = \"soon\"\n",
		"tickprof.yaml": "script:\n  timeout: soon\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("90")))
}

func TestValidate(t *testing.T) {
	zero := 0.0

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero limit", mutate: func(c *Config) { c.Profiler.Limit = 0 }, wantErr: true},
		{name: "zero long ratio", mutate: func(c *Config) { c.Profiler.LongTickRatio = &zero }, wantErr: true},
		{name: "zero panic ratio", mutate: func(c *Config) { c.Profiler.PanicTickRatio = &zero }, wantErr: true},
		{name: "no turns", mutate: func(c *Config) { c.Script.Turns = 0 }, wantErr: true},
		{name: "server without rate", mutate: func(c *Config) {
			c.Server.Enabled = true
			c.Server.RequestsPerSecond = 0
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
