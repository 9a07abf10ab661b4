package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "development", cfg: DevelopmentConfig()},
		{name: "no outputs", cfg: Config{Level: "warn"}},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l.Logger)
		})
	}
}

func TestComponent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := Wrap(zap.New(core)).Component("profiler")

	l.Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "profiler", logs.All()[0].LoggerName)
}

func TestWrapNil(t *testing.T) {
	l := Wrap(nil)
	assert.NotPanics(t, func() { l.Info("dropped") })
}

func TestNewWritesComponentJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickprof.log")

	l, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Component("profiler").Info("hello")
	l.Debug("filtered")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"component":"profiler"`)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.NotContains(t, out, "filtered")
}
