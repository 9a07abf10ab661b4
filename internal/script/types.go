package script

import (
	"errors"
	"time"
)

var (
	ErrNoLoop  = errors.New("script does not define a loop function")
	ErrClosed  = errors.New("script runtime is closed")
	ErrTimeout = errors.New("script turn timed out")
)

// Config defines script host configuration
type Config struct {
	Timeout       time.Duration // Per-turn execution timeout, 0 for none
	EnableConsole bool          // Expose console.log/warn/error/info
}

// DefaultConfig returns the default host configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
	}
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error
	Message string    // Log message
	Time    time.Time // Timestamp
}
