package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/GriffinCanCode/tickprof/internal/id"
	"github.com/GriffinCanCode/tickprof/internal/logging"
	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"go.uber.org/zap"
)

// WriterSink writes each report as one line.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteReport writes data followed by a newline.
func (s *WriterSink) WriteReport(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(data); err != nil {
		return err
	}
	_, err := s.w.Write([]byte{'\n'})
	return err
}

// FileSink stores every report as <dir>/<report id>.json.
type FileSink struct {
	dir string
	ids *id.Generator

	mu   sync.Mutex
	last string
}

// NewFileSink creates the directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report dir %q: %w", dir, err)
	}
	return &FileSink{dir: dir, ids: id.Default()}, nil
}

// WriteReport writes data to a new file.
func (s *FileSink) WriteReport(data []byte) error {
	path := filepath.Join(s.dir, s.ids.NewReportID().String()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %q: %w", path, err)
	}

	s.mu.Lock()
	s.last = path
	s.mu.Unlock()
	return nil
}

// LastPath returns the most recently written file, or "".
func (s *FileSink) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LogSink writes reports as raw JSON fields of a zap entry.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink over logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// WriteReport logs the report at info level.
func (s *LogSink) WriteReport(data []byte) error {
	s.logger.Info("trace report", zap.Any("report", rawJSON(data)))
	return nil
}

type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) { return r, nil }

// Multi fans a report out to every sink and joins their errors.
type Multi []profiler.ReportSink

// WriteReport writes to all sinks even if some fail.
func (m Multi) WriteReport(data []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteReport(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
