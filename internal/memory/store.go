// Package memory persists the tracer's turn state between process runs.
package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"github.com/bytedance/sonic"
)

// Store loads and saves turn state.
type Store interface {
	Load() (*profiler.Memory, error)
	Save(m *profiler.Memory) error
}

// FileStore keeps turn state in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored state. A missing file yields empty state.
func (s *FileStore) Load() (*profiler.Memory, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &profiler.Memory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: read %q: %w", s.path, err)
	}

	var m profiler.Memory
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("memory: decode %q: %w", s.path, err)
	}
	return &m, nil
}

// Save writes m atomically.
func (s *FileStore) Save(m *profiler.Memory) error {
	data, err := sonic.Marshal(m)
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("memory: mkdir %q: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("memory: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("memory: rename %q: %w", s.path, err)
	}
	return nil
}

// InMemory keeps state in process; Save stores the pointer it is given.
type InMemory struct {
	m *profiler.Memory
}

// Load returns the held state, creating it on first use.
func (s *InMemory) Load() (*profiler.Memory, error) {
	if s.m == nil {
		s.m = &profiler.Memory{}
	}
	return s.m, nil
}

// Save replaces the held state.
func (s *InMemory) Save(m *profiler.Memory) error {
	s.m = m
	return nil
}
