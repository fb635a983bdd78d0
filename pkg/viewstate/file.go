package viewstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

// FileStore keeps one YAML file per state in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based state store.
// If baseDir is empty, defaults to ~/.config/foldgraph/views/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "foldgraph", "views")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create view dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) statePath(name string) string {
	return filepath.Join(s.baseDir, name+".yaml")
}

// Get implements [Store].
func (s *FileStore) Get(ctx context.Context, name string) (*State, error) {
	if err := errors.ValidateStateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.statePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeStateNotFound, ErrNotFound, "view %q", name)
		}
		return nil, fmt.Errorf("read view file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse view %q", name)
	}
	return &st, nil
}

// Set implements [Store].
func (s *FileStore) Set(ctx context.Context, st *State) error {
	if err := errors.ValidateStateName(st.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st.UpdatedAt = time.Now()
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := os.WriteFile(s.statePath(st.Name), data, 0600); err != nil {
		return fmt.Errorf("write view file: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateStateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.statePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove view file: %w", err)
	}
	return nil
}

// List implements [Store].
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read view dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names, nil
}

// Path returns the base directory for state files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
