// Package state persists projects: JSON project files in a data directory
// and a SQLite history of snapshots.
package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jengamon/lexi/pkg/core"
)

// FileSuffix is appended to project names to form file names.
const FileSuffix = ".lg.json"

// FileStore keeps one JSON file per project under <dataDir>/lang.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a store rooted at dataDir. A nil logger discards
// output.
func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{dir: filepath.Join(dataDir, "lang"), logger: logger}
}

// Dir returns the directory holding project files.
func (s *FileStore) Dir() string {
	return s.dir
}

// SanitizeName strips parent-directory references from a project name.
// A name that is empty afterwards is rejected.
func SanitizeName(name string) (string, error) {
	clean := name
	for strings.Contains(clean, "../") || strings.Contains(clean, `..\`) {
		clean = strings.ReplaceAll(clean, "../", "")
		clean = strings.ReplaceAll(clean, `..\`, "")
	}
	if clean == "" {
		return "", fmt.Errorf("project file name: %w", core.ErrEmptyName)
	}
	return clean, nil
}

// Path returns the file path for a project name.
func (s *FileStore) Path(name string) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, clean+FileSuffix), nil
}

// Save writes g as the named project. The file is replaced atomically.
func (s *FileStore) Save(_ context.Context, name string, g *core.LanguageGroup) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var buf bytes.Buffer
	if err := core.Encode(&buf, g); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}

	s.logger.Debug("saved project", "name", name, "path", path)
	return nil
}

// Load reads the named project.
func (s *FileStore) Load(_ context.Context, name string) (*core.LanguageGroup, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a project file from an arbitrary path.
func LoadFile(path string) (*core.LanguageGroup, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is sanitized or user supplied on purpose
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project file %s: %w", path, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	g, err := core.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// List returns the names of all saved projects, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+FileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), FileSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named project file.
func (s *FileStore) Delete(_ context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("project %q: %w", name, core.ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}
