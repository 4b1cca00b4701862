package shortcut

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PersistenceError reports a failure to write the shortcut file.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save shortcut to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// maxShortcutFileBytes caps reads; a shortcut string is a few dozen bytes.
const maxShortcutFileBytes = 1024

var (
	readFileFn  = readLimitedFile
	writeFileFn = os.WriteFile
	mkdirAllFn  = os.MkdirAll
)

// Store persists the single shortcut string as plain text.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted shortcut. Any read error or blank content
// reports ok=false, which callers treat as "use the default".
func (s *Store) Load() (value string, ok bool) {
	raw, err := readFileFn(s.path, maxShortcutFileBytes)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("[WARN-SHORTCUT] failed to read shortcut file", "path", s.path, "error", err)
		}
		return "", false
	}
	value = strings.TrimSpace(string(raw))
	if value == "" {
		return "", false
	}
	return value, true
}

// Save overwrites the file with value, creating parent directories.
// Last writer wins.
func (s *Store) Save(value string) error {
	if err := mkdirAllFn(filepath.Dir(s.path), 0o700); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := writeFileFn(s.path, []byte(value), 0o600); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("shortcut file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}
