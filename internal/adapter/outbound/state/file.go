package state

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
)

// keyPattern restricts storage keys to names that are safe as file names.
// All wellman_* keys match; anything else is a programming error surfaced
// as an explicit error rather than a stray file.
var keyPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// FileStorage persists each key as one file under a directory.
// It provides atomic writes (write-tmp-then-rename), automatic backups,
// and file locking (flock for cross-process, mutex for in-process).
type FileStorage struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStorage creates a FileStorage rooted at dir, creating the
// directory (0700) if it does not exist.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

// Get reads the value stored under key.
// A missing file is reported as absent, not as an error. Warns if the
// existing file has permissions more open than 0600.
func (s *FileStorage) Get(key string) ([]byte, bool, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	// Unix file permission bits are not supported on Windows.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 { // group or other has access
				s.logger.Warn("state file has too-open permissions, should be 0600",
					"key", key, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	return data, true, nil
}

// Set writes value under key.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Copy current file to path+".bak" (skipped if no current file)
//  4. Write to path+".tmp" with 0600 permissions
//  5. Fsync the temp file
//  6. Rename path+".tmp" -> path
//  7. Release flock and mutex
func (s *FileStorage) Set(key string, value []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Acquire cross-process file lock.
	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	// Create backup of current file (ignore error if file doesn't exist).
	if currentData, readErr := os.ReadFile(path); readErr == nil {
		if writeErr := os.WriteFile(path+".bak", currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "key", key, "error", writeErr)
		}
	}

	if err := s.writeAtomic(path, value); err != nil {
		return err
	}

	// Explicitly ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on state file", "key", key, "error", err)
	}

	s.logger.Debug("state saved", "key", key)
	return nil
}

// Delete removes the file for key along with its backup. Absent keys are
// a no-op.
func (s *FileStorage) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	_ = os.Remove(path + ".bak")
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileStorage) writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// cleanup closes and removes the temp file on error.
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to state: %w", err)
	}
	return nil
}

// keyPath maps a storage key to its file path under the storage dir.
func (s *FileStorage) keyPath(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Dir returns the configured storage directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Compile-time interface verification.
var _ Storage = (*FileStorage)(nil)
