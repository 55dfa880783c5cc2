// Package filelock guards a project against concurrent runs and replaces build files
// atomically so a failed write never leaves a half-rewritten script behind.
package filelock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the lock for the same project.
var ErrLocked = errors.New("another run is already in progress for this project")

// RunLock is an exclusive, non-blocking lock keyed by a project root.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// LockPath returns the lock file used for root. It lives in the temp dir so the
// project tree is never touched.
func LockPath(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(os.TempDir(), "versionmask-"+hex.EncodeToString(sum[:8])+".lock")
}

// AcquireRunLock takes the lock for root or returns ErrLocked.
func AcquireRunLock(root string) (*RunLock, error) {
	path := LockPath(root)
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return &RunLock{flock: fl, path: path}, nil
}

// Path is the lock file location.
func (l *RunLock) Path() string { return l.path }

// Release unlocks and removes the lock file.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}

// AtomicWrite replaces path with data through a temp file in the same directory and a
// rename. The mode of an existing file is kept; new files get 0644.
func AtomicWrite(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".versionmask-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed; nothing left to clean up.
	tempFile = nil
	return nil
}
