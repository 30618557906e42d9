//go:build !windows

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// FileLock is an advisory flock held on a lock file.
type FileLock struct {
	lockFile *os.File
	path     string
}

// AcquireLock takes an exclusive, non-blocking flock on lockPath, retrying
// up to maxRetries times 100ms apart. Release it with Release().
func AcquireLock(lockPath string, maxRetries int) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open lock file: %w", err)
		}
		if err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err == nil {
			return &FileLock{lockFile: f, path: lockPath}, nil
		}
		f.Close()
		lastErr = err

		if i < maxRetries {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return nil, fmt.Errorf("failed to acquire lock %s after %d retries: %w", lockPath, maxRetries, lastErr)
}

// Release drops the lock. Releasing twice is a no-op.
func (fl *FileLock) Release() error {
	if fl == nil || fl.lockFile == nil {
		return nil
	}
	f := fl.lockFile
	fl.lockFile = nil

	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	return nil
}
