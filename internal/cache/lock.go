package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// WithCacheLock executes a function with the metadata cache lock acquired.
func WithCacheLock(fn func() error) error {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return err
	}

	lock, err := AcquireLock(filepath.Join(cacheDir, ".items.lock"), 50)
	if err != nil {
		return fmt.Errorf("failed to acquire cache lock: %w", err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release lock: %v\n", releaseErr)
		}
	}()

	return fn()
}

// TryAcquisitionLock takes the cross-process acquisition lock without
// waiting. It fails when another process is downloading.
func TryAcquisitionLock() (*FileLock, error) {
	lockPath, err := AcquisitionLockPath()
	if err != nil {
		return nil, err
	}
	return AcquireLock(lockPath, 0)
}
