package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
)

// ItemCacheTTL is how long cached workshop metadata is trusted.
const ItemCacheTTL = 24 * time.Hour

// GetCacheDir returns the cache directory path, creating it if needed.
func GetCacheDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	cacheDir := filepath.Join(homeDir, ".cache", "workshop")
	err = os.MkdirAll(cacheDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return cacheDir, nil
}

// EventLogPath returns the path of the structured event log.
func EventLogPath() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "events.jsonl"), nil
}

// AcquisitionLockPath returns the path of the cross-process acquisition lock.
func AcquisitionLockPath() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, ".acquisition.lock"), nil
}

type itemCache struct {
	ItemID   string         `json:"itemId"`
	CachedAt time.Time      `json:"cachedAt"`
	Info     model.ItemInfo `json:"info"`
}

// GetItemCachePath returns the path for an item's cached metadata.
func GetItemCachePath(itemID string) (string, error) {
	if err := helpers.ValidateItemID(itemID); err != nil {
		return "", err
	}
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	itemsDir := filepath.Join(cacheDir, "items")
	if err := os.MkdirAll(itemsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create item cache directory: %w", err)
	}
	return filepath.Join(itemsDir, fmt.Sprintf("item_%s.json", itemID)), nil
}

// ReadItemCache returns cached metadata and when it was cached.
// A missing cache file returns os.ErrNotExist.
func ReadItemCache(itemID string) (model.ItemInfo, time.Time, error) {
	cachePath, err := GetItemCachePath(itemID)
	if err != nil {
		return model.ItemInfo{}, time.Time{}, err
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return model.ItemInfo{}, time.Time{}, err
	}
	var cached itemCache
	if err := json.Unmarshal(data, &cached); err != nil {
		return model.ItemInfo{}, time.Time{}, fmt.Errorf("failed to parse item cache: %w", err)
	}
	return cached.Info, cached.CachedAt, nil
}

// WriteItemCache stores item metadata under the cache lock.
func WriteItemCache(itemID string, info model.ItemInfo) error {
	return WithCacheLock(func() error {
		cachePath, err := GetItemCachePath(itemID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(itemCache{ItemID: itemID, CachedAt: time.Now(), Info: info})
		if err != nil {
			return fmt.Errorf("failed to marshal item cache: %w", err)
		}
		return atomicWriteFile(cachePath, data)
	})
}

// atomicWriteFile writes through a unique temp file and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
