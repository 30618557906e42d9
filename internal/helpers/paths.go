package helpers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MakeDirs creates directories recursively.
func MakeDirs(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file (not directory) exists at the given path.
func FileExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return !f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DirHasEntries reports whether path is a directory with at least one entry.
// Missing or unreadable directories report false.
func DirHasEntries(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	names, _ := f.Readdirnames(1)
	return len(names) > 0
}

// ValidatePath checks that a path does not contain dangerous characters.
func ValidatePath(path string) error {
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains invalid characters")
	}
	return nil
}

// FolderSize walks the directory tree and sums regular file sizes in bytes.
// A missing directory is 0; entries that vanish during the walk are skipped.
func FolderSize(root string) uint64 {
	var total uint64

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})

	return total
}

// ClearFolder removes every entry inside dir but keeps dir itself. When a
// removal fails, permissions under dir are relaxed and the removal retried once.
// A missing dir is not an error.
func ClearFolder(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w %q: %w", ErrClearFolder, dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			relaxPermissions(dir)
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("%w %q: %w", ErrClearFolder, dir, err)
			}
		}
	}
	return nil
}

// RemoveAllRelaxed is os.RemoveAll with the same permission relaxation retry as ClearFolder.
func RemoveAllRelaxed(path string) error {
	if err := os.RemoveAll(path); err == nil {
		return nil
	}
	relaxPermissions(path)
	return os.RemoveAll(path)
}

func relaxPermissions(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		mode := os.FileMode(0o666)
		if d.IsDir() {
			mode = 0o777
		}
		_ = os.Chmod(path, mode)
		return nil
	})
}

// MoveContents renames every entry of src into dst, creating dst when needed and
// replacing same-named entries. Entries are never copied: a rename that fails,
// including across filesystems, stops the move and leaves the remaining entries
// in src. src is removed once emptied.
func MoveContents(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrMoveEntry, src, err)
	}
	if err := MakeDirs(dst); err != nil {
		return fmt.Errorf("%w %q: %w", ErrMoveEntry, dst, err)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if _, err := os.Lstat(to); err == nil {
			if err := RemoveAllRelaxed(to); err != nil {
				return fmt.Errorf("%w %q: %w", ErrMoveEntry, to, err)
			}
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("%w %q: %w", ErrMoveEntry, from, err)
		}
	}
	return RemoveAllRelaxed(src)
}
