package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 << 40, "3.00 TB"},
		{2048 << 40, "2048.00 TB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59*time.Second + 900*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{100 * time.Hour, "100:00:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateItemID(t *testing.T) {
	for _, id := range []string{"1", "2867512143"} {
		if err := ValidateItemID(id); err != nil {
			t.Fatalf("ValidateItemID(%q): %v", id, err)
		}
	}
	for _, id := range []string{"", "12a", "-5", "../1", "123456789012345678901"} {
		if err := ValidateItemID(id); !errors.Is(err, model.ErrInvalidItemID) {
			t.Fatalf("ValidateItemID(%q) = %v, want ErrInvalidItemID", id, err)
		}
	}
}

func TestFolderSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), 100)
	writeFile(t, filepath.Join(root, "sub", "b.bin"), 250)

	if got := FolderSize(root); got != 350 {
		t.Fatalf("FolderSize = %d, want 350", got)
	}
	if got := FolderSize(filepath.Join(root, "missing")); got != 0 {
		t.Fatalf("missing dir size = %d, want 0", got)
	}
}

func TestClearFolder_KeepsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), 10)
	writeFile(t, filepath.Join(root, "nested", "b.bin"), 10)

	if err := ClearFolder(root); err != nil {
		t.Fatalf("ClearFolder: %v", err)
	}
	if DirHasEntries(root) {
		t.Fatal("expected folder to be empty")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root removed: %v", err)
	}
	if err := ClearFolder(filepath.Join(root, "missing")); err != nil {
		t.Fatalf("ClearFolder on missing dir: %v", err)
	}
}

func TestMoveContents(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "content", "42")
	dst := filepath.Join(base, "game", "usermaps", "42")
	writeFile(t, filepath.Join(src, "zone", "map.ff"), 64)
	writeFile(t, filepath.Join(src, "workshop.json"), 8)
	writeFile(t, filepath.Join(dst, "workshop.json"), 1)

	if err := MoveContents(src, dst); err != nil {
		t.Fatalf("MoveContents: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err = %v", err)
	}
	if got := FolderSize(dst); got != 72 {
		t.Fatalf("destination size = %d, want 72", got)
	}
}

func TestMoveContents_MissingSource(t *testing.T) {
	base := t.TempDir()
	err := MoveContents(filepath.Join(base, "nope"), filepath.Join(base, "dst"))
	if !errors.Is(err, ErrMoveEntry) {
		t.Fatalf("expected ErrMoveEntry, got %v", err)
	}
}

func TestMoveContents_RenameFailureKeepsSource(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "content", "42")
	writeFile(t, filepath.Join(src, "zone", "map.ff"), 64)
	// A directory cannot be renamed into its own subtree.
	dst := filepath.Join(src, "zone", "usermaps", "42")

	err := MoveContents(src, dst)
	if !errors.Is(err, ErrMoveEntry) {
		t.Fatalf("expected ErrMoveEntry, got %v", err)
	}
	if got := FolderSize(filepath.Join(src, "zone")); got != 64 {
		t.Fatalf("source size after failed move = %d, want 64", got)
	}
}

func TestMoveContents_CrossDeviceFails(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs /dev/shm")
	}
	shm, err := os.MkdirTemp("/dev/shm", "workshop-move-")
	if err != nil {
		t.Skipf("tmpfs unavailable: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(shm) })
	dstBase := t.TempDir()

	check := filepath.Join(shm, "check")
	writeFile(t, check, 1)
	if err := os.Rename(check, filepath.Join(dstBase, "check")); err == nil {
		t.Skip("source and destination share a filesystem")
	}

	src := filepath.Join(shm, "content", "42")
	writeFile(t, filepath.Join(src, "maps", "zone.ff"), 32)
	link := filepath.Join(src, "maps", "link.ff")
	if err := os.Symlink("zone.ff", link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	err = MoveContents(src, filepath.Join(dstBase, "usermaps", "42"))
	if !errors.Is(err, ErrMoveEntry) {
		t.Fatalf("expected ErrMoveEntry, got %v", err)
	}
	if _, err := os.Lstat(link); err != nil {
		t.Fatalf("symlink lost from source: %v", err)
	}
	if got := FolderSize(src); got != 32 {
		t.Fatalf("source size after failed move = %d, want 32", got)
	}
	if DirHasEntries(filepath.Join(dstBase, "usermaps", "42")) {
		t.Fatal("expected nothing copied to destination")
	}
}
