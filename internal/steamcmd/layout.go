// Package steamcmd installs and runs the SteamCMD command-line client.
package steamcmd

import (
	"path/filepath"
	"runtime"

	"github.com/jmagar/workshop-cli/internal/model"
)

// resetDirs are the tool's working-state directories wiped after repeated fast failures.
var resetDirs = []string{"steamapps", "dumps", "logs", "depotcache", "appcache", "userdata"}

// Layout resolves the paths inside a SteamCMD installation.
type Layout struct {
	Root  string
	AppID string
	GOOS  string
}

// NewLayout returns the layout for root on the running platform.
func NewLayout(root, appID string) Layout {
	if appID == "" {
		appID = model.DefaultAppID
	}
	return Layout{Root: root, AppID: appID, GOOS: runtime.GOOS}
}

// ToolName is the launcher file name for the platform.
func (l Layout) ToolName() string {
	if l.GOOS == "windows" {
		return "steamcmd.exe"
	}
	return "steamcmd.sh"
}

func (l Layout) ToolPath() string {
	return filepath.Join(l.Root, l.ToolName())
}

func (l Layout) SteamappsDir() string {
	return filepath.Join(l.Root, "steamapps")
}

// ContentDir is where a finished item lands.
func (l Layout) ContentDir(itemID string) string {
	return filepath.Join(l.Root, "steamapps", "workshop", "content", l.AppID, itemID)
}

// DownloadsDir is the in-progress staging directory for an item.
func (l Layout) DownloadsDir(itemID string) string {
	return filepath.Join(l.Root, "steamapps", "workshop", "downloads", l.AppID, itemID)
}

func (l Layout) ContentLogPath() string {
	return filepath.Join(l.Root, "logs", "content_log.txt")
}

// PackageDir only exists once the tool has self-updated.
func (l Layout) PackageDir() string {
	return filepath.Join(l.Root, "package")
}

// ResetDirs returns the absolute working-state directories.
func (l Layout) ResetDirs() []string {
	dirs := make([]string, 0, len(resetDirs))
	for _, d := range resetDirs {
		dirs = append(dirs, filepath.Join(l.Root, d))
	}
	return dirs
}

// DownloadArgs builds the tool arguments for one download attempt.
func (l Layout) DownloadArgs(itemID string) []string {
	return []string{
		"+login", "anonymous",
		"app_update", l.AppID,
		"+workshop_download_item", l.AppID, itemID, "validate",
		"+quit",
	}
}

// DestinationDir is where a finished item is installed inside the game.
func DestinationDir(gameDir string, kind model.Kind, itemID string) string {
	return filepath.Join(gameDir, kind.Folder(), itemID)
}
