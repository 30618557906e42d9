package steamcmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jmagar/workshop-cli/internal/eventlog"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
)

const installerBaseURL = "https://steamcdn-a.akamaihd.net/client/installer/"

// DefaultArchiveURL returns the official SteamCMD archive for goos.
func DefaultArchiveURL(goos string) string {
	switch goos {
	case "windows":
		return installerBaseURL + "steamcmd.zip"
	case "darwin":
		return installerBaseURL + "steamcmd_osx.tar.gz"
	default:
		return installerBaseURL + "steamcmd_linux.tar.gz"
	}
}

// Runner runs the tool. *Supervisor implements it.
type Runner interface {
	Run(ctx context.Context, toolPath string, args []string, hidden bool) (ExitOutcome, error)
}

// Installer makes sure a runnable SteamCMD exists under Layout.Root.
type Installer struct {
	Layout Layout
	URL    string
	Client *http.Client
	Runner Runner
	Tries  int
	Pause  time.Duration
	// Logf receives progress lines. Nil discards.
	Logf func(format string, args ...any)
}

func (in *Installer) logf(format string, args ...any) {
	if in.Logf != nil {
		in.Logf(format, args...)
	}
}

// EnsureInstalled downloads, extracts and bootstraps the tool as needed.
// Any failure is reported wrapped in model.ErrToolUnavailable.
func (in *Installer) EnsureInstalled(ctx context.Context) error {
	if err := in.ensure(ctx); err != nil {
		eventlog.Log(eventlog.Entry{Event: "install", Result: "failed", Error: err.Error()})
		return fmt.Errorf("%w: %w", model.ErrToolUnavailable, err)
	}
	return nil
}

func (in *Installer) ensure(ctx context.Context) error {
	root := in.Layout.Root
	if err := helpers.MakeDirs(root); err != nil {
		return fmt.Errorf("create %s: %w", root, err)
	}
	tool := in.Layout.ToolPath()

	if ok, _ := helpers.FileExists(tool); !ok {
		url := in.URL
		if url == "" {
			url = DefaultArchiveURL(in.Layout.GOOS)
		}
		archivePath := filepath.Join(root, path.Base(url))
		if ok, _ := helpers.FileExists(archivePath); !ok {
			in.logf("Downloading SteamCMD from %s", url)
			if err := in.download(ctx, url, archivePath); err != nil {
				return err
			}
		}
		in.logf("Extracting %s", filepath.Base(archivePath))
		if err := extractArchive(archivePath, root); err != nil {
			// A corrupt cached archive would fail every later run.
			_ = os.Remove(archivePath)
			return fmt.Errorf("extract steamcmd: %w", err)
		}
		eventlog.Log(eventlog.Entry{Event: "install", Label: "extract", Message: archivePath})
	}

	if ok, _ := helpers.FileExists(tool); !ok {
		stray := filepath.Join(filepath.Dir(root), in.Layout.ToolName())
		if ok, _ := helpers.FileExists(stray); ok {
			if err := os.Rename(stray, tool); err != nil {
				return fmt.Errorf("move %s into %s: %w", stray, root, err)
			}
		}
	}
	if ok, _ := helpers.FileExists(tool); !ok {
		return fmt.Errorf("%s missing after install", tool)
	}
	if in.Layout.GOOS != "windows" {
		_ = os.Chmod(tool, 0755)
	}

	if _, err := os.Stat(in.Layout.PackageDir()); os.IsNotExist(err) {
		in.logf("Install / update SteamCMD")
		if in.Runner == nil {
			return fmt.Errorf("no runner to bootstrap %s", tool)
		}
		outcome, err := in.Runner.Run(ctx, tool, []string{"+quit"}, false)
		if err != nil {
			return fmt.Errorf("bootstrap steamcmd: %w", err)
		}
		if outcome.Cancelled {
			return fmt.Errorf("bootstrap steamcmd: %w", context.Canceled)
		}
		eventlog.Log(eventlog.Entry{Event: "install", Label: "bootstrap", ExitCode: eventlog.IntPtr(outcome.Code)})
	}
	return nil
}

func (in *Installer) download(ctx context.Context, url, dest string) error {
	tries := in.Tries
	if tries <= 0 {
		tries = 3
	}
	pause := in.Pause
	if pause <= 0 {
		pause = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		lastErr = in.fetch(ctx, url, dest)
		if lastErr == nil {
			return nil
		}
		in.logf("SteamCMD download failed (%d/%d): %v", attempt, tries, lastErr)
		if attempt == tries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
	return fmt.Errorf("download steamcmd after %d tries: %w", tries, lastErr)
}

func (in *Installer) fetch(ctx context.Context, url, dest string) error {
	client := in.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s", resp.Status)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
