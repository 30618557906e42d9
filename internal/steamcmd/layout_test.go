package steamcmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmagar/workshop-cli/internal/model"
)

func TestLayout_Paths(t *testing.T) {
	l := Layout{Root: "/opt/steamcmd", AppID: "311210", GOOS: "linux"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"tool", l.ToolPath(), filepath.Join("/opt/steamcmd", "steamcmd.sh")},
		{"content", l.ContentDir("42"), filepath.Join("/opt/steamcmd", "steamapps", "workshop", "content", "311210", "42")},
		{"downloads", l.DownloadsDir("42"), filepath.Join("/opt/steamcmd", "steamapps", "workshop", "downloads", "311210", "42")},
		{"content log", l.ContentLogPath(), filepath.Join("/opt/steamcmd", "logs", "content_log.txt")},
		{"map destination", DestinationDir("/games/bo3", model.KindMap, "42"), filepath.Join("/games/bo3", "usermaps", "42")},
		{"mod destination", DestinationDir("/games/bo3", model.KindMod, "42"), filepath.Join("/games/bo3", "mods", "42")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	l.GOOS = "windows"
	if l.ToolName() != "steamcmd.exe" {
		t.Fatalf("windows tool name = %q", l.ToolName())
	}
}

func TestLayout_DownloadArgs(t *testing.T) {
	l := NewLayout("/opt/steamcmd", "")
	got := strings.Join(l.DownloadArgs("2867512143"), " ")
	want := "+login anonymous app_update 311210 +workshop_download_item 311210 2867512143 validate +quit"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestLayout_ResetDirs(t *testing.T) {
	l := Layout{Root: "/s", AppID: "311210"}
	got := l.ResetDirs()
	if len(got) != 6 {
		t.Fatalf("got %d reset dirs, want 6", len(got))
	}
	for i, name := range []string{"steamapps", "dumps", "logs", "depotcache", "appcache", "userdata"} {
		if got[i] != filepath.Join("/s", name) {
			t.Fatalf("reset dir %d = %q, want %q", i, got[i], name)
		}
	}
}

func TestIsCancelledExit(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		requested bool
		want      bool
	}{
		{"clean exit", 0, false, false},
		{"tool failure", 7, false, false},
		{"magic code signed", -1073741510, false, true},
		{"magic code unsigned", int(ForcedKillExitCode), false, true},
		{"requested with normal code", 0, true, true},
		{"requested after signal kill", -1, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCancelledExit(tt.code, tt.requested); got != tt.want {
				t.Fatalf("isCancelledExit(%d, %v) = %v, want %v", tt.code, tt.requested, got, tt.want)
			}
		})
	}
}
