package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"

	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/retry"
	"github.com/jmagar/workshop-cli/internal/ui"
)

// EnvPrefix prefixes every environment override, e.g. WORKSHOP_GAME_DIR.
const EnvPrefix = "WORKSHOP"

// LoadedConfigPath tracks which config file was loaded so WriteConfig can save to the same location.
var LoadedConfigPath string

// Default returns a config populated with the built-in values.
func Default() *model.Config {
	t := model.DefaultTuning()
	return &model.Config{
		AppID:             model.DefaultAppID,
		RetryAttempts:     t.RetryAttempts,
		FastFailWindow:    t.FastFailWindow.String(),
		FastFailThreshold: t.FastFailThreshold,
		ResetPause:        t.ResetPause.String(),
		WarmupThreshold:   humanize.IBytes(t.WarmupThreshold),
		WarmupDebounce:    t.WarmupDebounce.String(),
		TickInterval:      t.TickInterval.String(),
		SpeedNoiseFloor:   humanize.IBytes(uint64(t.SpeedNoiseFloor)),
		LogWaitTimeout:    t.LogWaitTimeout.String(),
		LogPollInterval:   t.LogPollInterval.String(),
	}
}

// SearchPaths lists config locations in lookup order.
func SearchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		"config.json",
		filepath.Join(homeDir, ".workshop", "config.json"),
		filepath.Join(homeDir, ".config", "workshop", "config.json"),
	}, nil
}

// ReadConfig reads the first config file found, falling back to defaults when
// none exists, then applies WORKSHOP_* environment overrides.
func ReadConfig() (*model.Config, error) {
	paths, err := SearchPaths()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	LoadedConfigPath = ""
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config at %s: %w", path, err)
		}
		LoadedConfigPath = path
		warnInsecurePermissions(path)
		break
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply %s_* environment: %w", EnvPrefix, err)
	}
	return cfg, nil
}

// The config may hold a Gotify token.
func warnInsecurePermissions(configPath string) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return
	}
	mode := fileInfo.Mode()
	if mode.Perm()&0077 == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s WARNING: Config file has insecure permissions (%04o)\n", ui.ColorYellow+ui.SymbolWarning+ui.ColorReset, mode.Perm())
	fmt.Fprintf(os.Stderr, "   File: %s\n", configPath)
	if runtime.GOOS == "windows" {
		fmt.Fprintf(os.Stderr, "   Windows ACLs in use; skipping chmod auto-fix\n\n")
		return
	}
	if chmodErr := os.Chmod(configPath, 0600); chmodErr != nil {
		fmt.Fprintf(os.Stderr, "   Auto-fix failed: %v\n", chmodErr)
		fmt.Fprintf(os.Stderr, "   Fix manually: chmod 600 %s\n\n", configPath)
	} else {
		fmt.Fprintf(os.Stderr, "   Auto-fix applied: chmod 600 %s\n\n", configPath)
	}
}

// ParseArgs parses CLI arguments using go-arg.
func ParseArgs() *model.Args {
	var args model.Args
	arg.MustParse(&args)
	return &args
}

// ParseCfg reads config, applies CLI overrides, and validates the result.
func ParseCfg(args *model.Args) (*model.Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}
	if args != nil {
		if args.GameDir != "" {
			cfg.GameDir = args.GameDir
		}
		if args.Retries != -1 {
			cfg.RetryAttempts = args.Retries
		}
	}
	cfg.GameDir = strings.TrimSpace(cfg.GameDir)
	cfg.SteamCMDDir = strings.TrimSpace(cfg.SteamCMDDir)
	if cfg.AppID == "" {
		cfg.AppID = model.DefaultAppID
	}
	for name, dir := range map[string]string{"gameDir": cfg.GameDir, "steamcmdDir": cfg.SteamCMDDir} {
		if err := helpers.ValidatePath(dir); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if _, err := ResolveTuning(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveTuning converts the config's textual heuristics into a Tuning.
// Empty fields keep their defaults; retry attempts are clamped to 1..1000.
func ResolveTuning(cfg *model.Config) (model.Tuning, error) {
	t := model.DefaultTuning()
	if cfg.RetryAttempts != 0 {
		t.RetryAttempts = retry.ClampAttempts(cfg.RetryAttempts)
	}
	if cfg.FastFailThreshold > 0 {
		t.FastFailThreshold = cfg.FastFailThreshold
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"fastFailWindow", cfg.FastFailWindow, &t.FastFailWindow},
		{"resetPause", cfg.ResetPause, &t.ResetPause},
		{"warmupDebounce", cfg.WarmupDebounce, &t.WarmupDebounce},
		{"tickInterval", cfg.TickInterval, &t.TickInterval},
		{"logWaitTimeout", cfg.LogWaitTimeout, &t.LogWaitTimeout},
		{"logPollInterval", cfg.LogPollInterval, &t.LogPollInterval},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return t, fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		if parsed < 0 {
			return t, fmt.Errorf("invalid %s %q: must not be negative", d.name, d.value)
		}
		*d.dst = parsed
	}
	if t.TickInterval <= 0 || t.LogPollInterval <= 0 {
		return t, errors.New("tickInterval and logPollInterval must be positive")
	}

	if v := strings.TrimSpace(cfg.WarmupThreshold); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return t, fmt.Errorf("invalid warmupThreshold %q: %w", v, err)
		}
		t.WarmupThreshold = n
	}
	if v := strings.TrimSpace(cfg.SpeedNoiseFloor); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return t, fmt.Errorf("invalid speedNoiseFloor %q: %w", v, err)
		}
		t.SpeedNoiseFloor = float64(n)
	}
	return t, nil
}

// SteamCMDDir returns the tool root, defaulting to ~/.workshop/steamcmd.
func SteamCMDDir(cfg *model.Config) (string, error) {
	if cfg.SteamCMDDir != "" {
		return cfg.SteamCMDDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".workshop", "steamcmd"), nil
}

// RequireGameDir fails when no game directory is configured.
func RequireGameDir(cfg *model.Config) error {
	if cfg.GameDir == "" {
		return fmt.Errorf("game directory not set (use --game-dir, %s_GAME_DIR, or gameDir in config.json)", EnvPrefix)
	}
	return nil
}

// WriteConfig writes the config to the same file that was loaded by ReadConfig.
// With nothing loaded it writes ~/.workshop/config.json.
func WriteConfig(cfg *model.Config) (string, error) {
	configData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	targetPath := LoadedConfigPath
	if targetPath == "" {
		paths, err := SearchPaths()
		if err != nil {
			return "", err
		}
		targetPath = paths[1]
	}

	dir := filepath.Dir(targetPath)
	if dir != "." {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return "", fmt.Errorf("failed to create config directory %s: %w", dir, mkErr)
		}
	}

	if err := os.WriteFile(targetPath, configData, 0600); err != nil {
		return "", fmt.Errorf("failed to write config to %s: %w", targetPath, err)
	}
	LoadedConfigPath = targetPath
	return targetPath, nil
}

// PromptForConfig runs the interactive first-time setup and returns the new config.
func PromptForConfig(in io.Reader) (*model.Config, error) {
	scanner := bufio.NewScanner(in)
	ui.PrintHeader("First Time Setup")
	ui.PrintInfo("No config.json found. Let's create one!")
	fmt.Println()

	cfg := Default()

	fmt.Printf("%s%s%s Enter your game directory: ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset)
	scanner.Scan()
	cfg.GameDir = strings.TrimSpace(scanner.Text())
	if cfg.GameDir == "" {
		return nil, errors.New("game directory is required")
	}

	fmt.Printf("%s%s%s Enter SteamCMD directory (default: ~/.workshop/steamcmd): ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset)
	scanner.Scan()
	cfg.SteamCMDDir = strings.TrimSpace(scanner.Text())

	fmt.Printf("%s%s%s Maximum download attempts [1-1000] (default: %d): ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset, model.DefaultRetryAttempts)
	scanner.Scan()
	if s := strings.TrimSpace(scanner.Text()); s != "" {
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < model.MinRetryAttempts || n > model.MaxRetryAttempts {
			return nil, errors.New("attempts must be between 1 and 1000")
		}
		cfg.RetryAttempts = n
	}

	fmt.Printf("\n%s%s%s Push results to Gotify? [y/N] (default: N): ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset)
	scanner.Scan()
	if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer == "y" || answer == "yes" {
		fmt.Print("Enter Gotify server URL: ")
		scanner.Scan()
		cfg.GotifyURL = strings.TrimSpace(scanner.Text())
		fmt.Print("Enter Gotify application token: ")
		scanner.Scan()
		cfg.GotifyToken = strings.TrimSpace(scanner.Text())
		if cfg.GotifyURL == "" || cfg.GotifyToken == "" {
			return nil, errors.New("gotify URL and token are both required")
		}
	}
	return cfg, scanner.Err()
}
