package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmagar/workshop-cli/internal/completion"
	"github.com/jmagar/workshop-cli/internal/config"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/runtime"
	"github.com/jmagar/workshop-cli/internal/ui"
)

func runInfo(cmd *model.InfoCmd, cfg *model.Config) error {
	if err := helpers.ValidateItemID(cmd.ItemID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	info, err := metadataSource(cfg).ItemDetails(ctx, cmd.ItemID)
	if err != nil {
		return fmt.Errorf("workshop item %s: %w", cmd.ItemID, err)
	}
	ui.PrintHeader("Workshop Item " + cmd.ItemID)
	ui.PrintKeyValue("Title", info.Title, ui.ColorGreen)
	if info.FileSizeBytes > 0 {
		ui.PrintKeyValue("Size", fmt.Sprintf("%s (%s bytes)", helpers.FormatBytes(info.FileSizeBytes), humanize.Comma(int64(info.FileSizeBytes))), ui.ColorYellow)
	} else {
		ui.PrintKeyValue("Size", "unknown", ui.ColorYellow)
	}
	return nil
}

func runStatus() error {
	runtime.PrintRuntimeStatus()
	return nil
}

func runCancel(cmd *model.CancelCmd) error {
	status, err := runtime.ReadRuntimeStatus()
	if err != nil {
		if os.IsNotExist(err) {
			ui.PrintInfo("No download session found")
			return nil
		}
		return err
	}
	if status.State != runtime.StateRunning {
		ui.PrintInfo(fmt.Sprintf("No running download (last state: %s)", status.State))
		return nil
	}
	if cmd.Force {
		if err := runtime.CancelProcessByPID(status.PID, true); err != nil {
			return err
		}
		ui.PrintWarning(fmt.Sprintf("Killed download process (pid=%d)", status.PID))
		return nil
	}
	if err := runtime.RequestRuntimeCancel(); err != nil {
		return fmt.Errorf("failed to request cancel: %w", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Cancel requested for %s (pid=%d)", status.Label, status.PID))
	return nil
}

func runConfig(cmd *model.ConfigCmd, cfg *model.Config) error {
	switch cmd.Action {
	case "", "show":
		return showConfig(cfg)
	case "init":
		fresh, err := config.PromptForConfig(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		path, err := config.WriteConfig(fresh)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Config written to %s", path))
		ui.PrintInfo("You can edit it later to change these settings.")
		return nil
	default:
		return fmt.Errorf("unknown config action %q (use show or init)", cmd.Action)
	}
}

func showConfig(cfg *model.Config) error {
	tuning, err := config.ResolveTuning(cfg)
	if err != nil {
		return err
	}
	steamDir, err := config.SteamCMDDir(cfg)
	if err != nil {
		return err
	}
	source := config.LoadedConfigPath
	if source == "" {
		source = "built-in defaults"
	}

	ui.PrintHeader("Configuration")
	ui.PrintKeyValue("Loaded from", source, ui.ColorCyan)
	ui.PrintKeyValue("Game directory", orUnset(cfg.GameDir), ui.ColorGreen)
	ui.PrintKeyValue("SteamCMD directory", steamDir, ui.ColorGreen)
	ui.PrintKeyValue("App ID", cfg.AppID, ui.ColorGreen)
	ui.PrintKeyValue("Gotify", orUnset(cfg.GotifyURL), ui.ColorGreen)

	ui.PrintSection("Download Tuning")
	ui.PrintKeyValue("Attempts", strconv.Itoa(tuning.RetryAttempts), ui.ColorYellow)
	ui.PrintKeyValue("Fast fail", fmt.Sprintf("%d within %s", tuning.FastFailThreshold, tuning.FastFailWindow), ui.ColorYellow)
	ui.PrintKeyValue("Reset pause", tuning.ResetPause.String(), ui.ColorYellow)
	ui.PrintKeyValue("Warm-up", fmt.Sprintf("%s for %s", humanize.IBytes(tuning.WarmupThreshold), tuning.WarmupDebounce), ui.ColorYellow)
	ui.PrintKeyValue("Tick", tuning.TickInterval.String(), ui.ColorYellow)
	ui.PrintKeyValue("Speed floor", humanize.IBytes(uint64(tuning.SpeedNoiseFloor))+"/s", ui.ColorYellow)
	ui.PrintKeyValue("Log wait", tuning.LogWaitTimeout.String(), ui.ColorYellow)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func runCompletion(cmd *model.CompletionCmd) error {
	if cmd.Shell == "" {
		completion.PrintUsage()
		return nil
	}
	return completion.Write(os.Stdout, cmd.Shell)
}
