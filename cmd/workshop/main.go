package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmagar/workshop-cli/internal/cache"
	"github.com/jmagar/workshop-cli/internal/config"
	"github.com/jmagar/workshop-cli/internal/eventlog"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/ui"
)

// errResult marks a download that ended without success; the message has
// already been shown.
var errResult = errors.New("download did not complete")

func main() {
	model.ArgsDescriptionFunc = description

	// Check if first argument is "help" before parsing
	if len(os.Args) > 1 && os.Args[1] == "help" {
		os.Args[1] = "--help"
	}
	args := config.ParseArgs()

	// Relative paths are resolved before switching to the binary's directory.
	if args.GameDir != "" {
		if abs, err := filepath.Abs(args.GameDir); err == nil {
			args.GameDir = abs
		}
	}
	scriptDir, err := helpers.GetScriptDir()
	if err != nil {
		helpers.HandleErr("Failed to locate the executable.", err, true)
	}
	if err := os.Chdir(scriptDir); err != nil {
		helpers.HandleErr("Failed to enter the executable directory.", err, true)
	}

	if logPath, err := cache.EventLogPath(); err == nil {
		if err := eventlog.Init(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if err := run(args); err != nil {
		if errors.Is(err, errResult) {
			os.Exit(1)
		}
		helpers.HandleErr("workshop failed.", err, true)
	}
}

func run(args *model.Args) error {
	switch {
	case args.Completion != nil:
		return runCompletion(args.Completion)
	case args.Status != nil:
		return runStatus()
	case args.Cancel != nil:
		return runCancel(args.Cancel)
	}

	cfg, err := config.ParseCfg(args)
	if err != nil {
		return fmt.Errorf("failed to parse config/args: %w", err)
	}

	switch {
	case args.Config != nil:
		return runConfig(args.Config, cfg)
	case args.Info != nil:
		return runInfo(args.Info, cfg)
	case args.Download != nil:
		return runDownload(args, cfg)
	}
	return displayWelcome()
}

func description() string {
	return ui.ColorBold + "workshop" + ui.ColorReset + " downloads Steam Workshop maps and mods with SteamCMD."
}

func displayWelcome() error {
	ui.PrintHeader("Steam Workshop Downloader")
	ui.PrintList([]string{
		"workshop download <id> [--kind map|mod] [--reconnect addr] [--yes] [--detach]",
		"workshop info <id>",
		"workshop status",
		"workshop cancel [--force]",
		"workshop config [show|init]",
		"workshop completion <shell>",
	}, ui.ColorCyan)
	fmt.Println()
	ui.PrintInfo("Run `workshop --help` for all options")
	return nil
}
