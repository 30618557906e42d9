package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jmagar/workshop-cli/internal/acquire"
	"github.com/jmagar/workshop-cli/internal/api"
	"github.com/jmagar/workshop-cli/internal/cache"
	"github.com/jmagar/workshop-cli/internal/config"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/notify"
	"github.com/jmagar/workshop-cli/internal/progress"
	"github.com/jmagar/workshop-cli/internal/runtime"
	"github.com/jmagar/workshop-cli/internal/status"
	"github.com/jmagar/workshop-cli/internal/steamcmd"
	"github.com/jmagar/workshop-cli/internal/ui"
)

const renderInterval = 250 * time.Millisecond

// metadataSource is the cached Steam Web API lookup shared by info and download.
func metadataSource(cfg *model.Config) acquire.MetadataSource {
	return cache.CachedMetadata{Source: api.Metadata{Endpoint: cfg.MetadataURL}}
}

// newOrchestrator wires every collaborator of a download. The returned closer
// releases the tool output log.
func newOrchestrator(cfg *model.Config, tuning model.Tuning, out *console) (*acquire.Orchestrator, func(), error) {
	root, err := config.SteamCMDDir(cfg)
	if err != nil {
		return nil, nil, err
	}
	layout := steamcmd.NewLayout(root, cfg.AppID)

	closer := func() {}
	supervisor := &steamcmd.Supervisor{}
	if cacheDir, err := cache.GetCacheDir(); err == nil {
		logFile, err := os.OpenFile(filepath.Join(cacheDir, "steamcmd.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			supervisor.Output = logFile
			closer = func() { _ = logFile.Close() }
		}
	}

	installer := &steamcmd.Installer{
		Layout: layout,
		URL:    cfg.SteamCMDURL,
		Runner: supervisor,
		Logf:   out.Logf,
	}
	host := &terminalHost{
		out:     out,
		gameDir: cfg.GameDir,
		push:    notify.BuildNotifier(cfg.GotifyURL, cfg.GotifyToken),
	}

	orch := acquire.New(acquire.Options{
		Layout:     layout,
		GameDir:    cfg.GameDir,
		Tuning:     tuning,
		Metadata:   metadataSource(cfg),
		Installer:  installer,
		Runner:     supervisor,
		NetCounter: progress.NewNetCounter(),
		Host:       host,
		Lock: func() (func(), error) {
			lock, err := cache.TryAcquisitionLock()
			if err != nil {
				return nil, err
			}
			return func() { _ = lock.Release() }, nil
		},
		Logf: out.Logf,
	}, status.NewCell(), &status.ConfirmCell{})
	return orch, closer, nil
}

func runDownload(args *model.Args, cfg *model.Config) error {
	dl := args.Download
	kind, ok := model.ParseKind(dl.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q (use map or mod)", dl.Kind)
	}
	if err := helpers.ValidateItemID(dl.ItemID); err != nil {
		return err
	}
	if err := config.RequireGameDir(cfg); err != nil {
		return err
	}
	tuning, err := config.ResolveTuning(cfg)
	if err != nil {
		return err
	}

	runtime.PrintActiveRuntimeHint(os.Getpid())
	if _, busy := runtime.ActiveSession(os.Getpid()); busy {
		ui.PrintError(acquire.MsgBusy)
		return errResult
	}

	interactive := runtime.IsInteractive() && !runtime.IsDetachedChild()
	out := &console{tty: interactive}
	orch, closeOrch, err := newOrchestrator(cfg, tuning, out)
	if err != nil {
		return err
	}
	defer closeOrch()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !dl.Yes && interactive {
		if err := orch.Offer(ctx, dl.ItemID, kind, dl.ItemID); err != nil {
			return err
		}
		req := orch.Confirm().Copy()
		orch.Confirm().Decline()
		if !promptYesNo(os.Stdin, req.Title, req.Message) {
			ui.PrintInfo("Download skipped")
			return nil
		}
	}

	if runtime.MaybeDetachAndExit(withYes(os.Args[1:]), args) {
		return nil
	}
	if runtime.IsDetachedChild() {
		runtime.SetupSessionPersistence()
	}

	if dl.Reconnect != "" {
		orch.SetPendingReconnect(dl.Reconnect)
	}
	results, err := orch.Request(ctx, dl.ItemID, kind)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyDownloading) {
			return errResult
		}
		return err
	}
	runtime.InitRuntimeStatus(dl.ItemID, kind)

	result := present(orch, results, out)
	runtime.FinalizeRuntimeStatus(result.String())
	if result != model.ResultSuccess {
		return errResult
	}
	return nil
}

// withYes makes a detached child skip the confirmation already answered here.
func withYes(osArgs []string) []string {
	for _, a := range osArgs {
		if a == "-y" || a == "--yes" {
			return osArgs
		}
	}
	return append(append([]string{}, osArgs...), "--yes")
}

// promptYesNo prints a confirmation and reads one line. Only y or yes accepts.
func promptYesNo(in io.Reader, title, message string) bool {
	ui.PrintSection(title)
	fmt.Println(message)
	fmt.Printf("%s%s%s [y/N]: ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// present drives the terminal while the acquisition runs: it renders the
// status cell, mirrors it into the runtime status file, and routes hotkeys,
// signals and cross-process cancel requests to the cell's cancel action.
func present(orch *acquire.Orchestrator, results <-chan model.AttemptResult, out *console) model.AttemptResult {
	cell := orch.Cell()

	var keys <-chan byte
	if out.tty {
		fd := int(os.Stdin.Fd())
		if restore, err := runtime.EnableHotkeyInput(fd); err != nil {
			out.Print(func() { ui.PrintWarning(fmt.Sprintf("Hotkeys unavailable: %v", err)) })
		} else {
			defer restore()
			ch := make(chan byte, 8)
			go runtime.ReadKeys(os.Stdin, ch)
			keys = ch
			out.Print(func() { ui.PrintInfo("Hotkeys: c or Ctrl-C cancel download") })
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sigCh)

	requestCancel := func(reason string) {
		if cell.Cancel() {
			out.Print(func() { ui.PrintWarning(reason) })
		}
	}

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	var result model.AttemptResult
	for done := false; !done; {
		select {
		case r, ok := <-results:
			if ok {
				result = r
			}
			done = true
		case <-sigCh:
			requestCancel("Interrupted")
		case b, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if runtime.IsCancelKey(b) {
				requestCancel("Cancel requested. Stopping download...")
			}
		case <-ticker.C:
			state := cell.Copy()
			out.Render(state)
			if state.Active {
				runtime.UpdateRuntimeProgress(state)
			}
			if runtime.CancelRequested() {
				requestCancel("Cancel requested by another process")
			}
		}
	}
	out.Print(func() {})

	answerConfirmation(orch.Confirm(), keys, out)
	return result
}

// answerConfirmation resolves a pending post-download confirmation with a
// keystroke. Without a terminal it is declined.
func answerConfirmation(confirm *status.ConfirmCell, keys <-chan byte, out *console) {
	req := confirm.Copy()
	if !req.Active {
		return
	}
	if keys == nil {
		confirm.Decline()
		out.Print(func() { ui.PrintSuccess(acquire.MsgSuccess) })
		return
	}
	out.Print(func() {
		ui.PrintSection(req.Title)
		fmt.Println(strings.ReplaceAll(req.Message, "\n", "\r\n"))
		fmt.Printf("%s%s%s [y/N]: ", ui.ColorCyan, ui.BulletArrow, ui.ColorReset)
	})
	b, ok := <-keys
	fmt.Print("\r\n")
	if ok && runtime.IsAcceptKey(b) {
		confirm.Accept()
		return
	}
	confirm.Decline()
}
