//go:build !windows

package steamcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmagar/workshop-cli/internal/testutil"
)

func runAsync(s *Supervisor, ctx context.Context, tool string) <-chan ExitOutcome {
	done := make(chan ExitOutcome, 1)
	go func() {
		out, _ := s.Run(ctx, tool, nil, true)
		done <- out
	}()
	return done
}

func TestSupervisor_ReportsExitCodeAndOutput(t *testing.T) {
	tool := filepath.Join(t.TempDir(), "steamcmd.sh")
	testutil.WriteScript(t, tool, "echo Steam Console Client\nexit 7")

	var out bytes.Buffer
	s := &Supervisor{Output: &out}
	outcome, err := s.Run(context.Background(), tool, []string{"+quit"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Code != 7 || outcome.Cancelled {
		t.Fatalf("outcome = %+v, want code 7 not cancelled", outcome)
	}
	if !strings.Contains(out.String(), "Steam Console Client") {
		t.Fatalf("hidden output not captured: %q", out.String())
	}
	if s.Running() {
		t.Fatal("slot not cleared after exit")
	}
}

func TestSupervisor_TerminateMarksCancelled(t *testing.T) {
	tool := filepath.Join(t.TempDir(), "steamcmd.sh")
	testutil.WriteScript(t, tool, "sleep 30")

	s := &Supervisor{}
	done := runAsync(s, context.Background(), tool)
	testutil.Eventually(t, 5*time.Second, s.Running, "child never registered")

	if !s.Terminate() {
		t.Fatal("Terminate reported nothing running")
	}
	select {
	case outcome := <-done:
		if !outcome.Cancelled {
			t.Fatalf("outcome = %+v, want cancelled", outcome)
		}
		if outcome.Elapsed > 10*time.Second {
			t.Fatalf("child not killed promptly: %v", outcome.Elapsed)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after Terminate")
	}

	if s.Terminate() {
		t.Fatal("Terminate after exit must be a no-op")
	}
}

func TestSupervisor_TerminateKillsSpawnedChildren(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "steamcmd.sh")
	marker := filepath.Join(dir, "relaunched.alive")
	testutil.WriteScript(t, tool, "(sleep 1; touch '"+marker+"') &\nwait")

	s := &Supervisor{}
	done := runAsync(s, context.Background(), tool)
	testutil.Eventually(t, 5*time.Second, s.Running, "child never registered")
	s.Terminate()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after Terminate")
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatalf("spawned child outlived Terminate, stat err = %v", err)
	}
}

func TestSupervisor_ContextCancelTerminates(t *testing.T) {
	tool := filepath.Join(t.TempDir(), "steamcmd.sh")
	testutil.WriteScript(t, tool, "sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{}
	done := runAsync(s, ctx, tool)
	testutil.Eventually(t, 5*time.Second, s.Running, "child never registered")
	cancel()

	select {
	case outcome := <-done:
		if !outcome.Cancelled {
			t.Fatalf("outcome = %+v, want cancelled", outcome)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestSupervisor_CancelledContextSkipsStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Supervisor{}
	outcome, err := s.Run(ctx, "/nonexistent/steamcmd.sh", nil, true)
	if err != nil || !outcome.Cancelled {
		t.Fatalf("Run = %+v, %v; want cancelled without error", outcome, err)
	}
}

func TestSupervisor_StartFailure(t *testing.T) {
	s := &Supervisor{}
	if _, err := s.Run(context.Background(), filepath.Join(t.TempDir(), "missing.sh"), nil, true); err == nil {
		t.Fatal("expected start error for missing tool")
	}
	if s.Running() {
		t.Fatal("slot must stay empty after a start failure")
	}
}
