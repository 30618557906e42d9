package runtime

import (
	"os"
	"strings"
	"testing"

	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/testutil"
)

func resetRuntimeState(t *testing.T) {
	t.Helper()
	testutil.WithTempHome(t)
	RuntimeStatusMu.Lock()
	RuntimeStatusPath = ""
	Status = model.RuntimeStatus{}
	RuntimeStatusMu.Unlock()
	t.Cleanup(func() {
		RuntimeStatusMu.Lock()
		RuntimeStatusPath = ""
		RuntimeStatusMu.Unlock()
	})
}

func TestRuntimeStatus_Lifecycle(t *testing.T) {
	resetRuntimeState(t)

	InitRuntimeStatus("123", model.KindMod)
	got, err := ReadRuntimeStatus()
	if err != nil {
		t.Fatalf("ReadRuntimeStatus: %v", err)
	}
	if got.State != StateRunning || got.PID != os.Getpid() || got.ItemID != "123" || got.Kind != "Mod" {
		t.Fatalf("initial status = %+v", got)
	}

	UpdateRuntimeProgress(model.AcquisitionState{
		Active:          true,
		AcquisitionID:   "acq-1",
		DisplayName:     "Nacht",
		StatusLine:      "1.00 MB / 2.00 MB",
		Phase:           model.PhaseActive,
		DownloadedBytes: 1 << 20,
		TotalBytes:      2 << 20,
		ETASeconds:      4,
	})
	WriteRuntimeStatus(true)
	got, err = ReadRuntimeStatus()
	if err != nil {
		t.Fatal(err)
	}
	if got.AcquisitionID != "acq-1" || got.Label != "Nacht" || got.Phase != model.PhaseActive || got.Downloaded != 1<<20 || got.ETASeconds != 4 {
		t.Fatalf("progress status = %+v", got)
	}

	// A cleared cell keeps the last label.
	UpdateRuntimeProgress(model.IdleState())
	FinalizeRuntimeStatus(model.ResultSuccess.String())
	got, err = ReadRuntimeStatus()
	if err != nil {
		t.Fatal(err)
	}
	if got.State != StateFinished || got.Result != "success" || got.Label != "Nacht" || got.ETASeconds != -1 {
		t.Fatalf("final status = %+v", got)
	}
}

func TestReadRuntimeStatus_MarksDeadProcessStale(t *testing.T) {
	resetRuntimeState(t)
	InitRuntimeStatus("1", model.KindMap)

	RuntimeStatusMu.Lock()
	Status.PID = 1 << 30
	RuntimeStatusMu.Unlock()
	WriteRuntimeStatus(true)

	got, err := ReadRuntimeStatus()
	if err != nil {
		t.Fatal(err)
	}
	if got.State != StateStale {
		t.Fatalf("State = %q, want stale", got.State)
	}
	if _, ok := ActiveSession(os.Getpid()); ok {
		t.Fatal("stale session reported active")
	}
}

func TestActiveSession_IgnoresOwnPID(t *testing.T) {
	resetRuntimeState(t)
	InitRuntimeStatus("1", model.KindMap)
	if _, ok := ActiveSession(os.Getpid()); ok {
		t.Fatal("own session reported as another process")
	}
	if _, ok := ActiveSession(-1); !ok {
		t.Fatal("live session not reported to a different pid")
	}
}

func TestRuntimeControl_Cancel(t *testing.T) {
	resetRuntimeState(t)
	if CancelRequested() {
		t.Fatal("cancel requested without a control file")
	}
	InitRuntimeStatus("1", model.KindMap)
	if CancelRequested() {
		t.Fatal("fresh session starts cancelled")
	}
	if err := RequestRuntimeCancel(); err != nil {
		t.Fatalf("RequestRuntimeCancel: %v", err)
	}
	if !CancelRequested() {
		t.Fatal("cancel flag not persisted")
	}
}

func TestShouldDetach(t *testing.T) {
	t.Setenv(DetachedEnvVar, "")
	tests := []struct {
		name string
		args *model.Args
		want bool
	}{
		{"nil", nil, false},
		{"status", &model.Args{Status: &model.StatusCmd{}}, false},
		{"download attached", &model.Args{Download: &model.DownloadCmd{ItemID: "1"}}, false},
		{"download detach", &model.Args{Download: &model.DownloadCmd{ItemID: "1", Detach: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldDetach(tt.args); got != tt.want {
				t.Errorf("ShouldDetach = %v, want %v", got, tt.want)
			}
		})
	}

	t.Setenv(DetachedEnvVar, "1")
	if ShouldDetach(&model.Args{Download: &model.DownloadCmd{Detach: true}}) {
		t.Fatal("detached child must not detach again")
	}
}

func TestReadKeys(t *testing.T) {
	keys := make(chan byte, 8)
	ReadKeys(strings.NewReader("xc\x03"), keys)
	var got []byte
	for b := range keys {
		got = append(got, b)
	}
	if string(got) != "xc\x03" {
		t.Fatalf("keys = %q", got)
	}
}

func TestKeyClassification(t *testing.T) {
	for _, b := range []byte{'c', 'C', 0x03} {
		if !IsCancelKey(b) {
			t.Errorf("IsCancelKey(%q) = false", b)
		}
	}
	for _, b := range []byte{'x', 'y', '\n'} {
		if IsCancelKey(b) {
			t.Errorf("IsCancelKey(%q) = true", b)
		}
	}
	if !IsAcceptKey('y') || !IsAcceptKey('Y') || IsAcceptKey('n') {
		t.Fatal("IsAcceptKey misclassifies")
	}
}

func TestIsProcessAlive(t *testing.T) {
	if !IsProcessAlive(os.Getpid()) {
		t.Fatal("own process not alive")
	}
	if IsProcessAlive(0) || IsProcessAlive(-5) {
		t.Fatal("non-positive pid reported alive")
	}
}
