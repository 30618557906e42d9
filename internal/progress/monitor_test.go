package progress

import (
	"context"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/status"
)

const (
	downloadsDir = "/steam/downloads/42"
	contentDir   = "/steam/content/42"
)

// seqCounter returns its readings in order, repeating the last one.
type seqCounter struct {
	readings []uint64
	i        int
}

func (c *seqCounter) InboundBytes() (uint64, error) {
	v := c.readings[min(c.i, len(c.readings)-1)]
	c.i++
	return v, nil
}

type fixture struct {
	mon   *Monitor
	cell  *status.Cell
	sizes map[string]uint64
	t0    time.Time
}

func newFixture(t *testing.T, expected uint64, net NetCounter) *fixture {
	t.Helper()
	f := &fixture{
		cell:  status.NewCell(),
		sizes: map[string]uint64{},
		t0:    time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local),
	}
	f.mon = New(Config{
		DownloadsDir:  downloadsDir,
		ContentDir:    contentDir,
		DisplayName:   "Nacht",
		ExpectedBytes: expected,
		Start:         f.t0,
		Tuning:        model.DefaultTuning(),
	}, f.cell, net, func() bool { return true })
	f.mon.SizeOf = func(dir string) uint64 { return f.sizes[dir] }
	return f
}

func (f *fixture) at(secs float64) time.Time {
	return f.t0.Add(time.Duration(secs * float64(time.Second)))
}

// leaveWarmup ticks at t0 with payload present and again after the debounce.
func (f *fixture) leaveWarmup(t *testing.T) {
	t.Helper()
	f.mon.Tick(f.at(0))
	s := f.mon.Tick(f.at(10))
	if s.Phase != model.PhaseActive {
		t.Fatalf("still in warm-up after debounce: %+v", s)
	}
}

func TestTick_WarmupPublishesPreparingOnly(t *testing.T) {
	f := newFixture(t, 10<<20, &seqCounter{readings: []uint64{0}})

	s := f.mon.Tick(f.at(1))
	if s.StatusLine != "Preparing download... | Elapsed: 00:00:01" {
		t.Fatalf("StatusLine = %q", s.StatusLine)
	}
	if !s.Active || s.Phase != model.PhaseWarmup || s.ETASeconds != -1 || s.DownloadedBytes != 0 {
		t.Fatalf("unexpected warm-up state: %+v", s)
	}
	if s.DisplayName != "Nacht" {
		t.Fatalf("DisplayName = %q", s.DisplayName)
	}
}

func TestTick_WarmupNeedsThresholdAndDebounce(t *testing.T) {
	f := newFixture(t, 0, &seqCounter{readings: []uint64{0}})
	var phases []model.Phase
	f.mon.OnPhase = func(p model.Phase) { phases = append(phases, p) }

	f.sizes[downloadsDir] = 4096
	if s := f.mon.Tick(f.at(20)); s.Phase != model.PhaseWarmup {
		t.Fatal("size at threshold must not start the debounce")
	}

	f.sizes[downloadsDir] = 4097
	f.mon.Tick(f.at(21))
	if s := f.mon.Tick(f.at(30.5)); s.Phase != model.PhaseWarmup {
		t.Fatal("warm-up ended before debounce elapsed")
	}
	if s := f.mon.Tick(f.at(31)); s.Phase != model.PhaseActive {
		t.Fatal("warm-up did not end after debounce")
	}
	if len(phases) != 1 || phases[0] != model.PhaseActive {
		t.Fatalf("OnPhase calls = %v, want [active]", phases)
	}
}

func TestTick_SpeedSmoothingIncludesZeroDeltas(t *testing.T) {
	net := &seqCounter{readings: []uint64{0, 1000, 3000, 3000, 9000}}
	f := newFixture(t, 0, net)
	f.sizes[downloadsDir] = 8192
	f.leaveWarmup(t)

	want := []float64{1000, 1300, 910, 2437}
	for i, w := range want {
		s := f.mon.Tick(f.at(float64(11 + i)))
		if math.Abs(s.SpeedBytesPerSec-w) > 0.001 {
			t.Fatalf("tick %d speed = %.3f, want %.3f", i, s.SpeedBytesPerSec, w)
		}
	}
}

func TestTick_ETAAndStatusLine(t *testing.T) {
	net := &seqCounter{readings: []uint64{0, 1 << 20}}
	f := newFixture(t, 10<<20, net)
	f.sizes[downloadsDir] = 5 << 20
	f.leaveWarmup(t)

	s := f.mon.Tick(f.at(11))
	if s.ETASeconds != 5 {
		t.Fatalf("ETASeconds = %d, want 5", s.ETASeconds)
	}
	if want := "5.00 MB / 10.00 MB | Elapsed: 00:00:11 | 1.00 MB/s"; s.StatusLine != want {
		t.Fatalf("StatusLine = %q, want %q", s.StatusLine, want)
	}
	if s.DownloadedBytes != 5<<20 || s.TotalBytes != 10<<20 {
		t.Fatalf("bytes = %d/%d", s.DownloadedBytes, s.TotalBytes)
	}
}

func TestTick_NoETABelowNoiseFloor(t *testing.T) {
	net := &seqCounter{readings: []uint64{0, 1000}}
	f := newFixture(t, 10<<20, net)
	f.sizes[downloadsDir] = 5 << 20
	f.leaveWarmup(t)

	if s := f.mon.Tick(f.at(11)); s.ETASeconds != -1 {
		t.Fatalf("ETASeconds = %d, want -1 at 1000 B/s", s.ETASeconds)
	}
}

func TestTick_ClampsToExpected(t *testing.T) {
	net := &seqCounter{readings: []uint64{0, 4 << 20}}
	f := newFixture(t, 1<<20, net)
	f.sizes[downloadsDir] = 3 << 20
	f.leaveWarmup(t)

	s := f.mon.Tick(f.at(11))
	if s.DownloadedBytes != 1<<20 {
		t.Fatalf("DownloadedBytes = %d, want clamp to %d", s.DownloadedBytes, 1<<20)
	}
	if s.ETASeconds != 0 {
		t.Fatalf("ETASeconds = %d, want 0", s.ETASeconds)
	}
}

func TestTick_FallsBackToContentDir(t *testing.T) {
	f := newFixture(t, 0, &seqCounter{readings: []uint64{0}})
	f.sizes[contentDir] = 8192
	f.leaveWarmup(t)

	s := f.mon.Tick(f.at(11))
	if s.DownloadedBytes != 8192 {
		t.Fatalf("DownloadedBytes = %d, want content dir size", s.DownloadedBytes)
	}
	if !strings.HasPrefix(s.StatusLine, "8.00 KB | Elapsed: 00:00:11") {
		t.Fatalf("StatusLine = %q", s.StatusLine)
	}
}

func TestTick_UnavailableCounterLeavesSpeedUnknown(t *testing.T) {
	f := newFixture(t, 10<<20, nil)
	f.sizes[downloadsDir] = 5 << 20
	f.leaveWarmup(t)

	s := f.mon.Tick(f.at(11))
	if s.SpeedBytesPerSec != 0 || s.ETASeconds != -1 {
		t.Fatalf("speed=%v eta=%d, want unknown", s.SpeedBytesPerSec, s.ETASeconds)
	}
	if strings.Contains(s.StatusLine, "/s") {
		t.Fatalf("StatusLine shows a speed: %q", s.StatusLine)
	}
}

func TestTick_WarmupRearmsBaseline(t *testing.T) {
	// Traffic during warm-up must not show up in the first speed sample.
	net := &seqCounter{readings: []uint64{50 << 20, 50<<20 + 2000}}
	f := newFixture(t, 0, net)
	f.sizes[downloadsDir] = 8192
	f.leaveWarmup(t)

	if s := f.mon.Tick(f.at(11)); math.Abs(s.SpeedBytesPerSec-2000) > 0.001 {
		t.Fatalf("first speed = %v, want 2000", s.SpeedBytesPerSec)
	}
}

func TestTick_PreservesCancelAction(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.cell.Access(func(s *model.AcquisitionState) {
		s.OnCancel = model.NewAction(model.ActionCancel, func() {})
		s.ItemID = "42"
	})
	s := f.mon.Tick(f.at(1))
	if !s.OnCancel.IsSet() || s.ItemID != "42" {
		t.Fatalf("publish dropped orchestrator fields: %+v", s)
	}
}

func TestRun_StopsWhenInactive(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	cell := status.NewCell()
	cfg := Config{Start: time.Now(), Tuning: model.DefaultTuning()}
	cfg.Tuning.TickInterval = 5 * time.Millisecond
	mon := New(cfg, cell, nil, active.Load)
	mon.SizeOf = func(string) uint64 { return 0 }

	done := make(chan struct{})
	go func() {
		mon.Run(context.Background())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	active.Store(false)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept ticking after the acquisition went inactive")
	}
	if !strings.HasPrefix(cell.Copy().StatusLine, "Preparing download...") {
		t.Fatalf("StatusLine = %q", cell.Copy().StatusLine)
	}
}

func TestParseProcNetDev(t *testing.T) {
	const sample = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 9999999    100    0    0    0     0          0         0  9999999    100    0    0    0     0       0          0
  eth0: 1000       10    0    0    0     0          0         0     500      5    0    0    0     0       0          0
 wlan0:2500        20    0    0    0     0          0         0     700      7    0    0    0     0       0          0
`
	got, err := parseProcNetDev(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parseProcNetDev: %v", err)
	}
	if got != 3500 {
		t.Fatalf("got %d, want 3500", got)
	}
}
