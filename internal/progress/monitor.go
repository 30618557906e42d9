// Package progress estimates download progress from on-disk growth and the
// host's inbound network counter, and publishes it to the status cell.
package progress

import (
	"context"
	"strings"
	"time"

	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/status"
)

const preparingLine = "Preparing download..."

// Config describes what one monitor watches.
type Config struct {
	DownloadsDir  string
	ContentDir    string
	DisplayName   string
	ExpectedBytes uint64
	Start         time.Time
	Tuning        model.Tuning
}

// Monitor samples progress on every tick. Tick is not safe for concurrent use;
// Run calls it from a single goroutine.
type Monitor struct {
	cfg      Config
	cell     *status.Cell
	net      NetCounter
	isActive func() bool

	// OnPhase is called once when warm-up ends.
	OnPhase func(model.Phase)
	// SizeOf measures a directory. Defaults to helpers.FolderSize.
	SizeOf func(dir string) uint64

	warmup        bool
	firstObserved time.Time
	baselineSet   bool
	prevNet       uint64
	lastTick      time.Time
	speed         float64
	hasSample     bool
}

// New returns a monitor in the warm-up phase. isActive must report false once
// the acquisition ended or a cancel was requested.
func New(cfg Config, cell *status.Cell, net NetCounter, isActive func() bool) *Monitor {
	if net == nil {
		net = unavailableCounter{}
	}
	if cfg.Tuning.TickInterval <= 0 {
		cfg.Tuning = model.DefaultTuning()
	}
	return &Monitor{
		cfg:      cfg,
		cell:     cell,
		net:      net,
		isActive: isActive,
		SizeOf:   helpers.FolderSize,
		warmup:   true,
		lastTick: cfg.Start,
	}
}

// Run ticks every TickInterval until ctx is done or the acquisition is no
// longer active. It never stops the tool itself.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Tuning.TickInterval)
	defer ticker.Stop()

	for {
		if !m.isActive() {
			return
		}
		m.Tick(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick takes one sample at now and publishes the resulting state.
func (m *Monitor) Tick(now time.Time) model.AcquisitionState {
	size := m.SizeOf(m.cfg.DownloadsDir)
	if size == 0 {
		size = m.SizeOf(m.cfg.ContentDir)
	}
	elapsed := helpers.FormatElapsed(now.Sub(m.cfg.Start))

	if m.warmup {
		if m.firstObserved.IsZero() && size > m.cfg.Tuning.WarmupThreshold {
			m.firstObserved = now
		}
		if !m.firstObserved.IsZero() && now.Sub(m.firstObserved) >= m.cfg.Tuning.WarmupDebounce {
			m.warmup = false
			if m.OnPhase != nil {
				m.OnPhase(model.PhaseActive)
			}
		}
	}

	if m.warmup {
		// Re-arm so the first real reading does not include warm-up traffic.
		m.baselineSet = false
		m.lastTick = now
		return m.publish(func(s *model.AcquisitionState) {
			s.Phase = model.PhaseWarmup
			s.StatusLine = preparingLine + " | Elapsed: " + elapsed
			s.DownloadedBytes = 0
			s.SpeedBytesPerSec = 0
			s.ETASeconds = -1
		})
	}

	expected := m.cfg.ExpectedBytes
	display := size
	if expected > 0 && display > expected {
		display = expected
	}

	m.sampleNetwork(now)

	eta := int64(-1)
	if expected > 0 && display > 0 && m.speed > m.cfg.Tuning.SpeedNoiseFloor {
		eta = max(int64(float64(expected-display)/m.speed), 0)
	}

	parts := make([]string, 0, 3)
	switch {
	case display > 0 && expected > 0:
		parts = append(parts, helpers.FormatBytes(display)+" / "+helpers.FormatBytes(expected))
	case display > 0:
		parts = append(parts, helpers.FormatBytes(display))
	case expected > 0:
		parts = append(parts, helpers.FormatBytes(0)+" / "+helpers.FormatBytes(expected))
	}
	parts = append(parts, "Elapsed: "+elapsed)
	if m.hasSample && m.speed > 0 {
		parts = append(parts, helpers.FormatBytes(uint64(m.speed))+"/s")
	}

	return m.publish(func(s *model.AcquisitionState) {
		s.Phase = model.PhaseActive
		s.StatusLine = strings.Join(parts, " | ")
		s.DownloadedBytes = display
		s.SpeedBytesPerSec = m.speed
		s.ETASeconds = eta
	})
}

func (m *Monitor) sampleNetwork(now time.Time) {
	netNow, err := m.net.InboundBytes()
	if err != nil {
		// No counter: speed stays unknown.
		m.lastTick = now
		return
	}
	if !m.baselineSet {
		m.prevNet = netNow
		m.baselineSet = true
		m.lastTick = now
		return
	}

	var delta uint64
	if netNow >= m.prevNet {
		delta = netNow - m.prevNet
	}
	m.prevNet = netNow

	dt := now.Sub(m.lastTick).Seconds()
	m.lastTick = now
	if dt <= 0 {
		return
	}
	raw := float64(delta) / dt
	if !m.hasSample {
		m.speed = raw
		m.hasSample = true
	} else {
		m.speed = 0.3*raw + 0.7*m.speed
	}
}

// publish applies fn on top of the current cell contents, keeping the
// orchestrator-owned fields and the pending cancel action intact.
func (m *Monitor) publish(fn func(*model.AcquisitionState)) model.AcquisitionState {
	var out model.AcquisitionState
	m.cell.Access(func(s *model.AcquisitionState) {
		s.Active = true
		s.DisplayName = m.cfg.DisplayName
		s.TotalBytes = m.cfg.ExpectedBytes
		fn(s)
		out = *s
	})
	return out
}
