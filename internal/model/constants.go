package model

import (
	"strings"
	"time"
)

// DefaultAppID is the Steam application the workshop items belong to.
const DefaultAppID = "311210"

// Retry defaults.
const (
	DefaultRetryAttempts     = 30
	MinRetryAttempts         = 1
	MaxRetryAttempts         = 1000
	DefaultFastFailWindow    = 15 * time.Second
	DefaultFastFailThreshold = 5
	DefaultResetPause        = 2 * time.Second
)

// Progress monitor defaults.
const (
	DefaultWarmupThreshold = 4096
	DefaultWarmupDebounce  = 10 * time.Second
	DefaultTickInterval    = 500 * time.Millisecond
	DefaultSpeedNoiseFloor = 1024
)

// Dump watcher defaults.
const (
	DefaultLogWaitTimeout  = 120 * time.Second
	DefaultLogPollInterval = 200 * time.Millisecond
)

// Message severities reported to the host.
const (
	SeverityInfo    = 1
	SeverityWarning = 2
	SeverityError   = 3
)

// Kind is the type of workshop item, which decides where it is installed.
type Kind int

const (
	KindMap Kind = iota
	KindMod
)

// String returns the display name of the kind.
func (k Kind) String() string {
	if k == KindMod {
		return "Mod"
	}
	return "Map"
}

// Folder returns the game sub-directory items of this kind are installed into.
func (k Kind) Folder() string {
	if k == KindMod {
		return "mods"
	}
	return "usermaps"
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "map", "usermap":
		return KindMap, true
	case "mod":
		return KindMod, true
	default:
		return KindMap, false
	}
}

// Tuning holds the resolved heuristic constants used during an acquisition.
type Tuning struct {
	RetryAttempts     int
	FastFailWindow    time.Duration
	FastFailThreshold int
	ResetPause        time.Duration
	WarmupThreshold   uint64
	WarmupDebounce    time.Duration
	TickInterval      time.Duration
	SpeedNoiseFloor   float64
	LogWaitTimeout    time.Duration
	LogPollInterval   time.Duration
}

// DefaultTuning returns the built-in heuristic constants.
func DefaultTuning() Tuning {
	return Tuning{
		RetryAttempts:     DefaultRetryAttempts,
		FastFailWindow:    DefaultFastFailWindow,
		FastFailThreshold: DefaultFastFailThreshold,
		ResetPause:        DefaultResetPause,
		WarmupThreshold:   DefaultWarmupThreshold,
		WarmupDebounce:    DefaultWarmupDebounce,
		TickInterval:      DefaultTickInterval,
		SpeedNoiseFloor:   DefaultSpeedNoiseFloor,
		LogWaitTimeout:    DefaultLogWaitTimeout,
		LogPollInterval:   DefaultLogPollInterval,
	}
}
