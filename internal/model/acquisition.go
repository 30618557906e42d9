package model

// AcquisitionRequest identifies one item to fetch. DisplayName and
// ExpectedSizeBytes are filled from metadata; 0 means the size is unknown.
type AcquisitionRequest struct {
	ItemID            string
	Kind              Kind
	DisplayName       string
	ExpectedSizeBytes uint64
}

// ActionKind tags the purpose of a pending callback.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionCancel
	ActionAccept
)

// Action is a deferred callback stored in a status or confirmation cell.
type Action struct {
	Kind ActionKind
	run  func()
}

// NewAction wraps fn as an action of the given kind.
func NewAction(kind ActionKind, fn func()) Action {
	if fn == nil {
		return Action{}
	}
	return Action{Kind: kind, run: fn}
}

// IsSet reports whether the action carries a callback.
func (a Action) IsSet() bool {
	return a.Kind != ActionNone && a.run != nil
}

// Invoke runs the callback, if any.
func (a Action) Invoke() {
	if a.run != nil {
		a.run()
	}
}

// AcquisitionState is the snapshot the presentation layer renders.
type AcquisitionState struct {
	Active           bool
	AcquisitionID    string
	ItemID           string
	DisplayName      string
	StatusLine       string
	Phase            Phase
	DownloadedBytes  uint64
	TotalBytes       uint64
	SpeedBytesPerSec float64
	// ETASeconds is -1 when unknown.
	ETASeconds int64
	OnCancel   Action
}

// IdleState returns the state published when no acquisition is running.
func IdleState() AcquisitionState {
	return AcquisitionState{ETASeconds: -1}
}

// ConfirmationRequest is a yes/no prompt raised for the user.
type ConfirmationRequest struct {
	Active   bool
	Title    string
	Message  string
	OnAccept Action
}

// AttemptResult is the terminal outcome of one acquisition.
type AttemptResult int

const (
	ResultSuccess AttemptResult = iota
	ResultUserCancelled
	ResultToolUnavailable
	ResultMoveFailed
	ResultExhaustedRetries
)

// String returns the machine name of the result.
func (r AttemptResult) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultUserCancelled:
		return "cancelled"
	case ResultToolUnavailable:
		return "tool_unavailable"
	case ResultMoveFailed:
		return "move_failed"
	case ResultExhaustedRetries:
		return "exhausted_retries"
	default:
		return "unknown"
	}
}
