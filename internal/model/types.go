package model

// Config holds the user's configuration.
type Config struct {
	GameDir           string `json:"gameDir" envconfig:"GAME_DIR"`
	SteamCMDDir       string `json:"steamcmdDir,omitempty" envconfig:"STEAMCMD_DIR"`
	AppID             string `json:"appId,omitempty" envconfig:"APP_ID"`
	RetryAttempts     int    `json:"retryAttempts" envconfig:"RETRY_ATTEMPTS"`
	FastFailWindow    string `json:"fastFailWindow,omitempty" envconfig:"FAST_FAIL_WINDOW"`
	FastFailThreshold int    `json:"fastFailThreshold,omitempty" envconfig:"FAST_FAIL_THRESHOLD"`
	ResetPause        string `json:"resetPause,omitempty" envconfig:"RESET_PAUSE"`
	WarmupThreshold   string `json:"warmupThreshold,omitempty" envconfig:"WARMUP_THRESHOLD"`
	WarmupDebounce    string `json:"warmupDebounce,omitempty" envconfig:"WARMUP_DEBOUNCE"`
	TickInterval      string `json:"tickInterval,omitempty" envconfig:"TICK_INTERVAL"`
	SpeedNoiseFloor   string `json:"speedNoiseFloor,omitempty" envconfig:"SPEED_NOISE_FLOOR"`
	LogWaitTimeout    string `json:"logWaitTimeout,omitempty" envconfig:"LOG_WAIT_TIMEOUT"`
	LogPollInterval   string `json:"logPollInterval,omitempty" envconfig:"LOG_POLL_INTERVAL"`
	SteamCMDURL       string `json:"steamcmdUrl,omitempty" envconfig:"STEAMCMD_URL"`
	MetadataURL       string `json:"metadataUrl,omitempty" envconfig:"METADATA_URL"`
	GotifyURL         string `json:"gotifyUrl,omitempty" envconfig:"GOTIFY_URL"`
	GotifyToken       string `json:"gotifyToken,omitempty" envconfig:"GOTIFY_TOKEN"`
}

// ArgsDescriptionFunc is set by cmd/workshop to provide colored help text.
// If nil, Description() returns an empty string (go-arg will use default help).
var ArgsDescriptionFunc func() string

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	ItemID    string `arg:"positional,required" help:"Steam Workshop item id"`
	Kind      string `arg:"-k,--kind" default:"map" help:"Item kind: map or mod"`
	Reconnect string `arg:"--reconnect" help:"Server address to offer a reconnect to after success"`
	Yes       bool   `arg:"-y,--yes" help:"Skip the download confirmation"`
	Detach    bool   `arg:"--detach" help:"Run the download in a background session"`
}

// InfoCmd is the "info" subcommand.
type InfoCmd struct {
	ItemID string `arg:"positional,required" help:"Steam Workshop item id"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// CancelCmd is the "cancel" subcommand.
type CancelCmd struct {
	Force bool `arg:"--force" help:"Kill the download process instead of requesting a cancel"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct {
	Action string `arg:"positional" help:"show (default) or init"`
}

// CompletionCmd is the "completion" subcommand.
type CompletionCmd struct {
	Shell string `arg:"positional" help:"bash, zsh, fish or powershell"`
}

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	Download   *DownloadCmd   `arg:"subcommand:download" help:"Download a workshop item"`
	Info       *InfoCmd       `arg:"subcommand:info" help:"Show workshop item details"`
	Status     *StatusCmd     `arg:"subcommand:status" help:"Show the running download"`
	Cancel     *CancelCmd     `arg:"subcommand:cancel" help:"Cancel the running download"`
	Config     *ConfigCmd     `arg:"subcommand:config" help:"Show or initialise the config file"`
	Completion *CompletionCmd `arg:"subcommand:completion" help:"Print a shell completion script"`

	GameDir string `arg:"-g,--game-dir" help:"Game installation directory (overrides config)"`
	Retries int    `arg:"-r,--retries" default:"-1" help:"Maximum download attempts, 1-1000 (overrides config)"`
}

// Description provides custom help text for go-arg.
func (Args) Description() string {
	if ArgsDescriptionFunc != nil {
		return ArgsDescriptionFunc()
	}
	return ""
}

// RuntimeStatus tracks the state of a running download session.
type RuntimeStatus struct {
	PID           int     `json:"pid"`
	State         string  `json:"state"`
	StartedAt     string  `json:"startedAt"`
	UpdatedAt     string  `json:"updatedAt"`
	AcquisitionID string  `json:"acquisitionId,omitempty"`
	ItemID        string  `json:"itemId,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Label         string  `json:"label,omitempty"`
	Phase         Phase   `json:"phase,omitempty"`
	StatusLine    string  `json:"statusLine,omitempty"`
	Downloaded    uint64  `json:"downloaded,omitempty"`
	Total         uint64  `json:"total,omitempty"`
	Speed         float64 `json:"speed,omitempty"`
	ETASeconds    int64   `json:"etaSeconds"`
	Result        string  `json:"result,omitempty"`
}

// RuntimeControl holds the cancel signal for a running session.
type RuntimeControl struct {
	Cancel    bool   `json:"cancel"`
	UpdatedAt string `json:"updatedAt"`
}

// ItemInfo is the advisory metadata of a workshop item.
type ItemInfo struct {
	Title         string `json:"title"`
	FileSizeBytes uint64 `json:"fileSize"`
}
