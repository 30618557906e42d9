package model

import "errors"

// Sentinel errors for acquisition operations.
var (
	// ErrAlreadyDownloading is returned when a request arrives while another acquisition is active.
	ErrAlreadyDownloading = errors.New("a download is already in progress")
	// ErrToolUnavailable is returned when SteamCMD cannot be installed or bootstrapped.
	ErrToolUnavailable = errors.New("steamcmd unavailable")
	// ErrMoveFailed is returned when downloaded content cannot be moved into the game folder.
	ErrMoveFailed = errors.New("failed to move workshop content")
	// ErrInvalidItemID is returned for workshop ids that are not decimal numbers.
	ErrInvalidItemID = errors.New("invalid workshop item id")
)
