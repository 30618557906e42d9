package acquire

import (
	"fmt"
	"strings"

	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
)

// User-facing messages.
const (
	MsgSuccess          = "Workshop item downloaded successfully!"
	MsgCancelled        = "Download cancelled."
	MsgToolUnavailable  = "Cannot install SteamCMD. Please try again."
	MsgMoveFailed       = "There was a problem moving the workshop item to the correct folder.\nYou can try moving it manually and joining the server again."
	MsgExhaustedRetries = "Problem downloading the workshop item. Max tries used."
	MsgBusy             = "A download is already in progress. Wait for it to finish."

	ReconnectTitle   = "Download Complete"
	ReconnectMessage = "Workshop item downloaded successfully!\n\nDo you want to connect to the server?"

	settingUpLine = "Setting up SteamCMD..."
)

// ResultMessage returns the terminal message and its severity for r.
func ResultMessage(r model.AttemptResult) (string, int) {
	switch r {
	case model.ResultSuccess:
		return MsgSuccess, model.SeverityInfo
	case model.ResultUserCancelled:
		return MsgCancelled, model.SeverityWarning
	case model.ResultToolUnavailable:
		return MsgToolUnavailable, model.SeverityError
	case model.ResultMoveFailed:
		return MsgMoveFailed, model.SeverityError
	default:
		return MsgExhaustedRetries, model.SeverityError
	}
}

// fallbackTitle names an item whose metadata could not be fetched.
func fallbackTitle(kind model.Kind, itemID string) string {
	return kind.String() + ": " + itemID
}

// offerTitle is the confirmation title for kind.
func offerTitle(kind model.Kind) string {
	return "Download " + kind.String() + "?"
}

// offerMessage builds the pre-download prompt. Title and size lines are
// omitted when unknown.
func offerMessage(kind model.Kind, displayRef string, info model.ItemInfo) string {
	noun := "Usermap"
	if kind == model.KindMod {
		noun = "Mod"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s '%s' was not found.\n", noun, displayRef)
	if info.Title != "" {
		b.WriteString("Title: " + info.Title + "\n")
	}
	if info.FileSizeBytes > 0 {
		b.WriteString("Size: " + helpers.FormatBytes(info.FileSizeBytes) + "\n")
	}
	b.WriteString("\nDo you want to download it from the Steam Workshop?")
	return b.String()
}
