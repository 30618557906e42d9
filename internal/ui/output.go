package ui

import (
	"fmt"

	"github.com/jmagar/workshop-cli/internal/model"
)

// RunErrorCount and RunWarningCount track errors/warnings during a run.
var RunErrorCount int
var RunWarningCount int

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolCheck, ColorReset, msg, ColorReset)
}

// PrintError prints an error message and increments the error counter.
func PrintError(msg string) {
	RunErrorCount++
	fmt.Printf("%s%s%s %s%s\n", ColorRed, SymbolCross, ColorReset, msg, ColorReset)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorBlue, SymbolInfo, ColorReset, msg, ColorReset)
}

// PrintWarning prints a warning message and increments the warning counter.
func PrintWarning(msg string) {
	RunWarningCount++
	fmt.Printf("%s%s%s %s%s\n", ColorYellow, SymbolWarning, ColorReset, msg, ColorReset)
}

// PrintDownload prints a download message.
func PrintDownload(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorCyan, SymbolDownload, ColorReset, msg, ColorReset)
}

// PrintSeverity prints msg with the style matching a host message severity.
func PrintSeverity(severity int, msg string) {
	switch severity {
	case model.SeverityError:
		PrintError(msg)
	case model.SeverityWarning:
		PrintWarning(msg)
	default:
		PrintSuccess(msg)
	}
}

// KindIndicator returns the symbol for a workshop item kind.
func KindIndicator(kind model.Kind) string {
	if kind == model.KindMod {
		return SymbolGear
	}
	return SymbolMap
}

// DescribePhase returns a human-readable phase name.
func DescribePhase(phase model.Phase) string {
	switch phase {
	case model.PhaseIdle:
		return "Idle"
	case model.PhaseInstall:
		return "Installing SteamCMD"
	case model.PhaseSetup:
		return "Preparing"
	case model.PhaseWarmup:
		return "Waiting for data"
	case model.PhaseActive:
		return "Downloading"
	case model.PhaseFinalize:
		return "Moving files"
	default:
		return string(phase)
	}
}
