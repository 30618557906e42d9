package runtime

import (
	"os"

	"golang.org/x/term"

	"github.com/jmagar/workshop-cli/internal/model"
)

// IsDetachedChild reports whether this process is the background half of a
// detached session.
func IsDetachedChild() bool {
	return os.Getenv(DetachedEnvVar) == "1"
}

// IsInteractive reports whether stdin is a terminal that can take hotkeys and prompts.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ShouldDetach returns true if a download was asked to continue in the background.
func ShouldDetach(args *model.Args) bool {
	if args == nil || args.Download == nil || IsDetachedChild() {
		return false
	}
	return args.Download.Detach
}
