//go:build windows

package runtime

import (
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/ui"
)

// MaybeDetachAndExit is a no-op on Windows; detach is not supported.
func MaybeDetachAndExit(_ []string, args *model.Args) bool {
	if !ShouldDetach(args) {
		return false
	}
	ui.PrintWarning("Detach is not enabled on this platform; running in foreground")
	return false
}
