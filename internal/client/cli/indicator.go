package cli

import (
	"fmt"

	"github.com/blogsphere/authsession/internal/client/services"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

const checkingText = "Checking session..."

// indicator returns the guard hook that draws the loading line while a
// check is running. It is nil when output is not a terminal.
func (a *App) indicator() func(services.GuardState) {
	if a.outFd < 0 || !isTerminal(a.outFd) {
		return nil
	}
	return func(st services.GuardState) {
		if st == services.GuardChecking {
			_, _ = fmt.Fprint(a.out, checkingText)
			return
		}
		// erase the line
		_, _ = fmt.Fprint(a.out, "\r\033[K")
	}
}
