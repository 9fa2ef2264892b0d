package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/blogsphere/authsession/internal/client/services"
)

// consoleNotifier prints notices on their own line. Notices may arrive from
// the callback listener while the REPL is waiting, hence the lock.
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ services.Notifier = (*consoleNotifier)(nil)

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) Success(_ context.Context, msg string) {
	n.print("✔", msg)
}

func (n *consoleNotifier) Error(_ context.Context, msg string) {
	n.print("✖", msg)
}

func (n *consoleNotifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}
