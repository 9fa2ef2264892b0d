package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Bio(ctx context.Context, text string) error {
	f.calls = append(f.calls, "bio")
	f.arg = text
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

// lineLog captures what the commands print.
type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func silencePrintln(t *testing.T) *lineLog {
	t.Helper()
	log := &lineLog{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.lines = append(log.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return log
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"status",
		"whoami",
		"bio   writes about   Go  ",
		"foobar",
		"logout",
		"exit",
		"status",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "status", "whoami", "bio", "logout"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("calls: got %v, want %v", exec.calls, wantOrder)
	}
	for i := range wantOrder {
		if exec.calls[i] != wantOrder[i] {
			t.Fatalf("commands order mismatch: got %v, want %v", exec.calls, wantOrder)
		}
	}
	if exec.arg != "writes about   Go" {
		t.Fatalf("bio text: got %q", exec.arg)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	lines := silencePrintln(t)

	input := strings.NewReader("bio\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !contains(lines.Lines(), "Usage: bio <text>") || !contains(lines.Lines(), "Bye!") {
		t.Fatalf("unexpected output: %v", lines.Lines())
	}
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := silencePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	if !contains(lines.Lines(), "Available commands: login, status, exit") {
		t.Fatalf("signed-out help missing: %v", lines.Lines())
	}

	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	if !contains(lines.Lines(), "Available commands: status, whoami, bio <text>, logout, exit") {
		t.Fatalf("signed-in help missing: %v", lines.Lines())
	}
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	silencePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("login\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
