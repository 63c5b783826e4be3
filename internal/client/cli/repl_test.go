package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return common.ErrAuthentication
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Wallet(ctx context.Context) error  { return f.record("wallet") }
func (f *fakeExec) Fund(ctx context.Context) error    { return f.record("fund") }
func (f *fakeExec) Upload(ctx context.Context) error  { return f.record("upload") }
func (f *fakeExec) Uploads(ctx context.Context) error { return f.record("uploads") }
func (f *fakeExec) Journal(ctx context.Context) error { return f.record("journal") }
func (f *fakeExec) Access(ctx context.Context) error  { return f.record("access") }
func (f *fakeExec) GenPass(ctx context.Context) error { return f.record("genpass") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"upload",
		"login",
		"help",
		"upload",
		"uploads",
		"wallet",
		"fund",
		"",
		"access",
		"journal",
		"genpass",
		"logout",
		"foobar",
		"exit",
		"register",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "upload", "uploads", "wallet", "fund", "access", "journal", "genpass", "logout"}, exec.calls)
	assert.Contains(t, *out, "Please login first")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_EOFStops(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("genpass")))
	assert.Equal(t, []string{"genpass"}, exec.calls)
}

func TestRunREPL_ErrorsArePrintedGenerically(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{failOn: "access"}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("access\nexit\n")))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Invalid password or corrupted file")
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(fmt.Errorf("x: %w", common.ErrNetwork)), "Network error")
	assert.Contains(t, errorText(common.ErrInsufficientFunds), "Insufficient funds")
	assert.Contains(t, errorText(errors.New("other")), "Error: other")
}
