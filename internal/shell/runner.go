// Package shell runs the commands embedded in slides after a safety check.
//
// The check is a denylist, not a sandbox: it refuses a fixed set of
// destructive programs and any command that chains, pipes or redirects.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

var (
	// ErrEmpty is returned by Check for a command that is blank after
	// sanitizing.
	ErrEmpty = errors.New("empty command")
	// ErrBlocked is returned by Check for a command refused by the filter.
	ErrBlocked = errors.New("command blocked")
)

// Lines reported in place of, or ahead of, command output.
const (
	MsgBlocked  = "[Error: Command blocked for security reasons]"
	MsgEmpty    = "[Error: Empty command]"
	MsgNoOutput = "[No output]"
	MsgTimeout  = "[Error: command timed out]"
	MsgCanceled = "[Error: command canceled]"
)

var defaultDeny = []string{
	"rm", "rmdir", "del", "format", "fdisk", "dd", "mkfs",
	"sudo", "su", "passwd",
	"shutdown", "reboot", "halt", "init",
	"kill", "killall", "pkill", "fuser",
}

// metachars chain, pipe, redirect or substitute commands.
var metachars = []string{";", "|", "&", ">", "`", "$(", "\n"}

// Result is the outcome of Run.
type Result struct {
	Lines     []string // never empty
	Succeeded bool
	Blocked   bool
	ExitCode  int // -1 when the process did not run or exit normally
}

// Runner checks and executes commands.
type Runner struct {
	exec    Executor
	deny    map[string]struct{}
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the process launcher.
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.exec = e }
}

// WithDeny adds program names to the denylist.
func WithDeny(names ...string) Option {
	return func(r *Runner) {
		for _, n := range names {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				r.deny[n] = struct{}{}
			}
		}
	}
}

// WithShell runs commands through the given interpreter.
func WithShell(path string) Option {
	return func(r *Runner) { r.exec = System{Shell: path} }
}

// WithTimeout bounds each command. Zero means no limit beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// New returns a runner using the platform shell and the default denylist.
func New(opts ...Option) *Runner {
	r := &Runner{exec: System{}, deny: make(map[string]struct{}, len(defaultDeny))}
	for _, n := range defaultDeny {
		r.deny[n] = struct{}{}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Sanitize drops NUL and control characters other than tab and newline and
// trims surrounding whitespace. Newlines are kept so Check can refuse them.
func Sanitize(command string) string {
	s := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, command)
	return strings.TrimSpace(s)
}

// Check reports whether command may run. It returns ErrEmpty or an error
// wrapping ErrBlocked that names the reason.
func (r *Runner) Check(command string) error {
	cmd := Sanitize(command)
	if cmd == "" {
		return ErrEmpty
	}
	for _, m := range metachars {
		if strings.Contains(cmd, m) {
			return fmt.Errorf("%w: contains %q", ErrBlocked, m)
		}
	}
	first := strings.ToLower(strings.Fields(cmd)[0])
	for _, name := range []string{first, filepath.Base(first)} {
		if _, ok := r.deny[name]; ok {
			return fmt.Errorf("%w: %s is not allowed", ErrBlocked, name)
		}
	}
	return nil
}

// Run checks and executes command. Refused commands never reach the
// executor. The returned lines are ready for display.
func (r *Runner) Run(ctx context.Context, command string) Result {
	if err := r.Check(command); err != nil {
		log.Printf("shell: refused %q: %v", command, err)
		if errors.Is(err, ErrEmpty) {
			return Result{Lines: []string{MsgEmpty}, ExitCode: -1}
		}
		return Result{Lines: []string{MsgBlocked}, Blocked: true, ExitCode: -1}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := Sanitize(command)
	out, err := r.exec.Execute(ctx, cmd)
	lines := Lines(out)

	if err == nil {
		log.Printf("shell: %q ok, %d lines", cmd, len(out))
		if lines == nil {
			lines = []string{MsgNoOutput}
		}
		return Result{Lines: lines, Succeeded: true}
	}

	if cerr := ctx.Err(); cerr != nil {
		log.Printf("shell: %q: %v", cmd, cerr)
		head := MsgCanceled
		if errors.Is(cerr, context.DeadlineExceeded) {
			head = MsgTimeout
		}
		return Result{Lines: append([]string{head}, lines...), ExitCode: -1}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		log.Printf("shell: %q exited %d", cmd, code)
		head := fmt.Sprintf("[Error: command exited with status %d]", code)
		return Result{Lines: append([]string{head}, lines...), ExitCode: code}
	}

	log.Printf("shell: %q: %v", cmd, err)
	return Result{
		Lines:    []string{fmt.Sprintf("[Error: could not execute command: %v]", err)},
		ExitCode: -1,
	}
}

// Lines splits raw output into display lines, dropping one trailing
// newline. Escape sequences and carriage returns are removed and tabs
// expanded so each line has a predictable width. Empty output yields nil.
func Lines(out []byte) []string {
	s := strings.TrimSuffix(string(out), "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = ansi.Strip(strings.TrimRight(l, "\r"))
		lines[i] = strings.ReplaceAll(l, "\t", tabSpaces)
	}
	return lines
}

const tabSpaces = "    "
