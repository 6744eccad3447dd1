package shell

import (
	"context"
	"os/exec"
	"runtime"
)

// Executor runs one command line and returns its combined stdout and stderr.
type Executor interface {
	Execute(ctx context.Context, command string) ([]byte, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, command string) ([]byte, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, command string) ([]byte, error) {
	return f(ctx, command)
}

// System runs commands through the platform shell.
type System struct {
	// Shell overrides the interpreter. Empty means "sh" ("cmd" on Windows).
	Shell string
}

// Execute implements Executor.
func (s System) Execute(ctx context.Context, command string) ([]byte, error) {
	sh, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		sh, flag = "cmd", "/C"
	}
	if s.Shell != "" {
		sh = s.Shell
	}
	cmd := exec.CommandContext(ctx, sh, flag, command)
	return cmd.CombinedOutput()
}
