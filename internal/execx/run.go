// Package execx runs external processes and reports their exit status.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

// ErrNotStarted marks a Result whose process never ran, such as a binary
// missing from PATH.
var ErrNotStarted = errors.New("could not start")

// interruptGrace is how long a cancelled process has to exit after SIGINT
// before it is killed.
var interruptGrace = 5 * time.Second

// Cmd describes a single process invocation. Nil streams fall back to the
// current process's stdio.
type Cmd struct {
	Name   string
	Args   []string
	Env    []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the full argument vector including the executable.
func (c Cmd) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a shell-quoted line.
func (c Cmd) String() string {
	return Quote(c.Argv())
}

// Result is the outcome of a process. Code is zero on success.
type Result struct {
	Code int
	Err  error
}

// OK reports whether the process exited cleanly.
func (r Result) OK() bool { return r.Code == 0 }

// Runner executes commands. OSRunner is the production implementation; tests
// substitute recorders.
type Runner interface {
	Run(ctx context.Context, c Cmd) Result
	Capture(ctx context.Context, c Cmd) (string, Result)
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, c Cmd) Result {
	cmd := build(ctx, c)
	cmd.Stdout = orWriter(c.Stdout, os.Stdout)
	cmd.Stderr = orWriter(c.Stderr, os.Stderr)
	return resultOf(ctx, cmd.Run())
}

func (OSRunner) Capture(ctx context.Context, c Cmd) (string, Result) {
	cmd := build(ctx, c)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = orWriter(c.Stderr, os.Stderr)
	res := resultOf(ctx, cmd.Run())
	return stdout.String(), res
}

func build(ctx context.Context, c Cmd) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Env != nil {
		cmd.Env = c.Env
	}
	cmd.Dir = c.Dir
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = interruptGrace
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	return cmd
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func resultOf(ctx context.Context, err error) Result {
	if err == nil {
		return Result{}
	}
	var ee *exec.ExitError
	switch {
	case errors.As(err, &ee):
		return Result{Code: ee.ExitCode(), Err: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Result{Code: 124, Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return Result{Code: 130, Err: err}
	case errors.Is(err, exec.ErrWaitDelay):
		return Result{Code: 1, Err: err}
	default:
		return Result{Code: 1, Err: fmt.Errorf("%w: %w", ErrNotStarted, err)}
	}
}

// Quote joins argv into a line a POSIX shell would split back into the same
// words.
func Quote(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
