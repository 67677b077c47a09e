// Package testrunner installs test requirements and runs test suites for
// plugins inside the pulp container.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pulp/oci-env/internal/engine"
)

// ErrNoTargets indicates neither a plugin nor DEV_SOURCE_PATH named anything to test.
var ErrNoTargets = errors.New("no test targets; pass --plugin or set DEV_SOURCE_PATH")

// ScriptRunner executes a container helper script.
type ScriptRunner interface {
	ExecContainerScript(ctx context.Context, script string, args []string, opts engine.ExecOptions) error
}

// Selection is what a single `test` invocation targets.
type Selection struct {
	Plugin string
	Kind   Kind
	Args   []string
}

// Runner orchestrates requirement installs and test runs.
type Runner struct {
	Scripts    ScriptRunner
	Projects   []string
	Out        io.Writer
	Privileged bool
}

// Targets returns the plugin when one was chosen, else every configured project.
func (r *Runner) Targets(sel Selection) ([]string, error) {
	if !sel.Kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, sel.Kind)
	}
	if sel.Plugin != "" {
		return []string{sel.Plugin}, nil
	}
	if len(r.Projects) == 0 {
		return nil, ErrNoTargets
	}
	return append([]string(nil), r.Projects...), nil
}

// InstallRequirements runs the requirement scripts for each target in order,
// stopping at the first failure.
func (r *Runner) InstallRequirements(ctx context.Context, sel Selection) error {
	targets, err := r.Targets(sel)
	if err != nil {
		return err
	}
	for _, target := range targets {
		for _, kind := range sel.Kind.Expand() {
			script := kind.RequirementsScript()
			if r.Out != nil {
				fmt.Fprintf(r.Out, "Running %s for %s...\n", script, target)
			}
			opts := engine.ExecOptions{Privileged: r.Privileged}
			if err := r.Scripts.ExecContainerScript(ctx, script, []string{target}, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunTests runs the selected suites interactively for each target, passing
// sel.Args through verbatim. The first failing suite aborts the run.
func (r *Runner) RunTests(ctx context.Context, sel Selection) error {
	targets, err := r.Targets(sel)
	if err != nil {
		return err
	}
	for _, target := range targets {
		for _, kind := range sel.Kind.Expand() {
			args := append([]string{target}, sel.Args...)
			opts := engine.ExecOptions{Interactive: true, Privileged: r.Privileged}
			if err := r.Scripts.ExecContainerScript(ctx, kind.RunScript(), args, opts); err != nil {
				return err
			}
		}
	}
	return nil
}
