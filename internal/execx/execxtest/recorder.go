// Package execxtest provides an execx.Runner that records invocations
// instead of starting processes.
package execxtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pulp/oci-env/internal/execx"
)

// Recorder implements execx.Runner. Calls are numbered from 1 in the order
// they arrive; FailAt maps a call number to the exit code it should report,
// and Unstarted marks calls whose binary cannot be found.
type Recorder struct {
	mu        sync.Mutex
	Calls     []execx.Cmd
	FailAt    map[int]int
	Unstarted map[int]bool
	Output    string
}

func (r *Recorder) record(c execx.Cmd) execx.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
	if r.Unstarted[len(r.Calls)] {
		return execx.Result{Code: 1, Err: fmt.Errorf("%w: exec: %q: executable file not found in $PATH", execx.ErrNotStarted, c.Name)}
	}
	if code, ok := r.FailAt[len(r.Calls)]; ok && code != 0 {
		return execx.Result{Code: code, Err: errors.New("injected failure")}
	}
	return execx.Result{}
}

func (r *Recorder) Run(_ context.Context, c execx.Cmd) execx.Result {
	return r.record(c)
}

func (r *Recorder) Capture(_ context.Context, c execx.Cmd) (string, execx.Result) {
	res := r.record(c)
	return r.Output, res
}

// Argvs returns the argument vectors of every recorded call.
func (r *Recorder) Argvs() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Argv())
	}
	return out
}
