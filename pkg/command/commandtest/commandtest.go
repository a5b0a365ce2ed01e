// Package commandtest provides a scripted command.Runner for adapter tests.
package commandtest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/holon-run/shipit/pkg/command"
)

// Response is the scripted outcome for a command line prefix.
type Response struct {
	Stdout string
	Stderr string
	Err    error
}

// Runner records every invocation and answers from a prefix table.
// Unscripted commands succeed with empty output.
type Runner struct {
	mu        sync.Mutex
	responses []scripted
	installed map[string]bool
	Calls     []command.Cmd
}

type scripted struct {
	prefix string
	resp   Response
}

var _ command.Runner = (*Runner)(nil)

// New creates a runner where the given binaries are on PATH.
func New(installed ...string) *Runner {
	r := &Runner{installed: map[string]bool{}}
	for _, name := range installed {
		r.installed[name] = true
	}
	return r
}

// On scripts the response for any command whose line starts with prefix.
// Later registrations win over earlier ones.
func (r *Runner) On(prefix string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append([]scripted{{prefix: prefix, resp: resp}}, r.responses...)
	return r
}

// Fail scripts a failing command with the given stderr.
func (r *Runner) Fail(prefix, stderr string) *Runner {
	return r.On(prefix, Response{Stderr: stderr, Err: fmt.Errorf("exit status 1")})
}

func (r *Runner) Run(_ context.Context, cmd command.Cmd) (command.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, cmd)

	line := cmd.String()
	for _, s := range r.responses {
		if strings.HasPrefix(line, s.prefix) {
			res := command.Result{Stdout: s.resp.Stdout, Stderr: s.resp.Stderr}
			if s.resp.Err != nil {
				return res, &command.ExitError{Cmd: line, Stderr: cmd.Redact(s.resp.Stderr), Err: s.resp.Err}
			}
			return res, nil
		}
	}
	return command.Result{}, nil
}

func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}

// Lines returns the recorded command lines.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}

// Ran reports whether any recorded command line starts with prefix.
func (r *Runner) Ran(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
