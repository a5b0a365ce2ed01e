// Package command runs external programs (git, gh, glab, npm, deno) on behalf
// of the adapters. It is the single place shipit spawns processes, so adapters
// can be tested against a recorded Runner.
package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/holon-run/shipit/pkg/logs/redact"
)

// Cmd describes one process invocation.
type Cmd struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env replaces the child environment when non-nil.
	Env []string

	// Interactive attaches the terminal instead of capturing output.
	// Used for registry CLIs that may ask for a one-time password.
	Interactive bool

	// Secrets are masked wherever the command line is rendered.
	Secrets []string
}

// String renders the command line for logs and errors, with secrets masked.
func (c Cmd) String() string {
	line := strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
	return c.Redact(line)
}

// Redact masks every secret of c in s, along with credentials embedded in
// remote URLs and well-known token formats.
func (c Cmd) Redact(s string) string {
	return redact.New(redact.Config{Mode: redact.ModeBasic, Secrets: c.Secrets}).Redact(s)
}

// Result holds captured output. Both fields are trimmed.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
	LookPath(name string) (string, error)
}

// ExitError reports a command that ran but failed.
type ExitError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Cmd, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exec runs commands with os/exec.
type Exec struct {
	// Stdin, Stdout and Stderr are used for interactive commands.
	// They default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Compile-time check that Exec implements Runner.
var _ Runner = (*Exec)(nil)

// NewExec returns a runner bound to the process streams.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes cmd and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Cmd) (Result, error) {
	//nolint:gosec // G204: command names come from adapters, not user input
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = cmd.Env
	}

	var stdout, stderr bytes.Buffer
	if cmd.Interactive {
		c.Stdin = e.Stdin
		c.Stdout = io.MultiWriter(e.Stdout, &stdout)
		c.Stderr = io.MultiWriter(e.Stderr, &stderr)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		return res, &ExitError{Cmd: cmd.String(), Stderr: cmd.Redact(res.Stderr), Err: err}
	}
	return res, nil
}

// LookPath reports where name is installed.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Available reports whether name is on PATH.
func Available(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}
