package git

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Client. Match them with errors.Is; the
// underlying *command.ExitError stays reachable with errors.As.
var (
	ErrNotGitRepo     = errors.New("not a git repository")
	ErrAuthentication = errors.New("authentication failed")
	ErrRejected       = errors.New("push rejected")
	ErrRemoteNotFound = errors.New("remote not found")
	ErrRefExists      = errors.New("ref already exists")
)

// commandError pairs a classified sentinel with the raw failure.
type commandError struct {
	kind   error
	stderr string
	err    error
}

func (e *commandError) Error() string {
	if e.kind == nil {
		return fmt.Sprintf("git error: %s: %v", e.stderr, e.err)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.stderr)
}

func (e *commandError) Unwrap() []error {
	if e.kind == nil {
		return []error{e.err}
	}
	return []error{e.kind, e.err}
}

// parseGitError classifies git stderr into a sentinel error.
func parseGitError(stderr string, originalErr error) error {
	if stderr == "" {
		return originalErr
	}
	lower := strings.ToLower(stderr)

	var kind error
	switch {
	case strings.Contains(lower, "not a git repository"):
		kind = ErrNotGitRepo
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "could not read password"),
		strings.Contains(lower, "terminal prompts disabled"),
		strings.Contains(lower, "returned error: 403"),
		strings.Contains(lower, "returned error: 401"):
		kind = ErrAuthentication
	case strings.Contains(lower, "[rejected]"),
		strings.Contains(lower, "non-fast-forward"),
		strings.Contains(lower, "failed to push some refs"):
		kind = ErrRejected
	case strings.Contains(lower, "does not appear to be a git repository"),
		strings.Contains(lower, "no such remote"),
		strings.Contains(lower, "repository not found"):
		kind = ErrRemoteNotFound
	case strings.Contains(lower, "already exists"):
		kind = ErrRefExists
	}
	return &commandError{kind: kind, stderr: stderr, err: originalErr}
}
