// Package prompt asks the user questions. Every call blocks until the user
// answers. Aborting a prompt (ctrl+c, esc, or a cancelled context) returns
// an error with code PROMPT_CANCELLED, which is distinct from answering "no".
package prompt

import (
	"context"
	"strings"

	"github.com/holon-run/shipit/pkg/errs"
)

// Option is one choice of a Select prompt.
type Option struct {
	Label string
	Value string
}

// SelectRequest asks the user to pick one option.
type SelectRequest struct {
	Message string
	Options []Option
	// Default is the Value of the initially highlighted option.
	Default string
}

// ConfirmRequest asks a yes/no question.
type ConfirmRequest struct {
	Message string
	Default bool
}

// InputRequest asks for free text.
type InputRequest struct {
	Message     string
	Default     string
	Placeholder string
	// Secret masks the typed value.
	Secret bool
	// Validate rejects an answer with a message shown under the input.
	Validate func(string) error
}

// Prompter is the interactive capability the pipeline depends on.
type Prompter interface {
	Select(ctx context.Context, req SelectRequest) (string, error)
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
	Input(ctx context.Context, req InputRequest) (string, error)
}

// Cancelled is the error returned when the user aborts a prompt.
func Cancelled(message string) error {
	return errs.Newf(errs.CodePromptCancelled, "prompt cancelled: %s", message)
}

// NotEmpty is an InputRequest validator rejecting blank answers.
func NotEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errs.New(errs.CodeValidationFailed, "a value is required")
	}
	return nil
}

// Options builds options whose labels equal their values.
func Options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Label: v, Value: v}
	}
	return out
}
