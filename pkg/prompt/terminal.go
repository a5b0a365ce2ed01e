package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/holon-run/shipit/pkg/errs"
)

// Terminal is the interactive Prompter, one bubbletea program per question.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// Compile-time check that Terminal implements Prompter.
var _ Prompter = (*Terminal)(nil)

// NewTerminal prompts on stdin and renders to stderr, leaving stdout for
// the publish summary.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	final, err := t.run(ctx, newConfirmModel(req))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, Cancelled(req.Message)
	}
	return m.value, nil
}

func (t *Terminal) Select(ctx context.Context, req SelectRequest) (string, error) {
	if len(req.Options) == 0 {
		return "", errs.Newf(errs.CodePromptFailed, "no options for %q", req.Message)
	}
	final, err := t.run(ctx, newSelectModel(req))
	if err != nil {
		return "", err
	}
	m := final.(selectModel)
	if m.cancelled {
		return "", Cancelled(req.Message)
	}
	return m.selected().Value, nil
}

func (t *Terminal) Input(ctx context.Context, req InputRequest) (string, error) {
	final, err := t.run(ctx, newInputModel(req))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", Cancelled(req.Message)
	}
	return m.value(), nil
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil, errs.Wrap(errs.CodePromptCancelled, "prompt cancelled", err)
		}
		return nil, errs.Wrap(errs.CodePromptFailed, "prompt failed", err)
	}
	return final, nil
}
