// Package prompttest provides a scripted prompt.Prompter. Answers are
// consumed in order; a prompt of the wrong kind, or one asked after the
// script ran out, fails with PROMPT_FAILED so tests see unexpected questions.
package prompttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/prompt"
)

type kind string

const (
	kindConfirm kind = "confirm"
	kindSelect  kind = "select"
	kindInput   kind = "input"
)

// Answer is one scripted response.
type Answer struct {
	kind   kind
	yes    bool
	value  string
	cancel bool
	// useDefault answers with the request's default.
	useDefault bool
}

// Yes answers a confirm prompt with yes.
func Yes() Answer { return Answer{kind: kindConfirm, yes: true} }

// No answers a confirm prompt with no.
func No() Answer { return Answer{kind: kindConfirm} }

// Choose answers a select prompt with value.
func Choose(value string) Answer { return Answer{kind: kindSelect, value: value} }

// Type answers an input prompt with value. Validation still runs.
func Type(value string) Answer { return Answer{kind: kindInput, value: value} }

// Accept answers an input or select prompt with its default.
func Accept() Answer { return Answer{useDefault: true} }

// Cancel aborts whatever prompt comes next.
func Cancel() Answer { return Answer{cancel: true} }

// Asked records a prompt that was shown.
type Asked struct {
	Kind    string
	Message string
	// Default is the request default rendered as text.
	Default string
	Options []string
}

// Prompter replays Answers.
type Prompter struct {
	mu      sync.Mutex
	answers []Answer
	Asked   []Asked
}

var _ prompt.Prompter = (*Prompter)(nil)

// New returns a Prompter that replays answers in order.
func New(answers ...Answer) *Prompter {
	return &Prompter{answers: answers}
}

// Remaining is the number of unused answers.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.answers)
}

// Messages returns the messages of every prompt shown.
func (p *Prompter) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Asked))
	for i, a := range p.Asked {
		out[i] = a.Message
	}
	return out
}

func (p *Prompter) next(k kind, asked Asked) (Answer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	asked.Kind = string(k)
	p.Asked = append(p.Asked, asked)
	if len(p.answers) == 0 {
		return Answer{}, errs.Newf(errs.CodePromptFailed, "unexpected %s prompt: %q", k, asked.Message)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	if a.cancel {
		return a, prompt.Cancelled(asked.Message)
	}
	if !a.useDefault && a.kind != k {
		return a, errs.Newf(errs.CodePromptFailed, "scripted %s answer given to %s prompt %q", a.kind, k, asked.Message)
	}
	return a, nil
}

func (p *Prompter) Confirm(_ context.Context, req prompt.ConfirmRequest) (bool, error) {
	a, err := p.next(kindConfirm, Asked{Message: req.Message, Default: fmt.Sprint(req.Default)})
	if err != nil {
		return false, err
	}
	if a.useDefault {
		return req.Default, nil
	}
	return a.yes, nil
}

func (p *Prompter) Select(_ context.Context, req prompt.SelectRequest) (string, error) {
	values := make([]string, len(req.Options))
	for i, o := range req.Options {
		values[i] = o.Value
	}
	a, err := p.next(kindSelect, Asked{Message: req.Message, Default: req.Default, Options: values})
	if err != nil {
		return "", err
	}
	if a.useDefault {
		if req.Default != "" {
			return req.Default, nil
		}
		if len(values) > 0 {
			return values[0], nil
		}
		return "", errs.Newf(errs.CodePromptFailed, "no options for %q", req.Message)
	}
	for _, v := range values {
		if v == a.value {
			return v, nil
		}
	}
	return "", errs.Newf(errs.CodePromptFailed, "scripted choice %q is not an option of %q", a.value, req.Message)
}

func (p *Prompter) Input(_ context.Context, req prompt.InputRequest) (string, error) {
	a, err := p.next(kindInput, Asked{Message: req.Message, Default: req.Default})
	if err != nil {
		return "", err
	}
	value := a.value
	if a.useDefault || value == "" {
		value = req.Default
	}
	if req.Validate != nil {
		if err := req.Validate(value); err != nil {
			return "", errs.Wrap(errs.CodePromptFailed, fmt.Sprintf("scripted answer %q rejected", value), err)
		}
	}
	return value, nil
}
