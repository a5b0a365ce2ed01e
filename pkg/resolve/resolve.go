// Package resolve decides which ref the pipeline publishes.
//
// Strategies are tried in a fixed order and the first match wins: an explicit
// branch, an explicit existing tag, an explicit tag to create, and finally an
// interactive choice.
package resolve

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/prompt"
)

// Ref is the resolved publish target.
type Ref struct {
	Name string
	Kind git.RefKind
	// Created is set when the tag was created during resolution.
	Created bool
	// Planned is set instead of Created on a dry run: the tag would be
	// created but was not.
	Planned bool
}

// String renders "tag v1.0.0" or "branch main".
func (r Ref) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Name)
}

// Request carries the explicit selectors. At most one is set; callers
// validate that before resolving.
type Request struct {
	Branch     string
	Tag        string
	CreateTag  string
	TagMessage string

	// DryRun resolves a new tag without creating it.
	DryRun bool
}

// Interactive choices.
const (
	ChoiceBranch = "branch"
	ChoiceTag    = "tag"
	ChoiceNewTag = "new-tag"
)

// Resolver resolves refs against a repository.
type Resolver struct {
	VCS      git.VCS
	Prompter prompt.Prompter
	Logger   log.Logger
}

// Resolve returns the publish target for req.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Ref, error) {
	switch {
	case req.Branch != "":
		// No existence check: a bad name fails at push time.
		return Ref{Name: req.Branch, Kind: git.RefBranch}, nil
	case req.Tag != "":
		return Ref{Name: req.Tag, Kind: git.RefTag}, nil
	case req.CreateTag != "":
		return r.createTag(ctx, req.CreateTag, req.TagMessage, req.DryRun)
	default:
		return r.interactive(ctx, req.DryRun)
	}
}

func (r *Resolver) createTag(ctx context.Context, name, message string, dryRun bool) (Ref, error) {
	if dryRun {
		return r.planTag(ctx, name)
	}
	if err := r.VCS.CreateTag(ctx, name, message); err != nil {
		return Ref{}, errs.Wrap(errs.CodeRefTagCreateFailed, fmt.Sprintf("failed to create tag %s", name), err)
	}
	r.Logger.Info("Created tag", "tag", name, "annotated", message != "")
	return Ref{Name: name, Kind: git.RefTag, Created: true}, nil
}

// planTag checks that name is free without creating it.
func (r *Resolver) planTag(ctx context.Context, name string) (Ref, error) {
	tags, err := r.VCS.Tags(ctx)
	if err != nil {
		return Ref{}, errs.Wrap(errs.CodeRefListFailed, "failed to list tags", err)
	}
	if contains(tags, name) {
		return Ref{}, errs.Newf(errs.CodeRefTagCreateFailed, "tag %s already exists", name)
	}
	r.Logger.Info("Dry run: tag not created", "tag", name)
	return Ref{Name: name, Kind: git.RefTag, Planned: true}, nil
}

func (r *Resolver) interactive(ctx context.Context, dryRun bool) (Ref, error) {
	choice, err := r.Prompter.Select(ctx, prompt.SelectRequest{
		Message: "What do you want to publish?",
		Options: []prompt.Option{
			{Label: "An existing branch", Value: ChoiceBranch},
			{Label: "An existing tag", Value: ChoiceTag},
			{Label: "A new tag", Value: ChoiceNewTag},
		},
		Default: ChoiceBranch,
	})
	if err != nil {
		return Ref{}, err
	}

	switch choice {
	case ChoiceBranch:
		return r.chooseBranch(ctx)
	case ChoiceTag:
		return r.chooseTag(ctx)
	default:
		return r.newTag(ctx, dryRun)
	}
}

func (r *Resolver) chooseBranch(ctx context.Context) (Ref, error) {
	branches, err := r.VCS.Branches(ctx)
	if err != nil {
		return Ref{}, errs.Wrap(errs.CodeRefListFailed, "failed to list branches", err)
	}
	if len(branches) == 0 {
		return Ref{}, errs.New(errs.CodeRefNoBranches, "the repository has no branches")
	}

	def := branches[0]
	if st, err := r.VCS.Status(ctx); err == nil && st.Branch != "" && contains(branches, st.Branch) {
		def = st.Branch
	}
	name, err := r.Prompter.Select(ctx, prompt.SelectRequest{
		Message: "Branch to publish",
		Options: prompt.Options(branches...),
		Default: def,
	})
	if err != nil {
		return Ref{}, err
	}
	return Ref{Name: name, Kind: git.RefBranch}, nil
}

// chooseTag defaults to the last tag in the listed order. Tags are listed
// lexically, so "v1.10.0" sorts before "v1.9.0"; the default is a
// convenience, not a claim about the newest release.
func (r *Resolver) chooseTag(ctx context.Context) (Ref, error) {
	tags, err := r.VCS.Tags(ctx)
	if err != nil {
		return Ref{}, errs.Wrap(errs.CodeRefListFailed, "failed to list tags", err)
	}
	if len(tags) == 0 {
		return Ref{}, errs.New(errs.CodeRefNoTags, "the repository has no tags")
	}
	name, err := r.Prompter.Select(ctx, prompt.SelectRequest{
		Message: "Tag to publish",
		Options: prompt.Options(tags...),
		Default: tags[len(tags)-1],
	})
	if err != nil {
		return Ref{}, err
	}
	return Ref{Name: name, Kind: git.RefTag}, nil
}

func (r *Resolver) newTag(ctx context.Context, dryRun bool) (Ref, error) {
	name, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message:     "New tag name",
		Placeholder: "v1.0.0",
		Validate:    prompt.NotEmpty,
	})
	if err != nil {
		return Ref{}, err
	}
	message, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message:     "Tag message (optional, leave empty for a lightweight tag)",
		Placeholder: "Release " + name,
	})
	if err != nil {
		return Ref{}, err
	}
	return r.createTag(ctx, name, message, dryRun)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
