package publisher

import (
	"strings"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/resolve"
)

// DefaultRemote is pushed to when Options.Remote is empty.
const DefaultRemote = "origin"

// Options is the publish intent for one invocation.
type Options struct {
	// At most one of Branch, Tag and CreateTag may be set. With none set
	// the ref is chosen interactively.
	Branch    string
	Tag       string
	CreateTag string

	// TagMessage annotates CreateTag.
	TagMessage string

	Remote string

	SkipRegistries bool
	// Registries restricts publishing to these registries, skipping the
	// per-registry confirmation.
	Registries []string

	Force   bool
	DryRun  bool
	Verbose bool
}

// Validate rejects option combinations before anything runs.
func (o Options) Validate() error {
	var set []string
	if o.Branch != "" {
		set = append(set, "--branch")
	}
	if o.Tag != "" {
		set = append(set, "--tag")
	}
	if o.CreateTag != "" {
		set = append(set, "--create-tag")
	}
	if len(set) > 1 {
		return errs.Newf(errs.CodeValidationRefArgs,
			"%s are mutually exclusive; choose one", strings.Join(set, ", "))
	}
	if o.TagMessage != "" && o.CreateTag == "" {
		return errs.New(errs.CodeValidationFailed, "--tag-message requires --create-tag")
	}
	if strings.ContainsAny(o.Remote, " \t/:") {
		return errs.Newf(errs.CodeValidationFailed, "invalid remote name %q", o.Remote)
	}
	if o.SkipRegistries && len(o.Registries) > 0 {
		return errs.New(errs.CodeValidationFailed, "--skip-registries cannot be combined with --registry")
	}
	if _, err := o.registryKinds(); err != nil {
		return err
	}
	return nil
}

// RemoteName is Remote or DefaultRemote.
func (o Options) RemoteName() string {
	if o.Remote == "" {
		return DefaultRemote
	}
	return o.Remote
}

func (o Options) registryKinds() ([]registry.Kind, error) {
	var kinds []registry.Kind
	for _, name := range o.Registries {
		k, err := registry.ParseKind(name)
		if err != nil {
			return nil, errs.Wrap(errs.CodeRegistryUnknown, "invalid --registry value", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (o Options) refRequest() resolve.Request {
	return resolve.Request{
		Branch:     o.Branch,
		Tag:        o.Tag,
		CreateTag:  o.CreateTag,
		TagMessage: o.TagMessage,
		DryRun:     o.DryRun,
	}
}
