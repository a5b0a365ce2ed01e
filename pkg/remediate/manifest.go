package remediate

import (
	"context"
	"regexp"
	"strings"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/prompt"
	"github.com/holon-run/shipit/pkg/registry"
)

// DefaultJSRVersion is set when the manifest has no valid version.
const DefaultJSRVersion = "0.1.0"

// DefaultJSRLicense is offered when the manifest has no license.
const DefaultJSRLicense = "MIT"

// FallbackEntryPoint is used for exports when no candidate exists on disk.
const FallbackEntryPoint = "./mod.ts"

// EntryPointCandidates are probed in order for the exports field.
var EntryPointCandidates = []string{
	"mod.ts",
	"main.ts",
	"index.ts",
	"mod.js",
	"main.js",
	"index.js",
	"src/mod.ts",
	"src/main.ts",
	"src/index.ts",
	"src/index.js",
}

var nameSegment = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NeedsManifestFix reports whether v has a required field missing or invalid.
func NeedsManifestFix(v registry.ManifestValidation) bool {
	return !v.IsValid()
}

// FixManifest offers to repair m in place and writes it back. Only invalid
// fields are touched. The returned validation reflects the saved manifest.
// Declining returns JSR_AUTOFIX_DECLINED.
func (r *Remediator) FixManifest(ctx context.Context, m *registry.JSRManifest) (registry.ManifestValidation, error) {
	v := registry.Validate(m)
	if !NeedsManifestFix(v) {
		return v, nil
	}

	r.Console.Warn("%s is not ready for JSR", m.Path)
	for _, issue := range v.Issues {
		r.Console.Info("  - %s", issue)
	}

	ok, err := r.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: "Fix " + m.Path + " automatically?",
		Default: true,
	})
	if err != nil {
		return v, err
	}
	if !ok {
		return v, errs.Newf(errs.CodeJSRAutofixDeclined, "fixing %s declined", m.Path)
	}

	if !v.HasValidName {
		name, err := r.askPackageName(ctx, m.Name)
		if err != nil {
			return v, err
		}
		m.Name = name
	}
	if !v.HasValidVersion {
		m.Version = DefaultJSRVersion
	}
	if !v.HasExports {
		entry, found := r.findEntryPoint()
		if !found {
			r.Console.Warn("No entry file found; exports set to %s, edit %s if that is wrong", entry, m.Path)
		}
		m.Exports = registry.Exports{Path: entry}
	}
	if !v.HasLicense {
		add, err := r.Prompter.Confirm(ctx, prompt.ConfirmRequest{
			Message: "Add the " + DefaultJSRLicense + " license?",
			Default: false,
		})
		if err != nil {
			return v, err
		}
		if add {
			m.License = DefaultJSRLicense
		}
	}

	if err := m.Save(r.Project); err != nil {
		return v, errs.Wrap(errs.CodeJSRAutofixFailed, "failed to write "+m.Path, err)
	}
	r.Console.Success("Updated %s", m.Path)
	return registry.Validate(m), nil
}

// askPackageName composes @scope/name from two prompts. Defaults come from
// the current (invalid) name where possible, else the directory name.
func (r *Remediator) askPackageName(ctx context.Context, current string) (string, error) {
	scopeDefault, nameDefault := splitPackageName(current)
	if nameDefault == "" {
		nameDefault = slug(r.Project.Name())
	}

	validate := func(s string) error {
		if !nameSegment.MatchString(s) {
			return errs.Newf(errs.CodeValidationFailed, "%q must be lowercase letters, digits and hyphens", s)
		}
		return nil
	}
	scope, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message:     "JSR scope (without @)",
		Default:     scopeDefault,
		Placeholder: "your-scope",
		Validate:    validate,
	})
	if err != nil {
		return "", err
	}
	name, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message:  "JSR package name",
		Default:  nameDefault,
		Validate: validate,
	})
	if err != nil {
		return "", err
	}
	return "@" + strings.TrimPrefix(scope, "@") + "/" + name, nil
}

// splitPackageName extracts usable scope and name defaults from a name such
// as "@Acme/Widget" or "widget".
func splitPackageName(name string) (scope, pkg string) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if s, p, ok := strings.Cut(name, "/"); ok {
		return slug(s), slug(p)
	}
	return "", slug(name)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9-]+`)

// slug lowercases s and replaces runs of other characters with "-".
func slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func (r *Remediator) findEntryPoint() (string, bool) {
	for _, candidate := range EntryPointCandidates {
		if r.Project.Exists(candidate) {
			return "./" + candidate, true
		}
	}
	return FallbackEntryPoint, false
}
