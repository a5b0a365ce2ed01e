package publisher

import (
	"context"
	"errors"

	"github.com/holon-run/shipit/pkg/config"
	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/remediate"
	"github.com/holon-run/shipit/pkg/remote"
)

// InitOptions selects what Init sets up.
type InitOptions struct {
	Remote string
	// WriteConfig writes a default .shipit.yaml when none exists.
	WriteConfig bool
}

// InitReport describes what Init changed.
type InitReport struct {
	Repository remediate.InitResult
	// Identity lists the git config keys that were set.
	Identity []string
	Remote   remote.Descriptor
	// Commit is the sha of a commit made for pending changes.
	Commit string
	// Manifest is the JSR manifest validation after any fix, nil without
	// a JSR manifest.
	Manifest      *registry.ManifestValidation
	ConfigWritten bool
	Warnings      []*errs.Error
}

func (r *InitReport) warn(w *errs.Error) {
	r.Warnings = append(r.Warnings, w)
}

// Init runs every remediation flow without publishing: repository, git
// identity, remote, pending changes and the JSR manifest. Declining the
// repository is fatal. The other declines, and a missing hosting CLI, are
// recorded as warnings.
func (o *Orchestrator) Init(ctx context.Context, opts InitOptions) (*InitReport, error) {
	report := &InitReport{}
	remoteName := opts.Remote
	if remoteName == "" {
		remoteName = DefaultRemote
	}

	if !o.VCS.Installed() {
		return report, errs.New(errs.CodeGitNotInstalled, "git is not installed; get it from https://git-scm.com/downloads")
	}
	res, err := o.Remediator.InitRepository(ctx)
	report.Repository = res
	if err != nil {
		return report, err
	}

	fields, err := o.Remediator.EnsureIdentity(ctx)
	if err != nil {
		return report, err
	}
	report.Identity = append(res.ConfiguredFields, fields...)

	desc, err := o.Remediator.AttachRemote(ctx, remoteName)
	switch {
	case errs.IsDeclined(err), errs.Is(err, errs.CodeRemoteNoTooling):
		o.initWarn(report, err)
	case err != nil:
		return report, err
	default:
		report.Remote = desc
	}

	sha, err := o.Remediator.CommitChanges(ctx)
	switch {
	case errs.IsDeclined(err):
		o.initWarn(report, err)
	case err != nil:
		return report, err
	default:
		report.Commit = sha
	}

	if registry.FindJSRManifest(o.Project) != "" {
		if err := o.initManifest(ctx, report); err != nil {
			return report, err
		}
	}

	if opts.WriteConfig {
		wrote, err := config.WriteDefault(config.Path(o.Project.Dir))
		if err != nil {
			return report, err
		}
		if wrote {
			o.Console.Success("Wrote %s", config.FileName)
		}
		report.ConfigWritten = wrote
	}

	o.Console.Success("Project is ready to publish")
	return report, nil
}

func (o *Orchestrator) initManifest(ctx context.Context, report *InitReport) error {
	m, err := registry.LoadJSRManifest(o.Project)
	if err != nil {
		o.initWarn(report, errs.Wrap(errs.CodeJSRManifestInvalid, "JSR manifest could not be read", err))
		return nil
	}
	v, err := o.Remediator.FixManifest(ctx, m)
	if errs.IsDeclined(err) {
		o.initWarn(report, err)
		err = nil
	}
	if err != nil {
		return err
	}
	report.Manifest = &v
	return nil
}

func (o *Orchestrator) initWarn(report *InitReport, err error) {
	var w *errs.Error
	if !errors.As(err, &w) {
		w = errs.Wrap(errs.CodeValidationFailed, err.Error(), err)
	}
	report.warn(w)
	o.Logger.Warn(w.Message, "code", string(w.Code))
	o.Console.Warn("%s", w.Message)
}

// HasWarning reports whether a warning with code was recorded.
func (r *InitReport) HasWarning(code errs.Code) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
