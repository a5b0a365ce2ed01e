// Package publisher runs the publish pipeline: verify the repository, remote
// and push access, reconcile local changes, resolve the ref, choose
// registries, confirm, then push and publish.
//
// The Orchestrator is the only place that decides whether a failure stops
// the run. Hard failures return an *errs.Error. A fixed set of declines
// (committing local changes, fixing the JSR manifest, setting up a JSR
// token) are recorded as warnings on the Report and the run continues.
// Registry publishes are isolated from each other and from the outcome.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/prompt"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/remediate"
	"github.com/holon-run/shipit/pkg/remote"
	"github.com/holon-run/shipit/pkg/resolve"
	"github.com/holon-run/shipit/pkg/ui"
)

// Config wires the orchestrator's collaborators.
type Config struct {
	Project  *project.Context
	VCS      git.VCS
	Runner   command.Runner
	Prompter prompt.Prompter
	Console  *ui.Console
	Logger   log.Logger

	// Providers create remote repositories, in preference order.
	Providers []hosting.Provider
	// Registry publishes packages.
	Registry registry.Publisher
	// Identity holds configured defaults for the git identity prompts.
	Identity git.ConfigOptions
}

// Orchestrator sequences the publish pipeline for one project.
type Orchestrator struct {
	Project    *project.Context
	VCS        git.VCS
	Runner     command.Runner
	Prompter   prompt.Prompter
	Console    *ui.Console
	Logger     log.Logger
	Remediator *remediate.Remediator
	Resolver   *resolve.Resolver
	Registry   registry.Publisher
}

// New builds an Orchestrator and the remediation and resolution components
// it drives from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	if cfg.Console == nil {
		cfg.Console = ui.Stdout()
	}
	return &Orchestrator{
		Project:  cfg.Project,
		VCS:      cfg.VCS,
		Runner:   cfg.Runner,
		Prompter: cfg.Prompter,
		Console:  cfg.Console,
		Logger:   cfg.Logger,
		Remediator: &remediate.Remediator{
			Project:   cfg.Project,
			VCS:       cfg.VCS,
			Prompter:  cfg.Prompter,
			Console:   cfg.Console,
			Logger:    cfg.Logger,
			Providers: cfg.Providers,
			Identity:  cfg.Identity,
		},
		Resolver: &resolve.Resolver{
			VCS:      cfg.VCS,
			Prompter: cfg.Prompter,
			Logger:   cfg.Logger,
		},
		Registry: cfg.Registry,
	}
}

// Publish runs the whole pipeline. Declining the final confirmation and
// dry runs are successes; see Report.Outcome. The report is returned even
// on failure.
func (o *Orchestrator) Publish(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}
	if err := opts.Validate(); err != nil {
		return report, err
	}
	only, _ := opts.registryKinds()

	if err := o.verifyRepository(ctx); err != nil {
		return report, err
	}

	desc, err := o.verifyRemote(ctx, opts.RemoteName())
	if err != nil {
		return report, err
	}
	report.Remote = desc

	if err := o.verifyAuth(ctx, desc); err != nil {
		return report, err
	}

	if err := o.reconcileChanges(ctx, report); err != nil {
		return report, err
	}

	o.Logger.Progress("resolving ref")
	ref, err := o.Resolver.Resolve(ctx, opts.refRequest())
	if err != nil {
		return report, err
	}
	report.Ref = ref

	detected := registry.Detect(o.Project, o.Logger)
	o.Logger.Debug("registries detected", "count", len(detected))

	selected, err := registry.Select(ctx, o.Prompter, detected, registry.SelectOptions{
		Skip: opts.SkipRegistries,
		Only: only,
	})
	if err != nil {
		return report, err
	}

	if _, ok := registry.Find(selected, registry.JSR); ok {
		selected, err = o.prepareJSR(ctx, selected, report)
		if err != nil {
			return report, err
		}
	}
	report.Registries = selected

	if !opts.DryRun {
		ok, err := o.confirm(ctx, report, opts)
		if err != nil {
			return report, err
		}
		if !ok {
			o.Console.Info("Nothing was published.")
			report.Outcome = OutcomeDeclined
			return report, nil
		}
	}

	if opts.DryRun {
		o.printPlan(report, opts)
		report.Outcome = OutcomeDryRun
		return report, nil
	}

	if err := o.push(ctx, report, opts.Force); err != nil {
		return report, err
	}
	o.publishRegistries(ctx, report)
	report.Outcome = OutcomeCompleted
	return report, nil
}

// verifyRepository requires git and a repository, initialising one if the
// user agrees. Declining is fatal.
func (o *Orchestrator) verifyRepository(ctx context.Context) error {
	o.Logger.Progress("checking repository")
	if !o.VCS.Installed() {
		return errs.New(errs.CodeGitNotInstalled, "git is not installed; get it from https://git-scm.com/downloads")
	}
	st, err := o.VCS.Status(ctx)
	if err != nil {
		return errs.Wrap(errs.CodeGitStatusFailed, "failed to read repository status", err)
	}
	if !remediate.NeedsInit(st) {
		return nil
	}
	_, err = o.Remediator.InitRepository(ctx)
	return err
}

// verifyRemote returns the named remote, creating one through a hosting
// provider if it is missing.
func (o *Orchestrator) verifyRemote(ctx context.Context, name string) (remote.Descriptor, error) {
	remotes, err := o.VCS.Remotes(ctx)
	if err != nil {
		return remote.Descriptor{}, errs.Wrap(errs.CodeRemoteLookupFailed, "failed to list remotes", err)
	}
	if remediate.NeedsRemote(remotes, name) {
		return o.Remediator.AttachRemote(ctx, name)
	}
	found, _ := git.FindRemote(remotes, name)
	d := remote.Describe(found.Name, found.URL)
	o.Logger.Info("using remote", "name", d.Name, "url", d.URL, "platform", string(d.Platform))
	return d, nil
}

// verifyAuth checks push access. A failure prints setup steps and is fatal.
func (o *Orchestrator) verifyAuth(ctx context.Context, d remote.Descriptor) error {
	o.Logger.Progress("checking push access", "remote", d.Name)
	err := o.VCS.CanPush(ctx, d.Name)
	if errors.Is(err, git.ErrRejected) {
		// The remote answered with a ref update rejection, so the
		// credentials were accepted.
		o.Logger.Debug("dry-run push rejected by remote history", "remote", d.Name, "error", err)
		err = nil
	}
	if err != nil {
		o.Console.Error("Cannot push to %s (%s)", d.Name, d.URL)
		o.showAuthHelp(d)
		return errs.Wrap(errs.CodeAuthFailed, fmt.Sprintf("push access to %s denied", d.Name), err)
	}
	return nil
}

// reconcileChanges offers to commit a dirty tree. Declining continues with
// a warning.
func (o *Orchestrator) reconcileChanges(ctx context.Context, report *Report) error {
	st, err := o.VCS.Status(ctx)
	if err != nil {
		return errs.Wrap(errs.CodeGitStatusFailed, "failed to read repository status", err)
	}
	if !st.Dirty {
		return nil
	}
	if _, err := o.Remediator.CommitChanges(ctx); err != nil {
		if errs.Is(err, errs.CodeCommitDeclined) {
			o.warn(report, errs.New(errs.CodeCommitDeclined, "Publishing with uncommitted changes; they will not be pushed"))
			return nil
		}
		return err
	}
	return nil
}

// prepareJSR validates the JSR manifest, offers to fix it, and makes sure a
// token is available. JSR is dropped from the selection, with a warning,
// when the fix is declined or no token can be found.
func (o *Orchestrator) prepareJSR(ctx context.Context, selected []registry.Descriptor, report *Report) ([]registry.Descriptor, error) {
	m, err := registry.LoadJSRManifest(o.Project)
	if err != nil {
		o.warn(report, errs.Wrap(errs.CodeJSRManifestMissing, "Skipping JSR: manifest could not be read", err))
		return registry.Without(selected, registry.JSR), nil
	}

	v := registry.Validate(m)
	if remediate.NeedsManifestFix(v) {
		v, err = o.Remediator.FixManifest(ctx, m)
		if errs.Is(err, errs.CodeJSRAutofixDeclined) {
			o.warn(report, errs.Newf(errs.CodeJSRAutofixDeclined, "Skipping JSR: %s was not fixed", m.Path))
			return registry.Without(selected, registry.JSR), nil
		}
		if err != nil {
			return nil, err
		}
		if !v.IsValid() {
			return nil, errs.Newf(errs.CodeJSRManifestInvalid, "%s is still invalid: %s", m.Path, strings.Join(v.Issues, "; "))
		}
		selected = withJSRManifest(selected, m)
	}

	ok, err := o.ensureJSRToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		o.warn(report, errs.Newf(errs.CodeJSRTokenMissing, "Skipping JSR: %s is not set", registry.JSRTokenVar))
		return registry.Without(selected, registry.JSR), nil
	}
	return selected, nil
}

// withJSRManifest refreshes the JSR descriptor after its manifest changed.
func withJSRManifest(selected []registry.Descriptor, m *registry.JSRManifest) []registry.Descriptor {
	out := make([]registry.Descriptor, len(selected))
	copy(out, selected)
	for i := range out {
		if out[i].Kind == registry.JSR {
			out[i].Name = m.Name
			out[i].Version = m.Version
			out[i].ManifestPath = m.Path
		}
	}
	return out
}

// ensureJSRToken guides the user through creating a JSR token once. A
// pasted token is set on the project environment for the publish command.
func (o *Orchestrator) ensureJSRToken(ctx context.Context) (bool, error) {
	if o.Project.Getenv(registry.JSRTokenVar) != "" {
		return true, nil
	}

	o.Console.Instructions("Set up a JSR token", []string{
		"Open https://jsr.io/account/tokens/create",
		"Create a token allowed to publish your package",
		fmt.Sprintf("Paste it below, or export %s=<token> and run shipit again", registry.JSRTokenVar),
	})
	ready, err := o.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: "Do you have a JSR token ready?",
		Default: true,
	})
	if err != nil {
		return false, err
	}
	if !ready {
		return false, nil
	}

	token, err := o.Prompter.Input(ctx, prompt.InputRequest{
		Message:     "JSR token",
		Placeholder: "leave empty to skip JSR",
		Secret:      true,
	})
	if err != nil {
		return false, err
	}
	if token = strings.TrimSpace(token); token != "" {
		o.Project.Setenv(registry.JSRTokenVar, token)
	}
	return o.Project.Getenv(registry.JSRTokenVar) != "", nil
}

func (o *Orchestrator) confirm(ctx context.Context, report *Report, opts Options) (bool, error) {
	rows := []ui.Row{
		{Label: "Ref", Value: report.Ref.String()},
		{Label: "Remote", Value: fmt.Sprintf("%s (%s)", report.Remote.Name, report.Remote.URL)},
		{Label: "Registries", Value: registryList(report.Registries)},
	}
	if opts.Force {
		rows = append(rows, ui.Row{Label: "Force push", Value: "yes"})
	}
	o.Console.Summary("Ready to publish", rows)
	return o.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: "Proceed?",
		Default: true,
	})
}

func (o *Orchestrator) printPlan(report *Report, opts Options) {
	o.Console.Title("Dry run: nothing will be pushed or published")
	if report.Ref.Planned {
		o.Console.Info("Would create tag %s", report.Ref.Name)
	}
	push := fmt.Sprintf("Would push %s to %s (%s)", report.Ref, report.Remote.Name, report.Remote.URL)
	if opts.Force {
		push += " with --force"
	}
	o.Console.Info("%s", push)
	if len(report.Registries) == 0 {
		o.Console.Muted("No registries selected")
		return
	}
	for _, d := range report.Registries {
		o.Console.Info("Would publish %s", d)
	}
}

// push is fatal on failure; no registry is attempted after a failed push.
func (o *Orchestrator) push(ctx context.Context, report *Report, force bool) error {
	o.Logger.Progress("pushing", "ref", report.Ref.Name, "remote", report.Remote.Name, "force", force)
	err := o.VCS.Push(ctx, git.PushOptions{
		Remote: report.Remote.Name,
		Ref:    report.Ref.Name,
		Kind:   report.Ref.Kind,
		Force:  force,
	})
	if err != nil {
		return errs.Wrap(errs.CodeGitPushFailed,
			fmt.Sprintf("failed to push %s to %s", report.Ref, report.Remote.Name), err)
	}
	report.Pushed = true
	o.Console.Success("Pushed %s to %s", report.Ref, report.Remote.Name)
	return nil
}

// publishRegistries attempts every selected registry in order. A failure is
// reported and the loop moves on.
func (o *Orchestrator) publishRegistries(ctx context.Context, report *Report) {
	for _, d := range report.Registries {
		o.Logger.Progress("publishing", "registry", string(d.Kind), "package", d.Name, "version", d.Version)
		err := o.Registry.Publish(ctx, d)
		if err != nil {
			err = errs.Wrap(errs.CodeRegistryPublishFailed, "failed to publish "+d.String(), err)
			o.Logger.Error("registry publish failed", "registry", string(d.Kind), "error", err)
			o.Console.Error("Failed to publish %s: %v", d, err)
		} else {
			o.Console.Success("Published %s", d)
		}
		report.Results = append(report.Results, RegistryResult{Registry: d, Err: err})
	}
	if failed := report.Failed(); len(failed) > 0 {
		o.Console.Warn("%d of %d registry publishes failed", len(failed), len(report.Results))
	}
}

func (o *Orchestrator) warn(report *Report, w *errs.Error) {
	report.Warnings = append(report.Warnings, w)
	o.Logger.Warn(w.Message, "code", string(w.Code))
	o.Console.Warn("%s", w.Message)
}

func registryList(descs []registry.Descriptor) string {
	if len(descs) == 0 {
		return "none"
	}
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}
