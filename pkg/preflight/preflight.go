// Package preflight runs the read-only checks behind "shipit check": the
// same prerequisites the publish pipeline verifies, reported without
// prompting or changing anything.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/remote"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a failure that would stop a publish
	LevelError CheckLevel = iota
	// LevelWarn indicates a problem the publish would work around
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// String returns the lowercase level name.
func (l CheckLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	default:
		return "info"
	}
}

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string     // Check name
	Level   CheckLevel // Severity level
	Message string     // Human-readable message
	Error   error      // Underlying error (if any)
}

// Check represents a single preflight check
type Check interface {
	// Name returns the check name
	Name() string
	// Run executes the check and returns a CheckResult
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks []Check
	quiet  bool
	logger log.Logger
}

// Config configures the preflight checker
type Config struct {
	Project *project.Context
	VCS     git.VCS
	Runner  command.Runner
	Logger  log.Logger

	// Remote is the remote the publish would push to.
	Remote string
	// Quiet suppresses info-level log lines
	Quiet bool
	// SkipRegistries leaves out the registry check
	SkipRegistries bool
}

// NewChecker creates the standard check list for cfg: git, repository,
// remote, push access, hosting token and registries, in pipeline order.
func NewChecker(cfg Config) *Checker {
	c := &Checker{quiet: cfg.Quiet, logger: cfg.Logger}
	if c.logger == nil {
		c.logger = log.Nop()
	}

	c.Add(
		&GitCheck{VCS: cfg.VCS, Runner: cfg.Runner, Project: cfg.Project},
		&RepositoryCheck{VCS: cfg.VCS},
		&RemoteCheck{VCS: cfg.VCS, Remote: cfg.Remote},
		&PushAccessCheck{VCS: cfg.VCS, Remote: cfg.Remote},
		&HostingTokenCheck{VCS: cfg.VCS, Runner: cfg.Runner, Project: cfg.Project, Remote: cfg.Remote},
	)
	if !cfg.SkipRegistries {
		c.Add(&RegistryCheck{Project: cfg.Project, Logger: c.logger})
	}
	return c
}

// Add appends checks.
func (c *Checker) Add(checks ...Check) {
	c.checks = append(c.checks, checks...)
}

// Run executes all registered checks. It returns every result, and an error
// listing the failed checks if any check reported LevelError.
func (c *Checker) Run(ctx context.Context) ([]CheckResult, error) {
	c.logger.Progress("running preflight checks")

	var results []CheckResult
	var failed []string
	var warnings int

	for _, check := range c.checks {
		result := check.Run(ctx)
		results = append(results, result)

		switch result.Level {
		case LevelError:
			c.logger.Error("preflight check failed", "check", result.Name, "message", result.Message)
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Message))
		case LevelWarn:
			c.logger.Warn("preflight check warning", "check", result.Name, "message", result.Message)
			warnings++
		case LevelInfo:
			if !c.quiet {
				c.logger.Info("preflight check", "check", result.Name, "message", result.Message)
			}
		}
	}

	if warnings > 0 {
		c.logger.Info("preflight warnings", "count", warnings)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(failed, "\n  - "))
	}

	c.logger.Progress("preflight checks passed")
	return results, nil
}

// GitCheck checks if git is installed
type GitCheck struct {
	VCS     git.VCS
	Runner  command.Runner
	Project *project.Context
}

func (c *GitCheck) Name() string {
	return "git"
}

func (c *GitCheck) Run(ctx context.Context) CheckResult {
	if !c.VCS.Installed() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "git command not found. Please install Git from https://git-scm.com/downloads",
			Error:   errors.New("git not installed"),
		}
	}

	res, err := c.Runner.Run(ctx, command.Cmd{Name: "git", Args: []string{"--version"}, Dir: c.Project.Dir})
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "git is installed but may not be working correctly",
			Error:   err,
		}
	}

	if res.Stdout == "" {
		return CheckResult{Name: c.Name(), Level: LevelInfo, Message: "git is available"}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("git is available (%s)", res.Stdout),
	}
}

// RepositoryCheck checks that the project is a repository and reports its
// branch and cleanliness
type RepositoryCheck struct {
	VCS git.VCS
}

func (c *RepositoryCheck) Name() string {
	return "repository"
}

func (c *RepositoryCheck) Run(ctx context.Context) CheckResult {
	st, err := c.VCS.Status(ctx)
	if err != nil {
		return CheckResult{Name: c.Name(), Level: LevelError, Message: "cannot read repository status", Error: err}
	}
	if !st.IsRepo {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "not a git repository (run 'shipit init' to create one)",
			Error:   git.ErrNotGitRepo,
		}
	}

	branch := st.Branch
	if branch == "" {
		branch = "detached HEAD"
	}
	if st.Dirty {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("on %s with uncommitted changes", branch),
		}
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: fmt.Sprintf("on %s, working tree clean", branch)}
}

// RemoteCheck checks that the publish remote is configured
type RemoteCheck struct {
	VCS    git.VCS
	Remote string
}

func (c *RemoteCheck) Name() string {
	return "remote"
}

func (c *RemoteCheck) Run(ctx context.Context) CheckResult {
	d, err := lookupRemote(ctx, c.VCS, c.Remote)
	if errors.Is(err, git.ErrNotGitRepo) {
		return CheckResult{Name: c.Name(), Level: LevelWarn, Message: "skipped: not a git repository"}
	}
	if err != nil {
		return CheckResult{Name: c.Name(), Level: LevelError, Message: err.Error(), Error: err}
	}

	msg := fmt.Sprintf("%s → %s (%s)", d.Name, d.URL, d.Platform.DisplayName())
	if slug := d.Slug(); slug != "" {
		msg = fmt.Sprintf("%s → %s (%s %s)", d.Name, d.URL, d.Platform.DisplayName(), slug)
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: msg}
}

// PushAccessCheck probes whether the remote accepts a push
type PushAccessCheck struct {
	VCS    git.VCS
	Remote string
}

func (c *PushAccessCheck) Name() string {
	return "push-access"
}

func (c *PushAccessCheck) Run(ctx context.Context) CheckResult {
	if _, err := lookupRemote(ctx, c.VCS, c.Remote); err != nil {
		return CheckResult{Name: c.Name(), Level: LevelWarn, Message: "skipped: no remote to probe"}
	}
	if err := c.VCS.CanPush(ctx, c.Remote); err != nil {
		msg := fmt.Sprintf("cannot push to %s", c.Remote)
		if errors.Is(err, git.ErrAuthentication) {
			msg = fmt.Sprintf("authentication to %s failed", c.Remote)
		}
		return CheckResult{Name: c.Name(), Level: LevelError, Message: msg, Error: err}
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: fmt.Sprintf("push access to %s confirmed", c.Remote)}
}

// HostingTokenCheck reports whether an access token for the remote's
// platform is available. Pushing does not need one, so a missing token is
// only a warning.
type HostingTokenCheck struct {
	VCS     git.VCS
	Runner  command.Runner
	Project *project.Context
	Remote  string
}

func (c *HostingTokenCheck) Name() string {
	return "hosting-token"
}

func (c *HostingTokenCheck) Run(ctx context.Context) CheckResult {
	platform := remote.PlatformGitHub
	if d, err := lookupRemote(ctx, c.VCS, c.Remote); err == nil {
		platform = d.Platform
	}
	primary, fallback := hosting.TokenVars(platform)
	if primary == "" {
		return CheckResult{Name: c.Name(), Level: LevelInfo, Message: "no token needed for " + platform.DisplayName()}
	}

	_, source := hosting.LookupToken(ctx, c.Project, c.Runner, platform)
	switch source {
	case hosting.TokenFromEnv:
		return CheckResult{Name: c.Name(), Level: LevelInfo, Message: platform.DisplayName() + " token available (from environment)"}
	case hosting.TokenFromCLI:
		return CheckResult{Name: c.Name(), Level: LevelInfo, Message: platform.DisplayName() + " token available (from CLI login)"}
	default:
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("%s token not found. Set %s or %s to let shipit create repositories", platform.DisplayName(), primary, fallback),
		}
	}
}

// RegistryCheck reports the registries the project can publish to. It
// never fails: an ineligible registry is simply not listed.
type RegistryCheck struct {
	Project *project.Context
	Logger  log.Logger
}

func (c *RegistryCheck) Name() string {
	return "registries"
}

func (c *RegistryCheck) Run(ctx context.Context) CheckResult {
	found := registry.Detect(c.Project, c.Logger)
	if len(found) == 0 {
		return CheckResult{Name: c.Name(), Level: LevelInfo, Message: "no publishable package manifest found"}
	}

	var parts []string
	level := LevelInfo
	for _, d := range found {
		part := d.String()
		if d.Kind == registry.JSR {
			if note := jsrNote(c.Project); note != "" {
				part += " (" + note + ")"
				level = LevelWarn
			}
		}
		parts = append(parts, part)
	}
	return CheckResult{Name: c.Name(), Level: level, Message: strings.Join(parts, ", ")}
}

// jsrNote describes what would stop a JSR publish, or "" when nothing would.
func jsrNote(pc *project.Context) string {
	m, err := registry.LoadJSRManifest(pc)
	if err != nil {
		return err.Error()
	}
	v := registry.Validate(m)
	if !v.IsValid() {
		return strings.Join(v.Issues, "; ")
	}
	if pc.Getenv(registry.JSRTokenVar) == "" {
		return registry.JSRTokenVar + " not set"
	}
	return ""
}

func lookupRemote(ctx context.Context, vcs git.VCS, name string) (remote.Descriptor, error) {
	remotes, err := vcs.Remotes(ctx)
	if err != nil {
		return remote.Descriptor{}, err
	}
	r, ok := git.FindRemote(remotes, name)
	if !ok {
		return remote.Descriptor{}, fmt.Errorf("remote %q is not configured: %w", name, git.ErrRemoteNotFound)
	}
	return remote.Describe(r.Name, r.URL), nil
}
