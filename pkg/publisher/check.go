package publisher

import (
	"context"

	"github.com/holon-run/shipit/pkg/preflight"
)

// CheckOptions selects what Check verifies.
type CheckOptions struct {
	Remote         string
	SkipRegistries bool
	Quiet          bool
}

// Check runs the read-only prerequisite checks and prints one line per
// result. It never prompts and never changes the repository. The error
// lists every failed check.
func (o *Orchestrator) Check(ctx context.Context, opts CheckOptions) ([]preflight.CheckResult, error) {
	remoteName := opts.Remote
	if remoteName == "" {
		remoteName = DefaultRemote
	}
	checker := preflight.NewChecker(preflight.Config{
		Project:        o.Project,
		VCS:            o.VCS,
		Runner:         o.Runner,
		Logger:         o.Logger,
		Remote:         remoteName,
		Quiet:          opts.Quiet,
		SkipRegistries: opts.SkipRegistries,
	})
	results, err := checker.Run(ctx)

	o.Console.Title("Publish readiness")
	for _, r := range results {
		switch r.Level {
		case preflight.LevelError:
			o.Console.Error("%s: %s", r.Name, r.Message)
		case preflight.LevelWarn:
			o.Console.Warn("%s: %s", r.Name, r.Message)
		default:
			o.Console.Success("%s: %s", r.Name, r.Message)
		}
	}
	return results, err
}
