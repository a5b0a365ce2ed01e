package publisher

import (
	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/remote"
	"github.com/holon-run/shipit/pkg/resolve"
)

// Outcome is how a successful run ended.
type Outcome string

const (
	// OutcomeCompleted means the ref was pushed and every selected
	// registry was attempted.
	OutcomeCompleted Outcome = "completed"
	// OutcomeDeclined means the user said no at the final confirmation.
	OutcomeDeclined Outcome = "declined"
	// OutcomeDryRun means the plan was printed and nothing was changed.
	OutcomeDryRun Outcome = "dry-run"
)

// RegistryResult is the outcome of one registry publish.
type RegistryResult struct {
	Registry registry.Descriptor
	Err      error
}

// OK reports whether the publish succeeded.
func (r RegistryResult) OK() bool { return r.Err == nil }

// Report describes what a publish run did. Fields are filled as phases
// complete, so a failed run's report shows how far it got.
type Report struct {
	Ref    resolve.Ref
	Remote remote.Descriptor

	// Registries is the final selection after manifest and token checks.
	Registries []registry.Descriptor
	Results    []RegistryResult

	// Warnings are the degraded failures the run continued past.
	Warnings []*errs.Error

	Pushed  bool
	Outcome Outcome
}

// Failed returns the registry publishes that failed.
func (r *Report) Failed() []RegistryResult {
	var out []RegistryResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// HasWarning reports whether a warning with code was recorded.
func (r *Report) HasWarning(code errs.Code) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
