// Package remediate holds the guided fixes the publish pipeline offers when a
// prerequisite is missing: initialising the repository, creating and
// attaching a remote, committing pending changes and repairing the JSR
// manifest.
//
// Every fix comes as a pair: a Needs predicate over state the caller already
// has, and a method that re-reads the current state and returns immediately,
// without side effects, when there is nothing to do. A user saying "no"
// yields an error whose code ends in _DECLINED so the caller can tell a
// decline from a failure.
package remediate

import (
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/prompt"
	"github.com/holon-run/shipit/pkg/ui"
)

// Remediator runs the remediation flows for one project.
type Remediator struct {
	Project  *project.Context
	VCS      git.VCS
	Prompter prompt.Prompter
	Console  *ui.Console
	Logger   log.Logger

	// Providers are the hosting providers probed before creating a remote,
	// CLIs before API fallbacks.
	Providers []hosting.Provider

	// Identity supplies project-level defaults for user.name and
	// user.email prompts.
	Identity git.ConfigOptions
}
