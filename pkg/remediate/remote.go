package remediate

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/prompt"
	"github.com/holon-run/shipit/pkg/remote"
)

// Visibility choices offered for a new repository.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// NeedsRemote reports whether the remote called name is missing.
func NeedsRemote(remotes []git.Remote, name string) bool {
	_, ok := git.FindRemote(remotes, name)
	return !ok
}

// createMessage names the platform only when there is no choice to make.
func createMessage(name string, platforms []remote.Platform) string {
	if len(platforms) == 1 {
		return fmt.Sprintf("No remote %q is configured. Create a new %s repository?", name, platforms[0].DisplayName())
	}
	return fmt.Sprintf("No remote %q is configured. Create a new hosted repository?", name)
}

// AttachRemote makes sure the remote called name exists, creating a
// repository through the first usable hosting provider when it does not.
//
// Without any usable provider the user gets manual setup steps and the
// error code is REMOTE_NO_TOOLING. Declining creation also prints the manual
// steps and returns REMOTE_CREATE_DECLINED.
func (r *Remediator) AttachRemote(ctx context.Context, name string) (remote.Descriptor, error) {
	if existing, ok, err := r.lookupRemote(ctx, name); err != nil || ok {
		return existing, err
	}

	caps := hosting.Probe(ctx, r.Providers...)
	if caps.Empty() {
		r.ManualRemoteInstructions(name, remote.PlatformGitHub)
		return remote.Descriptor{}, errs.Newf(errs.CodeRemoteNoTooling,
			"no remote %q and no hosting CLI (gh or glab) is available to create one", name)
	}

	platforms := caps.Platforms()
	ok, err := r.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: createMessage(name, platforms),
		Default: true,
	})
	if err != nil {
		return remote.Descriptor{}, err
	}
	if !ok {
		r.ManualRemoteInstructions(name, platforms[0])
		return remote.Descriptor{}, errs.Newf(errs.CodeRemoteCreateDeclined, "remote %q creation declined", name)
	}

	platform := platforms[0]
	if len(platforms) > 1 {
		options := make([]prompt.Option, len(platforms))
		for i, p := range platforms {
			options[i] = prompt.Option{Label: p.DisplayName(), Value: string(p)}
		}
		choice, err := r.Prompter.Select(ctx, prompt.SelectRequest{
			Message: "Where should the repository be created?",
			Options: options,
			Default: string(platform),
		})
		if err != nil {
			return remote.Descriptor{}, err
		}
		platform = remote.Platform(choice)
	}
	provider, _ := caps.Provider(platform)

	repoName, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message: "Repository name",
		Default: r.Project.Name(),
		Validate: func(s string) error {
			if !hosting.ValidRepositoryName(s) {
				return errs.Newf(errs.CodeValidationFailed, "%q may only contain letters, digits, '.', '_' and '-'", s)
			}
			return nil
		},
	})
	if err != nil {
		return remote.Descriptor{}, err
	}

	visibility, err := r.Prompter.Select(ctx, prompt.SelectRequest{
		Message: "Visibility",
		Options: []prompt.Option{
			{Label: "Private", Value: VisibilityPrivate},
			{Label: "Public", Value: VisibilityPublic},
		},
		Default: VisibilityPrivate,
	})
	if err != nil {
		return remote.Descriptor{}, err
	}

	r.Logger.Progress("Creating repository", "provider", provider.Name(), "name", repoName, "visibility", visibility)
	url, err := provider.CreateRepository(ctx, hosting.CreateOptions{
		Name:    repoName,
		Private: visibility == VisibilityPrivate,
		Remote:  name,
	})
	if err != nil {
		return remote.Descriptor{}, errs.Wrap(errs.CodeRemoteCreateFailed,
			fmt.Sprintf("failed to create %s repository %q", platform.DisplayName(), repoName), err)
	}
	r.Console.Success("Created %s repository %s", platform.DisplayName(), repoName)

	// Some CLIs attach the remote themselves.
	if attached, ok, err := r.lookupRemote(ctx, name); err != nil || ok {
		return attached, err
	}
	if url == "" {
		return remote.Descriptor{}, errs.Newf(errs.CodeRemoteAttachFailed,
			"%s did not report the new repository URL; add it with: git remote add %s <url>", provider.Name(), name)
	}
	if err := r.VCS.AddRemote(ctx, name, url); err != nil {
		return remote.Descriptor{}, errs.Wrap(errs.CodeRemoteAttachFailed, "failed to add remote "+name, err)
	}
	r.Console.Success("Added remote %s → %s", name, url)
	return remote.Describe(name, url), nil
}

func (r *Remediator) lookupRemote(ctx context.Context, name string) (remote.Descriptor, bool, error) {
	remotes, err := r.VCS.Remotes(ctx)
	if err != nil {
		return remote.Descriptor{}, false, errs.Wrap(errs.CodeRemoteLookupFailed, "failed to list remotes", err)
	}
	if NeedsRemote(remotes, name) {
		return remote.Descriptor{}, false, nil
	}
	found, _ := git.FindRemote(remotes, name)
	return remote.Describe(found.Name, found.URL), true, nil
}

// ManualRemoteInstructions prints how to create and attach a repository by
// hand on platform p.
func (r *Remediator) ManualRemoteInstructions(name string, p remote.Platform) {
	repo := r.Project.Name()
	var steps []string
	if url := remote.NewRepositoryURL(p); url != "" {
		steps = append(steps, fmt.Sprintf("Create an empty repository named %q at %s", repo, url))
	} else {
		steps = append(steps, fmt.Sprintf("Create an empty repository named %q on your git host", repo))
	}
	steps = append(steps,
		"git remote add "+name+" "+remote.CloneURL(p, "", repo, remote.SchemeSSH),
		"Run shipit again",
	)
	r.Console.Instructions("Set up a remote manually", steps)
}
