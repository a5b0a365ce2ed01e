package hosting

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/remote"
)

// GitHubCLI creates repositories with `gh repo create`. gh attaches the
// remote itself.
type GitHubCLI struct {
	project *project.Context
	runner  command.Runner
}

// NewGitHubCLI returns the gh-backed provider.
func NewGitHubCLI(pc *project.Context, runner command.Runner) *GitHubCLI {
	return &GitHubCLI{project: pc, runner: runner}
}

func (g *GitHubCLI) Name() string              { return "gh" }
func (g *GitHubCLI) Platform() remote.Platform { return remote.PlatformGitHub }

func (g *GitHubCLI) Available(ctx context.Context) bool {
	return cliAuthenticated(ctx, g.project, g.runner, "gh")
}

func (g *GitHubCLI) CreateRepository(ctx context.Context, opts CreateOptions) (string, error) {
	args := []string{"repo", "create", opts.Name, visibilityFlag(opts.Private), "--source=."}
	if opts.Remote != "" {
		args = append(args, "--remote="+opts.Remote)
	}
	return runCreate(ctx, g.project, g.runner, command.Cmd{Name: "gh", Args: args})
}

// GitLabCLI creates repositories with `glab repo create`.
type GitLabCLI struct {
	project *project.Context
	runner  command.Runner
}

// NewGitLabCLI returns the glab-backed provider.
func NewGitLabCLI(pc *project.Context, runner command.Runner) *GitLabCLI {
	return &GitLabCLI{project: pc, runner: runner}
}

func (g *GitLabCLI) Name() string              { return "glab" }
func (g *GitLabCLI) Platform() remote.Platform { return remote.PlatformGitLab }

func (g *GitLabCLI) Available(ctx context.Context) bool {
	return cliAuthenticated(ctx, g.project, g.runner, "glab")
}

func (g *GitLabCLI) CreateRepository(ctx context.Context, opts CreateOptions) (string, error) {
	args := []string{"repo", "create", opts.Name, visibilityFlag(opts.Private)}
	return runCreate(ctx, g.project, g.runner, command.Cmd{Name: "glab", Args: args})
}

func visibilityFlag(private bool) string {
	if private {
		return "--private"
	}
	return "--public"
}

func cliAuthenticated(ctx context.Context, pc *project.Context, runner command.Runner, name string) bool {
	if !command.Available(runner, name) {
		return false
	}
	_, err := runner.Run(ctx, command.Cmd{
		Name: name,
		Args: []string{"auth", "status"},
		Dir:  pc.Dir,
		Env:  pc.Environ(),
	})
	return err == nil
}

func runCreate(ctx context.Context, pc *project.Context, runner command.Runner, cmd command.Cmd) (string, error) {
	cmd.Dir = pc.Dir
	cmd.Env = pc.Environ()
	res, err := runner.Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", cmd.Name, err)
	}
	// gh prints the URL on stdout; glab prints progress on stderr.
	url := lastURL(res.Stdout)
	if url == "" {
		url = lastURL(res.Stderr)
	}
	return url, nil
}
