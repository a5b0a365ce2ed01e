package hosting

import (
	"context"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/remote"
)

// TokenVars returns the primary and fallback access-token variables for a
// platform. Both are empty for PlatformOther.
func TokenVars(p remote.Platform) (primary, fallback string) {
	switch p {
	case remote.PlatformGitHub:
		return "GITHUB_TOKEN", "GH_TOKEN"
	case remote.PlatformGitLab:
		return "GITLAB_TOKEN", "GL_TOKEN"
	case remote.PlatformBitbucket:
		return "BITBUCKET_TOKEN", "BITBUCKET_APP_PASSWORD"
	default:
		return "", ""
	}
}

// TokenSource says where a token was found.
type TokenSource string

const (
	TokenFromEnv TokenSource = "environment"
	TokenFromCLI TokenSource = "cli"
	TokenNone    TokenSource = ""
)

// LookupToken finds an access token for p: the platform's variables first,
// then the platform CLI's stored credentials.
func LookupToken(ctx context.Context, pc *project.Context, runner command.Runner, p remote.Platform) (string, TokenSource) {
	primary, fallback := TokenVars(p)
	if primary != "" {
		if v, _ := pc.FirstEnv(primary, fallback); v != "" {
			return v, TokenFromEnv
		}
	}

	var cmd command.Cmd
	switch p {
	case remote.PlatformGitHub:
		cmd = command.Cmd{Name: "gh", Args: []string{"auth", "token"}}
	case remote.PlatformGitLab:
		cmd = command.Cmd{Name: "glab", Args: []string{"config", "get", "token", "--host", "gitlab.com"}}
	default:
		return "", TokenNone
	}
	if !command.Available(runner, cmd.Name) {
		return "", TokenNone
	}
	cmd.Dir = pc.Dir
	cmd.Env = pc.Environ()
	res, err := runner.Run(ctx, cmd)
	if err != nil || res.Stdout == "" {
		return "", TokenNone
	}
	return res.Stdout, TokenFromCLI
}
