package hosting

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/remote"
)

// GitHubAPI creates repositories through the GitHub REST API. It is the
// fallback when gh is not installed but a token is available. It never
// attaches the remote.
type GitHubAPI struct {
	project *project.Context
	runner  command.Runner

	// HTTPClient is the base transport under the oauth2 client.
	// Nil uses http.DefaultClient.
	HTTPClient *http.Client

	// SSH selects the SSH clone URL instead of HTTPS.
	SSH bool

	// Retry controls retries of rate-limited or unreachable requests.
	Retry RetryConfig
}

// NewGitHubAPI returns the REST-backed provider.
func NewGitHubAPI(pc *project.Context, runner command.Runner) *GitHubAPI {
	return &GitHubAPI{project: pc, runner: runner, Retry: DefaultRetryConfig()}
}

func (g *GitHubAPI) Name() string              { return "github-api" }
func (g *GitHubAPI) Platform() remote.Platform { return remote.PlatformGitHub }

func (g *GitHubAPI) Available(ctx context.Context) bool {
	token, _ := LookupToken(ctx, g.project, g.runner, remote.PlatformGitHub)
	return token != ""
}

func (g *GitHubAPI) CreateRepository(ctx context.Context, opts CreateOptions) (string, error) {
	token, _ := LookupToken(ctx, g.project, g.runner, remote.PlatformGitHub)
	if token == "" {
		return "", fmt.Errorf("no GitHub token found (set GITHUB_TOKEN or GH_TOKEN)")
	}

	client := g.client(ctx, token)
	repo, _, err := client.Repositories.Create(ctx, "", &github.Repository{
		Name:    github.Ptr(opts.Name),
		Private: github.Ptr(opts.Private),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create repository %s: %w", opts.Name, err)
	}
	if g.SSH {
		return repo.GetSSHURL(), nil
	}
	return repo.GetCloneURL(), nil
}

func (g *GitHubAPI) client(ctx context.Context, token string) *github.Client {
	base := &http.Client{}
	if g.HTTPClient != nil {
		*base = *g.HTTPClient
	}
	base.Transport = newRetryTransport(base.Transport, g.Retry)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}
