package remediate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/git/gittest"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/prompt/prompttest"
	"github.com/holon-run/shipit/pkg/remote"
)

func TestNeedsRemote(t *testing.T) {
	remotes := []git.Remote{{Name: "upstream", URL: "https://github.com/acme/widget.git"}}
	assert.True(t, NeedsRemote(remotes, "origin"))
	assert.False(t, NeedsRemote(remotes, "upstream"))
	assert.True(t, NeedsRemote(nil, "origin"))
}

func TestAttachRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("existing remote is a no-op", func(t *testing.T) {
		vcs := gittest.NewRepo().WithRemote("origin", "git@github.com:acme/widget.git")
		f := newFixture(t, vcs, prompttest.New())

		d, err := f.r.AttachRemote(ctx, "origin")
		require.NoError(t, err)
		assert.Equal(t, remote.PlatformGitHub, d.Platform)
		assert.Equal(t, "acme/widget", d.Slug())
		assert.Empty(t, f.prompt.Asked)
		assert.Empty(t, vcs.Calls())
	})

	t.Run("no tooling prints manual steps", func(t *testing.T) {
		f := newFixture(t, gittest.NewRepo(), prompttest.New())

		_, err := f.r.AttachRemote(ctx, "origin")
		assert.True(t, errs.Is(err, errs.CodeRemoteNoTooling))
		assert.False(t, errs.IsDeclined(err))
		assert.Contains(t, f.out.String(), "https://github.com/new")
		assert.Contains(t, f.out.String(), "git remote add origin git@github.com:<owner>/widget.git")
		assert.Empty(t, f.prompt.Asked)
	})

	t.Run("decline prints manual steps", func(t *testing.T) {
		gl := &fakeProvider{name: "glab", platform: remote.PlatformGitLab}
		f := newFixture(t, gittest.NewRepo(), prompttest.New(prompttest.No()))
		f.r.Providers = []hosting.Provider{gl}

		_, err := f.r.AttachRemote(ctx, "origin")
		assert.True(t, errs.Is(err, errs.CodeRemoteCreateDeclined))
		assert.Contains(t, f.out.String(), "https://gitlab.com/projects/new")
		assert.Empty(t, gl.created)
	})

	t.Run("single provider skips platform choice and attaches", func(t *testing.T) {
		gl := &fakeProvider{name: "glab", platform: remote.PlatformGitLab, url: "https://gitlab.com/acme/widget.git"}
		vcs := gittest.NewRepo()
		f := newFixture(t, vcs, prompttest.New(prompttest.Yes(), prompttest.Accept(), prompttest.Choose(VisibilityPublic)))
		f.r.Providers = []hosting.Provider{gl}

		d, err := f.r.AttachRemote(ctx, "origin")
		require.NoError(t, err)
		assert.Equal(t, remote.PlatformGitLab, d.Platform)
		assert.Equal(t, "https://gitlab.com/acme/widget.git", d.URL)

		require.Len(t, gl.created, 1)
		assert.Equal(t, hosting.CreateOptions{Name: "widget", Private: false, Remote: "origin"}, gl.created[0])
		assert.Equal(t, []string{"remote add origin https://gitlab.com/acme/widget.git"}, vcs.Calls())
		assert.Equal(t, []string{"confirm", "input", "select"}, askedKinds(f.prompt))
		assert.Equal(t, `No remote "origin" is configured. Create a new GitLab repository?`, f.prompt.Asked[0].Message)
	})

	t.Run("provider that attaches is not attached twice", func(t *testing.T) {
		vcs := gittest.NewRepo()
		gh := &fakeProvider{name: "gh", platform: remote.PlatformGitHub, url: "https://github.com/acme/tool"}
		gh.attach = func() { vcs.WithRemote("origin", "https://github.com/acme/tool.git") }
		f := newFixture(t, vcs, prompttest.New(prompttest.Yes(), prompttest.Type("tool"), prompttest.Accept()))
		f.r.Providers = []hosting.Provider{gh}

		d, err := f.r.AttachRemote(ctx, "origin")
		require.NoError(t, err)
		assert.Equal(t, "acme/tool", d.Slug())
		assert.True(t, gh.created[0].Private)
		assert.False(t, vcs.Called("remote add"))
	})

	t.Run("several providers ask for the platform", func(t *testing.T) {
		gh := &fakeProvider{name: "gh", platform: remote.PlatformGitHub, url: "https://github.com/acme/widget.git"}
		gl := &fakeProvider{name: "glab", platform: remote.PlatformGitLab, url: "git@gitlab.com:acme/widget.git"}
		f := newFixture(t, gittest.NewRepo(), prompttest.New(
			prompttest.Yes(), prompttest.Choose(string(remote.PlatformGitLab)), prompttest.Accept(), prompttest.Accept()))
		f.r.Providers = []hosting.Provider{gh, gl}

		d, err := f.r.AttachRemote(ctx, "origin")
		require.NoError(t, err)
		assert.Equal(t, remote.SchemeSSH, d.Scheme)
		assert.Empty(t, gh.created)
		assert.Len(t, gl.created, 1)
		assert.Equal(t, []string{"github", "gitlab"}, f.prompt.Asked[1].Options)
		assert.Equal(t, `No remote "origin" is configured. Create a new hosted repository?`, f.prompt.Asked[0].Message)
	})

	t.Run("creation failure", func(t *testing.T) {
		gh := &fakeProvider{name: "gh", platform: remote.PlatformGitHub, err: assert.AnError}
		f := newFixture(t, gittest.NewRepo(), prompttest.New(prompttest.Yes(), prompttest.Accept(), prompttest.Accept()))
		f.r.Providers = []hosting.Provider{gh}

		_, err := f.r.AttachRemote(ctx, "origin")
		assert.True(t, errs.Is(err, errs.CodeRemoteCreateFailed))
	})

	t.Run("no URL and no attachment", func(t *testing.T) {
		gh := &fakeProvider{name: "gh", platform: remote.PlatformGitHub}
		f := newFixture(t, gittest.NewRepo(), prompttest.New(prompttest.Yes(), prompttest.Accept(), prompttest.Accept()))
		f.r.Providers = []hosting.Provider{gh}

		_, err := f.r.AttachRemote(ctx, "origin")
		assert.True(t, errs.Is(err, errs.CodeRemoteAttachFailed))
	})
}

func askedKinds(p *prompttest.Prompter) []string {
	out := make([]string, len(p.Asked))
	for i, a := range p.Asked {
		out[i] = a.Kind
	}
	return out
}
