package remediate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/git/gittest"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/log/logtest"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/prompt/prompttest"
	"github.com/holon-run/shipit/pkg/remote"
	"github.com/holon-run/shipit/pkg/ui"
)

type fixture struct {
	r      *Remediator
	vcs    *gittest.Fake
	prompt *prompttest.Prompter
	out    *bytes.Buffer
}

func newFixture(t *testing.T, vcs *gittest.Fake, p *prompttest.Prompter, env ...string) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "widget")
	require.NoError(t, os.Mkdir(dir, 0o755))
	pc, err := project.New(dir, env)
	require.NoError(t, err)

	logger, _ := logtest.New()
	out := &bytes.Buffer{}
	return &fixture{
		r: &Remediator{
			Project:  pc,
			VCS:      vcs,
			Prompter: p,
			Console:  ui.New(out),
			Logger:   logger,
		},
		vcs:    vcs,
		prompt: p,
		out:    out,
	}
}

func (f *fixture) writeFile(t *testing.T, name, content string) {
	t.Helper()
	path := f.r.Project.Path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.r.Project.Path(name))
	require.NoError(t, err)
	return string(data)
}

// fakeProvider creates repositories in memory. attach, when set, runs after
// creation to mimic CLIs that add the remote themselves.
type fakeProvider struct {
	name     string
	platform remote.Platform
	url      string
	err      error
	attach   func()
	created  []hosting.CreateOptions
}

func (p *fakeProvider) Name() string                   { return p.name }
func (p *fakeProvider) Platform() remote.Platform      { return p.platform }
func (p *fakeProvider) Available(context.Context) bool { return true }

func (p *fakeProvider) CreateRepository(_ context.Context, opts hosting.CreateOptions) (string, error) {
	p.created = append(p.created, opts)
	if p.err != nil {
		return "", p.err
	}
	if p.attach != nil {
		p.attach()
	}
	return p.url, nil
}
