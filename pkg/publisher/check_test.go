package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/git/gittest"
	"github.com/holon-run/shipit/pkg/preflight"
	"github.com/holon-run/shipit/pkg/prompt/prompttest"
)

func levels(results []preflight.CheckResult) map[string]preflight.CheckLevel {
	out := map[string]preflight.CheckLevel{}
	for _, r := range results {
		out[r.Name] = r.Level
	}
	return out
}

func TestCheckReadyRepository(t *testing.T) {
	vcs := readyRepo()
	f := newFixture(t, vcs, prompttest.New(), "GITHUB_TOKEN=ghp_x")
	f.writeFile(t, "package.json", npmManifest)

	results, err := f.o.Check(context.Background(), CheckOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	for name, level := range levels(results) {
		assert.Equal(t, preflight.LevelInfo, level, name)
	}
	assert.Contains(t, f.out.String(), "Publish readiness")
	assert.Empty(t, vcs.Calls(), "check must not change the repository")
	assert.Empty(t, f.prompt.Asked)
}

func TestCheckReportsFailures(t *testing.T) {
	vcs := readyRepo()
	vcs.ErrCanPush = git.ErrAuthentication
	f := newFixture(t, vcs, prompttest.New())

	results, err := f.o.Check(context.Background(), CheckOptions{SkipRegistries: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight checks failed")
	assert.Equal(t, preflight.LevelError, levels(results)["push-access"])
	_, hasRegistries := levels(results)["registries"]
	assert.False(t, hasRegistries)
}

func TestCheckWithoutRepository(t *testing.T) {
	f := newFixture(t, &gittest.Fake{}, prompttest.New())

	_, err := f.o.Check(context.Background(), CheckOptions{})
	require.Error(t, err)
	assert.Contains(t, f.out.String(), "shipit init")
	assert.Empty(t, f.prompt.Asked)
}
