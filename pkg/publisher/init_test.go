package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/config"
	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/git/gittest"
	"github.com/holon-run/shipit/pkg/prompt/prompttest"
)

func TestInitFromScratch(t *testing.T) {
	vcs := &gittest.Fake{OnInit: func(f *gittest.Fake) {
		f.Changes = git.ChangeSet{Untracked: []string{"README.md", "mod.ts"}}
	}}
	f := newFixture(t, vcs, prompttest.New(
		prompttest.Yes(),                   // initialize
		prompttest.Type("Ada Lovelace"),    // user.name
		prompttest.Type("ada@example.com"), // user.email
	))

	report, err := f.o.Init(context.Background(), InitOptions{WriteConfig: true})
	require.NoError(t, err)
	assert.True(t, report.Repository.Initialized)
	assert.NotEmpty(t, report.Repository.Commit)
	assert.Equal(t, []string{git.KeyUserName, git.KeyUserEmail}, report.Identity)
	assert.True(t, report.HasWarning(errs.CodeRemoteNoTooling))
	assert.Empty(t, report.Commit, "initial commit left nothing pending")
	assert.Nil(t, report.Manifest)
	assert.True(t, report.ConfigWritten)
	assert.FileExists(t, config.Path(f.o.Project.Dir))
	assert.Equal(t, []string{"Initial commit"}, vcs.Commits)
}

func TestInitDeclinedIsFatal(t *testing.T) {
	f := newFixture(t, &gittest.Fake{}, prompttest.New(prompttest.No()))

	_, err := f.o.Init(context.Background(), InitOptions{WriteConfig: true})
	assert.True(t, errs.Is(err, errs.CodeGitInitDeclined))
	assert.NoFileExists(t, config.Path(f.o.Project.Dir))
}

func TestInitExistingRepository(t *testing.T) {
	vcs := readyRepo()
	vcs.Changes = git.ChangeSet{Modified: []string{"mod.ts"}}
	f := newFixture(t, vcs, prompttest.New(
		prompttest.No(),  // commit
		prompttest.Yes(), // fix jsr.json
		prompttest.Yes(), // add license
	))
	f.writeFile(t, "jsr.json", `{"name": "@acme/widget", "version": "1.0.0"}`)
	f.writeFile(t, "mod.ts", "export {};\n")
	f.writeFile(t, config.FileName, "remote: origin\n")

	report, err := f.o.Init(context.Background(), InitOptions{WriteConfig: true})
	require.NoError(t, err)
	assert.False(t, report.Repository.Initialized)
	assert.Equal(t, "acme/widget", report.Remote.Slug())
	assert.True(t, report.HasWarning(errs.CodeCommitDeclined))
	require.NotNil(t, report.Manifest)
	assert.True(t, report.Manifest.IsValid())
	assert.True(t, report.Manifest.HasLicense)
	assert.False(t, report.ConfigWritten)
	assert.Equal(t, "remote: origin\n", f.readFile(t, config.FileName))
	assert.False(t, vcs.Called("init"))
}

func TestInitNothingToDo(t *testing.T) {
	vcs := readyRepo()
	f := newFixture(t, vcs, prompttest.New())

	report, err := f.o.Init(context.Background(), InitOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, vcs.Calls())
	assert.Empty(t, f.prompt.Asked)
}
