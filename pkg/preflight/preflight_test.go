package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/holon-run/shipit/pkg/command/commandtest"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/git/gittest"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
)

func testProject(t *testing.T, env ...string) *project.Context {
	t.Helper()
	pc, err := project.New(t.TempDir(), env)
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}
	return pc
}

func TestGitCheck(t *testing.T) {
	ctx := context.Background()
	pc := testProject(t)

	runner := commandtest.New("git").On("git --version", commandtest.Response{Stdout: "git version 2.43.0"})
	result := (&GitCheck{VCS: gittest.NewRepo(), Runner: runner, Project: pc}).Run(ctx)
	if result.Name != "git" {
		t.Errorf("expected name 'git', got '%s'", result.Name)
	}
	if result.Level != LevelInfo {
		t.Errorf("expected LevelInfo, got %v", result.Level)
	}
	if !strings.Contains(result.Message, "git version 2.43.0") {
		t.Errorf("expected version in message, got %q", result.Message)
	}

	result = (&GitCheck{VCS: &gittest.Fake{NotInstalled: true}, Runner: runner, Project: pc}).Run(ctx)
	if result.Level != LevelError {
		t.Errorf("expected LevelError when git is missing, got %v", result.Level)
	}

	broken := commandtest.New("git").Fail("git --version", "broken")
	result = (&GitCheck{VCS: gittest.NewRepo(), Runner: broken, Project: pc}).Run(ctx)
	if result.Level != LevelWarn {
		t.Errorf("expected LevelWarn when git --version fails, got %v", result.Level)
	}
}

func TestRepositoryCheck(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		vcs  *gittest.Fake
		want CheckLevel
		msg  string
	}{
		{name: "not a repository", vcs: &gittest.Fake{}, want: LevelError, msg: "shipit init"},
		{name: "clean", vcs: gittest.NewRepo(), want: LevelInfo, msg: "on main, working tree clean"},
		{
			name: "dirty",
			vcs: func() *gittest.Fake {
				f := gittest.NewRepo()
				f.Changes = git.ChangeSet{Modified: []string{"mod.ts"}}
				return f
			}(),
			want: LevelWarn,
			msg:  "uncommitted changes",
		},
		{
			name: "detached",
			vcs: func() *gittest.Fake {
				f := gittest.NewRepo()
				f.Branch = ""
				return f
			}(),
			want: LevelInfo,
			msg:  "detached HEAD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&RepositoryCheck{VCS: tt.vcs}).Run(ctx)
			if result.Level != tt.want {
				t.Errorf("expected %v, got %v: %s", tt.want, result.Level, result.Message)
			}
			if !strings.Contains(result.Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, result.Message)
			}
		})
	}
}

func TestRemoteCheck(t *testing.T) {
	ctx := context.Background()

	vcs := gittest.NewRepo().WithRemote("origin", "git@github.com:acme/widget.git")
	result := (&RemoteCheck{VCS: vcs, Remote: "origin"}).Run(ctx)
	if result.Level != LevelInfo {
		t.Fatalf("expected LevelInfo, got %v: %s", result.Level, result.Message)
	}
	if !strings.Contains(result.Message, "GitHub acme/widget") {
		t.Errorf("expected platform and slug in message, got %q", result.Message)
	}

	result = (&RemoteCheck{VCS: vcs, Remote: "upstream"}).Run(ctx)
	if result.Level != LevelError {
		t.Errorf("expected LevelError for a missing remote, got %v", result.Level)
	}

	result = (&RemoteCheck{VCS: &gittest.Fake{}, Remote: "origin"}).Run(ctx)
	if result.Level != LevelWarn {
		t.Errorf("expected LevelWarn outside a repository, got %v", result.Level)
	}
}

func TestPushAccessCheck(t *testing.T) {
	ctx := context.Background()

	vcs := gittest.NewRepo().WithRemote("origin", "https://github.com/acme/widget.git")
	if result := (&PushAccessCheck{VCS: vcs, Remote: "origin"}).Run(ctx); result.Level != LevelInfo {
		t.Errorf("expected LevelInfo, got %v: %s", result.Level, result.Message)
	}

	vcs.ErrCanPush = fmt.Errorf("push check: %w", git.ErrAuthentication)
	result := (&PushAccessCheck{VCS: vcs, Remote: "origin"}).Run(ctx)
	if result.Level != LevelError {
		t.Errorf("expected LevelError, got %v", result.Level)
	}
	if !strings.Contains(result.Message, "authentication") {
		t.Errorf("expected authentication message, got %q", result.Message)
	}

	if result := (&PushAccessCheck{VCS: gittest.NewRepo(), Remote: "origin"}).Run(ctx); result.Level != LevelWarn {
		t.Errorf("expected LevelWarn without a remote, got %v", result.Level)
	}
}

func TestHostingTokenCheck(t *testing.T) {
	ctx := context.Background()
	vcs := gittest.NewRepo().WithRemote("origin", "git@gitlab.com:acme/widget.git")

	result := (&HostingTokenCheck{VCS: vcs, Runner: commandtest.New(), Project: testProject(t, "GL_TOKEN=x"), Remote: "origin"}).Run(ctx)
	if result.Level != LevelInfo || !strings.Contains(result.Message, "GitLab") {
		t.Errorf("expected GitLab token from env, got %v: %s", result.Level, result.Message)
	}

	result = (&HostingTokenCheck{VCS: vcs, Runner: commandtest.New(), Project: testProject(t), Remote: "origin"}).Run(ctx)
	if result.Level != LevelWarn || !strings.Contains(result.Message, "GITLAB_TOKEN") {
		t.Errorf("expected warning naming GITLAB_TOKEN, got %v: %s", result.Level, result.Message)
	}

	other := gittest.NewRepo().WithRemote("origin", "https://git.example.com/acme/widget.git")
	result = (&HostingTokenCheck{VCS: other, Runner: commandtest.New(), Project: testProject(t), Remote: "origin"}).Run(ctx)
	if result.Level != LevelInfo {
		t.Errorf("expected LevelInfo for an unknown host, got %v", result.Level)
	}
}

func TestRegistryCheck(t *testing.T) {
	ctx := context.Background()

	write := func(t *testing.T, pc *project.Context, name, content string) {
		t.Helper()
		if err := os.WriteFile(pc.Path(name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pc := testProject(t)
	result := (&RegistryCheck{Project: pc, Logger: log.Nop()}).Run(ctx)
	if result.Level != LevelInfo || !strings.Contains(result.Message, "no publishable") {
		t.Errorf("expected no manifests, got %v: %s", result.Level, result.Message)
	}

	write(t, pc, "package.json", `{"name": "widget", "version": "1.0.0"}`)
	write(t, pc, "jsr.json", `{"name": "@acme/widget", "version": "1.0.0"}`)
	result = (&RegistryCheck{Project: pc, Logger: log.Nop()}).Run(ctx)
	if result.Level != LevelWarn {
		t.Errorf("expected LevelWarn for a JSR manifest without exports, got %v", result.Level)
	}
	if !strings.Contains(result.Message, "npm widget@1.0.0") || !strings.Contains(result.Message, `missing "exports"`) {
		t.Errorf("unexpected message %q", result.Message)
	}

	ready := testProject(t, "JSR_TOKEN=t")
	write(t, ready, "jsr.json", `{"name": "@acme/widget", "version": "1.0.0", "exports": "./mod.ts"}`)
	result = (&RegistryCheck{Project: ready, Logger: log.Nop()}).Run(ctx)
	if result.Level != LevelInfo {
		t.Errorf("expected LevelInfo for a ready JSR package, got %v: %s", result.Level, result.Message)
	}
}

func TestCheckerRun(t *testing.T) {
	ctx := context.Background()
	runner := commandtest.New("git")

	t.Run("ready repository passes", func(t *testing.T) {
		vcs := gittest.NewRepo().WithRemote("origin", "git@github.com:acme/widget.git")
		c := NewChecker(Config{Project: testProject(t, "GITHUB_TOKEN=x"), VCS: vcs, Runner: runner, Remote: "origin"})
		results, err := c.Run(ctx)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(results) != 6 {
			t.Errorf("expected 6 results, got %d", len(results))
		}
	})

	t.Run("failures are listed", func(t *testing.T) {
		c := NewChecker(Config{Project: testProject(t), VCS: &gittest.Fake{}, Runner: runner, Remote: "origin", SkipRegistries: true})
		results, err := c.Run(ctx)
		if err == nil {
			t.Fatal("expected an error outside a repository")
		}
		if !strings.Contains(err.Error(), "repository: not a git repository") {
			t.Errorf("unexpected error %q", err.Error())
		}
		if len(results) != 5 {
			t.Errorf("expected 5 results, got %d", len(results))
		}
	})

	t.Run("custom checks", func(t *testing.T) {
		c := &Checker{logger: log.Nop()}
		c.Add(&RepositoryCheck{VCS: gittest.NewRepo()})
		if _, err := c.Run(ctx); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})
}

func TestCheckLevelString(t *testing.T) {
	for level, want := range map[CheckLevel]string{LevelError: "error", LevelWarn: "warn", LevelInfo: "info"} {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
}
