// Package git is the version-control adapter of the publish pipeline.
// Repository state (status, branches, tags, remotes, pending changes) is read
// with go-git; every mutation (init, commit, tag, remote, push) goes through
// the git CLI so that hooks, credential helpers and signing config apply
// exactly as they would for the user.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/project"
)

// RefKind distinguishes branches from tags.
type RefKind string

const (
	RefBranch RefKind = "branch"
	RefTag    RefKind = "tag"
)

// RepositoryStatus is a point-in-time view of the repository. It is never
// cached; call Status again after anything that could change it.
type RepositoryStatus struct {
	IsRepo    bool
	HasRemote bool
	// Branch is the current branch, empty when HEAD is detached.
	Branch string
	Dirty  bool
}

// Remote is a configured remote.
type Remote struct {
	Name string
	URL  string
}

// PushOptions selects what to push where.
type PushOptions struct {
	Remote string
	Ref    string
	Kind   RefKind
	Force  bool
}

// VCS is the version-control capability the pipeline depends on.
type VCS interface {
	Installed() bool
	Status(ctx context.Context) (RepositoryStatus, error)
	InitRepository(ctx context.Context) error
	Branches(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Remotes(ctx context.Context) ([]Remote, error)
	CreateTag(ctx context.Context, name, message string) error
	AddRemote(ctx context.Context, name, url string) error
	Push(ctx context.Context, opts PushOptions) error
	CanPush(ctx context.Context, remote string) error
	PendingChanges(ctx context.Context) (ChangeSet, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) (string, error)
	ConfigGet(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Client implements VCS for one working directory.
type Client struct {
	// Dir is the repository working directory.
	Dir string

	// Env is the environment for git child processes. Nil inherits the
	// process environment.
	Env []string

	runner command.Runner
}

// Compile-time check that Client implements VCS.
var _ VCS = (*Client)(nil)

// NewClient creates a client for dir that runs the system git.
func NewClient(dir string) *Client {
	return &Client{Dir: dir, runner: command.NewExec()}
}

// ForProject creates a client bound to the project directory and environment.
func ForProject(pc *project.Context, runner command.Runner) *Client {
	return &Client{Dir: pc.Dir, Env: pc.Environ(), runner: runner}
}

// Installed reports whether the git binary is on PATH.
func (c *Client) Installed() bool {
	return command.Available(c.runner, "git")
}

func (c *Client) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(c.Dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotGitRepo
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// Status reads the repository state. A directory that is not a repository
// yields the zero RepositoryStatus and no error.
func (c *Client) Status(ctx context.Context) (RepositoryStatus, error) {
	repo, err := c.open()
	if errors.Is(err, ErrNotGitRepo) {
		return RepositoryStatus{}, nil
	}
	if err != nil {
		return RepositoryStatus{}, err
	}

	st := RepositoryStatus{IsRepo: true}
	st.Branch = currentBranch(repo)

	remotes, err := repo.Remotes()
	if err != nil {
		return RepositoryStatus{}, fmt.Errorf("failed to list remotes: %w", err)
	}
	st.HasRemote = len(remotes) > 0

	changes, err := c.PendingChanges(ctx)
	if err != nil {
		return RepositoryStatus{}, err
	}
	st.Dirty = changes.Total() > 0
	return st, nil
}

// currentBranch resolves HEAD without requiring a commit, so a freshly
// initialised repository still reports its unborn branch.
func currentBranch(repo *gogit.Repository) string {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return ""
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short()
	}
	return ""
}

// Branches lists local branch names in lexical order.
func (c *Client) Branches(_ context.Context) ([]string, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Tags lists tag names in lexical order, the order `git tag` prints.
func (c *Client) Tags(_ context.Context) ([]string, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Remotes lists configured remotes with their first URL.
func (c *Client) Remotes(_ context.Context) ([]Remote, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	list, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	out := make([]Remote, 0, len(list))
	for _, r := range list {
		cfg := r.Config()
		rm := Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			rm.URL = cfg.URLs[0]
		}
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindRemote returns the remote called name.
func FindRemote(remotes []Remote, name string) (Remote, bool) {
	for _, r := range remotes {
		if r.Name == name {
			return r, true
		}
	}
	return Remote{}, false
}

// InitRepository runs git init in Dir.
func (c *Client) InitRepository(ctx context.Context) error {
	if _, err := c.run(ctx, "init"); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	return nil
}

// CreateTag creates a lightweight tag at HEAD, or an annotated one when
// message is non-empty.
func (c *Client) CreateTag(ctx context.Context, name, message string) error {
	args := []string{"tag"}
	if message != "" {
		args = append(args, "-a", name, "-m", message)
	} else {
		args = append(args, name)
	}
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// AddRemote configures a new remote.
func (c *Client) AddRemote(ctx context.Context, name, url string) error {
	if _, err := c.run(ctx, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// Refspec returns the explicit refspec for pushing ref of the given kind.
func Refspec(ref string, kind RefKind) string {
	if kind == RefTag {
		full := "refs/tags/" + ref
		return full + ":" + full
	}
	full := "refs/heads/" + ref
	return full + ":" + full
}

// Push pushes one ref. Credentials are never prompted for.
func (c *Client) Push(ctx context.Context, opts PushOptions) error {
	args := []string{"push"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, opts.Remote, Refspec(opts.Ref, opts.Kind))
	if _, err := c.runWith(ctx, c.noPromptEnv(), args...); err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", opts.Ref, opts.Remote, err)
	}
	return nil
}

// CanPush checks push access to remote without changing it. Repositories
// without commits fall back to a read check since there is nothing to push.
// A rejected dry run (remote ahead, diverged history) still proves the
// credentials were accepted, so it is not an error here; the real push
// reports it if it matters.
func (c *Client) CanPush(ctx context.Context, remote string) error {
	env := c.noPromptEnv()
	if c.hasCommits(ctx) && c.headIsBranch() {
		_, err := c.runWith(ctx, env, "push", "--dry-run", remote, "HEAD")
		if errors.Is(err, ErrRejected) {
			return nil
		}
		return err
	}
	_, err := c.runWith(ctx, env, "ls-remote", "--heads", remote)
	return err
}

func (c *Client) hasCommits(ctx context.Context) bool {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

func (c *Client) headIsBranch() bool {
	repo, err := c.open()
	if err != nil {
		return false
	}
	return currentBranch(repo) != ""
}

// AddAll stages every change in the working tree.
func (c *Client) AddAll(ctx context.Context) error {
	if _, err := c.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the staged changes and returns the new HEAD SHA.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	sha, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	return sha, nil
}

// ConfigGet reads a config value through git's normal scope resolution
// (local, then global, then system). An unset key yields "".
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := c.run(ctx, "config", "--get", key)
	if err != nil {
		var exitErr *command.ExitError
		// git config exits 1 with no output for an unset key.
		if errors.As(err, &exitErr) && exitErr.Stderr == "" {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// SetConfig writes a repository-local config value.
func (c *Client) SetConfig(ctx context.Context, key, value string) error {
	if _, err := c.run(ctx, "config", key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.runWith(ctx, c.Env, args...)
}

func (c *Client) runWith(ctx context.Context, env []string, args ...string) (string, error) {
	res, err := c.runner.Run(ctx, command.Cmd{Name: "git", Args: args, Dir: c.Dir, Env: env})
	if err != nil {
		return res.Stdout, parseGitError(res.Stderr, err)
	}
	return res.Stdout, nil
}

// noPromptEnv disables interactive credential prompts so access checks and pushes
// fail fast instead of hanging on a terminal that is not watching.
func (c *Client) noPromptEnv() []string {
	base := c.Env
	if base == nil {
		base = os.Environ()
	}
	env := make([]string, 0, len(base)+2)
	hasSSH := false
	for _, kv := range base {
		if strings.HasPrefix(kv, "GIT_SSH_COMMAND=") {
			hasSSH = true
		}
		env = append(env, kv)
	}
	env = append(env, "GIT_TERMINAL_PROMPT=0")
	if !hasSSH {
		env = append(env, "GIT_SSH_COMMAND=ssh -o BatchMode=yes")
	}
	return env
}
