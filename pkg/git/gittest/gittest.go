// Package gittest provides an in-memory git.VCS for pipeline tests.
package gittest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/holon-run/shipit/pkg/git"
)

// Fake is an in-memory repository. The zero value is "git installed, no
// repository". Fields may be set directly before the fake is used; the
// methods keep derived state (status flags) consistent.
type Fake struct {
	mu sync.Mutex

	NotInstalled bool
	Repo         bool
	Branch       string
	BranchList   []string
	TagList      []string
	RemoteList   []git.Remote
	Changes      git.ChangeSet
	Config       map[string]string
	Commits      []string
	Pushed       []git.PushOptions

	// Err* make the corresponding operation fail.
	ErrPush      error
	ErrCanPush   error
	ErrCreateTag error
	ErrCommit    error
	ErrInit      error

	// OnInit runs after a successful InitRepository, e.g. to simulate files
	// already present in the directory.
	OnInit func(f *Fake)

	calls []string
}

// Compile-time check that Fake implements VCS.
var _ git.VCS = (*Fake)(nil)

// NewRepo returns a fake repository on branch main with one commit.
func NewRepo() *Fake {
	return &Fake{
		Repo:       true,
		Branch:     "main",
		BranchList: []string{"main"},
		Commits:    []string{"Initial commit"},
		Config:     map[string]string{git.KeyUserName: "Ada", git.KeyUserEmail: "ada@example.com"},
	}
}

// WithRemote adds a remote and returns f.
func (f *Fake) WithRemote(name, url string) *Fake {
	f.RemoteList = append(f.RemoteList, git.Remote{Name: name, URL: url})
	return f
}

func (f *Fake) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Calls returns the mutating operations performed, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether any recorded call starts with prefix.
func (f *Fake) Called(prefix string) bool {
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *Fake) Installed() bool {
	return !f.NotInstalled
}

func (f *Fake) Status(context.Context) (git.RepositoryStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Repo {
		return git.RepositoryStatus{}, nil
	}
	return git.RepositoryStatus{
		IsRepo:    true,
		HasRemote: len(f.RemoteList) > 0,
		Branch:    f.Branch,
		Dirty:     !f.Changes.IsEmpty(),
	}, nil
}

func (f *Fake) InitRepository(context.Context) error {
	f.mu.Lock()
	f.record("init")
	if f.ErrInit != nil {
		f.mu.Unlock()
		return f.ErrInit
	}
	f.Repo = true
	if f.Branch == "" {
		f.Branch = "main"
	}
	if f.Config == nil {
		f.Config = map[string]string{}
	}
	hook := f.OnInit
	f.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

func (f *Fake) requireRepo() error {
	if !f.Repo {
		return git.ErrNotGitRepo
	}
	return nil
}

func (f *Fake) Branches(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireRepo(); err != nil {
		return nil, err
	}
	return append([]string(nil), f.BranchList...), nil
}

func (f *Fake) Tags(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireRepo(); err != nil {
		return nil, err
	}
	return append([]string(nil), f.TagList...), nil
}

func (f *Fake) Remotes(context.Context) ([]git.Remote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireRepo(); err != nil {
		return nil, err
	}
	return append([]git.Remote(nil), f.RemoteList...), nil
}

func (f *Fake) CreateTag(_ context.Context, name, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("tag %s", name)
	if f.ErrCreateTag != nil {
		return f.ErrCreateTag
	}
	for _, t := range f.TagList {
		if t == name {
			return fmt.Errorf("tag %s: %w", name, git.ErrRefExists)
		}
	}
	f.TagList = append(f.TagList, name)
	sort.Strings(f.TagList)
	return nil
}

func (f *Fake) AddRemote(_ context.Context, name, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remote add %s %s", name, url)
	if _, ok := git.FindRemote(f.RemoteList, name); ok {
		return fmt.Errorf("remote %s: %w", name, git.ErrRefExists)
	}
	f.RemoteList = append(f.RemoteList, git.Remote{Name: name, URL: url})
	return nil
}

func (f *Fake) Push(_ context.Context, opts git.PushOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("push %s %s", opts.Remote, git.Refspec(opts.Ref, opts.Kind))
	if f.ErrPush != nil {
		return f.ErrPush
	}
	f.Pushed = append(f.Pushed, opts)
	return nil
}

func (f *Fake) CanPush(_ context.Context, remote string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := git.FindRemote(f.RemoteList, remote); !ok {
		return fmt.Errorf("remote %s: %w", remote, git.ErrRemoteNotFound)
	}
	return f.ErrCanPush
}

func (f *Fake) PendingChanges(context.Context) (git.ChangeSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireRepo(); err != nil {
		return git.ChangeSet{}, err
	}
	return f.Changes, nil
}

func (f *Fake) AddAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add -A")
	return f.requireRepo()
}

func (f *Fake) Commit(_ context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("commit %s", message)
	if f.ErrCommit != nil {
		return "", f.ErrCommit
	}
	f.Commits = append(f.Commits, message)
	f.Changes = git.ChangeSet{}
	return fmt.Sprintf("%040x", len(f.Commits)), nil
}

func (f *Fake) ConfigGet(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Config[key], nil
}

func (f *Fake) SetConfig(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("config %s %s", key, value)
	if f.Config == nil {
		f.Config = map[string]string{}
	}
	f.Config[key] = value
	return nil
}
