package remediate

import (
	"context"
	"fmt"
	"os"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/prompt"
)

// GitignoreFile is the ignore file written into new repositories.
const GitignoreFile = ".gitignore"

// DefaultGitignore is written only when the project has no ignore file.
const DefaultGitignore = `# Dependencies
node_modules/
jspm_packages/

# Build output
dist/
build/
coverage/

# Environment
.env
.env.local
.env.*.local

# Logs
*.log
npm-debug.log*

# Editors and OS files
.vscode/
.idea/
.DS_Store
Thumbs.db
`

// InitialCommitMessage is the message of the commit created after init.
const InitialCommitMessage = "Initial commit"

// InitResult reports what InitRepository did.
type InitResult struct {
	Initialized      bool
	WroteGitignore   bool
	ConfiguredFields []string
	// Commit is the initial commit hash, empty when the tree was empty.
	Commit string
}

// NeedsInit reports whether the project is not a repository yet.
func NeedsInit(st git.RepositoryStatus) bool {
	return !st.IsRepo
}

// InitRepository offers to create a repository. On acceptance it runs git
// init, writes the default ignore file if none exists, asks for each missing
// identity field, and makes an initial commit when there is anything to
// commit. Declining returns GIT_INIT_DECLINED.
func (r *Remediator) InitRepository(ctx context.Context) (InitResult, error) {
	var res InitResult

	st, err := r.VCS.Status(ctx)
	if err != nil {
		return res, errs.Wrap(errs.CodeGitStatusFailed, "failed to read repository status", err)
	}
	if !NeedsInit(st) {
		return res, nil
	}

	ok, err := r.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: fmt.Sprintf("%s is not a git repository. Initialize one?", r.Project.Dir),
		Default: true,
	})
	if err != nil {
		return res, err
	}
	if !ok {
		return res, errs.New(errs.CodeGitInitDeclined, "repository initialization declined")
	}

	if err := r.VCS.InitRepository(ctx); err != nil {
		return res, errs.Wrap(errs.CodeGitInitFailed, "git init failed", err)
	}
	res.Initialized = true
	r.Console.Success("Initialized git repository")

	// Sampled before the ignore file is written: a directory holding only
	// the generated ignore file still counts as empty.
	changes, err := r.VCS.PendingChanges(ctx)
	if err != nil {
		return res, errs.Wrap(errs.CodeGitStatusFailed, "failed to read pending changes", err)
	}

	wrote, err := r.writeGitignore()
	if err != nil {
		return res, errs.Wrap(errs.CodeGitInitFailed, "failed to write "+GitignoreFile, err)
	}
	res.WroteGitignore = wrote

	res.ConfiguredFields, err = r.EnsureIdentity(ctx)
	if err != nil {
		return res, err
	}

	if changes.IsEmpty() {
		r.Logger.Info("Working tree is empty, skipping initial commit")
		return res, nil
	}

	if err := r.VCS.AddAll(ctx); err != nil {
		return res, errs.Wrap(errs.CodeGitInitFailed, "failed to stage files", err)
	}
	sha, err := r.VCS.Commit(ctx, InitialCommitMessage)
	if err != nil {
		return res, errs.Wrap(errs.CodeGitInitFailed, "failed to create initial commit", err)
	}
	files := changes.Total()
	if wrote {
		files++
	}
	res.Commit = sha
	r.Console.Success("Created initial commit with %d files", files)
	return res, nil
}

func (r *Remediator) writeGitignore() (bool, error) {
	if r.Project.Exists(GitignoreFile) {
		r.Logger.Debug("keeping existing ignore file", "path", GitignoreFile)
		return false, nil
	}
	if err := os.WriteFile(r.Project.Path(GitignoreFile), []byte(DefaultGitignore), 0o644); err != nil {
		return false, err
	}
	r.Console.Success("Created %s", GitignoreFile)
	return true, nil
}

// EnsureIdentity asks for every unset identity field and stores the answers
// in the repository config. It returns the keys it set.
func (r *Remediator) EnsureIdentity(ctx context.Context) ([]string, error) {
	current, err := git.ReadIdentity(ctx, r.VCS)
	if err != nil {
		return nil, errs.Wrap(errs.CodeGitConfigFailed, "failed to read git identity", err)
	}
	missing := current.Missing()
	if len(missing) == 0 {
		return nil, nil
	}

	opts := r.Identity
	opts.EnvAuthorName = r.Project.Getenv("GIT_AUTHOR_NAME")
	opts.EnvAuthorEmail = r.Project.Getenv("GIT_AUTHOR_EMAIL")
	suggested := git.SuggestIdentity(opts)

	for _, key := range missing {
		req := prompt.InputRequest{Validate: prompt.NotEmpty}
		switch key {
		case git.KeyUserName:
			req.Message = "Your name for commits (user.name)"
			req.Default = suggested.Name
		case git.KeyUserEmail:
			req.Message = "Your email for commits (user.email)"
			req.Default = suggested.Email
			req.Validate = validateEmail
		}
		value, err := r.Prompter.Input(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := r.VCS.SetConfig(ctx, key, value); err != nil {
			return nil, errs.Wrap(errs.CodeGitConfigFailed, "failed to set "+key, err)
		}
	}
	return missing, nil
}

func validateEmail(s string) error {
	if !git.ValidEmail(s) {
		return errs.Newf(errs.CodeValidationFailed, "%q is not an email address", s)
	}
	return nil
}
