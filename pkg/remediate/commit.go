package remediate

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/prompt"
)

// FallbackCommitMessage is used when no change group dominates.
const FallbackCommitMessage = "Update project files"

// NeedsCommit reports whether there is anything to commit.
func NeedsCommit(cs git.ChangeSet) bool {
	return !cs.IsEmpty()
}

// CommitMessage synthesises a default message for cs. New files (staged or
// untracked) win over modifications, which win over deletions. A single file
// is named; several are counted.
func CommitMessage(cs git.ChangeSet) string {
	added := make([]string, 0, len(cs.Added)+len(cs.Untracked))
	added = append(added, cs.Added...)
	added = append(added, cs.Untracked...)

	switch {
	case len(added) > 0:
		return phrase("Add", added)
	case len(cs.Modified) > 0:
		return phrase("Update", cs.Modified)
	case len(cs.Deleted) > 0:
		return phrase("Delete", cs.Deleted)
	default:
		return FallbackCommitMessage
	}
}

func phrase(verb string, files []string) string {
	if len(files) == 1 {
		return verb + " " + files[0]
	}
	return fmt.Sprintf("%s %d files", verb, len(files))
}

// CommitChanges shows the pending changes and offers to commit them all. It
// returns the new commit hash, or "" when the tree was clean. Declining
// returns COMMIT_DECLINED.
func (r *Remediator) CommitChanges(ctx context.Context) (string, error) {
	cs, err := r.VCS.PendingChanges(ctx)
	if err != nil {
		return "", errs.Wrap(errs.CodeGitStatusFailed, "failed to read pending changes", err)
	}
	if !NeedsCommit(cs) {
		return "", nil
	}

	r.Console.Title("You have %d uncommitted changes", cs.Total())
	r.Console.List("Modified", cs.Modified)
	r.Console.List("Added", cs.Added)
	r.Console.List("Deleted", cs.Deleted)
	r.Console.List("Untracked", cs.Untracked)

	ok, err := r.Prompter.Confirm(ctx, prompt.ConfirmRequest{
		Message: "Commit these changes before publishing?",
		Default: true,
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.New(errs.CodeCommitDeclined, "commit of pending changes declined")
	}

	message, err := r.Prompter.Input(ctx, prompt.InputRequest{
		Message:  "Commit message",
		Default:  CommitMessage(cs),
		Validate: prompt.NotEmpty,
	})
	if err != nil {
		return "", err
	}

	if err := r.VCS.AddAll(ctx); err != nil {
		return "", errs.Wrap(errs.CodeCommitFailed, "failed to stage changes", err)
	}
	sha, err := r.VCS.Commit(ctx, message)
	if err != nil {
		return "", errs.Wrap(errs.CodeCommitFailed, "git commit failed", err)
	}
	r.Console.Success("Committed %d changes: %s", cs.Total(), message)
	return sha, nil
}
