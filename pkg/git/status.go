package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ChangeSet groups uncommitted paths by change type. Paths are relative to
// the repository root and sorted.
type ChangeSet struct {
	Modified  []string
	Added     []string
	Deleted   []string
	Untracked []string
}

// Total is the number of changed paths.
func (c ChangeSet) Total() int {
	return len(c.Modified) + len(c.Added) + len(c.Deleted) + len(c.Untracked)
}

// IsEmpty reports whether nothing is pending.
func (c ChangeSet) IsEmpty() bool {
	return c.Total() == 0
}

// PendingChanges classifies the working tree and index against HEAD.
// Renames and copies count as modifications. It asks the git CLI rather
// than go-git so that every ignore source git honours (core.excludesFile,
// $XDG_CONFIG_HOME/git/ignore, .git/info/exclude) applies.
func (c *Client) PendingChanges(ctx context.Context) (ChangeSet, error) {
	out, err := c.run(ctx, "status", "--porcelain=v2", "-z", "--untracked-files=all")
	if err != nil {
		return ChangeSet{}, fmt.Errorf("failed to get status: %w", err)
	}
	return parsePorcelain(out), nil
}

// parsePorcelain reads `git status --porcelain=v2 -z` output. Entries are
// NUL separated; a rename or copy entry is followed by its original path.
func parsePorcelain(out string) ChangeSet {
	var cs ChangeSet
	entries := strings.Split(out, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 3 {
			continue
		}
		var xy, path string
		switch entry[0] {
		case '?':
			cs.Untracked = append(cs.Untracked, entry[2:])
			continue
		case '1':
			// 1 XY sub mH mI mW hH hI path
			fields := strings.SplitN(entry, " ", 9)
			if len(fields) < 9 {
				continue
			}
			xy, path = fields[1], fields[8]
		case '2':
			// 2 XY sub mH mI mW hH hI Xscore path, then the original path
			fields := strings.SplitN(entry, " ", 10)
			i++
			if len(fields) < 10 {
				continue
			}
			xy, path = fields[1], fields[9]
		case 'u':
			// u XY sub m1 m2 m3 mW h1 h2 h3 path
			fields := strings.SplitN(entry, " ", 11)
			if len(fields) < 11 {
				continue
			}
			xy, path = fields[1], fields[10]
		default:
			// "!" ignored entries and headers
			continue
		}
		if len(xy) != 2 {
			continue
		}
		switch x, y := xy[0], xy[1]; {
		case x == 'A':
			cs.Added = append(cs.Added, path)
		case x == 'D' || y == 'D':
			cs.Deleted = append(cs.Deleted, path)
		default:
			cs.Modified = append(cs.Modified, path)
		}
	}
	sort.Strings(cs.Modified)
	sort.Strings(cs.Added)
	sort.Strings(cs.Deleted)
	sort.Strings(cs.Untracked)
	return cs
}
