package git

import (
	"context"
	"fmt"
	"strings"
)

// Identity config keys.
const (
	KeyUserName  = "user.name"
	KeyUserEmail = "user.email"
)

// Identity is the committer identity git will use.
type Identity struct {
	Name  string
	Email string
}

// Missing lists the config keys that are not set, name first.
func (i Identity) Missing() []string {
	var keys []string
	if i.Name == "" {
		keys = append(keys, KeyUserName)
	}
	if i.Email == "" {
		keys = append(keys, KeyUserEmail)
	}
	return keys
}

// String formats the identity as "Name <email>".
func (i Identity) String() string {
	return FormatGitAuthor(i.Name, i.Email)
}

// ConfigReader reads git config values.
type ConfigReader interface {
	ConfigGet(ctx context.Context, key string) (string, error)
}

// ReadIdentity reads user.name and user.email through git's scope
// resolution (local > global > system).
func ReadIdentity(ctx context.Context, r ConfigReader) (Identity, error) {
	name, err := r.ConfigGet(ctx, KeyUserName)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read %s: %w", KeyUserName, err)
	}
	email, err := r.ConfigGet(ctx, KeyUserEmail)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read %s: %w", KeyUserEmail, err)
	}
	return Identity{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}, nil
}

// ConfigOptions holds the sources for suggested identity values when git
// config has none.
type ConfigOptions struct {
	// ProjectAuthorName is git.author_name from .shipit.yaml.
	ProjectAuthorName string

	// ProjectAuthorEmail is git.author_email from .shipit.yaml.
	ProjectAuthorEmail string

	// EnvAuthorName is GIT_AUTHOR_NAME.
	EnvAuthorName string

	// EnvAuthorEmail is GIT_AUTHOR_EMAIL.
	EnvAuthorEmail string
}

// SuggestIdentity returns prompt defaults for missing identity fields with
// the following priority:
// 1. Environment variables (GIT_AUTHOR_NAME, GIT_AUTHOR_EMAIL)
// 2. Project config (.shipit.yaml git.author_*)
//
// Fields with no source stay empty; the user is asked without a default.
func SuggestIdentity(opts ConfigOptions) Identity {
	var id Identity

	if opts.ProjectAuthorName != "" {
		id.Name = opts.ProjectAuthorName
	}
	if opts.ProjectAuthorEmail != "" {
		id.Email = opts.ProjectAuthorEmail
	}

	// Environment overrides project config
	if opts.EnvAuthorName != "" {
		id.Name = opts.EnvAuthorName
	}
	if opts.EnvAuthorEmail != "" {
		id.Email = opts.EnvAuthorEmail
	}

	return id
}

// FormatGitAuthor formats a git author string in the format "Name <email>".
func FormatGitAuthor(name, email string) string {
	if name == "" && email == "" {
		return ""
	}
	if name == "" {
		return email
	}
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// ValidEmail is the loose check applied to an entered user.email.
func ValidEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " <>")
}
