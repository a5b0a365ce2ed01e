// Package remote classifies git remote URLs. Every function here is pure:
// the scheme and platform classifiers are total over arbitrary strings and
// owner/repository extraction is best effort.
package remote

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform is the hosting service a remote lives on.
type Platform string

const (
	PlatformGitHub    Platform = "github"
	PlatformGitLab    Platform = "gitlab"
	PlatformBitbucket Platform = "bitbucket"
	PlatformOther     Platform = "other"
)

// DisplayName is the human form used in prompts and instructions.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformGitHub:
		return "GitHub"
	case PlatformGitLab:
		return "GitLab"
	case PlatformBitbucket:
		return "Bitbucket"
	default:
		return "Other"
	}
}

// Host is the public host of the platform, empty for PlatformOther.
func (p Platform) Host() string {
	switch p {
	case PlatformGitHub:
		return "github.com"
	case PlatformGitLab:
		return "gitlab.com"
	case PlatformBitbucket:
		return "bitbucket.org"
	default:
		return ""
	}
}

// Scheme is the transport a remote URL uses.
type Scheme string

const (
	SchemeSSH     Scheme = "ssh"
	SchemeHTTPS   Scheme = "https"
	SchemeUnknown Scheme = "unknown"
)

// Descriptor describes a configured remote.
type Descriptor struct {
	Name     string
	URL      string
	Platform Platform
	Scheme   Scheme
	Host     string

	// Owner and Repo are empty when the URL could not be parsed.
	// Owner may contain slashes for GitLab subgroups.
	Owner string
	Repo  string
}

// Slug returns "owner/repo" or "" when unknown.
func (d Descriptor) Slug() string {
	if d.Owner == "" || d.Repo == "" {
		return ""
	}
	return d.Owner + "/" + d.Repo
}

// scpPattern matches scp-like SSH remotes: git@github.com:owner/repo.git
var scpPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@([A-Za-z0-9._-]+):(.+)$`)

// Describe derives a Descriptor from a remote name and URL.
func Describe(name, rawURL string) Descriptor {
	d := Descriptor{
		Name:   name,
		URL:    rawURL,
		Scheme: ClassifyScheme(rawURL),
	}
	host, path := split(rawURL)
	d.Host = host
	d.Platform = ClassifyHost(host)
	d.Owner, d.Repo = ownerRepo(path)
	return d
}

// ClassifyScheme reports whether rawURL uses SSH, HTTPS or something else.
func ClassifyScheme(rawURL string) Scheme {
	s := strings.TrimSpace(rawURL)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "ssh://"), strings.HasPrefix(lower, "git+ssh://"):
		return SchemeSSH
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return SchemeHTTPS
	case scpPattern.MatchString(s) && !strings.Contains(s, "://"):
		return SchemeSSH
	default:
		return SchemeUnknown
	}
}

// ClassifyURL reports the hosting platform of rawURL.
func ClassifyURL(rawURL string) Platform {
	host, _ := split(rawURL)
	return ClassifyHost(host)
}

// ClassifyHost maps a host name to a platform. Self-hosted GitLab instances
// are recognised by a "gitlab" label in the host.
func ClassifyHost(host string) Platform {
	h := strings.ToLower(strings.TrimSpace(host))
	switch {
	case h == "":
		return PlatformOther
	case h == "github.com" || strings.HasSuffix(h, ".github.com"):
		return PlatformGitHub
	case h == "bitbucket.org" || strings.HasSuffix(h, ".bitbucket.org"):
		return PlatformBitbucket
	case h == "gitlab.com" || hasLabel(h, "gitlab"):
		return PlatformGitLab
	default:
		return PlatformOther
	}
}

func hasLabel(host, label string) bool {
	for _, part := range strings.Split(host, ".") {
		if part == label {
			return true
		}
	}
	return false
}

// split extracts host and repository path from a remote URL.
func split(rawURL string) (host, path string) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", ""
	}
	if !strings.Contains(s, "://") {
		if m := scpPattern.FindStringSubmatch(s); m != nil {
			return m[1], m[2]
		}
		return "", ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", ""
	}
	return u.Hostname(), u.Path
}

func ownerRepo(path string) (owner, repo string) {
	p := strings.Trim(path, "/")
	p = strings.TrimSuffix(p, ".git")
	idx := strings.LastIndex(p, "/")
	if idx <= 0 || idx == len(p)-1 {
		return "", ""
	}
	return p[:idx], p[idx+1:]
}

// NewRepositoryURL is where a user creates a repository by hand.
func NewRepositoryURL(p Platform) string {
	switch p {
	case PlatformGitHub:
		return "https://github.com/new"
	case PlatformGitLab:
		return "https://gitlab.com/projects/new"
	case PlatformBitbucket:
		return "https://bitbucket.org/repo/create"
	default:
		return ""
	}
}

// CloneURL builds the remote URL for owner/repo on p. For PlatformOther it
// returns a placeholder the user must edit.
func CloneURL(p Platform, owner, repo string, scheme Scheme) string {
	host := p.Host()
	if host == "" {
		host = "<your-git-host>"
	}
	if owner == "" {
		owner = "<owner>"
	}
	if scheme == SchemeSSH {
		return fmt.Sprintf("git@%s:%s/%s.git", host, owner, repo)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", host, owner, repo)
}
