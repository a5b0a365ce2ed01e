// Package hosting creates remote repositories on hosting platforms.
//
// Each Provider wraps one way of talking to a platform (the gh or glab CLI,
// or the GitHub REST API). Probe reduces the configured providers to a
// Capabilities set that callers consume as data.
package hosting

import (
	"context"
	"regexp"
	"strings"

	"github.com/holon-run/shipit/pkg/remote"
)

// CreateOptions describes the repository to create.
type CreateOptions struct {
	Name    string
	Private bool

	// Remote is the remote name a provider should attach, when it can.
	Remote string
}

// Provider creates repositories on one platform.
type Provider interface {
	// Name identifies the provider in logs, e.g. "gh".
	Name() string
	Platform() remote.Platform
	// Available reports whether the provider is installed and authenticated.
	Available(ctx context.Context) bool
	// CreateRepository creates the repository and returns its clone URL.
	CreateRepository(ctx context.Context, opts CreateOptions) (string, error)
}

// Capabilities is the set of usable providers, at most one per platform.
type Capabilities struct {
	order      []remote.Platform
	byPlatform map[remote.Platform]Provider
}

// Probe checks providers in order. The first available provider of each
// platform wins, so list CLIs before API fallbacks.
func Probe(ctx context.Context, providers ...Provider) Capabilities {
	caps := Capabilities{byPlatform: map[remote.Platform]Provider{}}
	for _, p := range providers {
		if _, taken := caps.byPlatform[p.Platform()]; taken {
			continue
		}
		if !p.Available(ctx) {
			continue
		}
		caps.byPlatform[p.Platform()] = p
		caps.order = append(caps.order, p.Platform())
	}
	return caps
}

// Empty reports whether no provider is usable.
func (c Capabilities) Empty() bool {
	return len(c.order) == 0
}

// Platforms lists usable platforms in probe order.
func (c Capabilities) Platforms() []remote.Platform {
	return append([]remote.Platform(nil), c.order...)
}

// Provider returns the provider for platform p.
func (c Capabilities) Provider(p remote.Platform) (Provider, bool) {
	prov, ok := c.byPlatform[p]
	return prov, ok
}

// Has reports whether platform p is usable.
func (c Capabilities) Has(p remote.Platform) bool {
	_, ok := c.byPlatform[p]
	return ok
}

// repoNamePattern is the filename-safe pattern accepted for new repositories.
var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidRepositoryName reports whether name is usable as a repository name.
func ValidRepositoryName(name string) bool {
	return repoNamePattern.MatchString(name) && name != "." && name != ".."
}

var urlPattern = regexp.MustCompile(`(https://|git@)[^\s]+`)

// lastURL extracts the last URL printed by a hosting CLI.
func lastURL(output string) string {
	matches := urlPattern.FindAllString(output, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimRight(matches[len(matches)-1], ".,")
}
