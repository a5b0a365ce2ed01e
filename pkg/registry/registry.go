// Package registry detects the package registries a project can publish to,
// validates and repairs the JSR manifest, asks which registries to publish
// to, and runs the registry CLIs.
package registry

import (
	"fmt"
	"strings"
)

// Kind identifies a package registry.
type Kind string

const (
	// NPM is the primary registry, keyed by package.json.
	NPM Kind = "npm"
	// JSR is the secondary registry, keyed by jsr.json or deno.json.
	JSR Kind = "jsr"
)

// Kinds lists every supported registry in detection and publish order.
var Kinds = []Kind{NPM, JSR}

// DisplayName is the human form used in prompts.
func (k Kind) DisplayName() string {
	switch k {
	case NPM:
		return "npm"
	case JSR:
		return "JSR"
	default:
		return string(k)
	}
}

// ParseKind maps a user-supplied name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown registry %q (expected one of: %s)", s, kindList())
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Descriptor is an eligible registry for the project.
type Descriptor struct {
	Kind    Kind
	Name    string
	Version string
	Private bool

	// ManifestPath is the manifest file the descriptor was read from,
	// relative to the project directory.
	ManifestPath string
}

// String renders "kind name@version".
func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s@%s", d.Kind.DisplayName(), d.Name, d.Version)
}

// Without returns descs minus every descriptor of kind k.
func Without(descs []Descriptor, k Kind) []Descriptor {
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.Kind != k {
			out = append(out, d)
		}
	}
	return out
}

// Find returns the descriptor of kind k.
func Find(descs []Descriptor, k Kind) (Descriptor, bool) {
	for _, d := range descs {
		if d.Kind == k {
			return d, true
		}
	}
	return Descriptor{}, false
}
