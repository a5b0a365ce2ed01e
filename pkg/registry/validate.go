package registry

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// jsrNamePattern is the @scope/name form JSR requires.
var jsrNamePattern = regexp.MustCompile(`^@[a-z0-9][a-z0-9-]*/[a-z0-9][a-z0-9-]*$`)

// ManifestValidation is the outcome of validating a JSR manifest.
type ManifestValidation struct {
	HasValidName    bool
	HasValidVersion bool
	HasExports      bool
	HasLicense      bool

	Issues      []string
	Suggestions []string
}

// IsValid reports whether every required field is valid. A license is
// recommended, not required.
func (v ManifestValidation) IsValid() bool {
	return v.HasValidName && v.HasValidVersion && v.HasExports
}

// ValidJSRName reports whether name has the @scope/name form.
func ValidJSRName(name string) bool {
	return jsrNamePattern.MatchString(name)
}

// ValidVersion reports whether version is strict semver (no "v" prefix,
// all three components present).
func ValidVersion(version string) bool {
	_, err := semver.StrictNewVersion(version)
	return err == nil
}

// Validate checks m. Issues and suggestions are ordered name, version,
// exports, license.
func Validate(m *JSRManifest) ManifestValidation {
	var v ManifestValidation

	switch {
	case m.Name == "":
		v.Issues = append(v.Issues, `missing "name" field`)
		v.Suggestions = append(v.Suggestions, `add "name": "@scope/package-name"`)
	case !ValidJSRName(m.Name):
		v.Issues = append(v.Issues, fmt.Sprintf("invalid package name %q: must be @scope/name in lowercase letters, digits and hyphens", m.Name))
		v.Suggestions = append(v.Suggestions, `rename the package to "@scope/package-name"`)
	default:
		v.HasValidName = true
	}

	switch {
	case m.Version == "":
		v.Issues = append(v.Issues, `missing "version" field`)
		v.Suggestions = append(v.Suggestions, `add "version": "0.1.0"`)
	case !ValidVersion(m.Version):
		v.Issues = append(v.Issues, fmt.Sprintf("invalid version %q: must be semantic version MAJOR.MINOR.PATCH", m.Version))
		v.Suggestions = append(v.Suggestions, `use a version like "1.0.0"`)
	default:
		v.HasValidVersion = true
	}

	if m.Exports.IsEmpty() {
		v.Issues = append(v.Issues, `missing "exports" field`)
		v.Suggestions = append(v.Suggestions, `add "exports": "./mod.ts" pointing at the package entry point`)
	} else {
		v.HasExports = true
	}

	if m.License == "" {
		v.Suggestions = append(v.Suggestions, `add a "license" field (e.g. "MIT")`)
	} else {
		v.HasLicense = true
	}

	return v
}
