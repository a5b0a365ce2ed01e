package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		manifest   JSRManifest
		wantValid  bool
		wantIssues int
	}{
		{
			name:      "complete",
			manifest:  JSRManifest{Name: "@acme/widget", Version: "1.0.0", Exports: Exports{Path: "./mod.ts"}, License: "MIT"},
			wantValid: true,
		},
		{
			name:      "license is optional",
			manifest:  JSRManifest{Name: "@acme/widget", Version: "1.0.0", Exports: Exports{Map: map[string]string{".": "./mod.ts"}}},
			wantValid: true,
		},
		{
			name:       "missing exports",
			manifest:   JSRManifest{Name: "@acme/widget", Version: "1.0.0"},
			wantIssues: 1,
		},
		{
			name:       "unscoped name and v-prefixed version",
			manifest:   JSRManifest{Name: "widget", Version: "v1.0.0", Exports: Exports{Path: "./mod.ts"}},
			wantIssues: 2,
		},
		{
			name:       "empty",
			wantIssues: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(&tt.manifest)
			assert.Equal(t, tt.wantValid, v.IsValid())
			assert.Len(t, v.Issues, tt.wantIssues)
		})
	}
}

func TestValidJSRName(t *testing.T) {
	for _, name := range []string{"@acme/widget", "@a/b", "@my-org/my-pkg2"} {
		assert.True(t, ValidJSRName(name), name)
	}
	for _, name := range []string{"widget", "@Acme/widget", "@acme/", "@/widget", "@acme/-widget", "@acme/widget/extra"} {
		assert.False(t, ValidJSRName(name), name)
	}
}

func TestValidVersion(t *testing.T) {
	assert.True(t, ValidVersion("1.0.0"))
	assert.True(t, ValidVersion("0.1.0-beta.1"))
	assert.False(t, ValidVersion("v1.0.0"))
	assert.False(t, ValidVersion("1.0"))
	assert.False(t, ValidVersion(""))
}

func TestValidateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := JSRManifest{
			Name:    rapid.SampledFrom([]string{"", "@acme/widget", "widget", "@Acme/x"}).Draw(t, "name"),
			Version: rapid.SampledFrom([]string{"", "1.0.0", "v1", "2.3.4-rc.1"}).Draw(t, "version"),
			License: rapid.SampledFrom([]string{"", "MIT", "Apache-2.0"}).Draw(t, "license"),
		}
		if rapid.Bool().Draw(t, "exports") {
			m.Exports = Exports{Path: "./mod.ts"}
		}

		v := Validate(&m)
		if v.IsValid() != (v.HasValidName && v.HasValidVersion && v.HasExports) {
			t.Fatalf("IsValid disagrees with required flags: %+v", v)
		}
		if v.HasLicense != (m.License != "") {
			t.Fatalf("HasLicense = %v for license %q", v.HasLicense, m.License)
		}
		if m.License == "" {
			found := false
			for _, s := range v.Suggestions {
				if strings.Contains(s, `"license"`) {
					found = true
				}
			}
			if !found {
				t.Fatalf("missing license suggestion in %v", v.Suggestions)
			}
		}
		if v.IsValid() && len(v.Issues) != 0 {
			t.Fatalf("valid manifest reported issues %v", v.Issues)
		}
	})
}
