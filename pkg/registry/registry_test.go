package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/project"
)

func testProject(t *testing.T, env ...string) *project.Context {
	t.Helper()
	pc, err := project.New(t.TempDir(), env)
	require.NoError(t, err)
	return pc
}

func writeFile(t *testing.T, pc *project.Context, name, content string) {
	t.Helper()
	path := pc.Path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "npm", want: NPM},
		{in: "JSR", want: JSR},
		{in: " jsr ", want: JSR},
		{in: "pypi", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "npm, jsr")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptorHelpers(t *testing.T) {
	descs := []Descriptor{
		{Kind: NPM, Name: "widget", Version: "1.0.0"},
		{Kind: JSR, Name: "@acme/widget", Version: "1.0.0"},
	}

	assert.Equal(t, "JSR @acme/widget@1.0.0", descs[1].String())

	rest := Without(descs, JSR)
	require.Len(t, rest, 1)
	assert.Equal(t, NPM, rest[0].Kind)
	assert.Len(t, descs, 2)

	d, ok := Find(descs, JSR)
	assert.True(t, ok)
	assert.Equal(t, "@acme/widget", d.Name)

	_, ok = Find(rest, JSR)
	assert.False(t, ok)
}
