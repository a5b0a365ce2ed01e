package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holon-run/shipit/pkg/command/commandtest"
	"github.com/holon-run/shipit/pkg/log/logtest"
)

func TestCLIPublisherCommand(t *testing.T) {
	logger, _ := logtest.New()

	tests := []struct {
		name      string
		installed []string
		env       []string
		desc      Descriptor
		want      string
	}{
		{name: "npm", desc: npmWidget, want: "npm publish"},
		{name: "jsr.json uses npx", installed: []string{"deno"}, desc: jsrWidget, want: "npx jsr publish"},
		{
			name:      "deno.json uses deno when installed",
			installed: []string{"deno"},
			desc:      Descriptor{Kind: JSR, Name: "@acme/widget", Version: "1.0.0", ManifestPath: DenoJSON},
			want:      "deno publish",
		},
		{
			name: "deno.json without deno falls back to npx",
			desc: Descriptor{Kind: JSR, Name: "@acme/widget", Version: "1.0.0", ManifestPath: DenoJSON},
			want: "npx jsr publish",
		},
		{
			name: "token is passed and masked",
			env:  []string{"JSR_TOKEN=s3cret"},
			desc: jsrWidget,
			want: "npx jsr publish --token ***REDACTED***",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := testProject(t, tt.env...)
			p := NewCLIPublisher(pc, commandtest.New(tt.installed...), logger)

			cmd, err := p.Command(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
			assert.True(t, cmd.Interactive)
			assert.Equal(t, pc.Dir, cmd.Dir)
		})
	}

	t.Run("unknown registry", func(t *testing.T) {
		p := NewCLIPublisher(testProject(t), commandtest.New(), logger)
		_, err := p.Command(Descriptor{Kind: "pypi"})
		require.Error(t, err)
	})
}

func TestCLIPublisherPublish(t *testing.T) {
	ctx := context.Background()
	logger, _ := logtest.New()

	t.Run("runs the registry CLI", func(t *testing.T) {
		runner := commandtest.New("npm")
		p := NewCLIPublisher(testProject(t), runner, logger)
		require.NoError(t, p.Publish(ctx, npmWidget))
		assert.Equal(t, []string{"npm publish"}, runner.Lines())
	})

	t.Run("missing CLI", func(t *testing.T) {
		runner := commandtest.New()
		p := NewCLIPublisher(testProject(t), runner, logger)
		err := p.Publish(ctx, npmWidget)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "npm is not installed")
		assert.Empty(t, runner.Calls)
	})

	t.Run("failure names the registry without leaking the token", func(t *testing.T) {
		runner := commandtest.New("npx").Fail("npx jsr publish", "invalid token s3cret")
		p := NewCLIPublisher(testProject(t, "JSR_TOKEN=s3cret"), runner, logger)
		err := p.Publish(ctx, jsrWidget)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSR publish failed")
		assert.NotContains(t, err.Error(), "s3cret")
	})
}
