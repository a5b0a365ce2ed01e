package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/holon-run/shipit/pkg/log/logtest"
)

func TestDetectNPM(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{name: "public package", manifest: `{"name": "widget", "version": "1.0.0"}`},
		{name: "private package", manifest: `{"name": "pkg", "version": "1.0.0", "private": true}`, wantErr: "private"},
		{name: "missing version", manifest: `{"name": "widget"}`, wantErr: "name and version"},
		{name: "blank name", manifest: `{"name": "  ", "version": "1.0.0"}`, wantErr: "name and version"},
		{name: "malformed", manifest: `{"name": `, wantErr: "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := testProject(t)
			writeFile(t, pc, PackageJSON, tt.manifest)

			d, err := DetectNPM(pc)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Descriptor{Kind: NPM, Name: "widget", Version: "1.0.0", ManifestPath: PackageJSON}, d)
		})
	}
}

func TestDetectJSR(t *testing.T) {
	t.Run("jsr.json wins over deno.json", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, JSRJSON, `{"name": "@acme/from-jsr", "version": "1.0.0"}`)
		writeFile(t, pc, DenoJSON, `{"name": "@acme/from-deno", "version": "2.0.0"}`)

		d, err := DetectJSR(pc)
		require.NoError(t, err)
		assert.Equal(t, "@acme/from-jsr", d.Name)
		assert.Equal(t, JSRJSON, d.ManifestPath)
	})

	t.Run("deno.json with comments", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, DenoJSON, `{
  // published to JSR
  "name": "@acme/widget",
  "version": "0.3.0",
  "tasks": {"dev": "deno run mod.ts"}, /* trailing comma below */
}`)
		d, err := DetectJSR(pc)
		require.NoError(t, err)
		assert.Equal(t, Descriptor{Kind: JSR, Name: "@acme/widget", Version: "0.3.0", ManifestPath: DenoJSON}, d)
	})

	t.Run("missing version is not eligible", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, JSRJSON, `{"name": "@acme/widget"}`)
		_, err := DetectJSR(pc)
		require.Error(t, err)
	})

	t.Run("no manifest", func(t *testing.T) {
		pc := testProject(t)
		assert.Equal(t, "", FindJSRManifest(pc))
		_, err := DetectJSR(pc)
		require.Error(t, err)
	})
}

func TestDetect(t *testing.T) {
	t.Run("both registries", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, PackageJSON, `{"name": "widget", "version": "1.0.0"}`)
		writeFile(t, pc, JSRJSON, `{"name": "@acme/widget", "version": "1.0.0"}`)

		logger, _ := logtest.New()
		found := Detect(pc, logger)
		require.Len(t, found, 2)
		assert.Equal(t, NPM, found[0].Kind)
		assert.Equal(t, JSR, found[1].Kind)
	})

	t.Run("private npm package is excluded", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, PackageJSON, `{"name": "pkg", "version": "1.0.0", "private": true}`)

		logger, logs := logtest.New()
		found := Detect(pc, logger)
		assert.Empty(t, found)
		assert.Contains(t, logtest.Messages(logs, zapcore.DebugLevel), "npm manifest not eligible")
	})

	t.Run("probes are independent", func(t *testing.T) {
		pc := testProject(t)
		writeFile(t, pc, PackageJSON, `not json`)
		writeFile(t, pc, DenoJSON, `{"name": "@acme/widget", "version": "1.0.0"}`)

		logger, _ := logtest.New()
		found := Detect(pc, logger)
		require.Len(t, found, 1)
		assert.Equal(t, JSR, found[0].Kind)
	})

	t.Run("empty project", func(t *testing.T) {
		logger, _ := logtest.New()
		assert.Empty(t, Detect(testProject(t), logger))
	})
}
