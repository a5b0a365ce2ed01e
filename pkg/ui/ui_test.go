package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	items := []string{"a", "b", "c"}

	shown, more := Truncate(items, 2)
	assert.Equal(t, []string{"a", "b"}, shown)
	assert.Equal(t, 1, more)

	shown, more = Truncate(items, 3)
	assert.Equal(t, items, shown)
	assert.Equal(t, 0, more)

	shown, more = Truncate(nil, 10)
	assert.Empty(t, shown)
	assert.Equal(t, 0, more)
}

func TestConsoleList(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	var files []string
	for i := 0; i < 13; i++ {
		files = append(files, fmt.Sprintf("file%02d.ts", i))
	}
	c.List("Modified", files)

	out := buf.String()
	assert.Contains(t, out, "Modified (13):")
	assert.Contains(t, out, "file09.ts")
	assert.NotContains(t, out, "file10.ts")
	assert.Contains(t, out, "... and 3 more")
}

func TestConsoleListEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).List("Deleted", nil)
	assert.Empty(t, buf.String())
}

func TestConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Success("pushed %s", "v1.0.0")
	c.Warn("skipping %s", "JSR")
	c.Error("npm publish failed")
	c.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "pushed v1.0.0")
	assert.Contains(t, lines[1], "skipping JSR")
	assert.Contains(t, lines[2], "npm publish failed")
	assert.Equal(t, "plain", lines[3])
}

func TestConsoleInstructionsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Instructions("Set up SSH", []string{"ssh-keygen -t ed25519", "add the key to GitHub"})
	c.Summary("Publish plan", []Row{{Label: "Ref", Value: "tag v1.0.0"}, {Label: "Remote", Value: "origin"}})

	out := buf.String()
	assert.Contains(t, out, "Set up SSH")
	assert.Contains(t, out, "1. ssh-keygen -t ed25519")
	assert.Contains(t, out, "2. add the key to GitHub")
	assert.Contains(t, out, "Publish plan")
	assert.Contains(t, out, "tag v1.0.0")
	assert.Contains(t, out, "Remote:")
}
