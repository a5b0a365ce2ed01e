// Package ui renders the human-facing console blocks of shipit: phase
// headings, status lines, instruction boxes and summaries. Logs go through
// pkg/log; this package is for output the user is meant to read and act on.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxListed is how many entries of one list are shown before the rest are
// collapsed into an overflow line.
const MaxListed = 10

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("blue")).
			Padding(0, 1)
)

// Console writes styled blocks to one writer.
type Console struct {
	out io.Writer
}

// New returns a Console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Stdout returns a Console on standard output.
func Stdout() *Console {
	return New(os.Stdout)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// Title prints a section heading.
func (c *Console) Title(format string, args ...interface{}) {
	c.println(titleStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a check-marked line.
func (c *Console) Success(format string, args ...interface{}) {
	c.println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Warn prints a warning line. Warnings mark degraded but continuing runs.
func (c *Console) Warn(format string, args ...interface{}) {
	c.println(warnStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (c *Console) Error(format string, args ...interface{}) {
	c.println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

// Info prints a plain line.
func (c *Console) Info(format string, args ...interface{}) {
	c.println(fmt.Sprintf(format, args...))
}

// Muted prints a dimmed line.
func (c *Console) Muted(format string, args ...interface{}) {
	c.println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Instructions prints numbered steps in a box under title.
func (c *Console) Instructions(title string, steps []string) {
	var b strings.Builder
	b.WriteString(labelStyle.Render(title))
	for i, step := range steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	c.println(boxStyle.Render(b.String()))
}

// Row is one label/value line of a summary.
type Row struct {
	Label string
	Value string
}

// Summary prints aligned label/value rows under title.
func (c *Console) Summary(title string, rows []Row) {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}
	c.Title("%s", title)
	for _, r := range rows {
		label := fmt.Sprintf("%-*s", width+1, r.Label+":")
		c.println("  " + labelStyle.Render(label) + " " + r.Value)
	}
}

// List prints title and up to MaxListed items, then an overflow count.
// Nothing is printed for an empty list.
func (c *Console) List(title string, items []string) {
	if len(items) == 0 {
		return
	}
	c.println(labelStyle.Render(fmt.Sprintf("%s (%d):", title, len(items))))
	shown, more := Truncate(items, MaxListed)
	for _, item := range shown {
		c.println("  " + item)
	}
	if more > 0 {
		c.println(mutedStyle.Render(fmt.Sprintf("  ... and %d more", more)))
	}
}

// Truncate returns the first limit items and how many were left out.
func Truncate(items []string, limit int) ([]string, int) {
	if limit < 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}
