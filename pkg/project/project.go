// Package project carries the execution context of one shipit invocation:
// the project directory and a snapshot of the environment. Every component
// receives it explicitly instead of reading the process working directory or
// os.Getenv, so each phase can be exercised against a fake context.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Context is the per-invocation execution context.
type Context struct {
	// Dir is the absolute path of the project root.
	Dir string

	env map[string]string
}

// New creates a context for dir with the given environment entries
// ("KEY=value" form, as returned by os.Environ).
func New(dir string, environ []string) (*Context, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return &Context{Dir: abs, env: env}, nil
}

// FromOS snapshots the process environment for dir.
func FromOS(dir string) (*Context, error) {
	return New(dir, os.Environ())
}

// Getenv returns the value of key in the snapshot.
func (c *Context) Getenv(key string) string {
	return c.env[key]
}

// LookupEnv returns the value of key and whether it is set.
func (c *Context) LookupEnv(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

// FirstEnv returns the first non-empty value among keys, with the key it came
// from.
func (c *Context) FirstEnv(keys ...string) (value, key string) {
	for _, k := range keys {
		if v := strings.TrimSpace(c.env[k]); v != "" {
			return v, k
		}
	}
	return "", ""
}

// Setenv records a value for the rest of the invocation. The process
// environment is not touched.
func (c *Context) Setenv(key, value string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = value
}

// Environ returns the snapshot in "KEY=value" form, sorted by key. Used when
// spawning child processes.
func (c *Context) Environ() []string {
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.env[k])
	}
	return out
}

// Name is the project directory's base name, the default for new remote
// repository names.
func (c *Context) Name() string {
	return filepath.Base(c.Dir)
}

// Path joins rel onto the project directory.
func (c *Context) Path(rel ...string) string {
	return filepath.Join(append([]string{c.Dir}, rel...)...)
}

// Exists reports whether rel exists inside the project.
func (c *Context) Exists(rel string) bool {
	_, err := os.Stat(c.Path(rel))
	return err == nil
}
