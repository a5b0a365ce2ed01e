package registry

import (
	"context"
	"fmt"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
)

// JSRTokenVar holds the JSR publish token.
const JSRTokenVar = "JSR_TOKEN"

// Publisher publishes a package to one registry.
type Publisher interface {
	Publish(ctx context.Context, d Descriptor) error
}

// CLIPublisher publishes through the registry's own CLI: npm for npm, and
// deno or npx jsr for JSR.
type CLIPublisher struct {
	project *project.Context
	runner  command.Runner
	logger  log.Logger
}

// Compile-time check that CLIPublisher implements Publisher.
var _ Publisher = (*CLIPublisher)(nil)

// NewCLIPublisher returns a Publisher backed by registry CLIs.
func NewCLIPublisher(pc *project.Context, runner command.Runner, logger log.Logger) *CLIPublisher {
	return &CLIPublisher{project: pc, runner: runner, logger: logger}
}

// Publish runs the publish command for d. The command is interactive so
// registry prompts (npm one-time passwords, JSR browser auth) reach the user.
func (p *CLIPublisher) Publish(ctx context.Context, d Descriptor) error {
	cmd, err := p.Command(d)
	if err != nil {
		return err
	}
	if !command.Available(p.runner, cmd.Name) {
		return fmt.Errorf("%s is not installed", cmd.Name)
	}
	p.logger.Debug("running publish command", "command", cmd.String())
	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%s publish failed: %w", d.Kind.DisplayName(), err)
	}
	return nil
}

// Command builds the publish command for d.
func (p *CLIPublisher) Command(d Descriptor) (command.Cmd, error) {
	cmd := command.Cmd{
		Dir:         p.project.Dir,
		Env:         p.project.Environ(),
		Interactive: true,
	}
	switch d.Kind {
	case NPM:
		cmd.Name = "npm"
		cmd.Args = []string{"publish"}
	case JSR:
		if d.ManifestPath == DenoJSON && command.Available(p.runner, "deno") {
			cmd.Name = "deno"
			cmd.Args = []string{"publish"}
		} else {
			cmd.Name = "npx"
			cmd.Args = []string{"jsr", "publish"}
		}
		if token := p.project.Getenv(JSRTokenVar); token != "" {
			cmd.Args = append(cmd.Args, "--token", token)
			cmd.Secrets = []string{token}
		}
	default:
		return command.Cmd{}, fmt.Errorf("no publish command for registry %q", d.Kind)
	}
	return cmd, nil
}
