package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holon-run/shipit/pkg/command"
	"github.com/holon-run/shipit/pkg/config"
	"github.com/holon-run/shipit/pkg/git"
	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
	"github.com/holon-run/shipit/pkg/prompt"
	"github.com/holon-run/shipit/pkg/publisher"
	"github.com/holon-run/shipit/pkg/registry"
	"github.com/holon-run/shipit/pkg/ui"
)

// app holds the collaborators built for one command invocation.
type app struct {
	project      *project.Context
	cfg          *config.Config
	logger       log.Logger
	orchestrator *publisher.Orchestrator
}

func newApp(cmd *cobra.Command, global globalFlags) (*app, error) {
	pc, err := project.FromOS(global.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	cfg, err := config.Load(pc.Dir, global.configPath)
	if err != nil {
		return nil, err
	}

	level := log.LogLevel(cfg.Log.Level)
	if global.verbose {
		level = log.LevelDebug
	}
	if err := log.Init(log.Config{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := log.Default()

	runner := command.NewExec()
	orchestrator := publisher.New(publisher.Config{
		Project:   pc,
		VCS:       git.ForProject(pc, runner),
		Runner:    runner,
		Prompter:  prompt.NewTerminal(),
		Console:   ui.New(cmd.OutOrStdout()),
		Logger:    logger,
		Providers: hostingProviders(cfg.Hosting, pc, runner),
		Registry:  registry.NewCLIPublisher(pc, runner, logger),
		Identity: git.ConfigOptions{
			ProjectAuthorName:  cfg.Git.AuthorName,
			ProjectAuthorEmail: cfg.Git.AuthorEmail,
		},
	})

	logger.Debug("project loaded", "dir", pc.Dir, "remote", cfg.Remote)
	return &app{project: pc, cfg: cfg, logger: logger, orchestrator: orchestrator}, nil
}

func (a *app) close() {
	_ = log.Sync()
}

// hostingProviders builds the configured providers in order.
func hostingProviders(cfg config.HostingConfig, pc *project.Context, runner command.Runner) []hosting.Provider {
	var providers []hosting.Provider
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderGH:
			providers = append(providers, hosting.NewGitHubCLI(pc, runner))
		case config.ProviderGlab:
			providers = append(providers, hosting.NewGitLabCLI(pc, runner))
		case config.ProviderGitHubAPI:
			api := hosting.NewGitHubAPI(pc, runner)
			api.SSH = cfg.SSH
			providers = append(providers, api)
		}
	}
	return providers
}
