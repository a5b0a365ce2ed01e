package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/holon-run/shipit/pkg/errs"
	"github.com/holon-run/shipit/pkg/logs/redact"
	"github.com/holon-run/shipit/pkg/publisher"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir        string
	configPath string
	verbose    bool
}

type publishFlags struct {
	branch         string
	tag            string
	createTag      string
	tagMessage     string
	remote         string
	skipRegistries bool
	registries     []string
	force          bool
	dryRun         bool
}

func newRootCmd() *cobra.Command {
	var global globalFlags
	var flags publishFlags

	rootCmd := &cobra.Command{
		Use:   "shipit",
		Short: "Push a branch or tag and publish the package to npm and JSR",
		Long: `shipit publishes the project in the current directory.

It checks that git is installed, the directory is a repository with a remote
you can push to, and offers to fix anything missing along the way. Then it
asks what to publish (a branch, an existing tag or a new tag), which package
registries to publish to, and pushes and publishes after you confirm.

Examples:
  shipit
  shipit --create-tag v1.2.0 --tag-message "Release 1.2.0"
  shipit --tag v1.1.0 --registry npm
  shipit --branch main --skip-registries --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, global, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.dir, "dir", "C", ".", "Project directory")
	pf.StringVar(&global.configPath, "config", "", "Config file (default: <dir>/.shipit.yaml)")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "Show debug logs and full error causes")

	f := rootCmd.Flags()
	f.StringVarP(&flags.branch, "branch", "b", "", "Publish this branch")
	f.StringVarP(&flags.tag, "tag", "t", "", "Publish this existing tag")
	f.StringVar(&flags.createTag, "create-tag", "", "Create this tag and publish it")
	f.StringVarP(&flags.tagMessage, "tag-message", "m", "", "Annotation for --create-tag")
	f.StringVarP(&flags.remote, "remote", "r", "", "Remote to push to (default: config remote, then origin)")
	f.BoolVar(&flags.skipRegistries, "skip-registries", false, "Only push, do not publish to any registry")
	f.StringSliceVar(&flags.registries, "registry", nil, "Publish only to these registries (npm, jsr) without asking")
	f.BoolVarP(&flags.force, "force", "f", false, "Force push")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Show what would be pushed and published without doing it")

	rootCmd.AddCommand(
		newCheckCmd(&global),
		newInitCmd(&global),
		newVersionCmd(),
	)
	return rootCmd
}

func runPublish(cmd *cobra.Command, global globalFlags, flags publishFlags) error {
	a, err := newApp(cmd, global)
	if err != nil {
		return err
	}
	defer a.close()

	opts := publisher.Options{
		Branch:         flags.branch,
		Tag:            flags.tag,
		CreateTag:      flags.createTag,
		TagMessage:     flags.tagMessage,
		Remote:         a.cfg.Remote,
		SkipRegistries: flags.skipRegistries || a.cfg.Registries.Skip,
		Registries:     a.cfg.Registries.Only,
		Force:          flags.force,
		DryRun:         flags.dryRun,
		Verbose:        global.verbose,
	}
	if cmd.Flags().Changed("remote") {
		opts.Remote = flags.remote
	}
	// An explicit --registry overrides the config's skip and only; a
	// conflicting --skip-registries is rejected by validation.
	if cmd.Flags().Changed("registry") {
		opts.Registries = flags.registries
		opts.SkipRegistries = flags.skipRegistries
	} else if opts.SkipRegistries {
		opts.Registries = nil
	}

	report, err := a.orchestrator.Publish(cmd.Context(), opts)
	if err != nil {
		return err
	}
	a.logger.Debug("publish finished", "outcome", string(report.Outcome), "warnings", len(report.Warnings))
	return nil
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(stderr, rootCmd, redact.FromEnv(os.Environ()), err)
		return 1
	}
	return 0
}

func printError(w io.Writer, rootCmd *cobra.Command, r *redact.Redactor, err error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	msg := err.Error()
	if verbose {
		msg = errs.Detail(err)
	}
	fmt.Fprintf(w, "Error: %s\n", r.Redact(msg))
	if code := errs.CodeOf(err); code != "" {
		fmt.Fprintf(w, "(%s)\n", code)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
