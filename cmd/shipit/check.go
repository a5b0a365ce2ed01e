package main

import (
	"github.com/spf13/cobra"

	"github.com/holon-run/shipit/pkg/publisher"
)

func newCheckCmd(global *globalFlags) *cobra.Command {
	var remoteName string
	var skipRegistries bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the project is ready to publish",
		Long: `Run the publish prerequisites without prompting or changing anything:
git, repository, remote, push access, hosting token and registries.

Exits non-zero when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, *global)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("remote") {
				remoteName = a.cfg.Remote
			}
			_, err = a.orchestrator.Check(cmd.Context(), publisher.CheckOptions{
				Remote:         remoteName,
				SkipRegistries: skipRegistries || a.cfg.Registries.Skip,
				Quiet:          !global.verbose,
			})
			return err
		},
	}
	cmd.Flags().StringVarP(&remoteName, "remote", "r", "", "Remote to check (default: config remote, then origin)")
	cmd.Flags().BoolVar(&skipRegistries, "skip-registries", false, "Skip the registry check")
	return cmd
}
