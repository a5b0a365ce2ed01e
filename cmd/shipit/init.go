package main

import (
	"github.com/spf13/cobra"

	"github.com/holon-run/shipit/pkg/publisher"
)

func newInitCmd(global *globalFlags) *cobra.Command {
	var remoteName string
	var noConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the project for publishing",
		Long: `Walk through everything a publish needs without publishing:
initialize the repository, set your git identity, create and attach a remote,
commit pending changes and repair the JSR manifest.

A default .shipit.yaml is written unless one exists or --no-config is set.`,
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
			_, err = a.orchestrator.Init(cmd.Context(), publisher.InitOptions{
				Remote:      remoteName,
				WriteConfig: !noConfig,
			})
			return err
		},
	}
	cmd.Flags().StringVarP(&remoteName, "remote", "r", "", "Remote to set up (default: config remote, then origin)")
	cmd.Flags().BoolVar(&noConfig, "no-config", false, "Do not write .shipit.yaml")
	return cmd
}
