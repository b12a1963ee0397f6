package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/nodeprism/internal/updater"
)

func newVersionCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Output the version of nodeprism",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errorWantedNoArgs
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodeprism v%s\n", version)

			if c := opts.updateChecker(); c != nil {
				if latest, hasUpdate, err := c.CheckLatest(); err == nil && hasUpdate {
					fmt.Fprintf(out, "\nUpdate available: v%s. Run 'nodeprism upgrade' to update (or re-run the install script).\n", latest)
				}
			}
			return nil
		},
	}
}

func newUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Replace this binary with the latest release",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errorWantedNoArgs
			}
			out := cmd.OutOrStdout()

			_, hasUpdate, err := updater.NewChecker(version, "", 0).CheckLatest()
			if err != nil {
				fmt.Fprintln(out, updater.CurlFallbackMessage(err))
				return fmt.Errorf("failed to check for updates: %w", err)
			}
			if !hasUpdate {
				fmt.Fprintln(out, "Already up to date.")
				return nil
			}

			newVer, err := updater.Upgrade(version)
			if err != nil {
				fmt.Fprintln(out, updater.CurlFallbackMessage(err))
				return fmt.Errorf("failed to upgrade: %w", err)
			}
			fmt.Fprintf(out, "Upgraded to v%s. Restart nodeprism to use the new version.\n", newVer)
			return nil
		},
	}
}
