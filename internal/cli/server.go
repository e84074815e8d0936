package cli

import (
	"github.com/spf13/cobra"
)

func newServerCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage the background synthesis server",
		Long: `The synthesis server keeps neural voice pipelines loaded between requests,
so repeated kokoro speech responds in well under a second instead of paying
the model load on every utterance. It shuts itself down after a configurable
idle period.`,
	}
	var idleTimeoutSec int
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the synthesis server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			already, err := deps.App.ServerStart(idleTimeoutSec)
			if err != nil {
				return err
			}
			if already {
				deps.Out.Info("Synthesis server already running")
			} else {
				deps.Out.Success("Synthesis server started")
			}
			return nil
		},
	}
	startCmd.Flags().IntVar(&idleTimeoutSec, "idle-timeout", -1, "shut down after this many idle seconds (0 disables, default from config)")

	cmd.AddCommand(
		startCmd,
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the synthesis server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if deps.App.ServerStop() {
					deps.Out.Success("Synthesis server stopped")
				} else {
					deps.Out.Info("Synthesis server not running")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the synthesis server is running",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if running, pid := deps.App.ServerStatus(); running {
					deps.Out.Success("Synthesis server running (pid %d)", pid)
				} else {
					deps.Out.Info("Synthesis server not running")
				}
				return nil
			},
		},
	)
	return cmd
}
