package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisjrex/voxcli/internal/playback"
	"github.com/chrisjrex/voxcli/internal/speechd"
)

// The hidden subcommands are the bodies of the detached processes this CLI
// spawns by re-invoking itself. They are not part of the user-facing surface.

func newRecordDaemonCmd(deps *Dependencies) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:    "__record",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(deps)
			_, err := deps.App.Recorder.RunDaemon()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newSpeechdCmd(deps *Dependencies) *cobra.Command {
	var idleTimeoutSec int
	cmd := &cobra.Command{
		Use:    "__speechd",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			runDir := deps.App.Cfg.RunDir()
			srv := &speechd.Server{
				SocketPath:  speechd.SocketPath(runDir),
				PIDPath:     speechd.PIDPath(runDir),
				IdleTimeout: time.Duration(idleTimeoutSec) * time.Second,
				Log:         deps.App.Log,
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&idleTimeoutSec, "idle-timeout", 0, "shut down after this many idle seconds (0 disables)")
	return cmd
}

func newPlayHelperCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:    "__play <audio> <pidfile> [player args...]",
		Hidden: true,
		Args:   cobra.MinimumNArgs(2),
		// Player argv may carry flags of its own.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return playback.RunHelper(args[0], args[1], args[2:])
		},
	}
}
