// Package cli defines the vox command tree. Commands stay thin: they parse
// flags and delegate to the app layer.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/app"
	"github.com/chrisjrex/voxcli/internal/output"
	"github.com/chrisjrex/voxcli/internal/version"
)

// Dependencies carries the wired app into the command constructors.
type Dependencies struct {
	App *app.App
	Out *output.Formatter
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:           "vox",
		Short:         "On-device dictation and speech",
		Long:          "vox records and transcribes dictation, and speaks text aloud, entirely on this machine.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCmd(deps),
		newStopCmd(deps),
		newStatusCmd(deps),
		newSpeakCmd(deps),
		newSilenceCmd(deps),
		newServerCmd(deps),
		newEnginesCmd(deps),
		newDoctorCmd(deps),
		newRecordDaemonCmd(deps),
		newSpeechdCmd(deps),
		newPlayHelperCmd(deps),
	)
	return root
}

// Execute loads configuration, wires the app, and runs the command tree.
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	deps := &Dependencies{
		App: app.New(cfg, log),
		Out: output.New(os.Stdout),
	}
	return NewRootCmd(deps).Execute()
}
