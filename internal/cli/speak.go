package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSpeakCmd(deps *Dependencies) *cobra.Command {
	var (
		voice      string
		speed      float64
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "speak [text...]",
		Short: "Speak text aloud (or save it as audio with --output)",
		Long: `Speak synthesizes the given text with the configured voice and plays it.
Text comes from the arguments, or from stdin when none are given.
Starting a new utterance interrupts whatever is currently playing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				text = strings.TrimSpace(string(data))
			}
			if text == "" {
				return fmt.Errorf("nothing to speak")
			}

			if err := deps.App.Speak(cmd.Context(), text, voice, speed, outputPath); err != nil {
				return err
			}
			if outputPath != "" {
				deps.Out.Success("Saved audio to %s", outputPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", `voice descriptor, e.g. "system/default" or "kokoro/af_heart"`)
	cmd.Flags().Float64Var(&speed, "speed", 0, "playback rate multiplier (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "save audio to this path instead of playing it")
	return cmd
}

func newSilenceCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "silence",
		Short: "Stop any current speech playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.App.Silence() {
				deps.Out.Success("Playback stopped")
			} else {
				deps.Out.Info("Nothing playing")
			}
			return nil
		},
	}
}
