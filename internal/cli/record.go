package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisjrex/voxcli/internal/output"
)

// recordFlags are the per-session overrides shared by `vox start` and the
// hidden daemon subcommand, which receives them forwarded verbatim.
type recordFlags struct {
	name        string
	silenceSec  int
	threshold   float64
	maxDuration int
	copyText    bool
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "label for the transcript file")
	cmd.Flags().IntVar(&f.silenceSec, "silence", -1, "auto-stop after this many seconds of silence (0 disables)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", -1, "peak amplitude below which a poll counts as silent")
	cmd.Flags().IntVar(&f.maxDuration, "max-duration", -1, "hard recording limit in seconds (0 disables)")
	cmd.Flags().BoolVar(&f.copyText, "copy", false, "copy the transcript to the clipboard")
}

// apply writes the overrides into the live config and recorder.
func (f *recordFlags) apply(deps *Dependencies) {
	cfg := deps.App.Cfg
	if f.silenceSec >= 0 {
		cfg.SilenceTimeoutSec = f.silenceSec
	}
	if f.threshold >= 0 {
		cfg.SilenceThreshold = f.threshold
	}
	if f.maxDuration >= 0 {
		cfg.MaxDurationSec = f.maxDuration
	}
	deps.App.Recorder.Name = f.name
	deps.App.Recorder.Copy = f.copyText
}

// forward rebuilds the flag list for the detached daemon invocation.
func (f *recordFlags) forward() []string {
	var args []string
	if f.name != "" {
		args = append(args, "--name", f.name)
	}
	if f.silenceSec >= 0 {
		args = append(args, "--silence", strconv.Itoa(f.silenceSec))
	}
	if f.threshold >= 0 {
		args = append(args, "--threshold", strconv.FormatFloat(f.threshold, 'f', -1, 64))
	}
	if f.maxDuration >= 0 {
		args = append(args, "--max-duration", strconv.Itoa(f.maxDuration))
	}
	if f.copyText {
		args = append(args, "--copy")
	}
	return args
}

func newStartCmd(deps *Dependencies) *cobra.Command {
	var flags recordFlags
	var foreground bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording dictation",
		Long: `Start begins a dictation session. By default it records in a background
daemon and returns immediately; vox stop finishes the session and prints the
transcript. With --foreground it records in place until Ctrl+C (or an
auto-stop) and prints the transcript itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if foreground {
				flags.apply(deps)
				deps.Out.Recording("Recording... (Ctrl+C to finish)")
				res, err := deps.App.Recorder.RunForeground()
				if err != nil {
					return err
				}
				if res.Err != "" {
					return fmt.Errorf("%s", res.Err)
				}
				deps.Out.Plain(res.Text)
				return nil
			}

			if err := deps.App.StartRecording(flags.forward()...); err != nil {
				return err
			}
			deps.Out.Recording("Recording... (vox stop to finish)")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&foreground, "foreground", false, "record in this process instead of a background daemon")
	return cmd
}

func newStopCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop recording and print the transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.App.StopRecording()
			if err != nil {
				return err
			}
			if res.Err != "" {
				return fmt.Errorf("%s", res.Err)
			}
			deps.Out.Plain(res.Text)
			return nil
		},
	}
}

func newStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show recording and synthesis server state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess, running := deps.App.RecordingStatus(); running {
				elapsed := output.FormatDuration(time.Since(sess.StartedAt))
				deps.Out.Recording("Recording for %s (model %s, pid %d)", elapsed, sess.STTModel, sess.PID)
			} else {
				deps.Out.Info("Not recording")
			}
			if running, pid := deps.App.ServerStatus(); running {
				deps.Out.Speaking("Synthesis server running (pid %d)", pid)
			} else {
				deps.Out.Info("Synthesis server not running")
			}
			if deps.App.Playback.Playing() {
				deps.Out.Speaking("Playback in progress")
			}
			return nil
		},
	}
}
