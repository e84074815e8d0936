package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// toolChecks lists the external commands vox shells out to and what each one
// is for. Only sox is strictly required; the rest depend on which engines
// are in use.
var toolChecks = []struct {
	name    string
	purpose string
	install string
}{
	{"sox", "audio capture, silence detection, speed adjustment", "brew install sox"},
	{"afplay", "audio playback", "ships with macOS (ffplay from ffmpeg works as a fallback)"},
	{"say", "system voice synthesis", "ships with macOS"},
	{"whisper-cli", "whisper transcription", "brew install whisper-cpp"},
	{"uv", "parakeet transcription", "brew install uv"},
	{"piper", "piper synthesis", "pip install piper-tts"},
	{"python3", "kokoro synthesis", "install python3, then: pip install kokoro soundfile"},
}

func newDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the configured engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			healthy := true

			for _, check := range toolChecks {
				if _, err := exec.LookPath(check.name); err != nil {
					deps.Out.Warn("%s missing (%s) — %s", check.name, check.purpose, check.install)
					healthy = false
				} else {
					deps.Out.Success("%s (%s)", check.name, check.purpose)
				}
			}

			cfg := deps.App.Cfg
			if stt, err := deps.App.Catalog.ResolveSTT(cfg.STTModel); err != nil {
				deps.Out.Warn("configured model %q: %v", cfg.STTModel, err)
				healthy = false
			} else if err := stt.IsDownloaded(); err != nil {
				deps.Out.Warn("model %s: %v", cfg.STTModel, err)
				if hint := errs.HintOf(err); hint != "" {
					deps.Out.Info("   %s", hint)
				}
				healthy = false
			} else {
				deps.Out.Success("model %s ready", cfg.STTModel)
			}

			if tts, err := deps.App.Catalog.ResolveTTS(cfg.Voice); err != nil {
				deps.Out.Warn("configured voice %q: %v", cfg.Voice, err)
				healthy = false
			} else if err := tts.IsDownloaded(); err != nil {
				deps.Out.Warn("voice %s: %v", cfg.Voice, err)
				if hint := errs.HintOf(err); hint != "" {
					deps.Out.Info("   %s", hint)
				}
				healthy = false
			} else {
				deps.Out.Success("voice %s ready", cfg.Voice)
			}

			if !healthy {
				return fmt.Errorf("some checks failed")
			}
			deps.Out.Success("All checks passed")
			return nil
		},
	}
}
