// Package engine maps voice/model descriptors to subprocess-backed speech
// engines. Selection is a pure lookup over a static catalog: one case arm per
// provider, no inheritance.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/speechd"
)

// ErrUnknownEngine is returned when a descriptor names no catalog entry.
var ErrUnknownEngine = errors.New("unknown engine")

// Descriptor selects a provider plus a model or voice id, written
// "provider/id" (e.g. "whisper/base", "kokoro/af_heart").
type Descriptor struct {
	Provider string
	ID       string
}

func (d Descriptor) String() string { return d.Provider + "/" + d.ID }

// ParseDescriptor splits "provider/id". A bare provider gets an empty id,
// which resolves to the provider's default.
func ParseDescriptor(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Descriptor{}, fmt.Errorf("%w: empty descriptor", ErrUnknownEngine)
	}
	provider, id, _ := strings.Cut(s, "/")
	return Descriptor{Provider: provider, ID: id}, nil
}

// STTEngine is a transcription capability bound to one model.
type STTEngine interface {
	Describe() Descriptor
	// IsAvailable checks the external interpreter or binary is present.
	IsAvailable() error
	// IsDownloaded checks the model weights are cached locally.
	IsDownloaded() error
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// TTSEngine is a synthesis capability bound to one voice. Synthesize writes
// a new audio file under outDir and returns its path.
type TTSEngine interface {
	Describe() Descriptor
	IsAvailable() error
	IsDownloaded() error
	Synthesize(ctx context.Context, text string, speed float64, outDir string) (string, error)
}

// Catalog resolves descriptors against the static provider set.
type Catalog struct {
	modelsDir  string
	voicesDir  string
	socketPath string
}

func NewCatalog(cfg *config.Config) *Catalog {
	return &Catalog{
		modelsDir:  cfg.ModelsDir(),
		voicesDir:  cfg.VoicesDir(),
		socketPath: speechd.SocketPath(cfg.RunDir()),
	}
}

// ResolveSTT returns the transcription engine for a model descriptor.
func (c *Catalog) ResolveSTT(desc string) (STTEngine, error) {
	d, err := ParseDescriptor(desc)
	if err != nil {
		return nil, err
	}
	switch d.Provider {
	case "whisper":
		if d.ID == "" {
			d.ID = "base"
		}
		return &whisperEngine{id: d.ID, modelsDir: c.modelsDir}, nil
	case "parakeet":
		if d.ID == "" {
			d.ID = "parakeet-tdt-0.6b-v2"
		}
		return &parakeetEngine{id: d.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, d.Provider)
	}
}

// ResolveTTS returns the synthesis engine for a voice descriptor.
func (c *Catalog) ResolveTTS(desc string) (TTSEngine, error) {
	d, err := ParseDescriptor(desc)
	if err != nil {
		return nil, err
	}
	switch d.Provider {
	case "system":
		if d.ID == "" {
			d.ID = "default"
		}
		return &systemEngine{voice: d.ID}, nil
	case "piper":
		if d.ID == "" {
			d.ID = "en_US-amy-medium"
		}
		return &piperEngine{voice: d.ID, voicesDir: c.voicesDir}, nil
	case "kokoro":
		if d.ID == "" {
			d.ID = "af_heart"
		}
		return &kokoroEngine{voice: d.ID, socketPath: c.socketPath}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, d.Provider)
	}
}

// Info is one catalog entry with its current local state, for listing.
type Info struct {
	Descriptor Descriptor
	Kind       string // "stt" or "tts"
	Available  bool
	Downloaded bool
}

var sttCatalog = map[string][]string{
	"whisper":  {"tiny", "base", "small", "medium", "large-v3-turbo"},
	"parakeet": {"parakeet-tdt-0.6b-v2", "parakeet-tdt-0.6b-v3"},
}

var ttsCatalog = map[string][]string{
	"system": {"default"},
	"piper":  {"en_US-amy-medium", "en_US-lessac-medium", "en_GB-alba-medium"},
	"kokoro": {"af_heart", "af_bella", "am_adam", "bf_emma", "bm_george"},
}

// List reports every catalog entry with availability and download state.
func (c *Catalog) List() []Info {
	var out []Info
	for _, provider := range []string{"whisper", "parakeet"} {
		for _, id := range sttCatalog[provider] {
			e, err := c.ResolveSTT(provider + "/" + id)
			if err != nil {
				continue
			}
			out = append(out, Info{
				Descriptor: e.Describe(),
				Kind:       "stt",
				Available:  e.IsAvailable() == nil,
				Downloaded: e.IsDownloaded() == nil,
			})
		}
	}
	for _, provider := range []string{"system", "piper", "kokoro"} {
		for _, id := range ttsCatalog[provider] {
			e, err := c.ResolveTTS(provider + "/" + id)
			if err != nil {
				continue
			}
			out = append(out, Info{
				Descriptor: e.Describe(),
				Kind:       "tts",
				Available:  e.IsAvailable() == nil,
				Downloaded: e.IsDownloaded() == nil,
			})
		}
	}
	return out
}
