package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults for the recording watchdog and the synthesis server.
// A value of 0 disables the corresponding timeout.
const (
	DefaultSilenceTimeoutSec    = 2
	DefaultSilenceThreshold     = 0.02
	DefaultMaxDurationSec       = 300
	DefaultServerIdleTimeoutSec = 300
	DefaultSpeed                = 1.0
)

type Config struct {
	DataDir              string
	STTModel             string  // e.g. "whisper/base"
	Voice                string  // e.g. "system/default"
	Speed                float64 // playback rate multiplier
	SilenceTimeoutSec    int
	SilenceThreshold     float64
	MaxDurationSec       int
	ServerIdleTimeoutSec int
}

type fileConfig struct {
	DataDir              string   `toml:"data_dir"`
	STTModel             string   `toml:"stt_model"`
	Voice                string   `toml:"voice"`
	Speed                *float64 `toml:"speed"`
	SilenceTimeoutSec    *int     `toml:"silence_timeout_sec"`
	SilenceThreshold     *float64 `toml:"silence_threshold"`
	MaxDurationSec       *int     `toml:"max_duration_sec"`
	ServerIdleTimeoutSec *int     `toml:"server_idle_timeout_sec"`
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDir:              defaultDataDir(),
		STTModel:             "whisper/base",
		Voice:                "system/default",
		Speed:                DefaultSpeed,
		SilenceTimeoutSec:    DefaultSilenceTimeoutSec,
		SilenceThreshold:     DefaultSilenceThreshold,
		MaxDurationSec:       DefaultMaxDurationSec,
		ServerIdleTimeoutSec: DefaultServerIdleTimeoutSec,
	}

	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err == nil {
			applyFileConfig(cfg, &fc)
		}
	}

	applyEnvOverrides(cfg)

	for _, dir := range []string{cfg.RunDir(), cfg.LogDir(), cfg.RecordingsDir(), cfg.TranscriptsDir(), cfg.ModelsDir(), cfg.VoicesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.DataDir != "" {
		cfg.DataDir = expandTilde(fc.DataDir)
	}
	if fc.STTModel != "" {
		cfg.STTModel = fc.STTModel
	}
	if fc.Voice != "" {
		cfg.Voice = fc.Voice
	}
	if fc.Speed != nil {
		cfg.Speed = *fc.Speed
	}
	if fc.SilenceTimeoutSec != nil {
		cfg.SilenceTimeoutSec = *fc.SilenceTimeoutSec
	}
	if fc.SilenceThreshold != nil {
		cfg.SilenceThreshold = *fc.SilenceThreshold
	}
	if fc.MaxDurationSec != nil {
		cfg.MaxDurationSec = *fc.MaxDurationSec
	}
	if fc.ServerIdleTimeoutSec != nil {
		cfg.ServerIdleTimeoutSec = *fc.ServerIdleTimeoutSec
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOX_DATA_DIR"); v != "" {
		cfg.DataDir = expandTilde(v)
	}
	if v := os.Getenv("VOX_STT_MODEL"); v != "" {
		cfg.STTModel = v
	}
	if v := os.Getenv("VOX_VOICE"); v != "" {
		cfg.Voice = v
	}
	if v := os.Getenv("VOX_SPEED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Speed = f
		}
	}
	if v := os.Getenv("VOX_SERVER_IDLE_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ServerIdleTimeoutSec = n
		}
	}
}

// RunDir holds PID files, the session state file, and the server socket.
func (c *Config) RunDir() string { return filepath.Join(c.DataDir, "run") }

func (c *Config) LogDir() string         { return filepath.Join(c.DataDir, "log") }
func (c *Config) RecordingsDir() string  { return filepath.Join(c.DataDir, "recordings") }
func (c *Config) TranscriptsDir() string { return filepath.Join(c.DataDir, "transcripts") }
func (c *Config) ModelsDir() string      { return filepath.Join(c.DataDir, "models") }
func (c *Config) VoicesDir() string      { return filepath.Join(c.DataDir, "voices") }

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "vox")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "vox")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "vox")
	}
	return filepath.Join(".", "vox-data")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
