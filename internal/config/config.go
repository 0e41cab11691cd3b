// Package config loads the sidecar's configuration from a YAML file under
// ~/.claude/voxbridge/config.yaml, merged with environment variable
// overrides and defaults, following the same Viper-backed shape used
// elsewhere in the wider assistant-tooling ecosystem this sidecar lives in.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full external collaborator surface named in spec.md §6.6.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Queues  QueuesConfig  `mapstructure:"queues" yaml:"queues"`
	Stages  StagesConfig  `mapstructure:"stages" yaml:"stages"`
	TTS     TTSConfig     `mapstructure:"tts" yaml:"tts"`
	Ollama  OllamaConfig  `mapstructure:"ollama" yaml:"ollama"`
	AudioTmp string       `mapstructure:"audio_tmp_dir" yaml:"audio_tmp_dir"`
}

// ServerConfig controls the HTTP bind address.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// QueuesConfig sets the bounded capacity of each of the three stage queues.
type QueuesConfig struct {
	Translation int `mapstructure:"translation" yaml:"translation"`
	Synthesis   int `mapstructure:"synthesis" yaml:"synthesis"`
	Playback    int `mapstructure:"playback" yaml:"playback"`
}

// StagesConfig sets per-stage worker concurrency. Synthesis is always 1
// regardless of configuration — see Validate.
type StagesConfig struct {
	TranslationWorkers int `mapstructure:"translation_workers" yaml:"translation_workers"`
	SynthesisWorkers   int `mapstructure:"synthesis_workers" yaml:"synthesis_workers"`
	PlaybackWorkers    int `mapstructure:"playback_workers" yaml:"playback_workers"`
}

// TTSConfig configures the VOICEVOX collaborator (C2).
type TTSConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	SpeakerID int           `mapstructure:"speaker_id" yaml:"speaker_id"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OllamaConfig configures the translation collaborator (C1).
type OllamaConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns a Config with sensible default values, mirroring
// original_source's DEFAULT_CONFIG.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8765,
		},
		Queues: QueuesConfig{
			Translation: 64,
			Synthesis:   64,
			Playback:    64,
		},
		Stages: StagesConfig{
			TranslationWorkers: 1,
			SynthesisWorkers:   1,
			PlaybackWorkers:    1,
		},
		TTS: TTSConfig{
			BaseURL:   "http://127.0.0.1:50021",
			SpeakerID: 14,
			Timeout:   30 * time.Second,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://127.0.0.1:11434",
			Model:   "my-translator",
			Timeout: 30 * time.Second,
		},
		AudioTmp: filepath.Join(homeDir, ".claude", "voxbridge", "audio", "tmp"),
	}
}

// Load reads configuration from the default location
// (~/.claude/voxbridge/config.yaml), creating it with defaults if absent,
// then applies VOXBRIDGE_-prefixed environment variable overrides.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(homeDir, ".claude", "voxbridge", "config.yaml"))
}

// LoadFromPath reads configuration from a specific path: the file's values
// override the defaults, and environment variables override the file.
func LoadFromPath(path string) (*Config, error) {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("VOXBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.AudioTmp, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio temp directory: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration and pins stage S's concurrency to 1 —
// spec.md §4.3 names this a hard invariant, not a tunable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Server.Port)
	}
	if c.Queues.Translation < 1 || c.Queues.Synthesis < 1 || c.Queues.Playback < 1 {
		return fmt.Errorf("queue capacities must be at least 1")
	}
	if c.Stages.TranslationWorkers < 1 {
		c.Stages.TranslationWorkers = 1
	}
	c.Stages.SynthesisWorkers = 1
	// Playback is pinned at 1 too: spec.md's Open Question on whether
	// stage P should serialize with stage S is resolved in favor of
	// audible ordering (see DESIGN.md), so it is not a tunable either.
	c.Stages.PlaybackWorkers = 1
	if c.TTS.BaseURL == "" {
		return fmt.Errorf("tts.base_url is required")
	}
	return nil
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
