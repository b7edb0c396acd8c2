package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Audio  AudioConfig  `yaml:"audio"`
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

// AudioConfig contains encode defaults
type AudioConfig struct {
	Bitrate    string `yaml:"bitrate,omitempty"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
}

// FFmpegConfig contains settings for the ffmpeg-backed codecs
type FFmpegConfig struct {
	Path    string `yaml:"path,omitempty"`
	TempDir string `yaml:"temp_dir,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Audio:  AudioConfig{Bitrate: "192k"},
		FFmpeg: FFmpegConfig{Path: "ffmpeg"},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Fields missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
