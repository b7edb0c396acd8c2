package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"audioseg/domain/segment"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// Setting is a single key/value pair from the config file
type Setting struct {
	Key   string
	Value string
}

// field describes how a dotted key reads and writes a Config field
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"audio.bitrate": {
		get: func(c *Config) string { return c.Audio.Bitrate },
		set: func(c *Config, v string) error {
			if err := (segment.OutputOptions{Bitrate: v}).Validate(); err != nil {
				return fmt.Errorf("%w: bitrate %q (expected e.g. 192k)", ErrInvalidValue, v)
			}
			c.Audio.Bitrate = v
			return nil
		},
	},
	"audio.sample_rate": {
		get: func(c *Config) string {
			if c.Audio.SampleRate == 0 {
				return ""
			}
			return strconv.Itoa(c.Audio.SampleRate)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Audio.SampleRate = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: sample rate %q (expected a positive integer)", ErrInvalidValue, v)
			}
			c.Audio.SampleRate = n
			return nil
		},
	},
	"ffmpeg.path": {
		get: func(c *Config) string { return c.FFmpeg.Path },
		set: func(c *Config, v string) error {
			c.FFmpeg.Path = v
			return nil
		},
	},
	"ffmpeg.temp_dir": {
		get: func(c *Config) string { return c.FFmpeg.TempDir },
		set: func(c *Config, v string) error {
			c.FFmpeg.TempDir = v
			return nil
		},
	},
}

// ConfigManager reads and updates config entries by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns all supported keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns every setting sorted by key
func (m *ConfigManager) List() []Setting {
	settings := make([]Setting, 0, len(fields))
	for _, k := range Keys() {
		settings = append(settings, Setting{Key: k, Value: fields[k].get(m.config)})
	}
	return settings
}

// Get returns the value for key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set validates and stores value under key, then saves the config file
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return err
	}
	return m.save()
}

// save persists the config to disk
func (m *ConfigManager) save() error {
	if m.configPath == "" {
		return nil
	}
	return Save(m.config, m.configPath)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
