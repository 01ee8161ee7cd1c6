package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults shared by every rawpix command. Command line
// flags take precedence over values loaded from a file.
type Config struct {
	// Workers is the number of parallel jobs, GOMAXPROCS when < 1.
	Workers int `yaml:"workers"`
	// Strict rejects PNM files whose raster is shorter than the header says.
	Strict bool `yaml:"strict"`
	// MaxPixels bounds the size of decoded PNM images. Zero uses the
	// decoder default, a negative value means no limit.
	MaxPixels int     `yaml:"max_pixels"`
	Logging   Logging `yaml:"logging"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxPixels: 1 << 28,
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig, so keys missing from
// the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	conf := DefaultConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", path, err)
	}

	if _, err := conf.Logging.SlogLevel(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return conf, nil
}

// LoadOrDefault loads path if given, else the file at DefaultConfigPath if
// there is one, else returns DefaultConfig.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}

	path = DefaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("cannot stat config file %q: %w", path, err)
	}
	return LoadConfig(path)
}

func SaveConfig(conf *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("could not write config file %q: %w", path, err)
	}
	return nil
}

// DefaultConfigPath is ~/.config/rawpix/config.yaml, or ./rawpix.yaml when
// the home directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rawpix.yaml"
	}
	return filepath.Join(home, ".config", "rawpix", "config.yaml")
}

// SlogLevel parses Level: debug, info, warn or error. Empty means info.
func (l Logging) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}
