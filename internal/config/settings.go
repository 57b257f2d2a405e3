// Package config loads the hotwatchd settings file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hotwatch/internal/logging"
)

type Settings struct {
	Listen      string
	LogLevel    logging.Level
	WaitTimeout time.Duration
	Watch       []string
}

// fileSettings is the YAML shape; durations travel as strings.
type fileSettings struct {
	Listen      string   `yaml:"listen"`
	LogLevel    string   `yaml:"log_level"`
	WaitTimeout string   `yaml:"wait_timeout"`
	Watch       []string `yaml:"watch"`
}

// LiveSettings is the subset of the settings file that may change while
// the daemon runs; it is re-read on every settings-file reload.
type LiveSettings struct {
	LogLevel string `yaml:"log_level"`
}

func Defaults() Settings {
	return Settings{
		Listen:      ":8484",
		LogLevel:    logging.LevelInfo,
		WaitTimeout: time.Second,
	}
}

// Load reads path and merges it over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if strings.TrimSpace(path) == "" {
		return settings, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	var raw fileSettings
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return Settings{}, fmt.Errorf("decode settings %s: %w", path, err)
	}

	if strings.TrimSpace(raw.Listen) != "" {
		settings.Listen = strings.TrimSpace(raw.Listen)
	}
	if strings.TrimSpace(raw.LogLevel) != "" {
		level, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return Settings{}, fmt.Errorf("settings %s: unknown log_level %q", path, raw.LogLevel)
		}
		settings.LogLevel = level
	}
	if strings.TrimSpace(raw.WaitTimeout) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(raw.WaitTimeout))
		if err != nil {
			return Settings{}, fmt.Errorf("settings %s: bad wait_timeout: %w", path, err)
		}
		if timeout <= 0 {
			return Settings{}, fmt.Errorf("settings %s: wait_timeout must be positive", path)
		}
		settings.WaitTimeout = timeout
	}
	for _, entry := range raw.Watch {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		settings.Watch = append(settings.Watch, entry)
	}

	return settings, nil
}
