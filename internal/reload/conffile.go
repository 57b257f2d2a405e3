package reload

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"hotwatch/internal/logging"
)

// ConfigFile watches one YAML file and keeps the last successfully decoded
// value of T. A decode or read failure on reload is logged and the previous
// value stays current, so a half-written config never takes effect.
type ConfigFile[T any] struct {
	path     string
	logger   *logging.Logger
	onChange func(T)

	mutex   sync.RWMutex
	current T
	reloads int
}

// NewConfigFile loads path immediately and fails if the initial content
// does not decode. onChange, when non-nil, runs after every successful
// load including the first. It is invoked from the engine's dispatch step,
// so it must not call back into registration operations.
func NewConfigFile[T any](path string, onChange func(T), logger *logging.Logger) (*ConfigFile[T], error) {
	file := &ConfigFile[T]{
		path:     path,
		logger:   logger,
		onChange: onChange,
	}
	if err := file.load(); err != nil {
		return nil, err
	}
	return file, nil
}

func (file *ConfigFile[T]) Target() string {
	return file.path
}

func (file *ConfigFile[T]) OnReload() {
	if err := file.load(); err != nil {
		if file.logger != nil {
			file.logger.Warn("config reload failed, keeping previous value", map[string]string{
				"path":  file.path,
				"error": err.Error(),
			})
		}
		return
	}
	if file.logger != nil {
		file.logger.Info("config reloaded", map[string]string{
			"path": file.path,
		})
	}
}

// Latest returns the most recently decoded value.
func (file *ConfigFile[T]) Latest() T {
	file.mutex.RLock()
	defer file.mutex.RUnlock()
	return file.current
}

// Reloads reports how many successful loads have happened, the initial one
// included.
func (file *ConfigFile[T]) Reloads() int {
	file.mutex.RLock()
	defer file.mutex.RUnlock()
	return file.reloads
}

func (file *ConfigFile[T]) load() error {
	payload, err := os.ReadFile(file.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", file.path, err)
	}

	var next T
	if err := yaml.Unmarshal(payload, &next); err != nil {
		return fmt.Errorf("decode %s: %w", file.path, err)
	}

	file.mutex.Lock()
	file.current = next
	file.reloads++
	file.mutex.Unlock()

	if file.onChange != nil {
		file.onChange(next)
	}
	return nil
}
