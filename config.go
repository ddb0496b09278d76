package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultConfigPath is the default filename for persisted configuration.
const defaultConfigPath = "config.yaml"

var errInvalidConfig = errors.New("invalid configuration")

// DefaultConfig returns the reference wiring: trigger on 8,
// echo on 9, buzzer on 10, alarm at 10 cm.
func DefaultConfig() Config {
	return Config{
		TriggerPin:   8,
		EchoPin:      9,
		BuzzerPin:    10,
		ThresholdCM:  10,
		EchoTimeout:  Duration(time.Second),
		LoopInterval: 0,
		LogFile:      "events.log",
	}
}

// Validate reports the first setting that cannot drive the loop.
func (c Config) Validate() error {
	pins := []struct {
		name string
		pin  int
	}{
		{"trigger_pin", c.TriggerPin},
		{"echo_pin", c.EchoPin},
		{"buzzer_pin", c.BuzzerPin},
	}
	seen := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.pin < 0 {
			return fmt.Errorf("%w: %s must not be negative", errInvalidConfig, p.name)
		}
		if other, ok := seen[p.pin]; ok {
			return fmt.Errorf("%w: %s and %s share GPIO%d", errInvalidConfig, other, p.name, p.pin)
		}
		seen[p.pin] = p.name
	}
	if math.IsNaN(c.ThresholdCM) {
		return fmt.Errorf("%w: threshold_cm must be a number", errInvalidConfig)
	}
	if c.ThresholdCM < 0 {
		return fmt.Errorf("%w: threshold_cm must not be negative", errInvalidConfig)
	}
	if c.EchoTimeout <= 0 {
		return fmt.Errorf("%w: echo_timeout must be positive", errInvalidConfig)
	}
	if c.LoopInterval < 0 {
		return fmt.Errorf("%w: loop_interval must not be negative", errInvalidConfig)
	}
	return nil
}

// ConfigManager wraps the loaded configuration and a mutex for concurrent access.
type ConfigManager struct {
	path   string
	mu     sync.RWMutex
	cfg    Config
	loaded bool
}

// NewConfigManager returns a manager for the file at path.  An empty path
// selects config.yaml in the working directory.
func NewConfigManager(path string) *ConfigManager {
	if path == "" {
		path = defaultConfigPath
	}
	return &ConfigManager{path: path}
}

// Load reads configuration from disk.  If the file does not exist the
// default configuration is persisted so it can be edited for the next run.
// Keys missing from an existing file keep their default values.
func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	if cm.loaded {
		cm.mu.Unlock()
		return nil
	}
	data, err := os.ReadFile(cm.path)
	if err != nil {
		if os.IsNotExist(err) {
			cm.cfg = DefaultConfig()
			cm.loaded = true
			// Save takes the read lock.
			cm.mu.Unlock()
			return cm.Save()
		}
		cm.mu.Unlock()
		return fmt.Errorf("unable to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid %s: %w", cm.path, err)
	}
	if err := cfg.Validate(); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("%s: %w", cm.path, err)
	}
	cm.cfg = cfg
	cm.loaded = true
	cm.mu.Unlock()
	return nil
}

// Save writes the configuration to disk via a temporary file and rename.
func (cm *ConfigManager) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	data, err := yaml.Marshal(cm.cfg)
	if err != nil {
		return err
	}
	tmpPath := cm.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, cm.path)
}

// Get returns a copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.cfg
}
