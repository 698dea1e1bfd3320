// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the pipeline tunables. Zero values take the defaults.
type Config struct {
	// LineCapacity is the receive buffer size in bytes.
	LineCapacity int `yaml:"line_capacity"`

	// CommandQueueSize and OutputQueueSize bound the two queues.
	CommandQueueSize int `yaml:"command_queue_size"`
	OutputQueueSize  int `yaml:"output_queue_size"`

	// PoolSize caps live Command records. The default covers a full
	// command queue plus one record at each end.
	PoolSize int `yaml:"pool_size"`

	// TogglePeriod is the blink half-period of the toggle command.
	TogglePeriod time.Duration `yaml:"toggle_period"`

	// Menu and Banner override the operator texts.
	Menu   string `yaml:"menu"`
	Banner string `yaml:"banner"`

	// Journal is a file path for the CBOR dispatch journal. Empty
	// disables journaling.
	Journal string `yaml:"journal"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.LineCapacity == 0 {
		c.LineCapacity = DefaultLineCapacity
	}
	if c.CommandQueueSize == 0 {
		c.CommandQueueSize = DefaultCommandQueueSize
	}
	if c.OutputQueueSize == 0 {
		c.OutputQueueSize = DefaultOutputQueueSize
	}
	if c.PoolSize == 0 {
		c.PoolSize = c.CommandQueueSize + 2
	}
	if c.TogglePeriod == 0 {
		c.TogglePeriod = DefaultTogglePeriod
	}
	if c.Menu == "" {
		c.Menu = DefaultMenu
	}
	if c.Banner == "" {
		c.Banner = DefaultBanner
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.LineCapacity < 2 {
		return fmt.Errorf("line_capacity must be at least 2, got %d", c.LineCapacity)
	}
	if c.CommandQueueSize < 1 {
		return fmt.Errorf("command_queue_size must be positive, got %d", c.CommandQueueSize)
	}
	if c.OutputQueueSize < 1 {
		return fmt.Errorf("output_queue_size must be positive, got %d", c.OutputQueueSize)
	}
	if c.PoolSize < c.CommandQueueSize+2 {
		return fmt.Errorf("pool_size must be at least command_queue_size+2 (%d), got %d",
			c.CommandQueueSize+2, c.PoolSize)
	}
	if c.TogglePeriod <= 0 {
		return fmt.Errorf("toggle_period must be positive, got %v", c.TogglePeriod)
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration, applies defaults and validates.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
