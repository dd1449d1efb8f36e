// Package config is the serialisable configuration of a minikernel run. It is
// read from YAML over DefaultConfig, so a file only needs the fields it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"minikernel/hal"
	"minikernel/internal/tracing"
	"minikernel/minios/kernel"
)

type Config struct {
	Kernel  kernel.Config  `yaml:"kernel"`
	Machine hal.Config     `yaml:"machine"`
	Host    HostConfig     `yaml:"host"`
	Trace   tracing.Config `yaml:"trace"`
	Boot    BootConfig     `yaml:"boot"`
}

// HostConfig selects how the machine is driven.
type HostConfig struct {
	Headless bool `yaml:"headless"`
	// Realtime ticks the clock from wall time at Hz in headless mode. The window
	// runner is always real time.
	Realtime bool `yaml:"realtime"`
	Hz       int  `yaml:"hz"`
	// Stdin forwards standard input to the terminal port in headless mode.
	Stdin  bool `yaml:"stdin"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
}

// BootConfig lists what the init program starts.
type BootConfig struct {
	Children  []string `yaml:"children"`
	ImageSize int      `yaml:"imageSize"`
}

func DefaultConfig() *Config {
	return &Config{
		Kernel:  kernel.DefaultConfig(),
		Machine: hal.DefaultConfig(),
		Host: HostConfig{
			Hz:     100,
			Width:  480,
			Height: 320,
		},
		Boot: BootConfig{
			Children:  []string{"sleep_test", "mutex_demo"},
			ImageSize: 4096,
		},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	errs := []error{c.Kernel.Validate()}
	if c.Machine.CyclesPerTick <= 0 {
		errs = append(errs, errors.New("machine.cyclesPerTick must be > 0"))
	}
	if c.Host.Hz <= 0 {
		errs = append(errs, errors.New("host.hz must be > 0"))
	}
	if c.Host.Width < 0 || c.Host.Height < 0 {
		errs = append(errs, errors.New("host.width and host.height must be >= 0"))
	}
	if c.Boot.ImageSize < 0 {
		errs = append(errs, errors.New("boot.imageSize must be >= 0"))
	}
	for _, name := range c.Boot.Children {
		if name == "" {
			errs = append(errs, errors.New("boot.children must not contain empty names"))
			break
		}
	}
	return errors.Join(errs...)
}

// SplitList splits a comma separated flag value into trimmed, non-empty names.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
