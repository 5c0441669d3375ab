package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Config holds the settings that survive between runs. Register state is
// never saved.
type Config struct {
	InputPort  string `json:"inputPort,omitempty"`  // name fragment of the controller input
	OutputPort string `json:"outputPort,omitempty"` // name fragment of the FB-01 output
	Channel    int    `json:"channel"`              // 1-16, used for test notes
	Quiet      bool   `json:"quiet,omitempty"`
	Dump       bool   `json:"dump,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Channel: 1,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fb01cc"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the config at path, or at ConfigPath when path is empty.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Channel < 1 || c.Channel > 16 {
		return fmt.Errorf("channel must be in range 1-16, got %d", c.Channel)
	}
	return nil
}

// MIDIChannel is the zero-based channel for outgoing test notes.
func (c *Config) MIDIChannel() uint8 {
	return uint8(c.Channel - 1)
}

// parseFlags loads the config file and lays explicitly set flags over it.
// It returns the remaining arguments and whether -save was given.
func parseFlags(args []string, stderr io.Writer) (*Config, []string, bool, error) {
	fs := flag.NewFlagSet("fb01cc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to the JSON config file (default ~/.config/fb01cc/config.json)")
	in := fs.String("in", "", "name fragment of the MIDI input carrying controller changes")
	out := fs.String("out", "", "name fragment of the MIDI output the FB-01 is connected to")
	channel := fs.Int("channel", 1, "MIDI channel (1-16) for test notes")
	quiet := fs.Bool("quiet", false, "do not print the translation trace")
	dump := fs.Bool("dump", false, "dump every outgoing message byte by byte to stderr")
	save := fs.Bool("save", false, "write the resulting settings back to the config file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, false, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, nil, false, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.InputPort = *in
		case "out":
			cfg.OutputPort = *out
		case "channel":
			cfg.Channel = *channel
		case "quiet":
			cfg.Quiet = *quiet
		case "dump":
			cfg.Dump = *dump
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, nil, false, err
	}

	if *save {
		if err := cfg.Save(*configPath); err != nil {
			return nil, nil, false, fmt.Errorf("failed to save config: %w", err)
		}
	}

	return cfg, fs.Args(), *save, nil
}
