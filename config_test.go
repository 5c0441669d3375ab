package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := &Config{InputPort: "keystep", OutputPort: "fb-01", Channel: 4, Quiet: true}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *got != *cfg {
		t.Errorf("loaded %+v, want %+v", got, cfg)
	}
	if got.MIDIChannel() != 3 {
		t.Errorf("MIDIChannel = %d, want 3", got.MIDIChannel())
	}
}

func TestLoadConfigRejectsBadChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"channel": 17}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected channel 17 to be rejected")
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"inputPort": "keystep", "outputPort": "fb-01", "channel": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, rest, saved, err := parseFlags([]string{"-config", path, "-channel", "9", "-quiet", "play", "C4"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if saved {
		t.Errorf("config should not be saved without -save")
	}
	if cfg.InputPort != "keystep" || cfg.OutputPort != "fb-01" {
		t.Errorf("ports from file lost: %+v", cfg)
	}
	if cfg.Channel != 9 || !cfg.Quiet {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if strings.Join(rest, " ") != "play C4" {
		t.Errorf("remaining args = %v", rest)
	}
}

func TestFlagsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, _, saved, err := parseFlags([]string{"-config", path, "-out", "fb", "-save"}, io.Discard)
	if err != nil || !saved {
		t.Fatalf("parseFlags: saved=%v err=%v", saved, err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OutputPort != "fb" || cfg.Channel != 1 {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestFlagsRejectBadChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, _, _, err := parseFlags([]string{"-config", path, "-channel", "0"}, io.Discard); err == nil {
		t.Errorf("expected channel 0 to be rejected")
	}
}

func TestPromptPort(t *testing.T) {
	names := []string{"Midi Through", "USB MIDI Interface"}

	in := bufio.NewReader(strings.NewReader("x\n5\n1\n"))
	idx, err := promptPort("output", names, in, io.Discard)
	if err != nil {
		t.Fatalf("promptPort: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}

	if _, err := promptPort("output", names, bufio.NewReader(strings.NewReader("")), io.Discard); err == nil {
		t.Errorf("expected an error when input ends")
	}
	if _, err := promptPort("output", nil, in, io.Discard); err == nil {
		t.Errorf("expected an error with no ports")
	}
}

func TestSelectPortByFragment(t *testing.T) {
	names := []string{"Midi Through:0", "UM-ONE:UM-ONE MIDI 1 20:0", "um-one:extra"}

	tests := []struct {
		fragment string
		want     int
	}{
		{"um-one", 1},
		{"UM-ONE MIDI", 1},
		{"through", 0},
		{"extra", 2},
		{"fb-01", -1},
	}
	for _, tt := range tests {
		if got := matchPort(names, tt.fragment); got != tt.want {
			t.Errorf("matchPort(%q) = %d, want %d", tt.fragment, got, tt.want)
		}
	}

	// A fragment never falls back to the prompt.
	stdin := bufio.NewReader(strings.NewReader("0\n"))
	if _, err := selectPort("output", "fb-01", names, stdin, io.Discard); err == nil {
		t.Errorf("expected an error for an unmatched fragment")
	}
	idx, err := selectPort("output", "", names, stdin, io.Discard)
	if err != nil || idx != 0 {
		t.Errorf("selectPort with no fragment = %d, %v, want the prompted 0", idx, err)
	}
}
