package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFlagsOnly(t *testing.T) {
	cfg, err := Load([]string{"--center-freq=136975000", "--channel=136975000", "--station-id=GS1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CenterFreq != 136975000 || cfg.StationID != "GS1" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Frequency != 136975000 {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
}

func TestLoadYAMLFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vdl2.yaml")
	yamlBody := "station_id: FILE-STATION\ncenter_freq: 136725000\nchannels:\n  - frequency: 136725000\n  - frequency: 136775000\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load([]string{"--config=" + path, "--station-id=OVERRIDE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StationID != "OVERRIDE" {
		t.Fatalf("expected flag override, got %q", cfg.StationID)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("expected channels from file, got %+v", cfg.Channels)
	}
}

func TestLoadCenterFreqDefaultsFromFirstChannel(t *testing.T) {
	cfg, err := Load([]string{"--channel=136975000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CenterFreq != 136975000 {
		t.Fatalf("expected center freq defaulted from channel, got %d", cfg.CenterFreq)
	}
}
