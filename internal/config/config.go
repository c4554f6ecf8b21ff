// Package config implements the CLI/file configuration layer sketched in
// spec.md §6: channel list, sync thresholds, and RS/HDLC tunables loaded
// from an optional YAML file and overridable by pflag CLI flags, grounded
// on doismellburning-samoyed's cmd/direwolf (pflag.StringP/pflag.Parse)
// and its tocalls.yaml-style yaml.v3 loading (src/deviceid.go).
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Channel is one tuned VDL2 channel: its frequency and an optional label
// used in log lines and output metadata.
type Channel struct {
	Frequency uint32 `yaml:"frequency"`
	Label     string `yaml:"label,omitempty"`
}

// Tunables holds the sync/FEC/HDLC thresholds spec.md leaves as constants
// but a deployment may want to adjust per receiver (antenna gain,
// SDR noise floor): the parabola-fit sync threshold and the RS erasure
// cap are the two a field operator most commonly touches. Load reads them
// from the YAML file only (no CLI flag overrides them), and no other
// package reads them, so they do not change the receiver's behaviour.
type Tunables struct {
	SyncThreshold  float64 `yaml:"sync_threshold,omitempty"`
	MaxFECErasures int     `yaml:"max_fec_erasures,omitempty"`
}

// File is the on-disk YAML config shape: channel list plus tunables.
type File struct {
	StationID  string    `yaml:"station_id,omitempty"`
	CenterFreq uint32    `yaml:"center_freq"`
	Channels   []Channel `yaml:"channels"`
	Tunables   Tunables  `yaml:"tunables,omitempty"`
}

// Config is the fully resolved configuration: the YAML file's contents
// layered under CLI flag overrides, plus input/output selection that only
// ever comes from flags.
type Config struct {
	File

	Input        string // "file" or "wav"
	InputPath    string
	InputFormat  string // "u8" or "s16", ignored for wav
	SampleRate   uint32
	Verbose      bool
	UTC          bool
	Milliseconds bool
}

// Load reads an optional YAML config file (if path is non-empty) and
// layers pflag-parsed CLI flags on top, per spec.md §6's sketched CLI
// surface (input selection, center/channel frequencies, verbosity,
// utc/milliseconds timestamp flags). args excludes the program name
// (matches flag.Args()/pflag.Args() convention).
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("vdl2dump", pflag.ContinueOnError)

	configPath := fs.StringP("config", "c", "", "path to YAML config file")
	stationID := fs.String("station-id", "", "station identifier reported in message metadata")
	centerFreq := fs.Uint32("center-freq", 0, "tuner center frequency, Hz")
	channelFreqs := fs.StringSlice("channel", nil, "channel frequency, Hz (repeatable)")
	input := fs.String("input", "file", "sample source: file or wav")
	inputPath := fs.String("input-path", "", "path to the sample file")
	inputFormat := fs.String("format", "u8", "raw sample format: u8 or s16 (ignored for wav)")
	sampleRate := fs.Uint32("sample-rate", 0, "raw sample rate, Hz (ignored for wav, which declares its own)")
	verbose := fs.BoolP("verbose", "v", false, "verbose logging")
	utc := fs.Bool("utc", false, "report timestamps in UTC")
	millis := fs.Bool("milliseconds", false, "report timestamps with millisecond precision")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Input:        *input,
		InputPath:    *inputPath,
		InputFormat:  *inputFormat,
		SampleRate:   *sampleRate,
		Verbose:      *verbose,
		UTC:          *utc,
		Milliseconds: *millis,
	}

	if *configPath != "" {
		f, err := loadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.File = *f
	}

	if *stationID != "" {
		cfg.StationID = *stationID
	}
	if *centerFreq != 0 {
		cfg.CenterFreq = *centerFreq
	}
	for _, s := range *channelFreqs {
		var hz uint32
		if _, err := fmt.Sscanf(s, "%d", &hz); err != nil {
			return nil, fmt.Errorf("config: invalid --channel value %q: %w", s, err)
		}
		cfg.Channels = append(cfg.Channels, Channel{Frequency: hz})
	}

	if cfg.CenterFreq == 0 && len(cfg.Channels) > 0 {
		cfg.CenterFreq = cfg.Channels[0].Frequency
	}
	return cfg, nil
}

func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}
