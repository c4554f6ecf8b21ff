// Command vdl2dump is the VDL Mode 2 ground receiver CLI: it wires a
// file-based sample source through the multi-channel station runtime and
// prints decoded bursts as text, per spec.md §1's scope ("a single
// VDL Mode 2 receive-and-decode pipeline ... up to the point of emitting
// structured per-message records").
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	vdl2 "github.com/vdl2rx/vdl2rx"
	"github.com/vdl2rx/vdl2rx/internal/config"
	"github.com/vdl2rx/vdl2rx/internal/demod"
	"github.com/vdl2rx/vdl2rx/internal/sampleio"
	"github.com/vdl2rx/vdl2rx/internal/station"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vdl2dump:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	source, closer, err := openSource(cfg)
	if err != nil {
		slog.Error("failed to open sample source", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	channels := make([]uint32, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		channels = append(channels, ch.Frequency)
	}
	if len(channels) == 0 {
		slog.Error("no channels configured; pass at least one --channel")
		os.Exit(2)
	}

	inputRate := source.SampleRate()
	decim := int(inputRate) / (demod.SymbolRate * demod.SPS)
	if decim <= 0 {
		decim = 1
	}

	opts := station.Options{
		StationID:        cfg.StationID,
		CenterFreq:       cfg.CenterFreq,
		Channels:         channels,
		InputRate:        inputRate,
		DecimationFactor: decim,
	}

	out := &stdoutSink{f: vdl2.TextFormatter{}, w: os.Stdout}
	s := station.New(opts, source, []vdl2.Formatter{out}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	slog.Info("vdl2dump starting",
		"version", version,
		"station_id", cfg.StationID,
		"center_freq", cfg.CenterFreq,
		"channels", channels,
		"input_rate", inputRate,
		"decimation", decim,
	)

	startedAt := time.Now()
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("station run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("vdl2dump exiting",
		"runtime", time.Since(startedAt).Round(time.Second),
		"samples_read", s.Stats.SamplesRead.Load(),
		"bursts_decoded", s.Stats.BurstsDecoded.Load(),
		"bursts_failed", s.Stats.BurstsFailed.Load(),
	)
}

// openSource builds the configured vdl2.SampleSource: a raw u8/s16
// interleaved-I/Q file reader, or a WAV-wrapped capture. It also returns
// the underlying file so the caller can close it on exit; the
// SampleSource implementations themselves only hold an io.Reader.
func openSource(cfg *config.Config) (vdl2.SampleSource, io.Closer, error) {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Input == "wav" {
		w, err := sampleio.NewWAV(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return w, f, nil
	}

	switch cfg.InputFormat {
	case "s16":
		return sampleio.NewS16(f, cfg.SampleRate), f, nil
	default:
		return sampleio.NewU8(f, cfg.SampleRate), f, nil
	}
}

// stdoutSink adapts a vdl2.Formatter to also own where its bytes go,
// since vdl2.Formatter itself only turns a tree into bytes.
type stdoutSink struct {
	f vdl2.Formatter
	w *os.File
}

func (s *stdoutSink) Format(tree *vdl2.ProtoTree) ([]byte, error) {
	b, err := s.f.Format(tree)
	if err != nil {
		return nil, err
	}
	if _, werr := s.w.Write(b); werr != nil {
		return b, werr
	}
	return b, nil
}
