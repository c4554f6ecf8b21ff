// Package sampleio provides file-based implementations of vdl2.SampleSource:
// raw interleaved-I/Q readers for the 8-bit-unsigned and 16-bit-signed
// formats spec.md §6 names, and a WAV-wrapped reader for captures
// distributed as PCM in a WAV container. SDR device drivers themselves
// stay out of scope (spec.md §1); this package only covers the "file"
// half of "input selection (SDR or file)".
package sampleio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	vdl2 "github.com/vdl2rx/vdl2rx"
)

// ErrOddByteCount is returned when a raw reader's underlying stream ends
// mid-sample (an odd number of I/Q component bytes available).
var ErrOddByteCount = errors.New("sampleio: truncated sample")

// U8 reads offset-binary unsigned 8-bit interleaved I/Q samples, the
// native format of most RTL-SDR dongles, normalizing each component to
// [-1, 1] via (x-127.5)/127.5 per spec.md §6.
type U8 struct {
	r    io.Reader
	rate uint32
	buf  []byte
}

var _ vdl2.SampleSource = (*U8)(nil)

// NewU8 wraps r as a u8 interleaved-I/Q sample source at the given rate.
func NewU8(r io.Reader, sampleRate uint32) *U8 {
	return &U8{r: r, rate: sampleRate}
}

func (s *U8) SampleRate() uint32 { return s.rate }

func (s *U8) Read(buf []complex64) (int, error) {
	need := len(buf) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	raw := s.buf[:need]
	n, err := io.ReadFull(s.r, raw)
	// io.ReadFull on a short final read returns ErrUnexpectedEOF with the
	// partial count in n; round down to whole samples and surface io.EOF
	// once no sample remains, matching the SampleSource.Read contract.
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if n == 0 {
			return 0, err
		}
	}
	nSamples := n / 2
	for i := 0; i < nSamples; i++ {
		re := (float32(raw[2*i]) - 127.5) / 127.5
		im := (float32(raw[2*i+1]) - 127.5) / 127.5
		buf[i] = complex(re, im)
	}
	if nSamples == 0 {
		return 0, io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nSamples, nil
	}
	return nSamples, err
}

// S16 reads little-endian signed 16-bit interleaved I/Q samples, used by
// SoapySDR/SDRplay-class front ends, normalizing each component by
// x/32768 per spec.md §6.
type S16 struct {
	r    io.Reader
	rate uint32
	buf  []byte
}

var _ vdl2.SampleSource = (*S16)(nil)

// NewS16 wraps r as an s16 interleaved-I/Q sample source at the given rate.
func NewS16(r io.Reader, sampleRate uint32) *S16 {
	return &S16{r: r, rate: sampleRate}
}

func (s *S16) SampleRate() uint32 { return s.rate }

func (s *S16) Read(buf []complex64) (int, error) {
	need := len(buf) * 4
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	raw := s.buf[:need]
	n, err := io.ReadFull(s.r, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if n == 0 {
			return 0, err
		}
	}
	nSamples := n / 4
	for i := 0; i < nSamples; i++ {
		re := int16(binary.LittleEndian.Uint16(raw[4*i:]))
		im := int16(binary.LittleEndian.Uint16(raw[4*i+2:]))
		buf[i] = complex(float32(re)/32768, float32(im)/32768)
	}
	if nSamples == 0 {
		return 0, io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nSamples, nil
	}
	return nSamples, err
}

// WAV reads a WAV-wrapped capture whose two PCM channels are the I and Q
// branches of an interleaved-channel recording, via go-audio/wav's
// Decoder. Its declared sample rate (not a caller-supplied oversample
// constant) drives vdl2.SampleSource.SampleRate.
type WAV struct {
	dec  *wav.Decoder
	rate uint32
	bits int
	ibuf *audio.IntBuffer
}

var _ vdl2.SampleSource = (*WAV)(nil)

// ErrNotStereo is returned when the WAV file does not carry exactly two
// channels (I and Q).
var ErrNotStereo = errors.New("sampleio: WAV capture must have exactly 2 channels (I/Q)")

// NewWAV opens a WAV-wrapped I/Q capture. r must support io.ReadSeeker
// because the decoder reads the RIFF/fmt chunk header before any sample
// data.
func NewWAV(r io.ReadSeeker) (*WAV, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("sampleio: not a valid WAV file")
	}
	dec.ReadInfo()
	if dec.NumChans != 2 {
		return nil, ErrNotStereo
	}
	return &WAV{dec: dec, rate: dec.SampleRate, bits: int(dec.BitDepth)}, nil
}

func (w *WAV) SampleRate() uint32 { return w.rate }

func (w *WAV) Read(buf []complex64) (int, error) {
	need := len(buf) * 2
	if w.ibuf == nil || cap(w.ibuf.Data) < need {
		w.ibuf = &audio.IntBuffer{
			Data:           make([]int, need),
			Format:         &audio.Format{NumChannels: 2, SampleRate: int(w.rate)},
			SourceBitDepth: w.bits,
		}
	}
	w.ibuf.Data = w.ibuf.Data[:need]

	n, err := w.dec.PCMBuffer(w.ibuf)
	if err != nil && n == 0 {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	scale := float32(int(1) << (w.bits - 1))
	nSamples := n / 2
	for i := 0; i < nSamples; i++ {
		re := float32(w.ibuf.Data[2*i]) / scale
		im := float32(w.ibuf.Data[2*i+1]) / scale
		buf[i] = complex(re, im)
	}
	return nSamples, nil
}
