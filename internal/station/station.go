// Package station implements the multi-channel sample-dispatch runtime
// that ties the whole receive pipeline together, per spec.md §4.Q/§4.R:
// one producer goroutine reads raw samples from a vdl2.SampleSource, N
// per-channel goroutines downmix/decimate/demodulate/burst-decode their
// slice of spectrum, a single AVLC decoder goroutine turns each completed
// burst into a vdl2.ProtoTree, and M output goroutines fan the tree out
// to one or more vdl2.Formatter sinks.
//
// Each stage is a goroutine stopped by context.Context cancellation, and
// the producer/channel handoff is a Go channel pair standing in for the
// original decoder's POSIX two-sided barrier: a "filled" signal lets
// workers start consuming the shared buffer, a "consumed" signal lets
// the producer refill it, so the buffer is never read and written at
// once without the cost of copying it per channel.
package station

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	vdl2 "github.com/vdl2rx/vdl2rx"
	"github.com/vdl2rx/vdl2rx/internal/avlc"
	"github.com/vdl2rx/vdl2rx/internal/bitstream"
	"github.com/vdl2rx/vdl2rx/internal/burst"
	"github.com/vdl2rx/vdl2rx/internal/demod"
	"github.com/vdl2rx/vdl2rx/internal/dsp"
	"github.com/vdl2rx/vdl2rx/internal/reassembly"
	"github.com/vdl2rx/vdl2rx/internal/x25"
)

// sbufLen is the number of samples the producer reads per round. Larger
// rounds amortize the barrier handoff at the cost of latency; this is
// the same order of magnitude as the original decoder's default SDR
// read-buffer size.
const sbufLen = 8192

// maxBitsBuffered is the capacity, in bits, of each channel's Bitstream.
// Bits are appended only while the demodulator is in StateSync, and the
// buffer is reset after every decoded or rejected burst; bits that would
// overflow it are dropped.
const maxBitsBuffered = 1 << 20

// decodeQueueDepth is the AVLC decoder goroutine's input buffer size;
// spec.md §4.Q calls this the MPSC queue between the demod/burst threads
// and the single decoder thread.
const decodeQueueDepth = 64

// outputQueueDepth is each output goroutine's buffer size.
const outputQueueDepth = 64

// x25ReasmCleanupInterval is how often (in fragments processed) the X.25
// reassembly table sweeps for expired entries, per spec.md §4.P. The
// original decoder's choice of interval is not load-bearing for
// correctness, only for how promptly stale entries are reclaimed.
const x25ReasmCleanupInterval = 64

// x25ReasmTimeout bounds how long an in-progress X.25 segmentation may sit
// incomplete before a later fragment for the same virtual circuit is
// treated as the start of a new PDU rather than a continuation.
const x25ReasmTimeout = 30 * time.Second

// x25Key identifies one segmented-PDU session for the reassembly table:
// spec.md §4.K says to key "on (channel, compressed-CLNP-PDU-identifier
// when present, else sequence number)". This repo doesn't peek into the
// fragment bytes to extract a compressed-CLNP locref before reassembly
// has even run (that would require partially parsing payloads that may
// not even be CLNP), so it uses the stabler, always-available handle for
// "else sequence number": the X.25 virtual circuit a segmented PDU's
// fragments all share, which does not change between a VC's fragments the
// way a raw packet sequence number does.
type x25Key struct {
	channel   int
	chanGroup uint8
	chanNum   uint8
}

// Stats are process-wide atomic counters, safe to read concurrently with
// the goroutines that update them.
type Stats struct {
	SamplesRead          atomic.Int64
	BurstsAttempted      atomic.Int64
	BurstsDecoded        atomic.Int64
	BurstsFailed         atomic.Int64
	FramesDispatchFailed atomic.Int64
}

// rawBurst is a fully FEC-corrected, HDLC-unstuffed AVLC frame plus the
// per-burst metadata gathered at demod/burst time, handed off to the
// single AVLC decoder goroutine.
type rawBurst struct {
	channel *Channel
	result  *burst.Result
	arrival time.Time
	freqErr float64
	signal  float64
	noise   float64
}

// Channel is one tuned VDL2 channel's static configuration and its
// private per-sample processing state. A Channel is only ever touched by
// its own goroutine once the Station is running.
type Channel struct {
	Index     int
	Frequency uint32 // Hz

	mixer *dsp.Downmixer
	dec   *dsp.Decimator
	bits  *bitstream.Bitstream
	dm    *demod.Demodulator
	bd    *burst.Decoder

	filled   chan int
	consumed chan struct{}
}

// newChannel builds one channel's processing state. centerFreq and
// inputRate describe the shared front end; channelFreq is this
// channel's tuned frequency, and decimFactor is inputRate's ratio to the
// post-decimation rate the demodulator runs at.
func newChannel(idx int, channelFreq, centerFreq uint32, inputRate uint32, decimFactor int) *Channel {
	bits := bitstream.New(maxBitsBuffered)
	ch := &Channel{
		Index:     idx,
		Frequency: channelFreq,
		mixer:     dsp.NewDownmixer(int64(centerFreq), int64(channelFreq), float64(inputRate)),
		dec:       dsp.NewDecimator(decimFactor, float64(inputRate)),
		bits:      bits,
		bd:        burst.NewDecoder(),
		filled:    make(chan int, 1),
		consumed:  make(chan struct{}, 1),
	}
	ch.dm = demod.New(bits, float64(channelFreq))
	return ch
}

// Options configures a Station.
type Options struct {
	StationID  string
	CenterFreq uint32
	Channels   []uint32 // tuned channel frequencies, Hz
	InputRate  uint32   // front-end sample rate, Hz; 0 takes Source.SampleRate()

	// DecimationFactor is the front-end-to-post-decimation-rate ratio
	// (InputRate / (demod.SymbolRate*demod.SPS)). The caller computes
	// this since it depends on the SDR/file's declared rate.
	DecimationFactor int
}

// Station owns the whole per-process receive pipeline: the sample
// source, every tuned channel, the AVLC decode stage, and the output
// fanout.
type Station struct {
	opts   Options
	log    *slog.Logger
	source vdl2.SampleSource

	channels []*Channel
	decodeQ  chan rawBurst

	// sbuf is the current round's shared sample buffer. It is only ever
	// written by runProducer, and only ever read by a channel goroutine
	// between that channel's filled<- receive and its matching
	// consumed<- send — those two channels are the synchronization, so
	// no mutex guards sbuf itself.
	sbuf []complex64

	outputs  []vdl2.Formatter
	outputQs []chan *vdl2.ProtoTree

	// reasm and x25Offsets are only ever touched from runDecoder, the
	// single AVLC-decode goroutine, so they need no locking (spec.md
	// §5's "per-channel state... never touched by others" ownership
	// rule applies equally to this decoder-thread-owned state).
	reasm      *reassembly.Table[x25Key]
	x25Offsets map[x25Key]int

	Stats Stats
}

// New builds a Station from opts, wired to read samples from source and
// format decoded trees through each of outputs.
func New(opts Options, source vdl2.SampleSource, outputs []vdl2.Formatter, log *slog.Logger) *Station {
	if log == nil {
		log = slog.Default()
	}
	inputRate := opts.InputRate
	if inputRate == 0 {
		inputRate = source.SampleRate()
	}
	factor := opts.DecimationFactor
	if factor <= 0 {
		factor = 1
	}

	s := &Station{
		opts:       opts,
		log:        log.With("component", "station", "station_id", opts.StationID),
		source:     source,
		decodeQ:    make(chan rawBurst, decodeQueueDepth),
		outputs:    outputs,
		reasm:      reassembly.NewTable[x25Key](x25ReasmCleanupInterval),
		x25Offsets: make(map[x25Key]int),
	}
	for i, freq := range opts.Channels {
		s.channels = append(s.channels, newChannel(i, freq, opts.CenterFreq, inputRate, factor))
	}
	s.outputQs = make([]chan *vdl2.ProtoTree, len(outputs))
	for i := range outputs {
		s.outputQs[i] = make(chan *vdl2.ProtoTree, outputQueueDepth)
	}
	return s
}

// Run starts the producer, every channel goroutine, the AVLC decoder,
// and every output goroutine. It blocks until ctx is cancelled, or the
// sample source is exhausted and the whole pipeline has drained: the
// producer/channel stage shutting down closes decodeQ, which lets the
// decoder finish every already-queued burst before it exits, and the
// decoder exiting closes every output queue the same way. This lets a
// finite capture file run to completion with no output dropped, while a
// live source only ever stops via ctx cancellation.
func (s *Station) Run(ctx context.Context) error {
	inG, inCtx := errgroup.WithContext(ctx)
	for _, ch := range s.channels {
		ch := ch
		inG.Go(func() error { return s.runChannel(inCtx, ch) })
	}
	inG.Go(func() error { return s.runProducer(inCtx) })

	decDone := make(chan error, 1)
	go func() { decDone <- s.runDecoder(ctx) }()

	outG, outCtx := errgroup.WithContext(ctx)
	for i, out := range s.outputs {
		i, out := i, out
		outG.Go(func() error { return s.runOutput(outCtx, out, s.outputQs[i]) })
	}

	err := inG.Wait()
	close(s.decodeQ)
	if derr := <-decDone; err == nil && derr != nil {
		err = derr
	}
	for _, q := range s.outputQs {
		close(q)
	}
	if oerr := outG.Wait(); err == nil && oerr != nil {
		err = oerr
	}
	return err
}

// runProducer is the sample-source reader: it fills the shared buffer,
// signals every channel goroutine (barrier phase one), then waits for
// every channel to finish consuming it (barrier phase two) before
// reading the next round.
func (s *Station) runProducer(ctx context.Context) error {
	buf := make([]complex64, sbufLen)
	log := s.log.With("goroutine", "producer")
	defer func() {
		for _, ch := range s.channels {
			close(ch.filled)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.source.Read(buf)
		if n > 0 {
			s.Stats.SamplesRead.Add(int64(n))
			s.sbuf = buf[:n]
			for _, ch := range s.channels {
				ch.filled <- n
			}
			for _, ch := range s.channels {
				select {
				case <-ch.consumed:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err != nil {
			log.Info("sample source exhausted", "error", err)
			return nil
		}
	}
}

// runChannel drives one tuned channel: downmix, decimate, feed the
// demodulator one post-decimation sample at a time, and advance the
// burst decoder whenever enough bits have accumulated.
func (s *Station) runChannel(ctx context.Context, ch *Channel) error {
	log := s.log.With("goroutine", "channel", "channel", ch.Index, "freq_hz", ch.Frequency)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-ch.filled:
			if !ok {
				return nil
			}
			buf := s.sbuf[:n]
			for _, samp := range buf {
				mre, mim := ch.mixer.Mix(float64(real(samp)), float64(imag(samp)))
				ore, oim, ok := ch.dec.Push(mre, mim)
				if !ok {
					continue
				}
				s.stepChannel(ch, complex(ore, oim), log)
			}
			ch.consumed <- struct{}{}
		}
	}
}

// stepChannel feeds one post-decimation sample to the demodulator and,
// once enough bits have accumulated, advances the burst decoder.
func (s *Station) stepChannel(ch *Channel, sample complex128, log *slog.Logger) {
	if !ch.dm.Push(sample) {
		return
	}
	for ch.bits.Len() >= ch.bd.RequestedBits() {
		s.Stats.BurstsAttempted.Add(1)
		res, done, err := ch.bd.Step(ch.bits)
		if err != nil {
			log.Debug("burst decode failed", "error", err)
			s.Stats.BurstsFailed.Add(1)
			ch.bd.Reset()
			ch.dm.Reset()
			ch.bits.Reset()
			continue
		}
		if !done {
			continue
		}
		s.Stats.BurstsDecoded.Add(1)
		rb := rawBurst{
			channel: ch,
			result:  res,
			arrival: time.Now(),
			freqErr: ch.dm.PPMError(),
			signal:  ch.dm.SignalPower(),
			noise:   ch.dm.NoiseFloorPower(),
		}
		ch.bd.Reset()
		ch.dm.Reset()
		ch.bits.Reset()
		select {
		case s.decodeQ <- rb:
		default:
			log.Warn("decode queue full, dropping burst")
		}
	}
}

// runDecoder is the single AVLC decoder goroutine: it pops completed
// bursts off decodeQ, runs the whole upper-layer dispatch chain, builds
// a vdl2.ProtoTree, and fans it out to every output queue.
func (s *Station) runDecoder(ctx context.Context) error {
	log := s.log.With("goroutine", "decoder")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rb, ok := <-s.decodeQ:
			if !ok {
				return nil
			}
			tree := s.decodeBurst(rb)
			for i, q := range s.outputQs {
				select {
				case q <- tree:
				default:
					log.Warn("output queue full, dropping tree", "output", i)
					s.Stats.FramesDispatchFailed.Add(1)
				}
			}
		}
	}
}

func (s *Station) decodeBurst(rb rawBurst) *vdl2.ProtoTree {
	meta := vdl2.Metadata{
		StationID:      s.opts.StationID,
		Timestamp:      rb.arrival,
		Frequency:      rb.channel.Frequency,
		FramePowerDBFS: powerToDBFS(rb.signal),
		NoiseFloorDBFS: powerToDBFS(rb.noise),
		PPMError:       rb.freqErr,
		BurstLenOctets: len(rb.result.Frame),
		FECCorrections: rb.result.BlocksCorrected,
		ChannelIndex:   rb.channel.Index,
	}
	tree := &vdl2.ProtoTree{Meta: meta}

	decoded, err := avlc.Decode(rb.result.Frame)
	if err != nil {
		tree.Root = vdl2.Unparseable("avlc", rb.result.Frame, err)
		return tree
	}
	if decoded.X25 != nil && decoded.X25.Type == x25.TypeData {
		s.resolveX25Fragment(rb.channel.Index, decoded, rb.arrival)
	}
	tree.Root = buildTree(decoded)
	return tree
}

// resolveX25Fragment runs an X.25 DATA packet's payload through the
// per-channel reassembly table and, once a complete SN-PDU is available
// (immediately for an unsegmented packet, or after the final fragment of
// a segmented one), dispatches its network layer onto decoded. Runs only
// on runDecoder's goroutine, so the table and offset map need no locking.
func (s *Station) resolveX25Fragment(chIdx int, decoded *avlc.Decoded, arrival time.Time) {
	pkt := decoded.X25
	key := x25Key{channel: chIdx, chanGroup: pkt.ChanGroup, chanNum: pkt.ChanNum}
	fragLen := len(pkt.UserData)
	if fragLen == 0 {
		return
	}
	offset := s.x25Offsets[key]
	final := !pkt.More

	totalLen := offset + fragLen
	if !final {
		// The real total isn't known until the fragment with More=false
		// arrives (spec.md §4.K); pass a placeholder large enough that
		// it can never equal this call's offset+fragLen, so the
		// final-flag/endsAtTotal cross-check in internal/reassembly
		// correctly reads this as "not the last fragment".
		totalLen = offset + fragLen + 1
	}

	switch status := s.reasm.Add(key, pkt.UserData, offset, totalLen, final, arrival, x25ReasmTimeout); status {
	case reassembly.StatusSkipped:
		delete(s.x25Offsets, key)
		s.dispatchReassembledSNPDU(decoded, pkt.UserData)
	case reassembly.StatusInProgress:
		s.x25Offsets[key] = offset + fragLen
	case reassembly.StatusComplete:
		delete(s.x25Offsets, key)
		if payload, ok := s.reasm.PayloadGet(key); ok {
			// PayloadGet appends one trailing convenience NUL (spec.md
			// §4.P); strip it before treating byte 0 as the SN-protocol
			// id and the rest as that protocol's payload.
			s.dispatchReassembledSNPDU(decoded, payload[:len(payload)-1])
		}
	default:
		delete(s.x25Offsets, key)
		decoded.DispatchErr = fmt.Errorf("x25 reassembly: %s", status)
	}
}

// dispatchReassembledSNPDU hands a complete SN-PDU to the same
// network-layer dispatch avlc.Decode uses for CALL_REQUEST/CALL_ACCEPTED,
// via a synthetic x25.Packet carrying just the fields DispatchNetworkLayer
// reads. Like x25.Parse's own UserData, payload keeps its leading octet:
// that octet is both the SN-protocol-id discriminator used to pick a
// decoder and (for CLNP/ES-IS/IDRP alike) the wire protocol's own leading
// NLPID/PID octet, so the next layer's parser expects to see it too.
func (s *Station) dispatchReassembledSNPDU(decoded *avlc.Decoded, payload []byte) {
	if len(payload) == 0 {
		return
	}
	decoded.DispatchNetworkLayer(&x25.Packet{SNProto: payload[0], HasSNProto: true, UserData: payload})
}

func powerToDBFS(p float64) float64 {
	if p <= 0 {
		return -999
	}
	return 10 * math.Log10(p)
}

// runOutput drains one output's queue and formats every tree. A
// Formatter only turns a tree into bytes; where those bytes end up
// (stdout, a file, a socket) is the Formatter implementation's concern,
// not the Station's.
func (s *Station) runOutput(ctx context.Context, f vdl2.Formatter, q chan *vdl2.ProtoTree) error {
	log := s.log.With("goroutine", "output")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tree, ok := <-q:
			if !ok {
				return nil
			}
			if _, err := f.Format(tree); err != nil {
				log.Warn("format failed", "error", err)
			}
		}
	}
}
