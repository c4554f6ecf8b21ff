// Package burst implements the VDL2 physical-layer burst decoder: header
// FEC check and transmission-length recovery, Reed-Solomon block
// deinterleaving and correction, and reassembly into a raw HDLC-unstuffed
// AVLC frame, per spec.md §4.G.
//
// A Decoder is a small state machine mirroring the demodulator's own: it
// tells its caller how many raw bits it needs next (RequestedBits), and
// Step is called once the shared Bitstream holds at least that many.
// This lets one channel goroutine drive both the symbol slicer and the
// burst decoder off the same buffer without copying.
package burst

import (
	"fmt"

	"github.com/vdl2rx/vdl2rx/internal/bitstream"
	"github.com/vdl2rx/vdl2rx/internal/rs"
)

// headerLen is the burst header length in bits: 3 reserved bits, a
// 17-bit transmission-length field, and a 5-bit FEC checksum.
const (
	reservedBits = 3
	trLen        = 17
	crcLen       = 5
	headerLen    = reservedBits + trLen + crcLen
)

// maxFrameLength rejects payloads claiming to be longer than this many
// bits: in practice a length this large only ever comes from a corrupted
// header, and accepting it would park the decoder in StateData reading
// noise for a long time while real bursts go by unnoticed.
const maxFrameLength = 32768

// h is the burst header's (25,20) parity-check matrix: row i of h picks
// the header bits that must have even parity with crc check-bit i.
var h = [crcLen]uint32{0x00FFF, 0x3F0FF, 0xC730F, 0xDB533, 0x69E55}

func parity(v uint32) uint32 {
	var p uint32
	for v != 0 {
		p ^= 1
		v &= v - 1
	}
	return p
}

func checkCRC(v, check uint32) bool {
	var r uint32
	for i := 0; i < crcLen; i++ {
		r |= parity(v&h[i]) << uint(crcLen-1-i)
	}
	return r == check
}

// reverseBits reverses the low n bits of v.
func reverseBits(v uint32, n int) uint32 {
	var r uint32
	for i := 0; i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// State is the burst decoder's coarse state.
type State int

const (
	StateHeader State = iota
	StateData
)

// Result is a fully decoded and FEC-corrected raw AVLC frame.
type Result struct {
	Frame           []byte
	BlocksTotal     int
	BlocksCorrected int
}

// ErrTooLong is returned when the header's transmission length exceeds
// maxFrameLength.
var ErrTooLong = fmt.Errorf("burst: frame length exceeds maximum")

// ErrHeaderCRC is returned when the header fails its FEC check.
var ErrHeaderCRC = fmt.Errorf("burst: header FEC check failed")

// ErrNoFEC is returned when the computed FEC octet count is zero,
// meaning the claimed frame is implausibly short.
var ErrNoFEC = fmt.Errorf("burst: computed fec_octets is 0")

// ErrDeinterleave wraps a block layout failure from the RS deinterleaver.
var ErrDeinterleave = fmt.Errorf("burst: deinterleave failed")

// ErrBlockUncorrectable is returned when an RS block could not be
// corrected.
var ErrBlockUncorrectable = fmt.Errorf("burst: RS block uncorrectable")

// ErrTruncatedOctets is returned when the unstuffed data does not end on
// a byte boundary.
var ErrTruncatedOctets = fmt.Errorf("burst: unstuffed bit stream is not byte-aligned")

// Decoder drives one burst through header recovery and data
// reconstruction. It is reused across bursts via Reset.
type Decoder struct {
	state State
	lfsr  uint16

	datalenBits        int
	datalenOctets      int
	numBlocks          int
	fecOctets          int
	lastBlockLenOctets int
}

// NewDecoder returns a Decoder ready to read a burst header.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset returns the decoder to StateHeader, ready for the next burst.
func (d *Decoder) Reset() {
	d.state = StateHeader
	d.lfsr = bitstream.DefaultDescrambleSeed()
}

// RequestedBits reports how many bits the caller must ensure are
// available in the shared Bitstream before calling Step.
func (d *Decoder) RequestedBits() int {
	switch d.state {
	case StateHeader:
		return headerLen
	default:
		return 8 * (d.datalenOctets + d.fecOctets)
	}
}

// Step advances the decoder by one phase. done is true once either a
// Result has been produced or an unrecoverable error has occurred; in
// either case the caller must call Reset before decoding the next burst.
func (d *Decoder) Step(bits *bitstream.Bitstream) (result *Result, done bool, err error) {
	switch d.state {
	case StateHeader:
		return nil, false, d.stepHeader(bits)
	case StateData:
		res, err := d.stepData(bits)
		return res, true, err
	}
	return nil, true, fmt.Errorf("burst: invalid decoder state")
}

func (d *Decoder) stepHeader(bits *bitstream.Bitstream) error {
	d.lfsr = bits.Descramble(d.lfsr)
	word, err := bits.ReadWordMSBFirst(headerLen)
	if err != nil {
		return err
	}
	crc := uint32(word) & ((1 << crcLen) - 1)
	header := uint32(word) >> crcLen
	if !checkCRC(header, crc) {
		return ErrHeaderCRC
	}
	lenField := header & ((1 << trLen) - 1)
	d.datalenBits = int(reverseBits(lenField, trLen))
	if d.datalenBits > maxFrameLength {
		return ErrTooLong
	}

	d.datalenOctets = d.datalenBits / 8
	if d.datalenBits%8 != 0 {
		d.datalenOctets++
	}
	d.numBlocks = d.datalenOctets / rs.K
	d.fecOctets = d.numBlocks * rs.NumRoots
	d.lastBlockLenOctets = d.datalenOctets % rs.K
	if d.lastBlockLenOctets != 0 {
		d.numBlocks++
	}
	d.fecOctets += rs.FECOctetCount(d.lastBlockLenOctets)
	if d.fecOctets == 0 {
		return ErrNoFEC
	}

	d.state = StateData
	return nil
}

func (d *Decoder) stepData(bits *bitstream.Bitstream) (*Result, error) {
	d.lfsr = bits.Descramble(d.lfsr)

	data, err := bits.ReadLSBFirst(d.datalenOctets, 8)
	if err != nil {
		return nil, err
	}
	fec, err := bits.ReadLSBFirst(d.fecOctets, 8)
	if err != nil {
		return nil, err
	}

	rsTab := make([][rs.N]byte, d.numBlocks)
	if err := deinterleave(data, d.numBlocks, rs.N, rs.K, 0, rsTab); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrDeinterleave, err)
	}

	// A zero-length tail means the last block is a full one, with a full
	// set of FEC octets.
	lastFEC := rs.NumRoots
	if d.lastBlockLenOctets != 0 {
		lastFEC = rs.FECOctetCount(d.lastBlockLenOctets)
	}
	fecRows := d.numBlocks
	if lastFEC == 0 {
		fecRows--
	}
	if err := deinterleave(fec, fecRows, rs.N, rs.NumRoots, rs.K, rsTab); err != nil {
		return nil, fmt.Errorf("%w: fec: %v", ErrDeinterleave, err)
	}

	out := bitstream.New(8 * (d.datalenOctets + d.fecOctets))
	corrected := 0
	for r := 0; r < d.numBlocks; r++ {
		fecOctets := rs.NumRoots
		if r == d.numBlocks-1 {
			fecOctets = lastFEC
		}
		n, err := rs.Verify(&rsTab[r], fecOctets)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrBlockUncorrectable, r, err)
		}
		corrected += n

		rowLen := rs.K
		if r == d.numBlocks-1 {
			rowLen = d.lastBlockLenOctets
			if rowLen == 0 {
				rowLen = rs.K
			}
		}
		if err := out.AppendLSBFirst(rsTab[r][:], rowLen, 8); err != nil {
			return nil, err
		}
	}

	// bitstream_append_lsbfirst operates on whole bytes, but datalen is
	// usually not a multiple of 8 due to bit stuffing: trim the padding
	// bits added by the last octet off the end.
	if d.datalenBits < out.Len() {
		out.Truncate(d.datalenBits)
	}
	if err := out.HDLCUnstuff(); err != nil {
		return nil, err
	}
	if out.Len()%8 != 0 {
		return nil, ErrTruncatedOctets
	}

	frameOctets := out.Len() / 8
	frame, err := out.ReadLSBFirst(frameOctets, 8)
	if err != nil {
		return nil, err
	}

	return &Result{Frame: frame, BlocksTotal: d.numBlocks, BlocksCorrected: corrected}, nil
}

// deinterleave scatters length octets of in into out (rows x cols, only
// the fillwidth columns starting at offset are used), column-major, per
// spec.md §4.G's RS block layout. It is a direct port of the original
// decoder's striping algorithm: rows fill top-to-bottom within a column
// before moving to the next column, and a short final row is zero-padded
// to fillwidth.
func deinterleave(in []byte, rows, cols, fillwidth, offset int, out [][rs.N]byte) error {
	length := len(in)
	if rows == 0 || cols == 0 || fillwidth == 0 {
		return fmt.Errorf("burst: deinterleave: zero rows/cols/fillwidth")
	}
	lastRowLen := length % fillwidth
	if lastRowLen == 0 {
		lastRowLen = fillwidth
	}
	if fillwidth+offset > cols {
		return fmt.Errorf("burst: deinterleave: fillwidth+offset > cols")
	}
	if length > rows*fillwidth {
		return fmt.Errorf("burst: deinterleave: result won't fit")
	}
	if rows > 1 && length-lastRowLen < (rows-1)*fillwidth {
		return fmt.Errorf("burst: deinterleave: not enough data to fill width")
	}
	if lastRowLen == 0 && length/fillwidth < rows {
		return fmt.Errorf("burst: deinterleave: not enough data to fill rows")
	}

	row, col := 0, offset
	lastRowLen += offset
	for i := 0; i < length; i++ {
		if row == rows-1 && col >= lastRowLen {
			out[row][col] = 0x00
			row = 0
			col++
		}
		out[row][col] = in[i]
		row++
		if row == rows {
			row = 0
			col++
		}
	}
	return nil
}
