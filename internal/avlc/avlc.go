// Package avlc implements the VDL2 Aviation VHF Link Control layer: DLC
// address decoding, control-field classification, FCS verification, and
// dispatch of I-frame payloads to ACARS or X.25 and U-frame XID payloads
// to the XID parser, per spec.md §4.H.
package avlc

import (
	"errors"

	"github.com/vdl2rx/vdl2rx/internal/crc16"
)

// AddrType is the DLC address type field (3 bits).
type AddrType uint8

const (
	AddrReserved0 AddrType = 0
	AddrAircraft  AddrType = 1
	AddrReserved2 AddrType = 2
	AddrReserved3 AddrType = 3
	AddrGSAdm     AddrType = 4
	AddrGSDel     AddrType = 5
	AddrReserved6 AddrType = 6
	AddrAll       AddrType = 7
)

func (t AddrType) String() string {
	switch t {
	case AddrAircraft:
		return "Aircraft"
	case AddrGSAdm, AddrGSDel:
		return "Ground station"
	case AddrAll:
		return "All stations"
	default:
		return "reserved"
	}
}

// Addr is a decoded 28-bit AVLC DLC address: a 24-bit station address, a
// 3-bit type, and a 1-bit status flag (airborne/on-ground for the source
// address, command/response for the destination).
type Addr struct {
	Value  uint32
	Type   AddrType
	Status uint8
}

func reverseBits(v uint32, n int) uint32 {
	var r uint32
	for i := 0; i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// ParseAddr decodes 4 octets of DLC address field into an Addr. Each
// octet contributes its top 7 bits to a 28-bit value (the low bit of
// every octet but the last is a "more data" continuation marker that
// carries no addressing information once stripped), which is then
// bit-reversed as a whole: the low 24 bits become the station address,
// the next 3 the type, and the top bit the status flag.
func ParseAddr(buf []byte) Addr {
	raw := (uint32(buf[0]) >> 1) | (uint32(buf[1]) << 6) | (uint32(buf[2]) << 13) | (uint32(buf[3]&0xfe) << 20)
	val := reverseBits(raw, 28) & 0x0FFFFFFF
	return Addr{
		Value:  val,
		Type:   AddrType((val >> 24) & 0x7),
		Status: uint8((val >> 27) & 0x1),
	}
}

// FrameKind classifies the HDLC control field.
type FrameKind int

const (
	FrameI FrameKind = iota
	FrameS
	FrameU
)

// SFunc is the supervisory-frame function code.
type SFunc uint8

const (
	SReceiveReady SFunc = iota
	SReceiveNotReady
	SReject
	SSelectiveReject
)

func (f SFunc) String() string {
	switch f {
	case SReceiveReady:
		return "Receive Ready"
	case SReceiveNotReady:
		return "Receive not Ready"
	case SReject:
		return "Reject"
	case SSelectiveReject:
		return "Selective Reject"
	default:
		return "?"
	}
}

// UFunc enumerates the U-frame modifier function codes this decoder
// names; all others are reported numerically.
type UFunc uint8

const (
	UUI   UFunc = 0x00
	UDM   UFunc = 0x03
	UDISC UFunc = 0x10
	UFRMR UFunc = 0x21
	UXID  UFunc = 0x2b
	UTEST UFunc = 0x38
)

func (f UFunc) String() string {
	switch f {
	case UUI:
		return "UI"
	case UDM:
		return "DM"
	case UDISC:
		return "DISC"
	case UFRMR:
		return "FRMR"
	case UXID:
		return "XID"
	case UTEST:
		return "TEST"
	default:
		return "?"
	}
}

// ControlField is the decoded HDLC control octet.
type ControlField struct {
	Kind FrameKind
	PF   uint8 // poll/final bit, valid for all kinds

	// I-frame
	SendSeq, RecvSeq uint8

	// S-frame
	SFunc   SFunc
	SRecvSeq uint8

	// U-frame
	UFunc UFunc
}

// ParseControlField classifies an 8-bit HDLC control octet per the
// standard two-bit type discriminator in the low bits: %01 = S-frame,
// %11 = U-frame, %x0 = I-frame.
func ParseControlField(c uint8) ControlField {
	cf := ControlField{PF: (c >> 4) & 0x1}
	switch {
	case c&0x03 == 0x01:
		cf.Kind = FrameS
		cf.SFunc = SFunc((c >> 2) & 0x3)
		cf.SRecvSeq = (c >> 5) & 0x7
	case c&0x03 == 0x03:
		cf.Kind = FrameU
		cf.UFunc = UFunc((c >> 2) & 0x3B)
	default:
		cf.Kind = FrameI
		cf.SendSeq = (c >> 1) & 0x7
		cf.RecvSeq = (c >> 5) & 0x7
	}
	return cf
}

// Frame is one decoded AVLC frame (address pair, control field, and
// un-dispatched payload).
type Frame struct {
	Dst, Src Addr
	Control  ControlField
	Payload  []byte
}

// MinLen is the shortest possible AVLC frame: two 4-octet addresses, a
// control octet, and a 2-octet FCS.
const MinLen = 4 + 4 + 1 + 2

// ErrTooShort is returned when a frame is shorter than MinLen.
var ErrTooShort = errors.New("avlc: frame shorter than minimum length")

// ErrBadFCS is returned when the trailing FCS does not match.
var ErrBadFCS = errors.New("avlc: FCS check failed")

// Parse decodes one raw (flag-delimited, already unstuffed) AVLC frame:
// verifies its trailing FCS, then splits off the two DLC addresses and
// the control field, leaving Payload as whatever remains.
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < MinLen {
		return nil, ErrTooShort
	}
	body := raw[:len(raw)-2]
	if !crc16.Verify(raw) {
		return nil, ErrBadFCS
	}
	f := &Frame{
		Dst: ParseAddr(body[0:4]),
		Src: ParseAddr(body[4:8]),
	}
	f.Control = ParseControlField(body[8])
	f.Payload = body[9:]
	return f, nil
}
