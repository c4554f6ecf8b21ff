// Package x25 implements the X.25 packet-layer decoder carried inside
// AVLC I-frames that are not ACARS: GFI/LCN header, packet-type
// classification, the CALL-packet address/facilities/SNDCF block, and
// dispatch of DATA-packet payloads to the upper network layer by SN
// protocol id, per spec.md §4.K.
package x25

import (
	"errors"

	"github.com/vdl2rx/vdl2rx/internal/tlv"
)

// MinLen is the shortest possible X.25 packet: 2-byte header + 1 type
// octet.
const MinLen = 3

// SN protocol ids carried in the first octet of a DATA packet's payload,
// selecting the upper network-layer decoder.
const (
	SNProtoCLNPInitCompressed = 0x01
	SNProtoCLNP               = 0x81
	SNProtoESIS               = 0x82
	SNProtoIDRP               = 0x85
)

// sndcfID / sndcfVersion identify the SNDCF block on CALL_REQUEST
// packets.
const (
	sndcfID      = 0xC1
	sndcfVersion = 1
	minSNDCFLen  = 4
)

// PacketType enumerates the X.25 packet types relevant to VDL2 (ICAO Doc
// 9776 §6.3.4 excludes INTERRUPT, INTERRUPT_CONFIRM, and RNR).
type PacketType uint8

const (
	TypeData          PacketType = 0x00
	TypeRR            PacketType = 0x01
	TypeREJ           PacketType = 0x09
	TypeCallRequest   PacketType = 0x0B
	TypeCallAccepted  PacketType = 0x0F
	TypeClearRequest  PacketType = 0x13
	TypeClearConfirm  PacketType = 0x17
	TypeResetRequest  PacketType = 0x1B
	TypeResetConfirm  PacketType = 0x1F
	TypeRestartReq    PacketType = 0xFB
	TypeRestartCfm    PacketType = 0xFF
	TypeDiag          PacketType = 0xF1
	typeUnknown       PacketType = 0xFE
)

func (t PacketType) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeRR:
		return "RR"
	case TypeREJ:
		return "REJ"
	case TypeCallRequest:
		return "CALL_REQUEST"
	case TypeCallAccepted:
		return "CALL_ACCEPTED"
	case TypeClearRequest:
		return "CLEAR_REQUEST"
	case TypeClearConfirm:
		return "CLEAR_CONFIRM"
	case TypeResetRequest:
		return "RESET_REQUEST"
	case TypeResetConfirm:
		return "RESET_CONFIRM"
	case TypeRestartReq:
		return "RESTART_REQUEST"
	case TypeRestartCfm:
		return "RESTART_CONFIRM"
	case TypeDiag:
		return "DIAG"
	default:
		return "unknown"
	}
}

// Addr is a decoded X.25 nibble-packed decimal address.
type Addr struct {
	Digits string
}

// Packet is one decoded X.25 packet.
type Packet struct {
	GFI       uint8
	ChanGroup uint8
	ChanNum   uint8
	Type      PacketType

	// S-frame (RR/REJ)
	RecvSeq uint8

	// DATA
	SendSeq  uint8
	More     bool

	// CALL_REQUEST / CALL_ACCEPTED
	Calling, Called Addr
	Facilities      []tlv.Param
	SNDCFCompression uint8
	HasSNDCF         bool

	// SN-protocol-dispatched user data
	SNProto    uint8
	HasSNProto bool
	UserData   []byte
}

// ErrTooShort is returned for a buffer shorter than MinLen.
var ErrTooShort = errors.New("x25: packet too short")

// ErrNotMod8 is returned when the GFI does not carry the modulo-8
// sequencing bit VDL2 requires.
var ErrNotMod8 = errors.New("x25: GFI is not modulo-8")

// ErrTruncated is returned when an address, facility, or SNDCF block
// runs past the end of the buffer.
var ErrTruncated = errors.New("x25: field truncated")

const gfiMod8 = 0x1

// Parse decodes one X.25 packet from buf (the AVLC I-frame payload, not
// beginning with the ACARS 0xFF 0xFF 0x01 marker).
func Parse(buf []byte) (*Packet, error) {
	if len(buf) < MinLen {
		return nil, ErrTooShort
	}
	p := &Packet{
		GFI:       buf[0] >> 4,
		ChanGroup: buf[0] & 0x0F,
		ChanNum:   buf[1],
	}
	if p.GFI&gfiMod8 == 0 {
		return nil, ErrNotMod8
	}
	typeOctet := buf[2]
	buf = buf[3:]

	switch {
	case typeOctet&0x01 == 0x01:
		p.Type = classifySFrame(typeOctet)
		p.RecvSeq = typeOctet >> 5
	case typeOctet&0x01 == 0x00:
		p.Type = TypeData
		p.SendSeq = (typeOctet >> 1) & 0x7
		p.More = typeOctet&0x10 != 0
		p.RecvSeq = typeOctet >> 5
	default:
		p.Type = typeUnknown
	}
	if p.Type == typeUnknown {
		p.Type = classifyControl(typeOctet)
	}

	switch p.Type {
	case TypeCallRequest, TypeCallAccepted:
		if err := parseCall(p, buf); err != nil {
			return nil, err
		}
	case TypeData:
		p.UserData = buf
		if len(buf) > 0 {
			p.SNProto = buf[0]
			p.HasSNProto = true
		}
	default:
		p.UserData = buf
	}
	return p, nil
}

func classifySFrame(typeOctet byte) PacketType {
	switch (typeOctet >> 1) & 0xF {
	case 0x0:
		return TypeRR
	case 0x4:
		return TypeREJ
	default:
		return typeUnknown
	}
}

func classifyControl(typeOctet byte) PacketType {
	switch PacketType(typeOctet) {
	case TypeCallRequest, TypeCallAccepted, TypeClearRequest, TypeClearConfirm,
		TypeResetRequest, TypeResetConfirm, TypeRestartReq, TypeRestartCfm, TypeDiag:
		return PacketType(typeOctet)
	default:
		return typeUnknown
	}
}

// parseAddrBlock reads the calling/called address block: a single length
// octet (upper nibble = calling digit count, lower nibble = called digit
// count), followed by nibble-packed decimal digits for each address in
// turn.
func parseAddrBlock(buf []byte) (calling, called Addr, rest []byte, err error) {
	if len(buf) < 1 {
		return Addr{}, Addr{}, nil, ErrTruncated
	}
	callingLen := int(buf[0] >> 4)
	calledLen := int(buf[0] & 0x0F)
	buf = buf[1:]

	totalNibbles := callingLen + calledLen
	totalOctets := (totalNibbles + 1) / 2
	if len(buf) < totalOctets {
		return Addr{}, Addr{}, nil, ErrTruncated
	}
	digits := make([]byte, 0, totalNibbles)
	for i := 0; i < totalNibbles; i++ {
		octet := buf[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = octet >> 4
		} else {
			nibble = octet & 0x0F
		}
		digits = append(digits, '0'+nibble)
	}
	calling = Addr{Digits: string(digits[:callingLen])}
	called = Addr{Digits: string(digits[callingLen:])}
	return calling, called, buf[totalOctets:], nil
}

func parseCall(p *Packet, buf []byte) error {
	calling, called, rest, err := parseAddrBlock(buf)
	if err != nil {
		return err
	}
	p.Calling, p.Called = calling, called
	buf = rest

	if len(buf) < 1 {
		return ErrTruncated
	}
	facLen := int(buf[0])
	buf = buf[1:]
	if len(buf) < facLen {
		return ErrTruncated
	}
	facilities, err := tlv.Deserialize(buf[:facLen], 1)
	if err != nil {
		return err
	}
	p.Facilities = facilities
	buf = buf[facLen:]

	if len(buf) >= minSNDCFLen && buf[0] == sndcfID && buf[1] == sndcfVersion {
		p.HasSNDCF = true
		p.SNDCFCompression = buf[2]
		buf = buf[3:]
	}

	p.UserData = buf
	if len(buf) > 0 {
		p.SNProto = buf[0]
		p.HasSNProto = true
	}
	return nil
}
