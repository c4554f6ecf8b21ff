// Package esis implements the End-System-to-Intermediate-System PDU
// decoder: the 9-octet common header, the network-address octet string
// (SA for ES Hello, NET for IS Hello), and the trailing TLV option list,
// per spec.md §4.M.
package esis

import (
	"encoding/binary"
	"errors"

	"github.com/vdl2rx/vdl2rx/internal/tlv"
)

// HdrLen is the fixed ES-IS header length.
const HdrLen = 9

const esisVersion = 1

// PDUType is the ES-IS PDU type (low 5 bits of the type/pad octet).
type PDUType uint8

const (
	TypeESH PDUType = 2
	TypeISH PDUType = 4
)

func (t PDUType) String() string {
	switch t {
	case TypeESH:
		return "ES Hello"
	case TypeISH:
		return "IS Hello"
	default:
		return "unknown"
	}
}

// PDU is one decoded ES-IS PDU.
type PDU struct {
	Type     PDUType
	Holdtime uint16
	NetAddr  []byte // SA for ESH, NET for ISH
	Options  []tlv.Param
}

var (
	// ErrTooShort is returned for a buffer shorter than HdrLen.
	ErrTooShort = errors.New("esis: PDU shorter than header")
	// ErrUnsupportedVersion is returned for a version octet other than 1.
	ErrUnsupportedVersion = errors.New("esis: unsupported PDU version")
	// ErrPDUTruncated is returned when the declared PDU length exceeds buf.
	ErrPDUTruncated = errors.New("esis: declared PDU length exceeds buffer")
	// ErrAddrTruncated is returned when the network-address octet string
	// runs past the buffer.
	ErrAddrTruncated = errors.New("esis: network address truncated")
	// ErrUnknownType is returned for a PDU type other than ESH/ISH
	// (REDIRECT is not used in ATN, per ICAO 9705 §5.8.2.1.4).
	ErrUnknownType = errors.New("esis: unknown PDU type")
)

// Parse decodes one ES-IS PDU from buf.
func Parse(buf []byte) (*PDU, error) {
	if len(buf) < HdrLen {
		return nil, ErrTooShort
	}
	version := buf[2]
	if version != esisVersion {
		return nil, ErrUnsupportedVersion
	}
	pduType := PDUType(buf[4] & 0x1F)
	pduLen := buf[1]
	holdtime := binary.BigEndian.Uint16(buf[5:7])
	if int(pduLen) > len(buf) {
		return nil, ErrPDUTruncated
	}
	buf = buf[HdrLen:]

	if len(buf) < 1 {
		return nil, ErrAddrTruncated
	}
	addrLen := int(buf[0])
	buf = buf[1:]
	if len(buf) < addrLen {
		return nil, ErrAddrTruncated
	}
	netAddr := buf[:addrLen]
	buf = buf[addrLen:]

	pdu := &PDU{Type: pduType, Holdtime: holdtime, NetAddr: append([]byte(nil), netAddr...)}
	switch pduType {
	case TypeESH, TypeISH:
		if len(buf) > 0 {
			opts, err := tlv.Deserialize(buf, 1)
			if err != nil {
				return nil, err
			}
			pdu.Options = opts
		}
	default:
		return nil, ErrUnknownType
	}
	return pdu, nil
}
