// Package idrp implements the Inter-Domain Routing Protocol BISPDU
// decoder: the common 30-octet header and the per-type parsers for
// OPEN, UPDATE, ERROR, KEEPALIVE, CEASE, and RIB-REFRESH, per spec.md
// §4.M.
package idrp

import (
	"encoding/binary"
	"errors"

	"github.com/vdl2rx/vdl2rx/internal/tlv"
)

// Type is the BISPDU type octet.
type Type uint8

const (
	TypeOpen       Type = 1
	TypeUpdate     Type = 2
	TypeError      Type = 3
	TypeKeepalive  Type = 4
	TypeCease      Type = 5
	TypeRIBRefresh Type = 6
)

func (t Type) String() string {
	switch t {
	case TypeOpen:
		return "Open"
	case TypeUpdate:
		return "Update"
	case TypeError:
		return "Error"
	case TypeKeepalive:
		return "Keepalive"
	case TypeCease:
		return "Cease"
	case TypeRIBRefresh:
		return "RIB Refresh"
	default:
		return "unknown"
	}
}

// HdrLen is the fixed common-header length: pid, 2-byte length, type,
// 4-byte seq, 4-byte ack, coff, cavail, 16-byte validation.
const HdrLen = 30

const openVersion = 1

// Header is the decoded common BISPDU header.
type Header struct {
	PID        uint8
	Len        uint16
	Type       Type
	Seq, Ack   uint32
	COff       uint8
	CAvail     uint8
	Validation [16]byte
}

// PDU is one decoded BISPDU.
type PDU struct {
	Hdr Header

	// OPEN
	OpenHoldtime   uint16
	OpenMaxPDUSize uint16
	OpenSrcRDI     []byte

	// UPDATE
	WithdrawnRoutes [][]byte
	PathAttributes  []tlv.Param // Tag = attribute type

	// ERROR
	ErrCode, ErrSubcode         uint8
	ErrFSMBISPDUType, ErrFSMState uint8

	// trailing unparsed payload (NLRI for UPDATE, data for OPEN/ERROR)
	Data []byte
}

// Errors returned by Parse and the per-type parsers.
var (
	ErrTooShort          = errors.New("idrp: BISPDU shorter than header")
	ErrPDUTruncated      = errors.New("idrp: declared PDU length exceeds buffer")
	ErrUnsupportedOpen   = errors.New("idrp: unsupported Open BISPDU version")
	ErrOpenTruncated     = errors.New("idrp: Open BISPDU truncated")
	ErrUpdateTruncated   = errors.New("idrp: Update BISPDU truncated")
	ErrAttrsMismatch     = errors.New("idrp: path attributes length mismatch")
	ErrErrorTruncated    = errors.New("idrp: Error BISPDU truncated")
	ErrUnknownType       = errors.New("idrp: unknown BISPDU type")
)

// Parse decodes one BISPDU from buf.
func Parse(buf []byte) (*PDU, error) {
	if len(buf) < HdrLen {
		return nil, ErrTooShort
	}
	hdr := Header{
		PID:  buf[0],
		Len:  binary.BigEndian.Uint16(buf[1:3]),
		Type: Type(buf[3]),
		Seq:  binary.BigEndian.Uint32(buf[4:8]),
		Ack:  binary.BigEndian.Uint32(buf[8:12]),
		COff: buf[12],
		CAvail: buf[13],
	}
	copy(hdr.Validation[:], buf[14:30])
	if int(hdr.Len) > len(buf) {
		return nil, ErrPDUTruncated
	}
	body := buf[HdrLen:]
	pdu := &PDU{Hdr: hdr}

	var err error
	switch hdr.Type {
	case TypeOpen:
		err = parseOpen(pdu, body)
	case TypeUpdate:
		err = parseUpdate(pdu, body)
	case TypeError:
		err = parseError(pdu, body)
	case TypeKeepalive, TypeCease, TypeRIBRefresh:
		pdu.Data = body
	default:
		err = ErrUnknownType
	}
	if err != nil {
		return nil, err
	}
	return pdu, nil
}

func parseOpen(pdu *PDU, buf []byte) error {
	if len(buf) < 6 {
		return ErrOpenTruncated
	}
	if buf[0] != openVersion {
		return ErrUnsupportedOpen
	}
	buf = buf[1:]
	pdu.OpenHoldtime = binary.BigEndian.Uint16(buf[0:2])
	pdu.OpenMaxPDUSize = binary.BigEndian.Uint16(buf[2:4])
	rdiLen := int(buf[4])
	buf = buf[5:]
	if len(buf) < rdiLen {
		return ErrOpenTruncated
	}
	pdu.OpenSrcRDI = append([]byte(nil), buf[:rdiLen]...)
	pdu.Data = buf[rdiLen:]
	return nil
}

func parseUpdate(pdu *PDU, buf []byte) error {
	if len(buf) < 2 {
		return ErrUpdateTruncated
	}
	numWithdrawn := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if numWithdrawn > 0 {
		if len(buf) < numWithdrawn*4 {
			return ErrUpdateTruncated
		}
		for i := 0; i < numWithdrawn; i++ {
			pdu.WithdrawnRoutes = append(pdu.WithdrawnRoutes, append([]byte(nil), buf[:4]...))
			buf = buf[4:]
		}
	}
	if len(buf) < 2 {
		return ErrUpdateTruncated
	}
	totalAttrLen := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if totalAttrLen > 0 {
		if len(buf) < totalAttrLen {
			return ErrUpdateTruncated
		}
		attrBuf := buf[:totalAttrLen]
		buf = buf[totalAttrLen:]
		for len(attrBuf) > 4 {
			attrBuf = attrBuf[1:] // flag octet, not retained
			typ := attrBuf[0]
			attrBuf = attrBuf[1:]
			alen := int(binary.BigEndian.Uint16(attrBuf[0:2]))
			attrBuf = attrBuf[2:]
			if len(attrBuf) < alen {
				return ErrUpdateTruncated
			}
			pdu.PathAttributes = append(pdu.PathAttributes, tlv.Param{Tag: typ, Value: attrBuf[:alen]})
			attrBuf = attrBuf[alen:]
		}
		if len(attrBuf) > 0 {
			return ErrAttrsMismatch
		}
	}
	pdu.Data = buf
	return nil
}

func parseError(pdu *PDU, buf []byte) error {
	if len(buf) < 2 {
		return ErrErrorTruncated
	}
	pdu.ErrCode, pdu.ErrSubcode = buf[0], buf[1]
	if pdu.ErrCode == 4 { // BISPDU_ERR_FSM
		pdu.ErrFSMBISPDUType = pdu.ErrSubcode >> 4
		pdu.ErrFSMState = pdu.ErrSubcode & 0xF
	}
	pdu.Data = buf[2:]
	return nil
}
