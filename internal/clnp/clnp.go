// Package clnp implements the ConnectionLess Network Protocol header
// decoder: the full-header form (skip a length-prefixed header, dispatch
// the remainder by protocol id) and the compressed-initial-PDU form used
// on the first packet of an X.25 VC, per spec.md §4.L.
package clnp

import "errors"

// Protocol ids a CLNP payload may be addressed to, shared with x25's
// SN-protocol dispatch.
const (
	ProtoESIS = 0x82
	ProtoIDRP = 0x85
	ProtoCLNP = 0x81
)

// minLen / compressedMinLen are the shortest full and compressed CLNP
// headers.
const (
	minLen           = 2
	compressedMinLen = 4
)

// ErrTooShort is returned when buf is shorter than the form's minimum
// header length.
var ErrTooShort = errors.New("clnp: too short")

// ErrHeaderTruncated is returned when the declared header length exceeds
// the buffer.
var ErrHeaderTruncated = errors.New("clnp: header truncated")

// ErrNestedCLNP is returned when a CLNP PDU's payload is itself
// addressed to the CLNP protocol id. Per DESIGN NOTES §9(c) the guard is
// intentionally one level deep only — it stops the one loop the original
// decoder worried about (a CLNP PDU directly wrapping another) without
// attempting to bound arbitrarily deep nesting.
var ErrNestedCLNP = errors.New("clnp: nested CLNP PDU rejected")

// PDU is a decoded CLNP header: the protocol id of its payload and the
// payload itself, left for the caller (idrp/esis, or a raw dump) to
// decode further.
type PDU struct {
	Proto   uint8
	Payload []byte
	Nested  bool // true if Payload is itself a rejected nested CLNP PDU
}

// Parse decodes a full-header CLNP PDU: buf[1] is the header length in
// octets; everything after it is the payload, whose first octet is the
// next protocol id.
func Parse(buf []byte) (*PDU, error) {
	if len(buf) < minLen {
		return nil, ErrTooShort
	}
	hdrLen := int(buf[1])
	if len(buf) < hdrLen {
		return nil, ErrHeaderTruncated
	}
	return dispatch(buf[hdrLen:])
}

// ParseCompressedInit decodes a compressed-initial-PDU CLNP header: a
// 4-octet base followed by an optional local-reference octet (present
// when buf[3] bit 7, EXP, is set) and an optional 2-octet PDU identifier
// (present when buf[0] bit 4 is set).
func ParseCompressedInit(buf []byte) (*PDU, error) {
	if len(buf) < compressedMinLen {
		return nil, ErrTooShort
	}
	hdrLen := compressedMinLen
	if buf[3]&0x80 != 0 {
		hdrLen++
	}
	if buf[0]&0x10 != 0 {
		hdrLen += 2
	}
	if len(buf) < hdrLen {
		return nil, ErrHeaderTruncated
	}
	return dispatch(buf[hdrLen:])
}

func dispatch(payload []byte) (*PDU, error) {
	if len(payload) == 0 {
		return &PDU{Payload: payload}, nil
	}
	proto := payload[0]
	pdu := &PDU{Proto: proto, Payload: payload}
	if proto == ProtoCLNP {
		pdu.Nested = true
		return pdu, ErrNestedCLNP
	}
	return pdu, nil
}
