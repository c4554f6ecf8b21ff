// Package xid implements the AVLC XID command/response and GSIF message
// parser: two TLV parameter groups (public and VDL-private) gated behind
// a format identifier octet, per spec.md §4.I.
package xid

import (
	"errors"

	"github.com/vdl2rx/vdl2rx/internal/tlv"
)

// fmtID is the mandatory leading format identifier octet.
const fmtID = 0x82

// Group IDs for the two parameter groups an XID message carries.
const (
	groupPublic  = 0x80
	groupPrivate = 0xF0
)

// paramConnMgmt is the VDL-private tag whose low two bits (h, r) combine
// with the AVLC control field's C/R and P/F bits to classify the message
// type, per spec.md §4.I / ICAO 9776 Table 5.12.
const paramConnMgmt = 0x01

// minLen is the format-identifier octet plus at least one empty group
// header (id + 2-byte length).
const minLen = 1 + 3

// Type enumerates the sixteen (cr,pf,h,r) combinations named in ICAO
// 9776 Table 5.12. Unnamed combinations render as "unknown" from
// Type.String().
type Type uint8

const (
	TypeCmdLCR  Type = 0x1
	TypeCmdHO   Type = 0x2
	TypeGSIF    Type = 0x3
	TypeCmdLE   Type = 0x4
	TypeCmdHO2  Type = 0x6
	TypeCmdLPM  Type = 0x7
	TypeRspLE   Type = 0xC
	TypeRspLCR  Type = 0xD
	TypeRspHO   Type = 0xE
	TypeRspLPM  Type = 0xF
)

var typeNames = map[Type]string{
	TypeCmdLCR: "XID_CMD_LCR",
	TypeCmdHO:  "XID_CMD_HO",
	TypeGSIF:   "GSIF",
	TypeCmdLE:  "XID_CMD_LE",
	TypeCmdHO2: "XID_CMD_HO",
	TypeCmdLPM: "XID_CMD_LPM",
	TypeRspLE:  "XID_RSP_LE",
	TypeRspLCR: "XID_RSP_LCR",
	TypeRspHO:  "XID_RSP_HO",
	TypeRspLPM: "XID_RSP_LPM",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// Message is one decoded XID command/response.
type Message struct {
	Type        Type
	PublicParams  []tlv.Param
	PrivateParams []tlv.Param
}

// ErrTooShort is returned for a buffer shorter than minLen.
var ErrTooShort = errors.New("xid: message too short")

// ErrBadFormatID is returned when the leading octet isn't fmtID.
var ErrBadFormatID = errors.New("xid: unrecognized format identifier")

// ErrDuplicateGroup is returned when a group id repeats within one
// message.
var ErrDuplicateGroup = errors.New("xid: duplicate parameter group")

// ErrNoPrivateParams is returned when the mandatory VDL-private group is
// absent: spec.md §4.I treats public params as optional but private
// params as mandatory.
var ErrNoPrivateParams = errors.New("xid: missing VDL-private parameter group")

// Parse decodes buf (the AVLC U-frame payload following the XID control
// octet) into a Message, classifying its Type from the AVLC control
// field's C/R and P/F bits and the connection-management parameter's h
// and r bits. GSIF and LPM variants carry no connection-management
// parameter; per spec.md §4.I both bits are then forced to 1.
func Parse(cr, pf uint8, buf []byte) (*Message, error) {
	if len(buf) < minLen {
		return nil, ErrTooShort
	}
	if buf[0] != fmtID {
		return nil, ErrBadFormatID
	}
	buf = buf[1:]

	msg := &Message{}
	for len(buf) >= 3 {
		gid := buf[0]
		grouplen := int(buf[1])<<8 | int(buf[2])
		buf = buf[3:]
		if grouplen > len(buf) {
			return nil, tlv.ErrTruncated
		}
		group := buf[:grouplen]
		buf = buf[grouplen:]

		params, err := tlv.Deserialize(group, 1)
		if err != nil {
			return nil, err
		}
		switch gid {
		case groupPublic:
			if msg.PublicParams != nil {
				return nil, ErrDuplicateGroup
			}
			msg.PublicParams = params
		case groupPrivate:
			if msg.PrivateParams != nil {
				return nil, ErrDuplicateGroup
			}
			msg.PrivateParams = params
		}
	}
	if msg.PrivateParams == nil {
		return nil, ErrNoPrivateParams
	}

	h, r := uint8(1), uint8(1)
	if cm, ok := tlv.Search(msg.PrivateParams, paramConnMgmt); ok && len(cm) > 0 {
		h = (cm[0] >> 1) & 1
		r = cm[0] & 1
	}
	msg.Type = Type((cr&1)<<3 | (pf&1)<<2 | h<<1 | r)
	return msg, nil
}

// IsGSIF reports whether msg is a Ground Station Information Frame,
// corresponding to the MSGFLT_XID_GSIF / MSGFLT_XID_NO_GSIF split
// upstream filters on.
func (m *Message) IsGSIF() bool { return m.Type == TypeGSIF }
