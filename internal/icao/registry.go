package icao

import "errors"

// candidate is one entry in the type registry: a human-readable ASN.1
// type name and a decode func reporting how many bytes of its input it
// consumed, mirroring original_source/icao.c's decode_as(td, ...) calls
// against a sequence of generated ASN.1 type descriptors.
type candidate struct {
	Name   string
	Decode func(buf []byte) (any, int, error)
}

// registry holds the candidate types tried, in order, by
// decodeArbitraryPayload — the same order as
// original_source/icao.c's decode_arbitrary_payload: CM application
// messages first (most common on CM-only ground stations), then the
// protected CPDLC wrappers, then the unprotected PDU unions, then the
// ADS-C v2/FANS application types spec.md §4.N adds to the candidate set.
var registry = []candidate{
	{"CMAircraftMessage", decodeTagged(tagCMAircraftMessage, func(b []byte) any { return &CMAircraftMessage{Payload: b} })},
	{"CMGroundMessage", decodeTagged(tagCMGroundMessage, func(b []byte) any { return &CMGroundMessage{Payload: b} })},
	{"ATCDownlinkMessage", decodeProtected(tagATCDownlinkMessage, "ATCDownlinkMessage", DirectionDownlink)},
	{"ATCUplinkMessage", decodeProtected(tagATCUplinkMessage, "ATCUplinkMessage", DirectionUplink)},
	{"AircraftPDUs", decodeTagged(tagAircraftPDUs, func(b []byte) any { return &AircraftPDUs{Payload: b} })},
	{"GroundPDUs", decodeTagged(tagGroundPDUs, func(b []byte) any { return &GroundPDUs{Payload: b} })},
	{"ADSAircraftPDUs", decodeTagged(tagADSAircraftPDUs, func(b []byte) any { return &ADSAircraftPDUs{Payload: b} })},
	{"ADSGroundPDUs", decodeTagged(tagADSGroundPDUs, func(b []byte) any { return &ADSGroundPDUs{Payload: b} })},
}

// Message-kind discriminator octets used by the stand-in decoders above.
// A real deployment replaces every decodeTagged/decodeProtected func with
// a call into a generated ASN.1 PER decoder for the named type; these
// tags only let the dispatch/registry machinery (order, full-consumption
// check, protected-wrapper unwrap) be exercised and tested without one.
const (
	tagCMAircraftMessage  = 0xC1
	tagCMGroundMessage    = 0xC2
	tagATCDownlinkMessage = 0xC3
	tagATCUplinkMessage   = 0xC4
	tagAircraftPDUs       = 0xC5
	tagGroundPDUs         = 0xC6
	tagADSAircraftPDUs    = 0xC7
	tagADSGroundPDUs      = 0xC8
)

// CMAircraftMessage / CMGroundMessage are ICAO Doc 9705 Context
// Management application messages (logon/contact requests and
// responses). Payload holds the undecoded application data.
type CMAircraftMessage struct{ Payload []byte }
type CMGroundMessage struct{ Payload []byte }

// AircraftPDUs / GroundPDUs are the unprotected CPDLC PDU unions.
type AircraftPDUs struct{ Payload []byte }
type GroundPDUs struct{ Payload []byte }

// ADSAircraftPDUs / ADSGroundPDUs are the ADS application PDU unions
// carried over ULCS (distinct from the ACARS-text FANS-1/A ADS-C path
// decoded by internal/adsc).
type ADSAircraftPDUs struct{ Payload []byte }
type ADSGroundPDUs struct{ Payload []byte }

// Protected wraps a CPDLC message that arrived inside
// ProtectedAircraftPDUs/ProtectedGroundPDUs, per spec.md §4.N: "the
// protected wrappers unwrap ProtectedAircraftPDUs/ProtectedGroundPDUs
// first and decode the inner protectedMessage octet string." Header is
// the real PER-decoded CPDLC message header and element id (cpdlc.go);
// it is nil when the inner octet string doesn't parse as one (still
// reported, since the wrapper itself matched).
type Protected struct {
	Inner   string
	Payload []byte
	Header  *CPDLCHeader
}

var errShortAPDU = errors.New("icao: candidate payload too short")

// decodeTagged builds a Decode func for an unwrapped candidate type: byte
// 0 must equal tag, and the remainder is handed to build as the decoded
// value's payload.
func decodeTagged(tag byte, build func([]byte) any) func([]byte) (any, int, error) {
	return func(buf []byte) (any, int, error) {
		if len(buf) < 1 || buf[0] != tag {
			return nil, 0, errShortAPDU
		}
		return build(buf[1:]), len(buf), nil
	}
}

// decodeProtected builds a Decode func for a protected-wrapper candidate:
// byte 0 is the wrapper tag, byte 1 is the inner protectedMessage
// octet-string length, and that many following bytes are the inner CPDLC
// message — the Go analogue of original_source/icao.c's
// decode_protected_ATCDownlinkMessage/decode_protected_ATCUplinkMessage,
// which decode ProtectedAircraftPDUs/ProtectedGroundPDUs and then
// re-decode their protectedMessage field as the named inner type.
func decodeProtected(tag byte, innerName string, dir Direction) func([]byte) (any, int, error) {
	return func(buf []byte) (any, int, error) {
		if len(buf) < 2 || buf[0] != tag {
			return nil, 0, errShortAPDU
		}
		n := int(buf[1])
		if len(buf) < 2+n {
			return nil, 0, errShortAPDU
		}
		inner := buf[2 : 2+n]
		p := &Protected{Inner: innerName, Payload: inner}
		if hdr, err := decodeCPDLCHeader(inner, dir); err == nil {
			p.Header = hdr
		}
		return p, 2 + n, nil
	}
}
