// Package icao implements the ICAO APDU / ULCS classifier described in
// spec.md §4.N: an X.225 short-form-SPDU vs. Fully-encoded-data split,
// ACSE APDU user-information extraction, and a speculative PER-decode
// pass against a registry of candidate ASN.1 application types.
//
// Real CM/CPDLC/ADS-C ASN.1 schemas are explicitly out of scope (spec.md
// §1: "the spec treats them as an opaque PER decoder driven by a type
// registry"). original_source/icao.c drives asn1c-generated uPER decoders
// for each candidate type via a single decode_as() helper that reports
// success only when the whole buffer is consumed; Decode below is that
// same try-in-order, full-consumption dispatch, but each registry entry's
// Decode func is a stand-in parser (see registry.go) rather than a real
// asn1c schema, since no PER/ASN.1 library appears anywhere in the
// retrieval pack.
package icao

import "errors"

// ErrTooShort is returned when buf has no APDU to classify.
var ErrTooShort = errors.New("icao: too short")

// ErrBadSPDU is returned when a short-form SPDU's presentation-layer
// control octet does not advertise PER (X.691) encoding.
var ErrBadSPDU = errors.New("icao: unsupported SPDU presentation encoding")

// ErrNoMatch is returned when no candidate type in the registry consumes
// the whole buffer.
var ErrNoMatch = errors.New("icao: no matching APDU type")

// Presentation-context-identifier values carried by Fully-encoded-data,
// per original_source/icao.c (Presentation_context_identifier_acse_apdu /
// _user_ase_apdu).
const (
	ContextACSE    = 1
	ContextUserASE = 2
)

// APDU is the decode result for one ICAO APDU: TypeName/Value are set
// when a registered candidate matched, Raw always holds the original
// octets (output continues to show raw bytes even on a successful match,
// per original_source/icao.c's output_icao_apdu, and exclusively on a
// failed one).
type APDU struct {
	TypeName string
	Value    any
	Raw      []byte
}

// Parse classifies buf as either an X.225 short-form SPDU or a
// Fully-encoded-data PDU and decodes the ACSE/user-ASE payload it
// carries, per spec.md §4.N.
func Parse(buf []byte) (*APDU, error) {
	if len(buf) < 1 {
		return nil, ErrTooShort
	}
	apdu := &APDU{Raw: buf}
	if buf[0]&0x80 != 0 {
		if len(buf) < 3 {
			return apdu, ErrTooShort
		}
		if buf[1]&0x02 != 0x02 {
			return apdu, ErrBadSPDU
		}
		return decodeACSE(apdu, buf[2:])
	}
	return decodeFullyEncodedData(apdu, buf)
}

// fullyEncodedData is a simplified, byte-aligned stand-in for the X.226
// FullyEncodedData PER structure: a 1-octet presentation-context-identifier
// followed by a 2-octet big-endian length and that many octets of
// presentation-data-values. Real Fully-encoded-data is PER-encoded
// (X.691) over several nested SEQUENCE/CHOICE types; this repo has no
// ASN.1 PER codec to drive against the real schema (see package doc), so
// the wire-level framing here exists only to carry the
// presentation-context-identifier dispatch spec.md §4.N names through to
// the test suite and the registry below.
func decodeFullyEncodedData(apdu *APDU, buf []byte) (*APDU, error) {
	if len(buf) < 3 {
		return apdu, ErrTooShort
	}
	ctx := buf[0]
	l := int(buf[1])<<8 | int(buf[2])
	rest := buf[3:]
	if l > len(rest) {
		return apdu, ErrTooShort
	}
	pdv := rest[:l]
	switch ctx {
	case ContextACSE:
		return decodeACSE(apdu, pdv)
	case ContextUserASE:
		return decodeArbitraryPayload(apdu, pdv)
	default:
		return apdu, ErrNoMatch
	}
}

// acseUserInformation is the simplified stand-in for ACSE-apdu's
// user-information EXTERNAL field (original_source/icao.c's
// decode_ulcs_acse): a 1-octet APDU-kind discriminator (ignored beyond
// documenting that an AARQ/AARE/RLRQ/RLRE/ABRT was present) followed
// directly by the arbitrary-encoding octets handed to
// decodeArbitraryPayload.
func decodeACSE(apdu *APDU, buf []byte) (*APDU, error) {
	if len(buf) < 1 {
		return apdu, ErrTooShort
	}
	return decodeArbitraryPayload(apdu, buf[1:])
}

// decodeArbitraryPayload tries every registered candidate type in order,
// keeping the first whose Decode func reports full consumption of buf —
// the same "try types until one fits" policy as
// original_source/icao.c's decode_arbitrary_payload.
func decodeArbitraryPayload(apdu *APDU, buf []byte) (*APDU, error) {
	for _, c := range registry {
		val, consumed, err := c.Decode(buf)
		if err == nil && consumed == len(buf) {
			apdu.TypeName = c.Name
			apdu.Value = val
			return apdu, nil
		}
	}
	return apdu, ErrNoMatch
}
