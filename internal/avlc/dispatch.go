package avlc

import (
	"github.com/vdl2rx/vdl2rx/internal/acars"
	"github.com/vdl2rx/vdl2rx/internal/avlc/xid"
	"github.com/vdl2rx/vdl2rx/internal/clnp"
	"github.com/vdl2rx/vdl2rx/internal/esis"
	"github.com/vdl2rx/vdl2rx/internal/icao"
	"github.com/vdl2rx/vdl2rx/internal/idrp"
	"github.com/vdl2rx/vdl2rx/internal/x25"
)

// acarsMarker is the 3-octet SNDCF prefix an AVLC I-frame payload carries
// when it encapsulates ACARS rather than X.25, per spec.md §4.H.
var acarsMarker = [3]byte{0xff, 0xff, 0x01}

// Decoded is one AVLC frame together with whichever upper-layer payload
// its control field and I-frame marker selected, mirroring the original
// decoder's single-dispatch-point `parse_avlc` (dumpvdl2 `avlc.c`).
// At most one of XID, ACARS, X25 is non-nil; S-frames and U-frames other
// than XID set none of them. When the XID, ACARS or X.25 parser fails,
// none of the three is set, DispatchErr holds the error and Frame.Payload
// holds the raw undecoded bytes.
type Decoded struct {
	Frame *Frame

	XID   *xid.Message
	ACARS *acars.Message
	X25   *x25.Packet

	// Set when X25 carries a network-layer SN-protocol payload
	// (spec.md §4.K/§4.L/§4.M): at most one of CLNP/ESIS/IDRP is non-nil,
	// chosen by X25.SNProto.
	CLNP *clnp.PDU
	ESIS *esis.PDU
	IDRP *idrp.PDU

	// ICAO holds the ULCS/ICAO APDU decode (spec.md §4.N) when a CLNP
	// PDU's payload protocol id names neither ES-IS nor IDRP — in the
	// ATN stack that payload is COTP-transported ULCS data, and since
	// this repo carries no COTP (ISO 8073) decoder (not present anywhere
	// in the retrieval pack), the CLNP payload is handed to the ICAO
	// APDU classifier directly rather than being peeled through a
	// transport-layer header first.
	ICAO *icao.APDU

	// DispatchErr is the error returned by the upper-layer parser that
	// failed. A failure of the XID, ACARS or X.25 parser leaves all three
	// nil, and Frame.Payload should be treated as an "unparseable" raw
	// blob; a failure in a layer above X.25 keeps X25, and any layer
	// decoded before the failing one, set.
	DispatchErr error
}

// Decode parses raw into a Frame and dispatches its payload: U-frame XID
// modifiers go to the XID parser, I-frames starting with the ACARS SNDCF
// marker go to the ACARS parser (direction-aware, so an embedded FANS-1/A
// ADS-C payload picks the correct tag dictionary), everything else in an
// I-frame goes to the X.25 parser. S-frames and other U-frame modifiers
// carry no further payload to decode and are returned with XID, ACARS
// and X25 nil and DispatchErr nil.
func Decode(raw []byte) (*Decoded, error) {
	f, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	d := &Decoded{Frame: f}

	switch f.Control.Kind {
	case FrameU:
		if f.Control.UFunc != UXID {
			return d, nil
		}
		cr := f.Src.Status
		msg, err := xid.Parse(cr, f.Control.PF, f.Payload)
		if err != nil {
			d.DispatchErr = err
			return d, nil
		}
		d.XID = msg
	case FrameI:
		dir := acars.Downlink
		if f.Src.Type != AddrAircraft {
			dir = acars.Uplink
		}
		if len(f.Payload) > 3 && [3]byte(f.Payload[:3]) == acarsMarker {
			msg, _, err := acars.ParseWithDirection(f.Payload[3:], dir)
			if err != nil {
				d.DispatchErr = err
				return d, nil
			}
			d.ACARS = msg
		} else {
			pkt, err := x25.Parse(f.Payload)
			if err != nil {
				d.DispatchErr = err
				return d, nil
			}
			d.X25 = pkt
			// CALL_REQUEST/CALL_ACCEPTED are never segmented (the SNDCF
			// setup happens in one packet), so their SN-protocol id can
			// be dispatched immediately. X.25 DATA is different: per
			// spec.md §4.K/§4.P, only the first fragment of a segmented
			// SNDCF PDU carries a valid leading SN-protocol octet, and
			// Decode has no per-VC history to tell a first fragment from
			// a continuation one. That requires the per-channel
			// reassembly state station.Station owns, so DATA dispatch is
			// left to the caller via DispatchNetworkLayer once it has
			// resolved (or reassembled) the complete SN-PDU.
			if (pkt.Type == x25.TypeCallRequest || pkt.Type == x25.TypeCallAccepted) && pkt.HasSNProto {
				d.DispatchNetworkLayer(pkt)
			}
		}
	}
	return d, nil
}

// DispatchNetworkLayer resolves an X.25 packet's SN-protocol id into
// the CLNP, ES-IS, or IDRP payload it addresses, per spec.md §4.K's
// SN-protocol dispatch table. A CLNP PDU that itself carries an
// ESIS/IDRP payload is decoded one level further so a single-fragment
// PDU reaches its final parser without the caller having to re-dispatch.
func (d *Decoded) DispatchNetworkLayer(pkt *x25.Packet) {
	switch pkt.SNProto {
	case x25.SNProtoCLNPInitCompressed:
		pdu, err := clnp.ParseCompressedInit(pkt.UserData)
		d.setCLNPResult(pdu, err)
	case x25.SNProtoCLNP:
		pdu, err := clnp.Parse(pkt.UserData)
		d.setCLNPResult(pdu, err)
	case x25.SNProtoESIS:
		pdu, err := esis.Parse(pkt.UserData)
		if err != nil {
			d.DispatchErr = err
			return
		}
		d.ESIS = pdu
	case x25.SNProtoIDRP:
		pdu, err := idrp.Parse(pkt.UserData)
		if err != nil {
			d.DispatchErr = err
			return
		}
		d.IDRP = pdu
	}
}

func (d *Decoded) setCLNPResult(pdu *clnp.PDU, err error) {
	if err != nil {
		d.DispatchErr = err
		if pdu != nil {
			d.CLNP = pdu
		}
		return
	}
	d.CLNP = pdu
	switch pdu.Proto {
	case clnp.ProtoESIS:
		inner, err := esis.Parse(pdu.Payload)
		if err != nil {
			d.DispatchErr = err
			return
		}
		d.ESIS = inner
	case clnp.ProtoIDRP:
		inner, err := idrp.Parse(pdu.Payload)
		if err != nil {
			d.DispatchErr = err
			return
		}
		d.IDRP = inner
	default:
		inner, err := icao.Parse(pdu.Payload)
		if err != nil {
			d.DispatchErr = err
			return
		}
		d.ICAO = inner
	}
}
