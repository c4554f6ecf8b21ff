package icao

import "fmt"

// CPDLCHeader is the FANS-1/A ATCUplinkMessage/ATCDownlinkMessage
// message-header: a mandatory message identification number and two
// optional fields (reference number, timestamp), per the PER layout
// adapted in per.go's package doc.
type CPDLCHeader struct {
	MsgID     int
	MsgRef    *int
	Hours     *int
	Minutes   *int
	ElementID int
	Label     string
}

// Direction selects which element-id range and label table a CPDLC
// element belongs to.
type Direction int

const (
	DirectionUplink Direction = iota
	DirectionDownlink
)

const (
	maxUplinkElement   = 182 // uM0..uM182
	maxDownlinkElement = 128 // dM0..dM128
)

// decodeCPDLCHeader decodes the message header and the single mandatory
// element's id from buf, per FANS-1/A's ATCUplinkMessage/
// ATCDownlinkMessage PER layout: two presence bits (msgRef, timestamp),
// a 6-bit constrained msg id, the optional fields, then the element-id
// CHOICE selector. Per-element application data is not decoded — that
// would require the full ASN.1 element table this repo does not carry
// (see icao.go's package doc) — callers get the element id and its
// well-known label only.
func decodeCPDLCHeader(buf []byte, dir Direction) (*CPDLCHeader, error) {
	r := newPERReader(buf)
	hasRef, err := r.readBit()
	if err != nil {
		return nil, err
	}
	hasTimestamp, err := r.readBit()
	if err != nil {
		return nil, err
	}
	msgID, err := r.readConstrainedInt(0, 63)
	if err != nil {
		return nil, err
	}
	h := &CPDLCHeader{MsgID: msgID}
	if hasRef {
		ref, err := r.readConstrainedInt(0, 63)
		if err != nil {
			return nil, err
		}
		h.MsgRef = &ref
	}
	if hasTimestamp {
		hours, err := r.readConstrainedInt(0, 23)
		if err != nil {
			return nil, err
		}
		mins, err := r.readConstrainedInt(0, 59)
		if err != nil {
			return nil, err
		}
		if _, err := r.readConstrainedInt(0, 59); err != nil { // seconds, consumed not exposed
			return nil, err
		}
		h.Hours, h.Minutes = &hours, &mins
	}
	maxElem := maxDownlinkElement
	if dir == DirectionUplink {
		maxElem = maxUplinkElement
	}
	elemID, err := r.readConstrainedInt(0, maxElem)
	if err != nil {
		return nil, err
	}
	h.ElementID = elemID
	if dir == DirectionUplink {
		h.Label = uplinkLabel(elemID)
	} else {
		h.Label = downlinkLabel(elemID)
	}
	return h, nil
}

// A small set of the most commonly observed FANS-1/A standard uplink
// message element labels (ICAO Doc 4444 / ARINC 622 element tables);
// anything not listed renders by element number only.
var uplinkLabels = map[int]string{
	0:  "UNABLE",
	1:  "STANDBY",
	4:  "ROGER",
	19: "MAINTAIN [level]",
	20: "CLIMB TO [level]",
	23: "DESCEND TO [level]",
	65: "FLY HEADING [degrees]",
	80: "CONTACT [unitname] [frequency]",
}

var downlinkLabels = map[int]string{
	0:  "WILCO",
	1:  "UNABLE",
	2:  "STANDBY",
	22: "REQUEST [level]",
	23: "REQUEST CLIMB TO [level]",
	24: "REQUEST DESCENT TO [level]",
	67: "PRESENT POSITION [position]",
}

func uplinkLabel(id int) string {
	if l, ok := uplinkLabels[id]; ok {
		return l
	}
	return fmt.Sprintf("uM%d", id)
}

func downlinkLabel(id int) string {
	if l, ok := downlinkLabels[id]; ok {
		return l
	}
	return fmt.Sprintf("dM%d", id)
}
