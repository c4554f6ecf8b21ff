package adsc

import "fmt"

// BasicReport is the downlink basic ADS group (tags 7, 9, 10, 18, 19, 20).
type BasicReport struct {
	Lat, Lon         float64
	Timestamp        float64
	Alt              int
	Redundancy       uint8
	Accuracy         uint8
	TCASHealth       uint8
}

func parseBasicReport(buf []byte) (any, int, error) {
	const tagLen = 10
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	r := &BasicReport{}
	lat, _ := bs.ReadWordMSBFirst(21)
	r.Lat = DecodeCoordinate(uint32(lat))
	lon, _ := bs.ReadWordMSBFirst(21)
	r.Lon = DecodeCoordinate(uint32(lon))
	alt, _ := bs.ReadWordMSBFirst(16)
	r.Alt = DecodeAltitude(uint32(alt))
	ts, _ := bs.ReadWordMSBFirst(15)
	r.Timestamp = DecodeTimestamp(uint32(ts))
	rest, err := bs.ReadWordMSBFirst(7)
	if err != nil {
		return nil, 0, err
	}
	r.Redundancy = uint8(rest & 1)
	r.Accuracy = uint8((rest >> 1) & 0x7)
	r.TCASHealth = uint8((rest >> 4) & 1)
	return r, tagLen, nil
}

// FlightID is the downlink flight-ID group (tag 12).
type FlightID struct {
	ID string
}

func parseFlightID(buf []byte) (any, int, error) {
	const tagLen = 6
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	id, err := decodeFlightID(bs)
	if err != nil {
		return nil, 0, err
	}
	return &FlightID{ID: id}, tagLen, nil
}

// PredictedRoute is the downlink predicted-route group (tag 13).
type PredictedRoute struct {
	LatNext, LonNext         float64
	AltNext                  int
	ETANext                  int
	LatNextNext, LonNextNext float64
	AltNextNext              int
}

func parsePredictedRoute(buf []byte) (any, int, error) {
	const tagLen = 17
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	r := &PredictedRoute{}
	v, _ := bs.ReadWordMSBFirst(21)
	r.LatNext = DecodeCoordinate(uint32(v))
	v, _ = bs.ReadWordMSBFirst(21)
	r.LonNext = DecodeCoordinate(uint32(v))
	v, _ = bs.ReadWordMSBFirst(16)
	r.AltNext = DecodeAltitude(uint32(v))
	v, err = bs.ReadWordMSBFirst(14)
	if err != nil {
		return nil, 0, err
	}
	r.ETANext = int(v)
	v, _ = bs.ReadWordMSBFirst(21)
	r.LatNextNext = DecodeCoordinate(uint32(v))
	v, _ = bs.ReadWordMSBFirst(21)
	r.LonNextNext = DecodeCoordinate(uint32(v))
	v, err = bs.ReadWordMSBFirst(16)
	if err != nil {
		return nil, 0, err
	}
	r.AltNextNext = DecodeAltitude(uint32(v))
	return r, tagLen, nil
}

// EarthAirRef is the downlink earth/air reference group (tags 14, 15).
type EarthAirRef struct {
	HeadingInvalid bool
	Heading        float64
	Speed          float64
	VertSpeed      int
}

func parseEarthAirRef(buf []byte) (any, int, error) {
	const tagLen = 5
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	r := &EarthAirRef{}
	inv, _ := bs.ReadWordMSBFirst(1)
	r.HeadingInvalid = inv != 0
	hdg, _ := bs.ReadWordMSBFirst(12)
	r.Heading = DecodeHeading(uint32(hdg))
	spd, _ := bs.ReadWordMSBFirst(13)
	r.Speed = DecodeSpeed(uint32(spd))
	vs, err := bs.ReadWordMSBFirst(12)
	if err != nil {
		return nil, 0, err
	}
	r.VertSpeed = DecodeVertSpeed(uint32(vs))
	return r, tagLen, nil
}

// Meteo is the downlink meteorological group (tag 16).
type Meteo struct {
	WindSpeed       float64
	WindDirInvalid  bool
	WindDir         float64
	Temp            float64
}

func parseMeteo(buf []byte) (any, int, error) {
	const tagLen = 4
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	m := &Meteo{}
	ws, _ := bs.ReadWordMSBFirst(9)
	m.WindSpeed = DecodeSpeed(uint32(ws))
	inv, _ := bs.ReadWordMSBFirst(1)
	m.WindDirInvalid = inv != 0
	wd, _ := bs.ReadWordMSBFirst(9)
	m.WindDir = DecodeWindDir(uint32(wd))
	temp, err := bs.ReadWordMSBFirst(12)
	if err != nil {
		return nil, 0, err
	}
	m.Temp = DecodeTemperature(uint32(temp))
	return m, tagLen, nil
}

// AirframeID is the downlink airframe-ID group (tag 17): three raw
// ICAO 24-bit-address octets, not a numeric field.
type AirframeID struct {
	ICAOHex [3]byte
}

func parseAirframeID(buf []byte) (any, int, error) {
	const tagLen = 3
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	a := &AirframeID{}
	copy(a.ICAOHex[:], buf[:tagLen])
	return a, tagLen, nil
}

// IntermediateProjection is the downlink intermediate-projected-intent
// group (tag 22).
type IntermediateProjection struct {
	Distance     float64
	TrackInvalid bool
	Track        float64
	Alt          int
	ETA          int
}

func parseIntermediateProjection(buf []byte) (any, int, error) {
	const tagLen = 8
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	p := &IntermediateProjection{}
	d, _ := bs.ReadWordMSBFirst(16)
	p.Distance = DecodeDistance(uint32(d))
	inv, _ := bs.ReadWordMSBFirst(1)
	p.TrackInvalid = inv != 0
	tr, _ := bs.ReadWordMSBFirst(12)
	p.Track = DecodeHeading(uint32(tr))
	alt, _ := bs.ReadWordMSBFirst(16)
	p.Alt = DecodeAltitude(uint32(alt))
	eta, err := bs.ReadWordMSBFirst(14)
	if err != nil {
		return nil, 0, err
	}
	p.ETA = int(eta)
	return p, tagLen, nil
}

// FixedProjection is the downlink fixed-projected-intent group (tag 23).
type FixedProjection struct {
	Lat, Lon float64
	Alt      int
	ETA      int
}

func parseFixedProjection(buf []byte) (any, int, error) {
	const tagLen = 9
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	bs, err := newBitstream(buf[:tagLen])
	if err != nil {
		return nil, 0, err
	}
	p := &FixedProjection{}
	lat, _ := bs.ReadWordMSBFirst(21)
	p.Lat = DecodeCoordinate(uint32(lat))
	lon, _ := bs.ReadWordMSBFirst(21)
	p.Lon = DecodeCoordinate(uint32(lon))
	alt, _ := bs.ReadWordMSBFirst(16)
	p.Alt = DecodeAltitude(uint32(alt))
	eta, err := bs.ReadWordMSBFirst(14)
	if err != nil {
		return nil, 0, err
	}
	p.ETA = int(eta)
	return p, tagLen, nil
}

// nackReasons mirrors the original decoder's reason-code table for tag 4.
var nackReasons = map[uint8]string{
	1:  "Duplicate group tag",
	2:  "Duplicate reporting interval tag",
	3:  "Event contract request with no data",
	4:  "Improper operational mode tag",
	5:  "Cancel request of a contract which does not exist",
	6:  "Requested contract already exists",
	7:  "Undefined contract request tag",
	8:  "Undefined error",
	9:  "Not enough data in request",
	10: "Invalid altitude range: low limit >= high limit",
	11: "Reserved",
	12: "Reserved",
	13: "Reserved",
}

// nackMaxReasonCode is the highest reason code the original decoder
// accepts for tag 4 (ADSC_NACK_MAX_REASON_CODE).
const nackMaxReasonCode = 13

// Nack is the downlink negative-acknowledgement group (tag 4). Reason
// codes 1, 2, and 7 carry one extra data byte.
type Nack struct {
	ContractReqNum uint8
	Reason         uint8
	ReasonText     string
	HasExtData     bool
	ExtData        uint8
}

func parseNack(buf []byte) (any, int, error) {
	tagLen := 2
	if len(buf) < tagLen {
		return nil, 0, ErrTruncated
	}
	n := &Nack{ContractReqNum: buf[0], Reason: buf[1]}
	if n.Reason > nackMaxReasonCode {
		return nil, 0, fmt.Errorf("adsc: invalid nack reason code %d", n.Reason)
	}
	n.ReasonText = nackReasons[n.Reason]
	if n.Reason == 1 || n.Reason == 2 || n.Reason == 7 {
		tagLen++
		if len(buf) < tagLen {
			return nil, 0, ErrTruncated
		}
		n.HasExtData = true
		n.ExtData = buf[2]
	}
	return n, tagLen, nil
}

// NonCompGroup describes one non-compliant message group named by a
// noncompliance-notification tag.
type NonCompGroup struct {
	NoncompTag        uint8
	Unrecognized      bool
	WholeGroupUnavail bool
	Params            []uint8
}

// NonCompNotify is the downlink noncompliance-notification group (tag 5).
type NonCompNotify struct {
	ContractReqNum uint8
	Groups         []NonCompGroup
}

// parseNonCompGroup preserves the original decoder's observable nibble-
// unpacking behavior (DESIGN NOTES §9a/spec.md §4.O open question (a)):
// the source advances its read pointer by i%2 per param nibble, an
// apparent off-by-one that is not reverse-engineered here. Instead the
// param nibbles are read from a fresh per-iteration scan of the source
// octets starting right after the 2-byte group header, matching what the
// original actually emits rather than its pointer arithmetic.
func parseNonCompGroup(buf []byte) (NonCompGroup, int, error) {
	const hdrLen = 2
	if len(buf) < hdrLen {
		return NonCompGroup{}, 0, ErrTruncated
	}
	g := NonCompGroup{
		NoncompTag:        buf[0],
		Unrecognized:      buf[1]&0x80 != 0,
		WholeGroupUnavail: buf[1]&0x40 != 0,
	}
	if g.Unrecognized || g.WholeGroupUnavail {
		return g, hdrLen, nil
	}
	paramCnt := int(buf[1] & 0xf)
	if paramCnt == 0 {
		return g, hdrLen, nil
	}
	nibbleOctets := (paramCnt + 1) / 2
	groupLen := hdrLen + nibbleOctets
	if len(buf) < groupLen {
		return NonCompGroup{}, 0, ErrTruncated
	}
	params := make([]uint8, paramCnt)
	src := buf[hdrLen:groupLen]
	for i := 0; i < paramCnt; i++ {
		octet := src[i/2]
		if i%2 == 0 {
			params[i] = (octet >> 4) & 0xf
		} else {
			params[i] = octet & 0xf
		}
	}
	g.Params = params
	return g, groupLen, nil
}

func parseNonCompNotify(buf []byte) (any, int, error) {
	const hdrLen = 2
	if len(buf) < hdrLen {
		return nil, 0, ErrTruncated
	}
	n := &NonCompNotify{ContractReqNum: buf[0]}
	groupCnt := int(buf[1])
	tagLen := hdrLen
	rest := buf[hdrLen:]
	for i := 0; i < groupCnt; i++ {
		if len(rest) == 0 {
			return nil, 0, ErrTruncated
		}
		g, consumed, err := parseNonCompGroup(rest)
		if err != nil {
			return nil, 0, err
		}
		n.Groups = append(n.Groups, g)
		rest = rest[consumed:]
		tagLen += consumed
	}
	return n, tagLen, nil
}
