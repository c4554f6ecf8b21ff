// Package acars decodes ACARS messages carried in VDL2 AVLC I-frames
// whose payload starts with the 0xFF 0xFF 0x01 SNDCF marker, per
// spec.md §4.J. Decoding follows acarsdec/dumpvdl2's field layout: a
// fixed 7-bit-stripped header (mode, registration, ack, label, block
// id, start-of-text byte) followed by an optional message
// number/flight-id pair and free text.
package acars

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/vdl2rx/vdl2rx/internal/adsc"
)

const (
	delByte = 0x7f
	etx     = 0x83
	etb     = 0x97

	// minLen is the shortest possible ACARS payload: header plus the
	// trailing CRC and DEL octets this package does not itself retain.
	minLen = 16

	// maxTextLen truncates abnormally long message text the way the
	// original decoder's fixed ACARSMSG_BUFSIZE buffer did.
	maxTextLen = 2047
)

// Application names the upper-layer protocol riding inside the ACARS
// message text, when recognized.
type Application int

const (
	AppNone Application = iota
	AppFANS1ADSC
	AppFANS1ACPDLC
)

// Direction selects which ADS-C tag dictionary governs a FANS-1/A
// handoff's hex payload; it mirrors adsc.Direction since this package
// does not itself know the AVLC frame's ground/air source, only its
// caller (the AVLC dispatch layer) does.
type Direction = adsc.Direction

const (
	Downlink = adsc.Downlink
	Uplink   = adsc.Uplink
)

// Message is one decoded ACARS message.
type Message struct {
	Mode  byte
	Reg   string
	Ack   byte
	Label string
	BlkID byte
	No    string
	FID   string
	Text  string

	Application Application
	ADSC        *adsc.Message
}

// ErrTooShort is returned for a payload shorter than the fixed header.
var ErrTooShort = errors.New("acars: payload too short")

// ErrNoTrailer is returned when the expected ETX/ETB + DEL trailer is
// missing.
var ErrNoTrailer = errors.New("acars: missing ETX/ETB+DEL trailer")

// Parse decodes buf (the AVLC I-frame payload immediately following the
// 0xFF 0xFF 0x01 marker, CRC and trailer still attached) into a Message.
// noData reports whether the message carries no free text, mirroring
// the MSGFLT_ACARS_NODATA/MSGFLT_ACARS_DATA distinction used to filter
// keepalive-only traffic upstream.
func Parse(buf []byte) (msg *Message, noData bool, err error) {
	return ParseWithDirection(buf, Downlink)
}

// ParseWithDirection is Parse with an explicit message direction, used
// when a FANS-1/A handoff's hex payload must be decoded against the
// uplink or downlink ADS-C tag dictionary (spec.md §4.O); the AVLC
// dispatch layer knows the frame's ground/air source and supplies it.
func ParseWithDirection(buf []byte, dir Direction) (msg *Message, noData bool, err error) {
	if len(buf) < minLen {
		return nil, true, ErrTooShort
	}
	if buf[len(buf)-1] != delByte {
		return nil, true, ErrNoTrailer
	}
	if buf[len(buf)-4] != etx && buf[len(buf)-4] != etb {
		return nil, true, ErrNoTrailer
	}
	// Drop the trailing CRC (2 octets, not separately verified here) and
	// the ETX/ETB+DEL marker.
	body := append([]byte(nil), buf[:len(buf)-4]...)
	for i := range body {
		body[i] &= 0x7f
	}

	k := 0
	m := &Message{}
	m.Mode = body[k]
	k++

	reg := make([]byte, 7)
	copy(reg, body[k:k+7])
	k += 7
	m.Reg = strings.TrimRight(string(reg), "\x00")

	m.Ack = body[k]
	k++
	if m.Ack == 0x15 {
		m.Ack = '!'
	}

	label := [2]byte{body[k], body[k+1]}
	k += 2
	if label[1] == 0x7f {
		label[1] = 'd'
	}
	m.Label = string(label[:])

	m.BlkID = body[k]
	k++
	if m.BlkID == 0 {
		m.BlkID = ' '
	}

	if k >= len(body) {
		// No text: the ETX stripped above took the place of the
		// start-of-text byte.
		return m, true, nil
	}
	bs := body[k]
	k++

	noData = true
	if k >= len(body) {
		return m, noData, nil
	}

	if bs != 0x03 {
		if m.Mode <= 'Z' && m.BlkID <= '9' {
			end := k + 4
			if end > len(body) {
				end = len(body)
			}
			m.No = string(body[k:end])
			k = end

			end = k + 6
			if end > len(body) {
				end = len(body)
			}
			m.FID = string(body[k:end])
			k = end
		}

		text := body[k:]
		if len(text) > maxTextLen {
			text = text[:maxTextLen]
		}
		if len(text) > 0 {
			m.Text = string(text)
			noData = false
			detectApplication(m, dir)
		}
	}

	return m, noData, nil
}

// detectApplication recognizes FANS-1/A ADS-C handoff messages: label
// A6, B6, or H1 carrying a ".ADS" marker followed by the aircraft
// registration and a hex-encoded ADS-C payload. The registration
// comparison guards against coincidental ".ADS" substrings in ordinary
// free text. dir selects the tag dictionary the embedded ADS-C decoder
// uses; the message id is always ADS since this handoff path carries
// ADS reports, never the native-AVLC disconnect-request form.
func detectApplication(m *Message, dir Direction) {
	switch m.Label {
	case "A6", "B6", "H1":
	default:
		return
	}
	idx := strings.Index(m.Text, ".ADS")
	if idx < 0 {
		return
	}
	rest := m.Text[idx+4:]
	if len(rest) < 7 || rest[:7] != m.Reg {
		return
	}
	payload, err := hex.DecodeString(strings.TrimSpace(rest[7:]))
	if err != nil || len(payload) == 0 {
		return
	}
	adscMsg, err := adsc.ParseMessage(adsc.MsgADS, payload, dir)
	if err != nil {
		return
	}
	m.Application = AppFANS1ADSC
	m.ADSC = adscMsg
}

// ShowRegAndFlight reports whether a formatter should print the
// registration/flight-id line for this message: the original decoder
// suppresses it once mode reaches ']' (0x5d) or beyond, a convention
// carried forward unchanged.
func (m *Message) ShowRegAndFlight() bool {
	return m.Mode < 0x5d
}
