// Package tlv implements the tag/length/value parameter list shared by
// AVLC XID groups, ES-IS options, and IDRP path attributes, per spec.md
// §4.I/§4.M. It is a direct generalization of the original decoder's
// tlv_deserialize, parameterized over one- or two-octet length fields so
// every caller reuses the same truncation and iteration rules instead of
// hand-rolling its own scan loop.
package tlv

import (
	"errors"
	"fmt"
)

// Param is one decoded tag/length/value entry.
type Param struct {
	Tag   uint8
	Value []byte
}

// ErrTruncated is returned when a parameter's declared length runs past
// the end of the buffer.
var ErrTruncated = errors.New("tlv: parameter truncated")

// Deserialize walks buf as a sequence of {tag:1, len:lenOctets, value}
// parameters (lenOctets is 1 or 2, big-endian when 2), returning every
// complete parameter found. Per spec.md §7's TruncatedField policy, a
// parameter whose declared length overruns the buffer stops the scan and
// returns everything parsed so far alongside ErrTruncated; trailing
// octets that don't form a full parameter are silently ignored, matching
// tlv_deserialize's "unparsed octets left" warning-only behavior.
func Deserialize(buf []byte, lenOctets int) ([]Param, error) {
	if lenOctets != 1 && lenOctets != 2 {
		return nil, fmt.Errorf("tlv: unsupported length width %d", lenOctets)
	}
	minLen := 1 + lenOctets
	var out []Param
	for len(buf) >= minLen {
		tag := buf[0]
		buf = buf[1:]
		var plen int
		if lenOctets == 1 {
			plen = int(buf[0])
		} else {
			plen = int(buf[0])<<8 | int(buf[1])
		}
		buf = buf[lenOctets:]
		if plen > len(buf) {
			return out, ErrTruncated
		}
		out = append(out, Param{Tag: tag, Value: buf[:plen:plen]})
		buf = buf[plen:]
	}
	return out, nil
}

// Search returns the value of the first parameter with the given tag, or
// (nil, false) if none is present.
func Search(params []Param, tag uint8) ([]byte, bool) {
	for _, p := range params {
		if p.Tag == tag {
			return p.Value, true
		}
	}
	return nil, false
}
