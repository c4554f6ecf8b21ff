// Package crc16 implements the CRC-16/CCITT-reversed checksum used as the
// AVLC frame check sequence (FCS), per spec.md §4.C/§4.H.
package crc16

// Init is the FCS initial register value.
const Init uint16 = 0xFFFF

// ResidueOK is the value crc16(data || be16(crc16(data))) always reduces
// to, the standard receiver residue check (spec.md §8).
const ResidueOK uint16 = 0x1D0F

var table [256]uint16

func init() {
	const poly = 0x8408 // CRC-16/CCITT, reversed (x^16+x^12+x^5+1 bit-reversed)
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for b := 0; b < 8; b++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
}

// Checksum computes the running CRC-16/CCITT-reversed over data, starting
// from crc (pass Init for a fresh computation).
func Checksum(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = (crc >> 8) ^ table[byte(crc)^b]
	}
	return crc
}

// Verify reports whether the last two octets of frame (little-endian FCS)
// match the CRC of everything before them.
func Verify(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	payload := frame[:len(frame)-2]
	want := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	return Checksum(Init, payload) == want
}

// Append computes the FCS over data and returns data with the
// little-endian FCS appended.
func Append(data []byte) []byte {
	crc := Checksum(Init, data)
	return append(append([]byte{}, data...), byte(crc), byte(crc>>8))
}
