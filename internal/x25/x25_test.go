package x25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTooShort(t *testing.T) {
	_, err := Parse([]byte{0x11, 0x00})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseNotMod8(t *testing.T) {
	_, err := Parse([]byte{0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrNotMod8)
}

func TestParseDataPacket(t *testing.T) {
	// GFI=1 (mod8), chan_num=5, DATA type octet with M=1, SSEQ=2, RSEQ=3,
	// followed by SN_PROTO_CLNP payload.
	typeOctet := byte(0)
	typeOctet |= (2 & 0x7) << 1 // sseq
	typeOctet |= 1 << 4         // M
	typeOctet |= (3 & 0x7) << 5 // rseq
	buf := []byte{0x10, 0x05, typeOctet, SNProtoCLNP, 0xAA}

	pkt, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeData, pkt.Type)
	assert.True(t, pkt.More)
	assert.EqualValues(t, 2, pkt.SendSeq)
	assert.EqualValues(t, 3, pkt.RecvSeq)
	assert.EqualValues(t, SNProtoCLNP, pkt.SNProto)
}

func TestParseCallRequest(t *testing.T) {
	// calling="13" (2 digits), called="450" (3 digits) -> 5 nibbles -> 3 octets
	addrBlock := []byte{0x23, 0x13, 0x45, 0x00} // counts nibble 0x23=2,3; digits 1,3,4,5,0 then pad
	buf := []byte{0x10, 0x01, byte(TypeCallRequest)}
	buf = append(buf, addrBlock...)
	buf = append(buf, 0x00)             // facilities length 0
	buf = append(buf, SNProtoCLNP, 0xBB) // user data, no SNDCF

	pkt, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeCallRequest, pkt.Type)
	assert.Equal(t, "13", pkt.Calling.Digits)
	assert.Equal(t, "450", pkt.Called.Digits)
	assert.EqualValues(t, SNProtoCLNP, pkt.SNProto)
}

func TestPacketTypeString(t *testing.T) {
	assert.Equal(t, "CALL_REQUEST", TypeCallRequest.String())
	assert.Equal(t, "RR", TypeRR.String())
}
