package adsc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCoordinateZero(t *testing.T) {
	// 0x000000 is the zero-degree encoding regardless of sign extension.
	assert.InDelta(t, 0.0, DecodeCoordinate(0), 1e-9)
}

func TestDecodeAltitude(t *testing.T) {
	assert.Equal(t, 400, DecodeAltitude(100))
	// -1 in 16-bit two's complement is 0xFFFF.
	assert.Equal(t, -4, DecodeAltitude(0xFFFF))
}

func TestDecodeHeadingWrapsNegative(t *testing.T) {
	// A negative 12-bit heading value must wrap into [0, 360).
	h := DecodeHeading(0xFFF) // -1 in 12-bit two's complement
	assert.GreaterOrEqual(t, h, 0.0)
	assert.Less(t, h, 360.0)
}

func TestParseMessageBasicReport(t *testing.T) {
	// tag 7 (basic report, 10-byte body) + 2-byte CRC tail.
	body := make([]byte, 1+10+crcLen)
	body[0] = 7
	buf := body
	msg, err := ParseMessage(MsgADS, buf, Downlink)
	require.NoError(t, err)
	assert.False(t, msg.Err)
	require.Len(t, msg.Tags, 1)
	assert.Equal(t, uint8(7), msg.Tags[0].Tag)
	_, ok := msg.Tags[0].Data.(*BasicReport)
	assert.True(t, ok)
}

func TestParseMessageUnknownTagSetsErr(t *testing.T) {
	buf := []byte{0xFE, 0, 0} // tag 0xFE is not in any dictionary + CRC
	msg, err := ParseMessage(MsgADS, buf, Downlink)
	require.NoError(t, err)
	assert.True(t, msg.Err)
	assert.Empty(t, msg.Tags)
}

func TestParseMessageDIS(t *testing.T) {
	buf := []byte{5, 0, 0} // reason code 5 + CRC tail
	msg, err := ParseMessage(MsgDIS, buf, Downlink)
	require.NoError(t, err)
	require.Len(t, msg.Tags, 1)
	assert.Equal(t, uint8(reasonCodeTag), msg.Tags[0].Tag)
	assert.Equal(t, uint8(5), msg.Tags[0].Data)
}

func TestParseMessageTooShort(t *testing.T) {
	_, err := ParseMessage(MsgADS, []byte{1}, Downlink)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseNackExtData(t *testing.T) {
	data, consumed, err := parseNack([]byte{3, 1, 0x42})
	require.NoError(t, err)
	n := data.(*Nack)
	assert.Equal(t, uint8(3), n.ContractReqNum)
	assert.Equal(t, uint8(1), n.Reason)
	assert.True(t, n.HasExtData)
	assert.Equal(t, uint8(0x42), n.ExtData)
	assert.Equal(t, 3, consumed)
}

func TestParseNonCompGroupPairing(t *testing.T) {
	// tag=9, flags byte with param_cnt=3 (low nibble), one nibble octet
	// holding params 0xA,0xB then 0xC in the high nibble of the next.
	buf := []byte{9, 0x03, 0xAB, 0xC0}
	g, n, err := parseNonCompGroup(buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), g.NoncompTag)
	assert.Equal(t, []uint8{0xA, 0xB, 0xC}, g.Params)
	assert.Equal(t, 4, n)
}

func TestParseContractRequestNestedTags(t *testing.T) {
	// contract_num=1, then tag 11 (reporting interval, 1-byte payload).
	buf := []byte{1, 11, 0x05}
	data, consumed, err := parseContractRequest(buf)
	require.NoError(t, err)
	r := data.(*ContractRequest)
	assert.Equal(t, uint8(1), r.ContractNum)
	require.Len(t, r.Requested, 1)
	assert.Equal(t, uint8(11), r.Requested[0].Tag)
	assert.Equal(t, 3, consumed)
}
