package avlc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdl2rx/vdl2rx/internal/crc16"
)

func TestParseControlFieldClassifiesIFrame(t *testing.T) {
	// bits: NR=3 P=1 NS=2 0 -> 0b011_1_010_0 = 0x74
	cf := ParseControlField(0x74)
	assert.Equal(t, FrameI, cf.Kind)
	assert.EqualValues(t, 2, cf.SendSeq)
	assert.EqualValues(t, 1, cf.PF)
	assert.EqualValues(t, 3, cf.RecvSeq)
}

func TestParseControlFieldClassifiesSFrame(t *testing.T) {
	cf := ParseControlField(0x01) // RR, P/F=0, NR=0
	assert.Equal(t, FrameS, cf.Kind)
	assert.Equal(t, SReceiveReady, cf.SFunc)
}

func TestParseControlFieldClassifiesUFrame(t *testing.T) {
	cf := ParseControlField(0xAF) // 0xAF>>2 = 0x2b = XID
	assert.Equal(t, FrameU, cf.Kind)
	assert.Equal(t, UXID, cf.UFunc)
}

func TestParseAddrFieldsAreDerivedFromValue(t *testing.T) {
	buf := []byte{0x3a, 0xc4, 0x58, 0x91}
	got := ParseAddr(buf)
	assert.Equal(t, AddrType((got.Value>>24)&0x7), got.Type)
	assert.EqualValues(t, (got.Value>>27)&0x1, got.Status)
	assert.Less(t, got.Value, uint32(1<<28))
}

func TestParseAddrIsDeterministic(t *testing.T) {
	buf := []byte{0x3a, 0xc4, 0x58, 0x91}
	assert.Equal(t, ParseAddr(buf), ParseAddr(buf))
}

func TestParseRejectsBadFCS(t *testing.T) {
	raw := make([]byte, MinLen)
	_, err := Parse(raw)
	assert.ErrorIs(t, err, ErrBadFCS)
}

func TestParseAcceptsGoodFCS(t *testing.T) {
	body := make([]byte, MinLen-2)
	body[8] = 0x01 // S-frame RR control octet
	framed := crc16.Append(body)

	f, err := Parse(framed)
	require.NoError(t, err)
	assert.Equal(t, FrameS, f.Control.Kind)
}
