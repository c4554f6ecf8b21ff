package xid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGroup(gid uint8, tlvBytes []byte) []byte {
	out := []byte{gid, byte(len(tlvBytes) >> 8), byte(len(tlvBytes))}
	return append(out, tlvBytes...)
}

func TestParseGSIF(t *testing.T) {
	// VDL-private group: a single modulation-support parameter, no
	// connection-management parameter present, so h/r are forced to 1.
	priv := buildGroup(groupPrivate, []byte{ParamModulation, 1, 0x2})
	buf := append([]byte{fmtID}, priv...)

	msg, err := Parse(1, 1, buf)
	require.NoError(t, err)
	assert.True(t, msg.IsGSIF())
	assert.Equal(t, "GSIF", msg.Type.String())

	mod, ok := DecodeModulation(msg.PrivateParams[0].Value)
	require.True(t, ok)
	assert.Equal(t, ModulationVDLM2, mod)
}

func TestParseWithConnMgmt(t *testing.T) {
	priv := buildGroup(groupPrivate, []byte{paramConnMgmt, 1, 0x3}) // h=1 r=1
	buf := append([]byte{fmtID}, priv...)

	msg, err := Parse(0, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, Type(0x3), msg.Type)
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(0, 0, []byte{fmtID, 0, 0})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseBadFormatID(t *testing.T) {
	buf := append([]byte{0x00}, buildGroup(groupPrivate, []byte{0, 1, 0})...)
	_, err := Parse(0, 0, buf)
	assert.ErrorIs(t, err, ErrBadFormatID)
}

func TestParseMissingPrivateGroup(t *testing.T) {
	buf := append([]byte{fmtID}, buildGroup(groupPublic, []byte{1, 1, 'A'})...)
	_, err := Parse(0, 0, buf)
	assert.ErrorIs(t, err, ErrNoPrivateParams)
}

func TestDecodeAutotuneFrequency(t *testing.T) {
	// freq field 0x000 -> (0+10000)*10 = 100000 kHz = 100.000 MHz
	f, ok := DecodeAutotuneFrequency([]byte{0x20, 0x00})
	require.True(t, ok)
	assert.Equal(t, ModulationVDLM2, f.Modulation)
	assert.Equal(t, uint32(100_000_000), f.FreqHz)
}

func TestDecodeAircraftLocation(t *testing.T) {
	loc, ok := DecodeAircraftLocation([]byte{0x00, 0x00, 0x00})
	require.True(t, ok)
	assert.Equal(t, int32(0), loc.LatTenths)
	assert.Equal(t, int32(0), loc.LonTenths)
	assert.False(t, loc.HasAlt)
}
