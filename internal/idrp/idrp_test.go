package idrp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(typ Type, pduLen int) []byte {
	buf := make([]byte, HdrLen)
	buf[0] = 0 // pid
	binary.BigEndian.PutUint16(buf[1:3], uint16(pduLen))
	buf[3] = byte(typ)
	return buf
}

func TestParseKeepalive(t *testing.T) {
	hdr := header(TypeKeepalive, HdrLen)
	pdu, err := Parse(hdr)
	require.NoError(t, err)
	assert.Equal(t, TypeKeepalive, pdu.Hdr.Type)
}

func TestParseOpen(t *testing.T) {
	body := []byte{1, 0, 60, 0, 128, 2, 'A', 'B'}
	buf := append(header(TypeOpen, HdrLen+len(body)), body...)
	pdu, err := Parse(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 60, pdu.OpenHoldtime)
	assert.EqualValues(t, 128, pdu.OpenMaxPDUSize)
	assert.Equal(t, []byte{'A', 'B'}, pdu.OpenSrcRDI)
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, HdrLen-1))
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseErrorFSM(t *testing.T) {
	body := []byte{4, 0x23} // FSM error, bispdu type 2, state 3
	buf := append(header(TypeError, HdrLen+len(body)), body...)
	pdu, err := Parse(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pdu.ErrFSMBISPDUType)
	assert.EqualValues(t, 3, pdu.ErrFSMState)
}
