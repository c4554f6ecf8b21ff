package reassembly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkippedNonFragmented(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	st := tbl.Add(1, []byte{1, 2, 3}, 0, 3, true, now, time.Second)
	assert.Equal(t, StatusSkipped, st)
	_, ok := tbl.PayloadGet(1)
	assert.False(t, ok)
}

func TestCompleteOutOfOrder(t *testing.T) {
	tbl := NewTable[string](100)
	now := time.Unix(0, 0)

	st := tbl.Add("a", []byte{4, 5}, 4, 6, true, now, time.Second)
	assert.Equal(t, StatusInProgress, st)

	st = tbl.Add("a", []byte{0, 1, 2, 3}, 0, 6, false, now, time.Second)
	require.Equal(t, StatusComplete, st)

	payload, ok := tbl.PayloadGet("a")
	require.True(t, ok)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 0}, payload)

	// Entry removed after PayloadGet.
	_, ok = tbl.PayloadGet("a")
	assert.False(t, ok)
}

func TestDuplicateFragment(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	st := tbl.Add(1, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0, 20, false, now, time.Second)
	require.Equal(t, StatusInProgress, st)
	st = tbl.Add(1, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0, 20, false, now, time.Second)
	assert.Equal(t, StatusDuplicate, st)
}

func TestOverlapFragment(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	st := tbl.Add(1, make([]byte, 10), 0, 20, false, now, time.Second)
	require.Equal(t, StatusInProgress, st)
	st = tbl.Add(1, make([]byte, 10), 5, 20, false, now, time.Second)
	assert.Equal(t, StatusOverlap, st)
}

func TestBadOffset(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	st := tbl.Add(1, []byte{1, 2, 3}, 10, 10, false, now, time.Second)
	assert.Equal(t, StatusBadOffset, st)
}

func TestBadLengthFinalFlagMismatch(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	// final=true but fragment does not reach totalLen.
	st := tbl.Add(1, []byte{1, 2, 3}, 0, 10, true, now, time.Second)
	assert.Equal(t, StatusBadLength, st)
}

func TestArgsInvalid(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	assert.Equal(t, StatusArgsInvalid, tbl.Add(1, nil, 0, 10, false, now, time.Second))
	assert.Equal(t, StatusArgsInvalid, tbl.Add(1, []byte{1}, -1, 10, false, now, time.Second))
	assert.Equal(t, StatusArgsInvalid, tbl.Add(1, []byte{1}, 0, 0, false, now, time.Second))
}

func TestExpiryStartsFreshEntry(t *testing.T) {
	tbl := NewTable[int](1) // cleanup every fragment
	start := time.Unix(0, 0)

	st := tbl.Add(1, []byte{1, 2, 3}, 0, 10, false, start, time.Second)
	require.Equal(t, StatusInProgress, st)

	// Arrives after the entry's timeout has elapsed: old entry dropped,
	// fresh one started.
	later := start.Add(2 * time.Second)
	st = tbl.Add(1, []byte{1, 2, 3}, 0, 10, false, later, time.Second)
	assert.Equal(t, StatusInProgress, st)
}

func TestCleanupSweepsOtherExpiredEntries(t *testing.T) {
	tbl := NewTable[int](2)
	start := time.Unix(0, 0)

	tbl.Add(1, []byte{1, 2, 3}, 0, 10, false, start, time.Millisecond)
	tbl.Add(2, []byte{1, 2, 3}, 0, 10, false, start, time.Hour)

	// With interval=2 cleanup runs on every second Add; the fourth Add
	// below runs it at a much later timestamp. Entry 1 should be swept,
	// entry 2 should survive.
	later := start.Add(time.Minute)
	tbl.Add(3, []byte{1}, 0, 10, false, later, time.Hour)

	st := tbl.Add(1, []byte{1, 2, 3}, 0, 10, false, later, time.Hour)
	assert.Equal(t, StatusInProgress, st, "expired entry should have been dropped and restarted")
}

func TestPayloadGetBeforeComplete(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)
	tbl.Add(1, []byte{1, 2, 3}, 0, 10, false, now, time.Second)
	_, ok := tbl.PayloadGet(1)
	assert.False(t, ok)
}

// TestProgressiveTotalLen covers the X.25 DATA-segmentation case (spec.md
// §4.K/§4.P): the PDU's total length isn't known from the fragment header
// the way it is for e.g. IPv4 reassembly, only once the final (More=false)
// fragment arrives. Earlier Add calls pass a placeholder totalLen that is
// larger than anything seen so far; the entry's recorded totalLen must
// track the latest call so completion is detected correctly once the real
// length is known.
func TestProgressiveTotalLen(t *testing.T) {
	tbl := NewTable[int](100)
	now := time.Unix(0, 0)

	st := tbl.Add(1, []byte{1, 2, 3}, 0, 1<<30, false, now, time.Second)
	require.Equal(t, StatusInProgress, st)

	st = tbl.Add(1, []byte{4, 5, 6}, 3, 1<<30, false, now, time.Second)
	require.Equal(t, StatusInProgress, st)

	st = tbl.Add(1, []byte{7, 8}, 6, 8, true, now, time.Second)
	require.Equal(t, StatusComplete, st)

	payload, ok := tbl.PayloadGet(1)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 0}, payload)
}
