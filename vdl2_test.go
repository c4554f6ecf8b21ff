package vdl2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKindString(t *testing.T) {
	cases := map[NodeKind]string{
		KindAVLC:               "avlc",
		KindXID:                "xid",
		KindACARS:              "acars",
		KindX25:                "x25",
		KindCLNP:               "clnp",
		KindIDRP:               "idrp",
		KindESIS:               "esis",
		KindICAO:               "icao",
		KindADSC:               "adsc",
		KindReassemblyFragment: "reassembly-fragment",
		KindUnparseable:        "unparseable",
		KindRaw:                "raw",
		NodeKind(999):          "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestAppendChildReturnsChild(t *testing.T) {
	root := &ProtoNode{Name: "root"}
	child := root.AppendChild(&ProtoNode{Name: "child"})
	require.Len(t, root.Children, 1)
	assert.Same(t, child, root.Children[0])
}

func TestUnparseable(t *testing.T) {
	err := errors.New("bad frame")
	n := Unparseable("avlc", []byte{1, 2, 3}, err)
	assert.Equal(t, KindUnparseable, n.Kind)
	assert.Equal(t, "avlc", n.Name)
	assert.Equal(t, []byte{1, 2, 3}, n.Raw)
	assert.Equal(t, err, n.Err)
}

func TestWalkFieldsNilRoot(t *testing.T) {
	tree := &ProtoTree{}
	var visited int
	tree.WalkFields(func(path string, n *ProtoNode) { visited++ })
	assert.Equal(t, 0, visited)
}

func TestWalkFieldsOrderAndPaths(t *testing.T) {
	root := &ProtoNode{Name: "avlc"}
	x25 := root.AppendChild(&ProtoNode{Name: "x25"})
	x25.AppendChild(&ProtoNode{Name: "clnp"})
	tree := &ProtoTree{Root: root}

	var paths []string
	tree.WalkFields(func(path string, n *ProtoNode) { paths = append(paths, path) })

	assert.Equal(t, []string{"/avlc", "/avlc/x25", "/avlc/x25/clnp"}, paths)
}
