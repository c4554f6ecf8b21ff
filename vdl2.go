// Package vdl2 defines the core types that flow through the VDL Mode 2
// receive pipeline, from burst demodulation through protocol decode to
// the formatter boundary.
package vdl2

import "time"

// Metadata travels with a decoded frame through every layer above burst
// framing. It is immutable once constructed; each layer that forwards a
// frame to an output copies it by value rather than mutating a shared
// instance.
type Metadata struct {
	StationID      string
	Timestamp      time.Time
	Frequency      uint32  // Hz
	FramePowerDBFS  float64
	NoiseFloorDBFS  float64
	PPMError        float64
	BurstLenOctets  int
	FECCorrections  int
	SyndromeWeight  int
	ChannelIndex    int
}

// NodeKind tags the variant held by a ProtoNode. Every decode layer appends
// nodes of its own kind(s) to the tree as it descends.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindAVLC
	KindXID
	KindACARS
	KindX25
	KindCLNP
	KindIDRP
	KindESIS
	KindICAO
	KindADSC
	KindReassemblyFragment
	KindUnparseable
	KindRaw
)

func (k NodeKind) String() string {
	switch k {
	case KindAVLC:
		return "avlc"
	case KindXID:
		return "xid"
	case KindACARS:
		return "acars"
	case KindX25:
		return "x25"
	case KindCLNP:
		return "clnp"
	case KindIDRP:
		return "idrp"
	case KindESIS:
		return "esis"
	case KindICAO:
		return "icao"
	case KindADSC:
		return "adsc"
	case KindReassemblyFragment:
		return "reassembly-fragment"
	case KindUnparseable:
		return "unparseable"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ProtoNode is one node of the recursively decoded protocol tree. Payload
// holds the concrete decoded struct for Kind (e.g. *avlc.Frame for
// KindAVLC); callers type-assert against Kind. Nodes are allocated fresh
// per burst — there is no pooling or static reuse of parser buffers, so
// ownership of the whole tree transfers cleanly to whoever receives it
// from the decoder thread.
type ProtoNode struct {
	Kind     NodeKind
	Name     string
	Payload  any
	Raw      []byte // original octets at this layer, kept for unparseable/raw nodes
	Err      error  // non-nil if this layer failed; Payload/Raw still valid per spec's recovery policy
	Children []*ProtoNode
}

// ProtoTree is the root of one burst's decoded message. It always carries
// Metadata, even when decoding failed at the very first layer.
type ProtoTree struct {
	Meta Metadata
	Root *ProtoNode
}

// AppendChild adds a child node and returns it, for fluent construction in
// decode functions.
func (n *ProtoNode) AppendChild(child *ProtoNode) *ProtoNode {
	n.Children = append(n.Children, child)
	return child
}

// Unparseable builds a leaf node carrying the original bytes for a layer
// that failed to decode, per spec.md §7's recovery policy: processing
// continues at the level above rather than aborting the whole burst.
func Unparseable(name string, raw []byte, err error) *ProtoNode {
	return &ProtoNode{Kind: KindUnparseable, Name: name, Raw: raw, Err: err}
}

// WalkFields performs a depth-first walk of the tree, invoking fn once per
// node with a slash-joined path. This lets a formatter (left as an
// external collaborator by spec.md §1) flatten the tree into text/JSON
// without depending on every concrete node payload type.
func (t *ProtoTree) WalkFields(fn func(path string, n *ProtoNode)) {
	if t.Root == nil {
		return
	}
	var walk func(prefix string, n *ProtoNode)
	walk = func(prefix string, n *ProtoNode) {
		path := prefix + "/" + n.Name
		fn(path, n)
		for _, c := range n.Children {
			walk(path, c)
		}
	}
	walk("", t.Root)
}

// SampleSource is the only interface the DSP front end needs from an SDR
// driver or a file reader: a stream of complex baseband samples normalized
// to [-1, 1], at whatever sample rate the source declares. SDR device
// drivers are out of scope (spec.md §1) — this is the seam they would
// implement against.
type SampleSource interface {
	// Read fills buf with up to len(buf) complex samples, returning the
	// number read. Returns io.EOF (or a wrapped form of it) when the
	// source is exhausted.
	Read(buf []complex64) (int, error)
	// SampleRate is the fixed rate, in Hz, samples are produced at.
	SampleRate() uint32
}

// Formatter is the only interface an output sink needs: turn a decoded
// tree into bytes. Concrete sinks (file, UDP, ZMQ) are out of scope
// (spec.md §1); TextFormatter below is a reference implementation used by
// tests and the CLI's default output.
type Formatter interface {
	Format(tree *ProtoTree) ([]byte, error)
}
