package vdl2

import (
	"fmt"
	"strings"
)

// TextFormatter renders a ProtoTree as an indented, human-readable text
// block. It is a reference Formatter implementation — the real output
// formatters (text/JSON/UDP/ZMQ sinks) are external collaborators per
// spec.md §1; this one exists so tests and cmd/vdl2dump have something to
// print without pulling in an output-sink dependency.
type TextFormatter struct{}

// Format implements Formatter.
func (TextFormatter) Format(tree *ProtoTree) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] freq: %d Hz  pwr: %.1f dBFS  noise: %.1f dBFS  ppm: %.1f  corrections: %d\n",
		tree.Meta.Timestamp.Format("2006-01-02 15:04:05.000"),
		tree.Meta.Frequency, tree.Meta.FramePowerDBFS, tree.Meta.NoiseFloorDBFS,
		tree.Meta.PPMError, tree.Meta.FECCorrections)
	if tree.Root != nil {
		writeNode(&b, tree.Root, 1)
	}
	return []byte(b.String()), nil
}

func writeNode(b *strings.Builder, n *ProtoNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Err != nil {
		fmt.Fprintf(b, "%s%s: unparseable (%v), %d raw bytes\n", indent, n.Name, n.Err, len(n.Raw))
		return
	}
	fmt.Fprintf(b, "%s%s\n", indent, n.Name)
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
}
