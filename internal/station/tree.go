package station

import (
	vdl2 "github.com/vdl2rx/vdl2rx"
	"github.com/vdl2rx/vdl2rx/internal/acars"
	"github.com/vdl2rx/vdl2rx/internal/adsc"
	"github.com/vdl2rx/vdl2rx/internal/avlc"
	"github.com/vdl2rx/vdl2rx/internal/avlc/xid"
	"github.com/vdl2rx/vdl2rx/internal/clnp"
	"github.com/vdl2rx/vdl2rx/internal/esis"
	"github.com/vdl2rx/vdl2rx/internal/icao"
	"github.com/vdl2rx/vdl2rx/internal/idrp"
)

// buildTree turns one avlc.Decode result into a vdl2.ProtoTree, walking
// down whichever upper-layer chain Decode actually populated. It is the
// Go-native analogue of the original decoder's per-layer
// "..._to_proto_tree" callbacks: each layer appends one child node
// rather than owning the whole tree's shape, so adding a new decodable
// layer here never requires touching the layers above it.
func buildTree(d *avlc.Decoded) *vdl2.ProtoNode {
	root := &vdl2.ProtoNode{Kind: vdl2.KindAVLC, Name: "avlc", Payload: d.Frame}

	switch {
	case d.XID != nil:
		root.AppendChild(xidNode(d.XID))
	case d.ACARS != nil:
		root.AppendChild(acarsNode(d.ACARS))
	case d.X25 != nil:
		x25Node := root.AppendChild(&vdl2.ProtoNode{Kind: vdl2.KindX25, Name: "x25", Payload: d.X25})
		appendNetworkLayer(x25Node, d)
	case d.DispatchErr != nil:
		root.AppendChild(vdl2.Unparseable("payload", d.Frame.Payload, d.DispatchErr))
	}

	return root
}

func xidNode(msg *xid.Message) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindXID, Name: "xid", Payload: msg}
}

func acarsNode(msg *acars.Message) *vdl2.ProtoNode {
	n := &vdl2.ProtoNode{Kind: vdl2.KindACARS, Name: "acars", Payload: msg}
	if msg.ADSC != nil {
		n.AppendChild(adscNode(msg.ADSC))
	}
	return n
}

func adscNode(msg *adsc.Message) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindADSC, Name: "adsc", Payload: msg}
}

// appendNetworkLayer attaches whichever of CLNP/ESIS/IDRP/ICAO the
// dispatch layer populated underneath an X.25 node, mirroring
// DispatchNetworkLayer/setCLNPResult's own one-level-deep nesting.
func appendNetworkLayer(parent *vdl2.ProtoNode, d *avlc.Decoded) {
	switch {
	case d.CLNP != nil:
		clnpNode := parent.AppendChild(clnpTreeNode(d.CLNP))
		switch {
		case d.ESIS != nil:
			clnpNode.AppendChild(esisNode(d.ESIS))
		case d.IDRP != nil:
			clnpNode.AppendChild(idrpNode(d.IDRP))
		case d.ICAO != nil:
			clnpNode.AppendChild(icaoNode(d.ICAO))
		case d.DispatchErr != nil:
			clnpNode.AppendChild(vdl2.Unparseable("clnp-payload", d.CLNP.Payload, d.DispatchErr))
		}
	case d.ESIS != nil:
		parent.AppendChild(esisNode(d.ESIS))
	case d.IDRP != nil:
		parent.AppendChild(idrpNode(d.IDRP))
	case d.DispatchErr != nil:
		parent.AppendChild(vdl2.Unparseable("network-layer", nil, d.DispatchErr))
	}
}

func clnpTreeNode(pdu *clnp.PDU) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindCLNP, Name: "clnp", Payload: pdu}
}

func esisNode(pdu *esis.PDU) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindESIS, Name: "es-is", Payload: pdu}
}

func idrpNode(pdu *idrp.PDU) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindIDRP, Name: "idrp", Payload: pdu}
}

func icaoNode(apdu *icao.APDU) *vdl2.ProtoNode {
	return &vdl2.ProtoNode{Kind: vdl2.KindICAO, Name: "icao", Payload: apdu, Raw: apdu.Raw}
}
