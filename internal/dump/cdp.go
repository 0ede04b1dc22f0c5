// internal/dump/cdp.go
package dump

import (
	"github.com/chromedp/cdproto/cdp"

	"github.com/xkilldash9x/domkit/internal/dom"
)

// CDP converts the subtree at root into the DevTools protocol node shape,
// as DOM.getDocument with depth -1 would report it. Node ids are assigned
// in tree order starting at 1 and double as backend node ids. Parent links
// are filled in, so the result also works with cdp.Node helpers such as
// FullXPath.
func CDP(root *dom.Node) *cdp.Node {
	s := &snapshot{ids: make(map[*dom.Node]cdp.NodeID)}
	return s.node(root, nil)
}

type snapshot struct {
	ids  map[*dom.Node]cdp.NodeID
	next cdp.NodeID
}

func (s *snapshot) id(n *dom.Node) cdp.NodeID {
	if id, ok := s.ids[n]; ok {
		return id
	}
	s.next++
	s.ids[n] = s.next
	return s.next
}

func (s *snapshot) node(n *dom.Node, parent *cdp.Node) *cdp.Node {
	id := s.id(n)
	out := &cdp.Node{
		NodeID:         id,
		BackendNodeID:  cdp.BackendNodeID(id),
		NodeType:       cdp.NodeType(n.NodeType().DOMNodeType()),
		NodeName:       n.NodeName(),
		LocalName:      n.LocalName(),
		NodeValue:      n.NodeValue(),
		ChildNodeCount: int64(n.ChildCount()),
		Parent:         parent,
	}
	if parent != nil {
		out.ParentID = parent.NodeID
	}

	switch n.NodeType() {
	case dom.ElementNode:
		out.IsSVG = n.NamespaceURI() == dom.SVGNamespace
		for _, a := range n.Attributes() {
			out.Attributes = append(out.Attributes, a.QualifiedName(), a.Value)
		}
		if sr := n.ShadowRoot(); sr != nil {
			out.ShadowRoots = []*cdp.Node{s.node(sr, out)}
		}
	case dom.DocumentTypeNode:
		out.Name = n.Name()
		out.PublicID = n.PublicID()
		out.SystemID = n.SystemID()
	case dom.ShadowRootNode:
		out.ShadowRootType = cdp.ShadowRootTypeOpen
		if n.Mode() == dom.ShadowRootClosed {
			out.ShadowRootType = cdp.ShadowRootTypeClosed
		}
	}
	if slot := n.AssignedSlot(); slot != nil {
		out.AssignedSlot = &cdp.BackendNode{
			NodeType:      cdp.NodeTypeElement,
			NodeName:      slot.NodeName(),
			BackendNodeID: cdp.BackendNodeID(s.id(slot)),
		}
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out.Children = append(out.Children, s.node(c, out))
	}
	return out
}
