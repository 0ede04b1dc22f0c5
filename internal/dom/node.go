// internal/dom/node.go
package dom

import (
	"fmt"
	"strings"
)

// NodeType is the closed set of node kinds. Values match the DOM nodeType
// constants except ShadowRootNode, which the DOM reports as a fragment.
type NodeType uint8

const (
	ElementNode               NodeType = 1
	AttributeNode             NodeType = 2
	TextNode                  NodeType = 3
	CDATASectionNode          NodeType = 4
	ProcessingInstructionNode NodeType = 7
	CommentNode               NodeType = 8
	DocumentNode              NodeType = 9
	DocumentTypeNode          NodeType = 10
	DocumentFragmentNode      NodeType = 11
	ShadowRootNode            NodeType = 64
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case AttributeNode:
		return "Attr"
	case TextNode:
		return "Text"
	case CDATASectionNode:
		return "CDATASection"
	case ProcessingInstructionNode:
		return "ProcessingInstruction"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	case DocumentTypeNode:
		return "DocumentType"
	case DocumentFragmentNode:
		return "DocumentFragment"
	case ShadowRootNode:
		return "ShadowRoot"
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

// DOMNodeType returns the numeric nodeType a DOM binding reports.
func (t NodeType) DOMNodeType() int {
	if t == ShadowRootNode {
		return int(DocumentFragmentNode)
	}
	return int(t)
}

// Node is one tree node. Exactly one of the payload pointers is non-nil,
// selected by typ (none for Document and DocumentFragment nodes).
//
// parent, prev, next, doc and assignedSlot are non-owning. Ownership flows
// down through first/last child and through refs held by external holders.
type Node struct {
	typ    NodeType
	doc    *Document
	parent *Node
	first  *Node
	last   *Node
	prev   *Node
	next   *Node

	refs      int
	destroyed bool

	// assignedSlot is the slot a slottable (element or text) is assigned to.
	assignedSlot *Node

	elem    *elementData
	char    *characterData
	doctype *doctypeData
	attr    *attrData
	shadow  *shadowData
}

type characterData struct {
	data   string
	target string // processing instruction target
}

type doctypeData struct {
	name     string
	publicID string
	systemID string
}

// NodeType returns the kind tag.
func (n *Node) NodeType() NodeType { return n.typ }

// OwnerDocument returns the document context the node belongs to.
func (n *Node) OwnerDocument() *Document { return n.doc }

// NodeName returns the DOM nodeName.
func (n *Node) NodeName() string {
	switch n.typ {
	case ElementNode:
		return n.TagName()
	case AttributeNode:
		return n.attr.qualifiedName()
	case TextNode:
		return "#text"
	case CDATASectionNode:
		return "#cdata-section"
	case ProcessingInstructionNode:
		return n.char.target
	case CommentNode:
		return "#comment"
	case DocumentNode:
		return "#document"
	case DocumentTypeNode:
		return n.doctype.name
	case DocumentFragmentNode, ShadowRootNode:
		return "#document-fragment"
	}
	invariant(false, "unknown node type %d", n.typ)
	return ""
}

// NodeValue returns the data of character nodes, the value of attributes and
// "" for everything else.
func (n *Node) NodeValue() string {
	switch n.typ {
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return n.char.data
	case AttributeNode:
		return n.Value()
	}
	return ""
}

// SetNodeValue is a no-op for node kinds without a value.
func (n *Node) SetNodeValue(v string) {
	switch n.typ {
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		n.SetData(v)
	case AttributeNode:
		n.SetValue(v)
	}
}

// ParentNode returns the parent, or nil.
func (n *Node) ParentNode() *Node { return n.parent }

// ParentElement returns the parent when it is an element.
func (n *Node) ParentElement() *Node {
	if n.parent != nil && n.parent.typ == ElementNode {
		return n.parent
	}
	return nil
}

func (n *Node) FirstChild() *Node      { return n.first }
func (n *Node) LastChild() *Node       { return n.last }
func (n *Node) PreviousSibling() *Node { return n.prev }
func (n *Node) NextSibling() *Node     { return n.next }
func (n *Node) HasChildNodes() bool    { return n.first != nil }

// IsSameNode is reference identity.
func (n *Node) IsSameNode(other *Node) bool { return n == other }

// Contains reports whether other is an inclusive descendant of n.
func (n *Node) Contains(other *Node) bool {
	for c := other; c != nil; c = c.parent {
		if c == n {
			return true
		}
	}
	return false
}

// GetRootNode returns the root of n's tree: the document node, a shadow
// root, a fragment, or the topmost ancestor of a detached subtree.
func (n *Node) GetRootNode() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// IsConnected reports whether n's shadow-including root is a document.
func (n *Node) IsConnected() bool {
	root := n.GetRootNode()
	for root.typ == ShadowRootNode && root.shadow.host != nil {
		root = root.shadow.host.GetRootNode()
	}
	return root.typ == DocumentNode
}

// canHaveChildren reports whether the kind can be a parent.
func (n *Node) canHaveChildren() bool {
	switch n.typ {
	case DocumentNode, DocumentFragmentNode, ElementNode, ShadowRootNode:
		return true
	}
	return false
}

func (n *Node) isCharacterData() bool {
	switch n.typ {
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return true
	}
	return false
}

// isText covers Text and CDATASection (CDATASection is a Text subtype).
func (n *Node) isText() bool { return n.typ == TextNode || n.typ == CDATASectionNode }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.first; c != nil; c = c.next {
		count++
	}
	return count
}

// TextContent returns the concatenated text of descendant Text nodes for
// elements and fragments, the data for character nodes, and "" otherwise.
func (n *Node) TextContent() string {
	switch n.typ {
	case ElementNode, DocumentFragmentNode, ShadowRootNode:
		var sb strings.Builder
		walkDescendants(n, func(d *Node) bool {
			if d.isText() {
				sb.WriteString(d.char.data)
			}
			return true
		})
		return sb.String()
	case AttributeNode:
		return n.Value()
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		return n.char.data
	}
	return ""
}

// SetTextContent replaces all children with a single Text node holding s
// (none when s is empty). Character and attribute nodes take s as their value.
func (n *Node) SetTextContent(s string) {
	switch n.typ {
	case ElementNode, DocumentFragmentNode, ShadowRootNode:
		var text *Node
		if s != "" {
			text = n.doc.CreateTextNode(s)
		}
		n.replaceAll(text)
		if text != nil {
			text.Release()
		}
	case AttributeNode:
		n.SetValue(s)
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		n.SetData(s)
	}
}

// walkDescendants visits the descendants of root in tree order. Returning
// false from visit skips that node's subtree.
func walkDescendants(root *Node, visit func(*Node) bool) {
	n := root.first
	for n != nil {
		descend := visit(n)
		if descend && n.first != nil {
			n = n.first
			continue
		}
		for n != root && n.next == nil {
			n = n.parent
		}
		if n == root {
			return
		}
		n = n.next
	}
}

// nextInTree returns the node following n in tree order within root, or nil.
func nextInTree(n, root *Node) *Node {
	if n.first != nil {
		return n.first
	}
	for n != root {
		if n.next != nil {
			return n.next
		}
		n = n.parent
	}
	return nil
}

// DocumentPosition is the bitmask returned by CompareDocumentPosition.
type DocumentPosition uint16

const (
	PositionDisconnected           DocumentPosition = 0x01
	PositionPreceding              DocumentPosition = 0x02
	PositionFollowing              DocumentPosition = 0x04
	PositionContains               DocumentPosition = 0x08
	PositionContainedBy            DocumentPosition = 0x10
	PositionImplementationSpecific DocumentPosition = 0x20
)

// CompareDocumentPosition reports where other sits relative to n.
func (n *Node) CompareDocumentPosition(other *Node) DocumentPosition {
	if n == other {
		return 0
	}
	a, b := n, other
	var attrA, attrB *Node
	if a.typ == AttributeNode && a.attr.owner != nil {
		attrA, a = a, a.attr.owner
	}
	if b.typ == AttributeNode && b.attr.owner != nil {
		attrB, b = b, b.attr.owner
		if attrA != nil && a == b {
			// Two attributes of the same element: order by attribute list.
			for _, at := range a.elem.attrs.list {
				if at.node == attrA {
					return PositionImplementationSpecific | PositionFollowing
				}
				if at.node == attrB {
					return PositionImplementationSpecific | PositionPreceding
				}
			}
		}
	}

	if a.GetRootNode() != b.GetRootNode() || (attrA == nil && a.typ == AttributeNode) || (attrB == nil && b.typ == AttributeNode) {
		return PositionDisconnected | PositionImplementationSpecific | PositionFollowing
	}
	if attrA == nil && a.Contains(b) {
		return PositionContainedBy | PositionFollowing
	}
	if attrB == nil && b.Contains(a) {
		return PositionContains | PositionPreceding
	}
	if a == b {
		// other is an attribute of n's element, or vice versa.
		if attrA != nil {
			return PositionPreceding
		}
		return PositionFollowing
	}

	chainA := ancestorsInclusive(a)
	chainB := ancestorsInclusive(b)
	i, j := len(chainA)-1, len(chainB)-1
	for i > 0 && j > 0 && chainA[i-1] == chainB[j-1] {
		i--
		j--
	}
	// chainA[i-1] and chainB[j-1] are siblings under the common ancestor.
	if i == 0 || j == 0 {
		// One contains the other's owner element.
		if i == 0 {
			return PositionFollowing
		}
		return PositionPreceding
	}
	for s := chainA[i-1].next; s != nil; s = s.next {
		if s == chainB[j-1] {
			return PositionFollowing
		}
	}
	return PositionPreceding
}

func ancestorsInclusive(n *Node) []*Node {
	var chain []*Node
	for c := n; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	return chain
}

func (n *Node) String() string {
	switch n.typ {
	case ElementNode:
		return fmt.Sprintf("<%s>", n.TagName())
	case TextNode, CommentNode, CDATASectionNode:
		data := n.char.data
		if len(data) > 20 {
			data = data[:20] + "..."
		}
		return fmt.Sprintf("%s(%q)", n.NodeName(), data)
	}
	return n.NodeName()
}
