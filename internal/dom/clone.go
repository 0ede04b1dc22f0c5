// internal/dom/clone.go
package dom

// CloneNode copies n, and its descendants when deep is set. The copy has no
// parent and carries one reference owned by the caller. Attribute names and
// values are interned afresh. Cloning a Document creates a new Document and
// returns its document node; shadow roots can not be cloned and yield nil.
func (n *Node) CloneNode(deep bool) *Node {
	switch n.typ {
	case ShadowRootNode:
		return nil
	case DocumentNode:
		src := n.doc
		nd := NewDocument(Options{HTML: src.html, Logger: src.logger})
		if deep {
			for c := n.first; c != nil; c = c.next {
				cc := c.cloneInto(nd, true)
				nd.root.link(cc, nil)
				cc.Release()
			}
		}
		return nd.root.Acquire()
	}
	return n.cloneInto(n.doc, deep)
}

// cloneInto copies n into doc. Shadow trees are not copied.
func (n *Node) cloneInto(doc *Document, deep bool) *Node {
	in := doc.interner
	reintern := func(a Atom) Atom {
		if a.IsZero() {
			return a
		}
		return in.Intern(a.String())
	}

	var c *Node
	switch n.typ {
	case ElementNode:
		e := n.elem
		c = doc.newElement(reintern(e.ns), reintern(e.prefix), reintern(e.local))
		list := make([]attribute, len(e.attrs.list))
		for i, at := range e.attrs.list {
			list[i] = attribute{
				local:  reintern(at.local),
				ns:     reintern(at.ns),
				prefix: reintern(at.prefix),
				value:  reintern(at.value),
			}
		}
		c.elem.attrs.list = list
	case AttributeNode:
		a := n.attr
		value := a.value
		if e := a.entry(); e != nil {
			value = e.value
		}
		c = doc.newAttr(reintern(a.ns), reintern(a.prefix), reintern(a.local), reintern(value))
	case TextNode, CDATASectionNode, CommentNode, ProcessingInstructionNode:
		c = doc.newCharacterNode(n.typ, n.char.data, n.char.target)
	case DocumentTypeNode:
		c = doc.newNode(DocumentTypeNode)
		dt := *n.doctype
		c.doctype = &dt
	case DocumentFragmentNode:
		c = doc.CreateDocumentFragment()
	default:
		invariant(false, "cloneInto called on %s", n.typ)
	}

	if deep {
		for child := n.first; child != nil; child = child.next {
			cc := child.cloneInto(doc, true)
			c.link(cc, nil)
			cc.Release()
		}
	}
	return c
}

// IsEqualNode reports structural equality: same kind and names, the same
// attributes in any order, equal data, and equal children in order.
func (n *Node) IsEqualNode(other *Node) bool {
	if other == nil {
		return false
	}
	if n == other {
		return true
	}
	if n.typ != other.typ {
		return false
	}
	switch n.typ {
	case ElementNode:
		a, b := n.elem, other.elem
		if a.local.String() != b.local.String() || a.ns.String() != b.ns.String() ||
			a.prefix.String() != b.prefix.String() || a.attrs.len() != b.attrs.len() {
			return false
		}
		for _, x := range a.attrs.list {
			found := false
			for _, y := range b.attrs.list {
				if x.local.String() == y.local.String() && x.ns.String() == y.ns.String() {
					found = x.value.String() == y.value.String()
					break
				}
			}
			if !found {
				return false
			}
		}
	case AttributeNode:
		if n.attr.local.String() != other.attr.local.String() ||
			n.attr.ns.String() != other.attr.ns.String() ||
			n.Value() != other.Value() {
			return false
		}
	case ProcessingInstructionNode:
		if n.char.target != other.char.target || n.char.data != other.char.data {
			return false
		}
	case TextNode, CDATASectionNode, CommentNode:
		if n.char.data != other.char.data {
			return false
		}
	case DocumentTypeNode:
		if *n.doctype != *other.doctype {
			return false
		}
	}

	a, b := n.first, other.first
	for a != nil && b != nil {
		if !a.IsEqualNode(b) {
			return false
		}
		a, b = a.next, b.next
	}
	return a == nil && b == nil
}
