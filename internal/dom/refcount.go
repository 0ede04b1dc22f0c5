// internal/dom/refcount.go
package dom

// Acquire adds an external reference and returns n for chaining. Every
// Acquire must be balanced by a Release.
func (n *Node) Acquire() *Node {
	invariant(!n.destroyed, "acquire of destroyed %s", n.typ)
	n.refs++
	return n
}

// Release drops an external reference. A node with no references and no
// owner (parent, owning element or shadow host) is destroyed.
func (n *Node) Release() {
	invariant(!n.destroyed, "release of destroyed %s", n.typ)
	invariant(n.refs > 0, "release of %s without a reference", n.typ)
	n.refs--
	n.maybeDestroy()
}

// RefCount returns the number of external references.
func (n *Node) RefCount() int { return n.refs }

// Destroyed reports whether the node has been torn down. Only holders of a
// reference may observe a live node; this is for tests and assertions.
func (n *Node) Destroyed() bool { return n.destroyed }

// anchored reports whether some structural owner keeps n alive.
func (n *Node) anchored() bool {
	switch {
	case n.parent != nil:
		return true
	case n.typ == AttributeNode:
		return n.attr.owner != nil
	case n.typ == ShadowRootNode:
		return n.shadow.host != nil
	case n.typ == DocumentNode:
		return !n.doc.released
	}
	return false
}

func (n *Node) maybeDestroy() {
	if n.refs == 0 && !n.destroyed && !n.anchored() {
		n.destroy()
	}
}

// destroy tears n down. Children, attribute nodes and shadow roots that are
// still externally referenced are detached and handed to their holders;
// the rest are destroyed recursively.
func (n *Node) destroy() {
	n.destroyed = true
	d := n.doc
	d.live--

	if n.assignedSlot != nil {
		n.assignedSlot.unassign(n)
	}
	if regs, ok := d.observers[n]; ok {
		for _, r := range regs {
			r.observer.forgetTarget(n)
		}
		delete(d.observers, n)
	}

	for c := n.first; c != nil; {
		next := c.next
		c.parent, c.prev, c.next = nil, nil, nil
		c.maybeDestroy()
		c = next
	}
	n.first, n.last = nil, nil

	switch n.typ {
	case ElementNode:
		e := n.elem
		for i := range e.attrs.list {
			if at := e.attrs.list[i].node; at != nil {
				at.attr.value = e.attrs.list[i].value
				at.attr.owner = nil
				at.maybeDestroy()
			}
		}
		if e.slotAssigned != nil {
			for _, s := range e.slotAssigned {
				s.assignedSlot = nil
			}
			e.slotAssigned = nil
		}
		if sr := e.shadowRoot; sr != nil {
			e.shadowRoot = nil
			sr.shadow.host = nil
			sr.maybeDestroy()
		}
	case AttributeNode:
		n.attr.owner = nil
	}
}
