// internal/dom/tree.go
package dom

// Tree mutation. Every public operation validates completely before it
// touches a pointer, so a failing call leaves the tree exactly as it was.

// isHostIncludingInclusiveAncestorOf walks up from other, crossing from
// shadow roots to their hosts.
func (n *Node) isHostIncludingInclusiveAncestorOf(other *Node) bool {
	for c := other; c != nil; {
		if c == n {
			return true
		}
		if c.parent == nil && c.typ == ShadowRootNode {
			c = c.shadow.host
			continue
		}
		c = c.parent
	}
	return false
}

func isInsertableKind(t NodeType) bool {
	switch t {
	case DocumentFragmentNode, DocumentTypeNode, ElementNode, TextNode, CDATASectionNode,
		ProcessingInstructionNode, CommentNode:
		return true
	}
	return false
}

// flatten returns the nodes that would actually become children: the
// children of a fragment, or the node itself.
func flatten(node *Node) []*Node {
	if node.typ != DocumentFragmentNode {
		return []*Node{node}
	}
	var out []*Node
	for c := node.first; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// validateInsertion checks that inserting nodes (each possibly a fragment)
// into n before child, optionally replacing replaced, is allowed.
func (n *Node) validateInsertion(op string, nodes []*Node, child, replaced *Node) error {
	if !n.canHaveChildren() {
		return newError(HierarchyRequest, op, "%s nodes can not have children", n.typ)
	}
	for _, node := range nodes {
		if node.isHostIncludingInclusiveAncestorOf(n) {
			return newError(HierarchyRequest, op, "the new child is an ancestor of the parent")
		}
	}
	if child != nil && child.parent != n {
		return newError(NotFound, op, "the reference node is not a child of this node")
	}
	var flat []*Node
	for _, node := range nodes {
		if !isInsertableKind(node.typ) {
			return newError(HierarchyRequest, op, "%s nodes can not be inserted", node.typ)
		}
		if node.doc != n.doc {
			return newError(WrongDocument, op, "the node belongs to another document; adopt or import it first")
		}
		flat = append(flat, flatten(node)...)
	}
	for _, node := range flat {
		if node.isText() && n.typ == DocumentNode {
			return newError(HierarchyRequest, op, "text can not be a child of a document")
		}
		if node.typ == DocumentTypeNode && n.typ != DocumentNode {
			return newError(HierarchyRequest, op, "a doctype can only be a child of a document")
		}
	}
	if n.typ == DocumentNode {
		return n.validateDocumentChildren(op, flat, child, replaced)
	}
	return nil
}

func (n *Node) validateDocumentChildren(op string, flat []*Node, child, replaced *Node) error {
	elements, doctypes := 0, 0
	for _, node := range flat {
		switch node.typ {
		case ElementNode:
			elements++
		case DocumentTypeNode:
			doctypes++
		}
	}
	if elements > 1 {
		return newError(HierarchyRequest, op, "a document can only have one element child")
	}
	if doctypes > 1 {
		return newError(HierarchyRequest, op, "a document can only have one doctype")
	}
	moving := func(c *Node) bool {
		if c == replaced {
			return true
		}
		for _, f := range flat {
			if f == c && f.parent == n && f.typ == DocumentTypeNode {
				return true
			}
		}
		return false
	}
	if elements == 1 {
		for c := n.first; c != nil; c = c.next {
			if c.typ == ElementNode && c != replaced {
				return newError(HierarchyRequest, op, "a document can only have one element child")
			}
		}
		if child != nil {
			if child.typ == DocumentTypeNode && child != replaced {
				return newError(HierarchyRequest, op, "an element can not precede the doctype")
			}
			for c := child.next; c != nil; c = c.next {
				if c.typ == DocumentTypeNode {
					return newError(HierarchyRequest, op, "an element can not precede the doctype")
				}
			}
		}
	}
	if doctypes == 1 {
		for c := n.first; c != nil; c = c.next {
			if c.typ == DocumentTypeNode && !moving(c) {
				return newError(HierarchyRequest, op, "a document can only have one doctype")
			}
		}
		if child != nil {
			for c := child.prev; c != nil; c = c.prev {
				if c.typ == ElementNode && c != replaced {
					return newError(HierarchyRequest, op, "the doctype must precede the document element")
				}
			}
		} else {
			for c := n.first; c != nil; c = c.next {
				if c.typ == ElementNode && c != replaced {
					return newError(HierarchyRequest, op, "the doctype must precede the document element")
				}
			}
		}
	}
	return nil
}

// link splices node between prev and next under n. It does no validation.
func (n *Node) link(node, before *Node) {
	invariant(node.parent == nil && node.prev == nil && node.next == nil, "linking an attached %s", node.typ)
	node.parent = n
	if before == nil {
		node.prev = n.last
		if n.last != nil {
			n.last.next = node
		} else {
			n.first = node
		}
		n.last = node
		return
	}
	invariant(before.parent == n, "reference node is not a child")
	node.next = before
	node.prev = before.prev
	if before.prev != nil {
		before.prev.next = node
	} else {
		n.first = node
	}
	before.prev = node
}

// unlink removes child from n's child list without touching refcounts.
func (n *Node) unlink(child *Node) {
	invariant(child.parent == n, "unlinking a node from the wrong parent")
	if child.prev != nil {
		child.prev.next = child.next
	} else {
		n.first = child.next
	}
	if child.next != nil {
		child.next.prev = child.prev
	} else {
		n.last = child.prev
	}
	child.parent, child.prev, child.next = nil, nil, nil
	if child.assignedSlot != nil {
		child.assignedSlot.unassign(child)
	}
}

// detach removes node from its parent, queueing a childList record on the
// old parent. The node is not destroyed.
func (n *Node) detach() {
	parent := n.parent
	if parent == nil {
		return
	}
	parent.doc.queueChildList(parent, nil, []*Node{n}, n.prev, n.next)
	parent.unlink(n)
	parent.doc.bump(true)
}

// insert performs the insertion of an already validated node before child.
func (n *Node) insert(node, child *Node) {
	var nodes []*Node
	if node.typ == DocumentFragmentNode {
		nodes = flatten(node)
		if len(nodes) == 0 {
			return
		}
		node.doc.queueChildList(node, nil, nodes, nil, nil)
		for _, c := range nodes {
			node.unlink(c)
		}
	} else {
		node.detach()
		nodes = []*Node{node}
	}

	prev := n.last
	if child != nil {
		prev = child.prev
	}
	for _, c := range nodes {
		n.link(c, child)
	}
	n.doc.queueChildList(n, nodes, nil, prev, child)
	n.doc.bump(true)
}

// preInsert validates and inserts node before child, returning node.
func (n *Node) preInsert(op string, node, child *Node) (*Node, error) {
	if err := n.validateInsertion(op, []*Node{node}, child, nil); err != nil {
		return nil, err
	}
	if child == node {
		child = node.next
	}
	n.insert(node, child)
	return node, nil
}

// InsertBefore inserts node before ref, or at the end when ref is nil. A node
// that already has a parent is moved. Inserting a fragment moves its children.
// The tree does not take over the caller's reference.
func (n *Node) InsertBefore(node, ref *Node) (*Node, error) {
	return n.preInsert("insertBefore", node, ref)
}

// AppendChild inserts node as the last child.
func (n *Node) AppendChild(node *Node) (*Node, error) {
	return n.preInsert("appendChild", node, nil)
}

// RemoveChild detaches child and returns it. The returned node carries one
// reference owned by the caller, who must Release it.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.parent != n {
		return nil, newError(NotFound, "removeChild", "the node is not a child of this node")
	}
	child.Acquire()
	child.detach()
	return child, nil
}

// ReplaceChild replaces child with node and returns child, carrying one
// reference owned by the caller.
func (n *Node) ReplaceChild(node, child *Node) (*Node, error) {
	const op = "replaceChild"
	if child == nil {
		return nil, newError(NotFound, op, "the node to be replaced is not a child of this node")
	}
	if err := n.validateInsertion(op, []*Node{node}, child, child); err != nil {
		return nil, err
	}

	ref := child.next
	if ref == node {
		ref = node.next
	}
	prev := child.prev
	if prev == node {
		prev = node.prev
	}

	child.Acquire()
	if child == node {
		return child, nil
	}

	var added []*Node
	if node.typ == DocumentFragmentNode {
		added = flatten(node)
		if len(added) > 0 {
			node.doc.queueChildList(node, nil, added, nil, nil)
			for _, c := range added {
				node.unlink(c)
			}
		}
	} else {
		if node.parent != nil {
			node.detach()
		}
		added = []*Node{node}
	}

	n.unlink(child)
	for _, c := range added {
		n.link(c, ref)
	}
	n.doc.queueChildList(n, added, []*Node{child}, prev, ref)
	n.doc.bump(true)
	return child, nil
}

// replaceAll removes every child and inserts node (which may be nil or a fragment).
func (n *Node) replaceAll(node *Node) {
	var added []*Node
	if node != nil {
		if node.typ == DocumentFragmentNode {
			added = flatten(node)
			if len(added) > 0 {
				node.doc.queueChildList(node, nil, added, nil, nil)
				for _, c := range added {
					node.unlink(c)
				}
			}
		} else {
			if node.parent != n {
				node.detach()
			}
			added = []*Node{node}
		}
	}
	var removed []*Node
	for c := n.first; c != nil; c = c.next {
		removed = append(removed, c)
	}
	if len(removed) == 0 && len(added) == 0 {
		return
	}
	for _, c := range removed {
		n.unlink(c)
	}
	for _, c := range added {
		n.link(c, nil)
	}
	n.doc.queueChildList(n, added, removed, nil, nil)
	n.doc.bump(true)
	for _, c := range removed {
		c.maybeDestroy()
	}
}

// convertNodes turns a ParentNode/ChildNode argument list into a single node:
// the node itself, or a fresh fragment holding all of them. The returned
// node carries one reference owned by the caller.
func (n *Node) convertNodes(nodes []*Node) *Node {
	if len(nodes) == 1 {
		return nodes[0].Acquire()
	}
	frag := n.doc.CreateDocumentFragment()
	for _, node := range nodes {
		frag.insert(node, nil)
	}
	return frag
}

// Append inserts nodes after the last child.
func (n *Node) Append(nodes ...*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	if err := n.validateInsertion("append", nodes, nil, nil); err != nil {
		return err
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	n.insert(node, nil)
	return nil
}

// Prepend inserts nodes before the first child.
func (n *Node) Prepend(nodes ...*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	if err := n.validateInsertion("prepend", nodes, n.first, nil); err != nil {
		return err
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	ref := n.first
	for ref != nil && containsNode(nodes, ref) {
		ref = ref.next
	}
	n.insert(node, ref)
	return nil
}

// ReplaceChildren removes every child and inserts nodes in their place.
func (n *Node) ReplaceChildren(nodes ...*Node) error {
	if err := n.validateInsertion("replaceChildren", nodes, nil, nil); err != nil {
		return err
	}
	if len(nodes) == 0 {
		n.replaceAll(nil)
		return nil
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	n.replaceAll(node)
	return nil
}

func containsNode(list []*Node, n *Node) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

// Before inserts nodes just before n in its parent. It is a no-op without a parent.
func (n *Node) Before(nodes ...*Node) error {
	parent := n.parent
	if parent == nil || len(nodes) == 0 {
		return nil
	}
	viablePrev := n.prev
	for viablePrev != nil && containsNode(nodes, viablePrev) {
		viablePrev = viablePrev.prev
	}
	// The reference child is where the nodes land once the ones already in
	// parent have been pulled out.
	ref := parent.first
	if viablePrev != nil {
		ref = viablePrev.next
	}
	for ref != nil && containsNode(nodes, ref) {
		ref = ref.next
	}
	if err := parent.validateInsertion("before", nodes, ref, nil); err != nil {
		return err
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	parent.insert(node, ref)
	return nil
}

// After inserts nodes just after n in its parent. It is a no-op without a parent.
func (n *Node) After(nodes ...*Node) error {
	parent := n.parent
	if parent == nil || len(nodes) == 0 {
		return nil
	}
	viableNext := n.next
	for viableNext != nil && containsNode(nodes, viableNext) {
		viableNext = viableNext.next
	}
	if err := parent.validateInsertion("after", nodes, viableNext, nil); err != nil {
		return err
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	parent.insert(node, viableNext)
	return nil
}

// ReplaceWith replaces n in its parent with nodes. n is destroyed unless the
// caller holds a reference to it.
func (n *Node) ReplaceWith(nodes ...*Node) error {
	parent := n.parent
	if parent == nil {
		return nil
	}
	viableNext := n.next
	for viableNext != nil && containsNode(nodes, viableNext) {
		viableNext = viableNext.next
	}
	if err := parent.validateInsertion("replaceWith", nodes, nil, n); err != nil {
		return err
	}
	if len(nodes) == 0 {
		n.Remove()
		return nil
	}
	node := n.convertNodes(nodes)
	defer node.Release()
	if n.parent == parent {
		old, err := parent.ReplaceChild(node, n)
		if err != nil {
			return err
		}
		old.Release()
		return nil
	}
	parent.insert(node, viableNext)
	return nil
}

// Remove detaches n from its parent. n is destroyed unless the caller holds
// a reference to it.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	n.detach()
	n.maybeDestroy()
}

// Normalize merges adjacent Text nodes and removes empty ones throughout the
// subtree. Applying it twice is the same as applying it once.
func (n *Node) Normalize() {
	var texts []*Node
	walkDescendants(n, func(d *Node) bool {
		if d.typ == TextNode {
			texts = append(texts, d)
		}
		return true
	})
	for _, t := range texts {
		if t.destroyed || t.parent == nil {
			continue
		}
		if t.char.data == "" {
			t.Remove()
			continue
		}
		var merged []*Node
		for s := t.next; s != nil && s.typ == TextNode; s = s.next {
			merged = append(merged, s)
		}
		if len(merged) == 0 {
			continue
		}
		data := t.char.data
		for _, s := range merged {
			data += s.char.data
		}
		t.setCharacterData(data)
		for _, s := range merged {
			s.Remove()
		}
	}
}
