// internal/dom/collection.go
package dom

import "github.com/xkilldash9x/domkit/internal/selector"

type collectionScope uint8

const (
	scopeChildren collectionScope = iota
	scopeDescendants
)

// liveList is the shared engine behind live collections. It holds a
// reference to its root and recomputes its members on the first read after
// the document generation moves.
type liveList struct {
	root     *Node
	scope    collectionScope
	match    func(*Node) bool
	doc      *Document
	gen      uint64
	valid    bool
	cache    []*Node
	released bool
}

func newLiveList(root *Node, scope collectionScope, match func(*Node) bool) *liveList {
	return &liveList{root: root.Acquire(), scope: scope, match: match}
}

func (l *liveList) refresh() []*Node {
	invariant(!l.released, "read of a released collection")
	d := l.root.doc
	if l.valid && l.doc == d && l.gen == d.generation {
		return l.cache
	}
	l.cache = l.cache[:0]
	switch l.scope {
	case scopeChildren:
		for c := l.root.first; c != nil; c = c.next {
			if l.match(c) {
				l.cache = append(l.cache, c)
			}
		}
	case scopeDescendants:
		walkDescendants(l.root, func(n *Node) bool {
			if l.match(n) {
				l.cache = append(l.cache, n)
			}
			return true
		})
	}
	l.doc, l.gen, l.valid = d, d.generation, true
	return l.cache
}

func (l *liveList) length() int { return len(l.refresh()) }

func (l *liveList) item(i int) *Node {
	nodes := l.refresh()
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return nodes[i]
}

func (l *liveList) at(i int) (*Node, error) {
	nodes := l.refresh()
	if i < 0 || i >= len(nodes) {
		return nil, newError(IndexSize, "item", "index %d out of range [0, %d)", i, len(nodes))
	}
	return nodes[i], nil
}

func (l *liveList) slice() []*Node {
	nodes := l.refresh()
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	return out
}

func (l *liveList) release() {
	if l.released {
		return
	}
	l.released = true
	l.cache = nil
	l.root.Release()
}

// HTMLCollection is a live list of elements. Every read revalidates against
// the current document generation. Release it when done.
type HTMLCollection struct {
	list *liveList
}

// Length returns the number of elements.
func (c *HTMLCollection) Length() int { return c.list.length() }

// Item returns the element at index i, or nil when out of range.
func (c *HTMLCollection) Item(i int) *Node { return c.list.item(i) }

// At is Item with an IndexSize error for out-of-range indices.
func (c *HTMLCollection) At(i int) (*Node, error) { return c.list.at(i) }

// NamedItem returns the first element whose id is name or, for HTML
// elements, whose name attribute is name.
func (c *HTMLCollection) NamedItem(name string) *Node {
	if name == "" {
		return nil
	}
	for _, n := range c.list.refresh() {
		if n.ID() == name {
			return n
		}
		if n.isHTMLElement() {
			if v, ok := n.GetAttribute("name"); ok && v == name {
				return n
			}
		}
	}
	return nil
}

// Slice returns a copy of the current members.
func (c *HTMLCollection) Slice() []*Node { return c.list.slice() }

// Release drops the collection's reference to its root.
func (c *HTMLCollection) Release() { c.list.release() }

// NodeList is the live list of a node's children.
type NodeList struct {
	list *liveList
}

func (l *NodeList) Length() int             { return l.list.length() }
func (l *NodeList) Item(i int) *Node        { return l.list.item(i) }
func (l *NodeList) At(i int) (*Node, error) { return l.list.at(i) }
func (l *NodeList) Slice() []*Node          { return l.list.slice() }
func (l *NodeList) Release()                { l.list.release() }

// StaticNodeList is a snapshot taken once; later mutations never change it.
// It holds a reference to every member until Release.
type StaticNodeList struct {
	nodes    []*Node
	released bool
}

func newStaticNodeList(nodes []*Node) *StaticNodeList {
	for _, n := range nodes {
		n.Acquire()
	}
	return &StaticNodeList{nodes: nodes}
}

// Length returns the number of nodes in the snapshot.
func (l *StaticNodeList) Length() int { return len(l.nodes) }

// Item returns the node at index i, or nil when out of range.
func (l *StaticNodeList) Item(i int) *Node {
	if i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.nodes[i]
}

// At is Item with an IndexSize error for out-of-range indices.
func (l *StaticNodeList) At(i int) (*Node, error) {
	if i < 0 || i >= len(l.nodes) {
		return nil, newError(IndexSize, "item", "index %d out of range [0, %d)", i, len(l.nodes))
	}
	return l.nodes[i], nil
}

// Slice returns a copy of the snapshot.
func (l *StaticNodeList) Slice() []*Node {
	out := make([]*Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// Release drops the snapshot's references.
func (l *StaticNodeList) Release() {
	if l.released {
		return
	}
	l.released = true
	for _, n := range l.nodes {
		n.Release()
	}
	l.nodes = nil
}

func isElement(n *Node) bool { return n.typ == ElementNode }

// Children returns the live collection of element children.
func (n *Node) Children() *HTMLCollection {
	return &HTMLCollection{list: newLiveList(n, scopeChildren, isElement)}
}

// ChildNodes returns the live list of all children.
func (n *Node) ChildNodes() *NodeList {
	return &NodeList{list: newLiveList(n, scopeChildren, func(*Node) bool { return true })}
}

// qualifiedName returns an element's prefix:local name without case mapping.
func (n *Node) qualifiedName() string {
	e := n.elem
	if e.prefix.IsZero() {
		return e.local.String()
	}
	return e.prefix.String() + ":" + e.local.String()
}

// GetElementsByTagName returns the live collection of descendant elements
// with qualified name qualifiedName, or all elements for "*". HTML elements
// in HTML documents match ASCII case-insensitively.
func (n *Node) GetElementsByTagName(qualifiedName string) *HTMLCollection {
	var match func(*Node) bool
	switch {
	case qualifiedName == "*":
		match = isElement
	case n.doc.html:
		lower := asciiLower(qualifiedName)
		match = func(el *Node) bool {
			if el.typ != ElementNode {
				return false
			}
			if el.elem.ns == el.doc.nsHTML {
				return el.qualifiedName() == lower
			}
			return el.qualifiedName() == qualifiedName
		}
	default:
		match = func(el *Node) bool {
			return el.typ == ElementNode && el.qualifiedName() == qualifiedName
		}
	}
	return &HTMLCollection{list: newLiveList(n, scopeDescendants, match)}
}

// GetElementsByTagNameNS matches namespace and local name; either may be "*".
func (n *Node) GetElementsByTagNameNS(namespace, localName string) *HTMLCollection {
	match := func(el *Node) bool {
		if el.typ != ElementNode {
			return false
		}
		if namespace != "*" && el.elem.ns.String() != namespace {
			return false
		}
		return localName == "*" || el.elem.local.String() == localName
	}
	return &HTMLCollection{list: newLiveList(n, scopeDescendants, match)}
}

// GetElementsByClassName returns the live collection of descendant elements
// carrying every class in the whitespace-separated classNames.
func (n *Node) GetElementsByClassName(classNames string) *HTMLCollection {
	classes := splitTokens(classNames)
	mask := selector.BloomFilter(classes)
	match := func(el *Node) bool {
		if el.typ != ElementNode || len(classes) == 0 {
			return false
		}
		el.ensureClasses()
		if !selector.MayContain(el.elem.classBloom, mask) {
			return false
		}
		for _, c := range classes {
			if !el.hasClass(c) {
				return false
			}
		}
		return true
	}
	return &HTMLCollection{list: newLiveList(n, scopeDescendants, match)}
}
