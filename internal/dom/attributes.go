// internal/dom/attributes.go
package dom

// attribute is one Attribute Store entry. Every field is an Atom, so the
// store can only ever hold document-owned strings.
type attribute struct {
	local  Atom
	ns     Atom
	prefix Atom
	value  Atom
	// node is the lazily created Attr node for this entry, owned by the element.
	node *Node
}

func (a *attribute) qualifiedName() string {
	if a.prefix.IsZero() {
		return a.local.String()
	}
	return a.prefix.String() + ":" + a.local.String()
}

func (a *attribute) matchesQualified(name string) bool {
	if a.prefix.IsZero() {
		return a.local.String() == name
	}
	p, l := a.prefix.String(), a.local.String()
	return len(name) == len(p)+1+len(l) && name[:len(p)] == p && name[len(p)] == ':' && name[len(p)+1:] == l
}

// attributeStore is an ordered attribute list. Element attribute counts are
// small, so linear scans beat a map here.
type attributeStore struct {
	list []attribute
}

func (s *attributeStore) len() int { return len(s.list) }

func (s *attributeStore) indexQualified(name string) int {
	for i := range s.list {
		if s.list[i].matchesQualified(name) {
			return i
		}
	}
	return -1
}

// indexNS looks up by namespace and local name. Both are atoms from the same
// interner, so this is a pointer comparison per entry.
func (s *attributeStore) indexNS(ns, local Atom) int {
	for i := range s.list {
		if s.list[i].local == local && s.list[i].ns == ns {
			return i
		}
	}
	return -1
}

func (s *attributeStore) append(a attribute) {
	s.list = append(s.list, a)
}

func (s *attributeStore) remove(i int) attribute {
	a := s.list[i]
	s.list = append(s.list[:i], s.list[i+1:]...)
	return a
}

// attrData is the payload of an Attr node. While owner is set the value
// lives in the owner's store entry and value here is stale.
type attrData struct {
	owner  *Node
	local  Atom
	ns     Atom
	prefix Atom
	value  Atom
}

func (a *attrData) qualifiedName() string {
	if a.prefix.IsZero() {
		return a.local.String()
	}
	return a.prefix.String() + ":" + a.local.String()
}

// entry returns the owner's store entry for this Attr, or nil when detached.
func (a *attrData) entry() *attribute {
	if a.owner == nil {
		return nil
	}
	store := &a.owner.elem.attrs
	i := store.indexNS(a.ns, a.local)
	invariant(i >= 0, "attached Attr %q missing from its owner", a.qualifiedName())
	return &store.list[i]
}

// Name returns an Attr node's qualified name or a doctype's name.
func (n *Node) Name() string {
	switch n.typ {
	case AttributeNode:
		return n.attr.qualifiedName()
	case DocumentTypeNode:
		return n.doctype.name
	}
	return ""
}

// LocalName returns the local name of an element or attribute.
func (n *Node) LocalName() string {
	switch n.typ {
	case ElementNode:
		return n.elem.local.String()
	case AttributeNode:
		return n.attr.local.String()
	}
	return ""
}

// NamespaceURI returns the namespace of an element or attribute ("" for none).
func (n *Node) NamespaceURI() string {
	switch n.typ {
	case ElementNode:
		return n.elem.ns.String()
	case AttributeNode:
		return n.attr.ns.String()
	}
	return ""
}

// Prefix returns the namespace prefix of an element or attribute ("" for none).
func (n *Node) Prefix() string {
	switch n.typ {
	case ElementNode:
		return n.elem.prefix.String()
	case AttributeNode:
		return n.attr.prefix.String()
	}
	return ""
}

// Value returns an Attr node's value.
func (n *Node) Value() string {
	if n.typ != AttributeNode {
		return ""
	}
	if e := n.attr.entry(); e != nil {
		return e.value.String()
	}
	return n.attr.value.String()
}

// SetValue sets an Attr node's value, updating its owner element if attached.
func (n *Node) SetValue(v string) {
	if n.typ != AttributeNode {
		return
	}
	if owner := n.attr.owner; owner != nil {
		i := owner.elem.attrs.indexNS(n.attr.ns, n.attr.local)
		owner.changeAttribute(i, n.doc.interner.Intern(v))
		return
	}
	n.attr.value = n.doc.interner.Intern(v)
}

// OwnerElement returns the element an Attr node is attached to.
func (n *Node) OwnerElement() *Node {
	if n.typ != AttributeNode {
		return nil
	}
	return n.attr.owner
}
