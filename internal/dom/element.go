// internal/dom/element.go
package dom

import (
	"strings"

	"github.com/xkilldash9x/domkit/internal/selector"
)

type elementData struct {
	local  Atom
	ns     Atom
	prefix Atom
	attrs  attributeStore

	shadowRoot *Node
	// slotAssigned lists the slottables assigned to this element when it is a slot.
	slotAssigned []*Node

	// Parsed class attribute and its bloom filter, recomputed after the class
	// attribute changes.
	classes      []Atom
	classBloom   uint64
	classesValid bool

	classList *DOMTokenList
}

// Attribute is a read-only copy of one attribute.
type Attribute struct {
	Namespace string
	Prefix    string
	LocalName string
	Value     string
}

// QualifiedName returns prefix:local, or local when there is no prefix.
func (a Attribute) QualifiedName() string {
	if a.Prefix == "" {
		return a.LocalName
	}
	return a.Prefix + ":" + a.LocalName
}

func errNotElement(op string, n *Node) error {
	return newError(NotSupported, op, "%s is not an element", n.typ)
}

// isHTMLElement reports an HTML-namespace element in an HTML document, for
// which names are matched ASCII case-insensitively.
func (n *Node) isHTMLElement() bool {
	return n.typ == ElementNode && n.doc.html && n.elem.ns == n.doc.nsHTML
}

func (n *Node) normalizeAttrName(name string) string {
	if n.isHTMLElement() {
		return asciiLower(name)
	}
	return name
}

// TagName returns the qualified name, uppercased for HTML elements.
func (n *Node) TagName() string {
	if n.typ != ElementNode {
		return ""
	}
	e := n.elem
	q := e.local.String()
	if !e.prefix.IsZero() {
		q = e.prefix.String() + ":" + q
	}
	if n.isHTMLElement() {
		return asciiUpper(q)
	}
	return q
}

// ID returns the id attribute value.
func (n *Node) ID() string {
	if n.typ != ElementNode {
		return ""
	}
	if i := n.elem.attrs.indexNS(Atom{}, n.doc.atomID); i >= 0 {
		return n.elem.attrs.list[i].value.String()
	}
	return ""
}

// SetID sets the id attribute.
func (n *Node) SetID(id string) error { return n.SetAttribute("id", id) }

// ClassName returns the class attribute value.
func (n *Node) ClassName() string {
	v, _ := n.GetAttribute("class")
	return v
}

// SetClassName sets the class attribute.
func (n *Node) SetClassName(v string) error { return n.SetAttribute("class", v) }

// GetAttribute returns the value of the first attribute whose qualified name is name.
func (n *Node) GetAttribute(name string) (string, bool) {
	if n.typ != ElementNode {
		return "", false
	}
	i := n.elem.attrs.indexQualified(n.normalizeAttrName(name))
	if i < 0 {
		return "", false
	}
	return n.elem.attrs.list[i].value.String(), true
}

// HasAttribute reports whether an attribute with qualified name name exists.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// HasAttributes reports whether the element has any attributes.
func (n *Node) HasAttributes() bool {
	return n.typ == ElementNode && n.elem.attrs.len() > 0
}

// GetAttributeNames returns qualified names in attribute order.
func (n *Node) GetAttributeNames() []string {
	if n.typ != ElementNode {
		return nil
	}
	names := make([]string, 0, n.elem.attrs.len())
	for i := range n.elem.attrs.list {
		names = append(names, n.elem.attrs.list[i].qualifiedName())
	}
	return names
}

// Attributes returns a copy of every attribute in order.
func (n *Node) Attributes() []Attribute {
	if n.typ != ElementNode {
		return nil
	}
	out := make([]Attribute, 0, n.elem.attrs.len())
	for _, a := range n.elem.attrs.list {
		out = append(out, Attribute{
			Namespace: a.ns.String(),
			Prefix:    a.prefix.String(),
			LocalName: a.local.String(),
			Value:     a.value.String(),
		})
	}
	return out
}

// SetAttribute sets (or creates) the attribute with qualified name name. Both
// the name and the value are copied into the document's interner; the caller
// may reuse its buffers as soon as the call returns.
func (n *Node) SetAttribute(name, value string) error {
	if n.typ != ElementNode {
		return errNotElement("setAttribute", n)
	}
	if !isValidName(name) {
		return newError(InvalidCharacter, "setAttribute", "%q is not a valid attribute name", name)
	}
	name = n.normalizeAttrName(name)
	v := n.doc.interner.Intern(value)
	if i := n.elem.attrs.indexQualified(name); i >= 0 {
		n.changeAttribute(i, v)
		return nil
	}
	n.appendAttribute(attribute{local: n.doc.interner.Intern(name), value: v})
	return nil
}

// RemoveAttribute removes the first attribute whose qualified name is name.
func (n *Node) RemoveAttribute(name string) {
	if n.typ != ElementNode {
		return
	}
	if i := n.elem.attrs.indexQualified(n.normalizeAttrName(name)); i >= 0 {
		n.removeAttributeAt(i)
	}
}

// ToggleAttribute adds name (with an empty value) when absent and removes it
// when present. An optional force pins the outcome. It returns whether the
// attribute is present afterwards.
func (n *Node) ToggleAttribute(name string, force ...bool) (bool, error) {
	if n.typ != ElementNode {
		return false, errNotElement("toggleAttribute", n)
	}
	if !isValidName(name) {
		return false, newError(InvalidCharacter, "toggleAttribute", "%q is not a valid attribute name", name)
	}
	name = n.normalizeAttrName(name)
	i := n.elem.attrs.indexQualified(name)
	if i < 0 {
		if len(force) == 0 || force[0] {
			n.appendAttribute(attribute{local: n.doc.interner.Intern(name), value: n.doc.interner.Empty()})
			return true, nil
		}
		return false, nil
	}
	if len(force) == 0 || !force[0] {
		n.removeAttributeAt(i)
		return false, nil
	}
	return true, nil
}

func (n *Node) lookupNS(namespace, localName string) int {
	var ns Atom
	if namespace != "" {
		a, ok := n.doc.interner.Lookup(namespace)
		if !ok {
			return -1
		}
		ns = a
	}
	local, ok := n.doc.interner.Lookup(localName)
	if !ok {
		return -1
	}
	return n.elem.attrs.indexNS(ns, local)
}

// GetAttributeNS returns the value of the attribute (namespace, localName).
func (n *Node) GetAttributeNS(namespace, localName string) (string, bool) {
	if n.typ != ElementNode {
		return "", false
	}
	i := n.lookupNS(namespace, localName)
	if i < 0 {
		return "", false
	}
	return n.elem.attrs.list[i].value.String(), true
}

// HasAttributeNS reports whether (namespace, localName) is set.
func (n *Node) HasAttributeNS(namespace, localName string) bool {
	_, ok := n.GetAttributeNS(namespace, localName)
	return ok
}

// SetAttributeNS sets a namespaced attribute. An existing attribute keeps its prefix.
func (n *Node) SetAttributeNS(namespace, qualifiedName, value string) error {
	if n.typ != ElementNode {
		return errNotElement("setAttributeNS", n)
	}
	ns, prefix, local, err := n.doc.validateAndExtract("setAttributeNS", namespace, qualifiedName)
	if err != nil {
		return err
	}
	v := n.doc.interner.Intern(value)
	if i := n.elem.attrs.indexNS(ns, local); i >= 0 {
		n.changeAttribute(i, v)
		return nil
	}
	n.appendAttribute(attribute{local: local, ns: ns, prefix: prefix, value: v})
	return nil
}

// RemoveAttributeNS removes (namespace, localName) if present.
func (n *Node) RemoveAttributeNS(namespace, localName string) {
	if n.typ != ElementNode {
		return
	}
	if i := n.lookupNS(namespace, localName); i >= 0 {
		n.removeAttributeAt(i)
	}
}

// GetAttributeNode returns the Attr node for name, creating it on first use.
// The Attr is owned by the element; Acquire it to keep it past removal.
func (n *Node) GetAttributeNode(name string) *Node {
	if n.typ != ElementNode {
		return nil
	}
	i := n.elem.attrs.indexQualified(n.normalizeAttrName(name))
	if i < 0 {
		return nil
	}
	return n.attrNodeAt(i)
}

// GetAttributeNodeNS is the namespaced form of GetAttributeNode.
func (n *Node) GetAttributeNodeNS(namespace, localName string) *Node {
	if n.typ != ElementNode {
		return nil
	}
	i := n.lookupNS(namespace, localName)
	if i < 0 {
		return nil
	}
	return n.attrNodeAt(i)
}

func (n *Node) attrNodeAt(i int) *Node {
	at := &n.elem.attrs.list[i]
	if at.node == nil {
		node := n.doc.newAttr(at.ns, at.prefix, at.local, at.value)
		node.refs = 0
		node.attr.owner = n
		at.node = node
	}
	return at.node
}

// SetAttributeNode attaches attr to the element, replacing any attribute with
// the same namespace and local name. The replaced Attr, if any, is returned
// with one reference owned by the caller.
func (n *Node) SetAttributeNode(attr *Node) (*Node, error) {
	if n.typ != ElementNode {
		return nil, errNotElement("setAttributeNode", n)
	}
	if attr.typ != AttributeNode {
		return nil, newError(HierarchyRequest, "setAttributeNode", "%s is not an Attr", attr.typ)
	}
	if attr.doc != n.doc {
		return nil, newError(WrongDocument, "setAttributeNode", "attribute belongs to another document")
	}
	if attr.attr.owner != nil && attr.attr.owner != n {
		return nil, newError(InUseAttribute, "setAttributeNode", "attribute %q is in use by another element", attr.attr.qualifiedName())
	}
	if attr.attr.owner == n {
		return attr, nil
	}

	a := attr.attr
	var old *Node
	if i := n.elem.attrs.indexNS(a.ns, a.local); i >= 0 {
		old = n.attrNodeAt(i)
		old.Acquire()
		entry := &n.elem.attrs.list[i]
		prev := entry.value
		n.doc.queueAttributes(n, entry.local, entry.ns, prev)
		old.attr.value = prev
		old.attr.owner = nil
		entry.prefix = a.prefix
		entry.value = a.value
		entry.node = attr
	} else {
		n.doc.queueAttributes(n, a.local, a.ns, Atom{})
		n.elem.attrs.append(attribute{local: a.local, ns: a.ns, prefix: a.prefix, value: a.value, node: attr})
	}
	a.owner = n
	n.attributeChanged(a.local, a.ns)
	return old, nil
}

// RemoveAttributeNode detaches attr from the element and returns it with one
// reference owned by the caller.
func (n *Node) RemoveAttributeNode(attr *Node) (*Node, error) {
	if n.typ != ElementNode {
		return nil, errNotElement("removeAttributeNode", n)
	}
	if attr.typ != AttributeNode || attr.attr.owner != n {
		return nil, newError(NotFound, "removeAttributeNode", "attribute is not set on this element")
	}
	i := n.elem.attrs.indexNS(attr.attr.ns, attr.attr.local)
	attr.Acquire()
	n.removeAttributeAt(i)
	return attr, nil
}

// changeAttribute replaces the value of entry i.
func (n *Node) changeAttribute(i int, value Atom) {
	at := &n.elem.attrs.list[i]
	n.doc.queueAttributes(n, at.local, at.ns, at.value)
	at.value = value
	n.attributeChanged(at.local, at.ns)
}

func (n *Node) appendAttribute(a attribute) {
	n.doc.queueAttributes(n, a.local, a.ns, Atom{})
	n.elem.attrs.append(a)
	n.attributeChanged(a.local, a.ns)
}

func (n *Node) removeAttributeAt(i int) {
	at := n.elem.attrs.list[i]
	n.doc.queueAttributes(n, at.local, at.ns, at.value)
	n.elem.attrs.remove(i)
	if at.node != nil {
		at.node.attr.value = at.value
		at.node.attr.owner = nil
		at.node.maybeDestroy()
	}
	n.attributeChanged(at.local, at.ns)
}

// attributeChanged runs the bookkeeping shared by every attribute mutation.
func (n *Node) attributeChanged(local, ns Atom) {
	d := n.doc
	noNS := ns.IsZero()
	if noNS && local == d.atomClass {
		n.elem.classesValid = false
	}
	d.bump(noNS && local == d.atomID)
}

// ensureClasses reparses the class attribute when it changed since the last call.
func (n *Node) ensureClasses() {
	e := n.elem
	if e.classesValid {
		return
	}
	e.classes = e.classes[:0]
	e.classBloom = 0
	if i := e.attrs.indexNS(Atom{}, n.doc.atomClass); i >= 0 {
		for _, tok := range splitTokens(e.attrs.list[i].value.String()) {
			a := n.doc.interner.Intern(tok)
			dup := false
			for _, c := range e.classes {
				if c == a {
					dup = true
					break
				}
			}
			if !dup {
				e.classes = append(e.classes, a)
				e.classBloom |= selector.BloomBits(tok)
			}
		}
	}
	e.classesValid = true
}

func (n *Node) hasClass(name string) bool {
	n.ensureClasses()
	if !selector.MayContain(n.elem.classBloom, selector.BloomBits(name)) {
		return false
	}
	a, ok := n.doc.interner.Lookup(name)
	if !ok {
		return false
	}
	for _, c := range n.elem.classes {
		if c == a {
			return true
		}
	}
	return false
}

// ParentNode mixin.

// FirstElementChild returns the first child that is an element.
func (n *Node) FirstElementChild() *Node {
	for c := n.first; c != nil; c = c.next {
		if c.typ == ElementNode {
			return c
		}
	}
	return nil
}

// LastElementChild returns the last child that is an element.
func (n *Node) LastElementChild() *Node {
	for c := n.last; c != nil; c = c.prev {
		if c.typ == ElementNode {
			return c
		}
	}
	return nil
}

// ChildElementCount counts element children.
func (n *Node) ChildElementCount() int {
	count := 0
	for c := n.first; c != nil; c = c.next {
		if c.typ == ElementNode {
			count++
		}
	}
	return count
}

// PreviousElementSibling returns the closest preceding element sibling.
func (n *Node) PreviousElementSibling() *Node {
	for s := n.prev; s != nil; s = s.prev {
		if s.typ == ElementNode {
			return s
		}
	}
	return nil
}

// NextElementSibling returns the closest following element sibling.
func (n *Node) NextElementSibling() *Node {
	for s := n.next; s != nil; s = s.next {
		if s.typ == ElementNode {
			return s
		}
	}
	return nil
}

// InsertAdjacentElement inserts el relative to n. where is one of
// beforebegin, afterbegin, beforeend, afterend (case-insensitive). It returns
// nil without error for beforebegin/afterend when n has no parent.
func (n *Node) InsertAdjacentElement(where string, el *Node) (*Node, error) {
	if el.typ != ElementNode {
		return nil, newError(HierarchyRequest, "insertAdjacentElement", "%s is not an element", el.typ)
	}
	return n.insertAdjacent("insertAdjacentElement", where, el)
}

// InsertAdjacentText inserts a new Text node holding data relative to n.
func (n *Node) InsertAdjacentText(where, data string) error {
	text := n.doc.CreateTextNode(data)
	defer text.Release()
	_, err := n.insertAdjacent("insertAdjacentText", where, text)
	return err
}

func (n *Node) insertAdjacent(op, where string, node *Node) (*Node, error) {
	switch strings.ToLower(where) {
	case "beforebegin":
		if n.parent == nil {
			return nil, nil
		}
		return n.parent.preInsert(op, node, n)
	case "afterbegin":
		return n.preInsert(op, node, n.first)
	case "beforeend":
		return n.preInsert(op, node, nil)
	case "afterend":
		if n.parent == nil {
			return nil, nil
		}
		return n.parent.preInsert(op, node, n.next)
	}
	return nil, newError(Syntax, op, "%q is not a valid position", where)
}

// elementView adapts an element Node to the selector engine.
type elementView struct {
	n *Node
}

var _ selector.Element = elementView{}

func viewOf(n *Node) selector.Element {
	if n == nil || n.typ != ElementNode {
		return nil
	}
	return elementView{n: n}
}

func (v elementView) LocalName() string    { return v.n.elem.local.String() }
func (v elementView) NamespaceURI() string { return v.n.elem.ns.String() }
func (v elementView) IsHTML() bool         { return v.n.isHTMLElement() }
func (v elementView) ID() string           { return v.n.ID() }
func (v elementView) HasClass(name string) bool {
	return v.n.hasClass(name)
}

func (v elementView) ClassBloom() uint64 {
	v.n.ensureClasses()
	return v.n.elem.classBloom
}

func (v elementView) Attribute(name string) (string, bool) { return v.n.GetAttribute(name) }

func (v elementView) Parent() selector.Element { return viewOf(v.n.ParentElement()) }

func (v elementView) PrevSibling() selector.Element {
	return viewOf(v.n.PreviousElementSibling())
}

func (v elementView) NextSibling() selector.Element {
	return viewOf(v.n.NextElementSibling())
}

// IsEmpty ignores comments, processing instructions and empty text.
func (v elementView) IsEmpty() bool {
	for c := v.n.first; c != nil; c = c.next {
		switch {
		case c.typ == ElementNode:
			return false
		case c.isText() && c.char.data != "":
			return false
		}
	}
	return true
}

func (v elementView) IsRoot() bool {
	return v.n.parent != nil && v.n.parent.typ == DocumentNode
}

func (v elementView) Same(other selector.Element) bool {
	o, ok := other.(elementView)
	return ok && o.n == v.n
}
