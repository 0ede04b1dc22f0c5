// internal/dom/document.go
package dom

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domkit/internal/selector"
)

// Well-known namespace URIs.
const (
	HTMLNamespace   = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
	XMLNamespace    = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace  = "http://www.w3.org/2000/xmlns/"
)

// DefaultSelectorCacheSize bounds the per-document compiled selector cache
// when Options.SelectorCacheSize is zero.
const DefaultSelectorCacheSize = 128

// Options configures a new Document.
type Options struct {
	// HTML selects HTML document semantics: element and attribute names are
	// ASCII-lowercased and CDATA sections can not be created.
	HTML bool
	// SelectorCacheSize bounds the compiled selector cache.
	SelectorCacheSize int
	Logger            *zap.Logger
}

// Document is the context object shared by every node of one tree: the
// string interner, the id map, the mutation generation and the observer
// registry all live here rather than in globals. A Document is not safe for
// concurrent use.
type Document struct {
	root     *Node
	interner *Interner
	html     bool
	logger   *zap.Logger

	contentType string
	cacheSize   int
	impl        *Implementation

	// generation advances on every mutation; live collections compare
	// against it before each read.
	generation uint64

	ids      map[Atom]*Node
	idsDirty bool

	observers map[*Node][]*registration
	pending   []*MutationObserver

	selectors *selector.Cache
	live      int
	released  bool

	atomID    Atom
	atomClass Atom
	atomSlot  Atom
	atomName  Atom
	nsHTML    Atom
	nsXML     Atom
	nsXMLNS   Atom
}

// NewDocument creates an empty document.
func NewDocument(opts Options) *Document {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.SelectorCacheSize
	if size == 0 {
		size = DefaultSelectorCacheSize
	}
	contentType := "application/xml"
	if opts.HTML {
		contentType = "text/html"
	}
	in := NewInterner()
	d := &Document{
		interner:    in,
		html:        opts.HTML,
		logger:      logger,
		contentType: contentType,
		cacheSize:   size,
		ids:         make(map[Atom]*Node),
		idsDirty:    true,
		observers:   make(map[*Node][]*registration),
		selectors:   selector.NewCache(size),
		atomID:      in.Intern("id"),
		atomClass:   in.Intern("class"),
		atomSlot:    in.Intern("slot"),
		atomName:    in.Intern("name"),
		nsHTML:      in.Intern(HTMLNamespace),
		nsXML:       in.Intern(XMLNamespace),
		nsXMLNS:     in.Intern(XMLNSNamespace),
	}
	d.root = d.newNode(DocumentNode)
	d.root.refs = 0
	return d
}

// NewHTMLDocument creates an empty HTML document.
func NewHTMLDocument() *Document { return NewDocument(Options{HTML: true}) }

// Node returns the document node, the root of the tree.
func (d *Document) Node() *Node { return d.root }

// IsHTML reports HTML document semantics.
func (d *Document) IsHTML() bool { return d.html }

// Interner returns the document's string interner.
func (d *Document) Interner() *Interner { return d.interner }

// Logger returns the logger the document was created with.
func (d *Document) Logger() *zap.Logger { return d.logger }

// Generation returns the mutation generation counter.
func (d *Document) Generation() uint64 { return d.generation }

// LiveNodes returns the number of nodes created in this document that have
// not been destroyed, including the document node itself.
func (d *Document) LiveNodes() int { return d.live }

// DocumentElement returns the document's element child, or nil.
func (d *Document) DocumentElement() *Node {
	for c := d.root.first; c != nil; c = c.next {
		if c.typ == ElementNode {
			return c
		}
	}
	return nil
}

// Doctype returns the document's doctype child, or nil.
func (d *Document) Doctype() *Node {
	for c := d.root.first; c != nil; c = c.next {
		if c.typ == DocumentTypeNode {
			return c
		}
	}
	return nil
}

// Release destroys the tree. Nodes still referenced by external holders are
// detached and survive until their last Release.
func (d *Document) Release() {
	if d.released {
		return
	}
	d.released = true
	d.logger.Debug("releasing document", zap.Int("live_nodes", d.live), zap.Int("atoms", d.interner.Len()))
	d.root.maybeDestroy()
}

func (d *Document) checkAlive() {
	invariant(!d.released, "use of released document")
}

func (d *Document) newNode(typ NodeType) *Node {
	d.checkAlive()
	d.live++
	return &Node{typ: typ, doc: d, refs: 1}
}

// bump records a mutation. Structural changes and id attribute changes also
// invalidate the id map.
func (d *Document) bump(invalidateIDs bool) {
	d.generation++
	if invalidateIDs {
		d.idsDirty = true
	}
}

// CreateElement creates an element. In HTML documents the name is
// lowercased and the element is placed in the HTML namespace.
func (d *Document) CreateElement(localName string) (*Node, error) {
	if !isValidName(localName) {
		return nil, newError(InvalidCharacter, "createElement", "%q is not a valid element name", localName)
	}
	var ns Atom
	if d.html {
		localName = asciiLower(localName)
		ns = d.nsHTML
	}
	return d.newElement(ns, Atom{}, d.interner.Intern(localName)), nil
}

// CreateElementNS creates an element with a namespace and qualified name.
func (d *Document) CreateElementNS(namespace, qualifiedName string) (*Node, error) {
	ns, prefix, local, err := d.validateAndExtract("createElementNS", namespace, qualifiedName)
	if err != nil {
		return nil, err
	}
	return d.newElement(ns, prefix, local), nil
}

func (d *Document) newElement(ns, prefix, local Atom) *Node {
	n := d.newNode(ElementNode)
	n.elem = &elementData{local: local, ns: ns, prefix: prefix}
	return n
}

// CreateTextNode creates a Text node.
func (d *Document) CreateTextNode(data string) *Node {
	return d.newCharacterNode(TextNode, data, "")
}

// CreateComment creates a Comment node.
func (d *Document) CreateComment(data string) *Node {
	return d.newCharacterNode(CommentNode, data, "")
}

// CreateCDATASection creates a CDATASection; HTML documents do not support them.
func (d *Document) CreateCDATASection(data string) (*Node, error) {
	if d.html {
		return nil, newError(NotSupported, "createCDATASection", "CDATA sections are not supported in HTML documents")
	}
	if strings.Contains(data, "]]>") {
		return nil, newError(InvalidCharacter, "createCDATASection", "data contains \"]]>\"")
	}
	return d.newCharacterNode(CDATASectionNode, data, ""), nil
}

// CreateProcessingInstruction creates a ProcessingInstruction node.
func (d *Document) CreateProcessingInstruction(target, data string) (*Node, error) {
	if !isValidName(target) {
		return nil, newError(InvalidCharacter, "createProcessingInstruction", "%q is not a valid target", target)
	}
	if strings.Contains(data, "?>") {
		return nil, newError(InvalidCharacter, "createProcessingInstruction", "data contains \"?>\"")
	}
	return d.newCharacterNode(ProcessingInstructionNode, data, target), nil
}

func (d *Document) newCharacterNode(typ NodeType, data, target string) *Node {
	n := d.newNode(typ)
	n.char = &characterData{data: strings.Clone(data), target: strings.Clone(target)}
	return n
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() *Node {
	return d.newNode(DocumentFragmentNode)
}

// CreateDocumentType creates a doctype node.
func (d *Document) CreateDocumentType(name, publicID, systemID string) (*Node, error) {
	if !isValidQName(name) {
		return nil, newError(InvalidCharacter, "createDocumentType", "%q is not a valid doctype name", name)
	}
	n := d.newNode(DocumentTypeNode)
	n.doctype = &doctypeData{name: strings.Clone(name), publicID: strings.Clone(publicID), systemID: strings.Clone(systemID)}
	return n, nil
}

// PublicID returns a doctype's public identifier.
func (n *Node) PublicID() string {
	if n.typ != DocumentTypeNode {
		return ""
	}
	return n.doctype.publicID
}

// SystemID returns a doctype's system identifier.
func (n *Node) SystemID() string {
	if n.typ != DocumentTypeNode {
		return ""
	}
	return n.doctype.systemID
}

// CreateAttribute creates a detached Attr node with an empty value.
func (d *Document) CreateAttribute(localName string) (*Node, error) {
	if !isValidName(localName) {
		return nil, newError(InvalidCharacter, "createAttribute", "%q is not a valid attribute name", localName)
	}
	if d.html {
		localName = asciiLower(localName)
	}
	return d.newAttr(Atom{}, Atom{}, d.interner.Intern(localName), d.interner.Empty()), nil
}

// CreateAttributeNS creates a detached namespaced Attr node.
func (d *Document) CreateAttributeNS(namespace, qualifiedName string) (*Node, error) {
	ns, prefix, local, err := d.validateAndExtract("createAttributeNS", namespace, qualifiedName)
	if err != nil {
		return nil, err
	}
	return d.newAttr(ns, prefix, local, d.interner.Empty()), nil
}

func (d *Document) newAttr(ns, prefix, local, value Atom) *Node {
	n := d.newNode(AttributeNode)
	n.attr = &attrData{ns: ns, prefix: prefix, local: local, value: value}
	return n
}

// validateAndExtract checks a namespace/qualified name pair and splits it.
func (d *Document) validateAndExtract(op, namespace, qualifiedName string) (ns, prefix, local Atom, err error) {
	if !isValidQName(qualifiedName) {
		return ns, prefix, local, newError(InvalidCharacter, op, "%q is not a valid qualified name", qualifiedName)
	}
	prefixStr, localStr := "", qualifiedName
	if i := strings.IndexByte(qualifiedName, ':'); i >= 0 {
		prefixStr, localStr = qualifiedName[:i], qualifiedName[i+1:]
	}
	switch {
	case prefixStr != "" && namespace == "":
		err = newError(Namespace, op, "prefix %q requires a namespace", prefixStr)
	case prefixStr == "xml" && namespace != XMLNamespace:
		err = newError(Namespace, op, "the xml prefix is bound to %s", XMLNamespace)
	case (qualifiedName == "xmlns" || prefixStr == "xmlns") && namespace != XMLNSNamespace:
		err = newError(Namespace, op, "xmlns must use the %s namespace", XMLNSNamespace)
	case namespace == XMLNSNamespace && qualifiedName != "xmlns" && prefixStr != "xmlns":
		err = newError(Namespace, op, "the xmlns namespace is reserved for xmlns attributes")
	}
	if err != nil {
		return ns, prefix, local, err
	}
	if namespace != "" {
		ns = d.interner.Intern(namespace)
	}
	if prefixStr != "" {
		prefix = d.interner.Intern(prefixStr)
	}
	return ns, prefix, d.interner.Intern(localStr), nil
}

// GetElementById returns the first element in tree order whose id is id.
// The id map is rebuilt lazily after any structural or id mutation.
func (d *Document) GetElementById(id string) *Node {
	if id == "" {
		return nil
	}
	if d.idsDirty {
		d.rebuildIDs()
	}
	key, ok := d.interner.Lookup(id)
	if !ok {
		return nil
	}
	return d.ids[key]
}

func (d *Document) rebuildIDs() {
	clear(d.ids)
	walkDescendants(d.root, func(n *Node) bool {
		if n.typ != ElementNode {
			return true
		}
		if i := n.elem.attrs.indexNS(Atom{}, d.atomID); i >= 0 {
			v := n.elem.attrs.list[i].value
			if v.String() != "" {
				if _, seen := d.ids[v]; !seen {
					d.ids[v] = n
				}
			}
		}
		return true
	})
	d.idsDirty = false
	d.logger.Debug("rebuilt id map", zap.Int("ids", len(d.ids)), zap.Uint64("generation", d.generation))
}

// ImportNode returns a copy of a node from any document, owned by this one.
func (d *Document) ImportNode(node *Node, deep bool) (*Node, error) {
	if node.typ == DocumentNode || node.typ == ShadowRootNode {
		return nil, newError(NotSupported, "importNode", "%s nodes can not be imported", node.typ)
	}
	return node.cloneInto(d, deep), nil
}

// AdoptNode moves node (and its subtree) into this document. When node had a
// parent it is removed first and the returned node carries one reference
// owned by the caller, as with RemoveChild.
func (d *Document) AdoptNode(node *Node) (*Node, error) {
	switch node.typ {
	case DocumentNode:
		return nil, newError(NotSupported, "adoptNode", "documents can not be adopted")
	case ShadowRootNode:
		return nil, newError(HierarchyRequest, "adoptNode", "shadow roots can not be adopted")
	}
	if node.typ == AttributeNode && node.attr.owner != nil {
		owner := node.attr.owner
		if _, err := owner.RemoveAttributeNode(node); err != nil {
			return nil, err
		}
	} else if node.parent != nil {
		if _, err := node.parent.RemoveChild(node); err != nil {
			return nil, err
		}
	}
	if node.doc != d {
		old := node.doc
		moved := node.rehome(d)
		old.live -= moved
		d.live += moved
		old.bump(true)
		d.bump(true)
		d.logger.Debug("adopted subtree", zap.Int("nodes", moved))
	}
	return node, nil
}

// rehome moves the inclusive subtree (with attribute nodes and shadow trees)
// into doc, re-interning every name and value. It returns the node count.
func (n *Node) rehome(doc *Document) int {
	old := n.doc
	in := doc.interner
	reintern := func(a Atom) Atom {
		if a.IsZero() {
			return a
		}
		return in.Intern(a.String())
	}
	count := 0
	var visit func(*Node)
	visit = func(x *Node) {
		count++
		if regs, ok := old.observers[x]; ok {
			for _, r := range regs {
				r.observer.forgetTarget(x)
			}
			delete(old.observers, x)
		}
		x.doc = doc
		switch x.typ {
		case ElementNode:
			e := x.elem
			e.local, e.ns, e.prefix = reintern(e.local), reintern(e.ns), reintern(e.prefix)
			for i := range e.attrs.list {
				at := &e.attrs.list[i]
				at.local, at.ns, at.prefix, at.value = reintern(at.local), reintern(at.ns), reintern(at.prefix), reintern(at.value)
				if at.node != nil {
					visit(at.node)
				}
			}
			e.classesValid = false
			if e.shadowRoot != nil {
				visit(e.shadowRoot)
			}
		case AttributeNode:
			a := x.attr
			a.local, a.ns, a.prefix, a.value = reintern(a.local), reintern(a.ns), reintern(a.prefix), reintern(a.value)
		}
		for c := x.first; c != nil; c = c.next {
			visit(c)
		}
	}
	visit(n)
	return count
}

// QuerySelector is shorthand for d.Node().QuerySelector.
func (d *Document) QuerySelector(sel string) (*Node, error) { return d.root.QuerySelector(sel) }

// QuerySelectorAll is shorthand for d.Node().QuerySelectorAll.
func (d *Document) QuerySelectorAll(sel string) (*StaticNodeList, error) {
	return d.root.QuerySelectorAll(sel)
}

// GetElementsByTagName is shorthand for d.Node().GetElementsByTagName.
func (d *Document) GetElementsByTagName(qualifiedName string) *HTMLCollection {
	return d.root.GetElementsByTagName(qualifiedName)
}

// GetElementsByClassName is shorthand for d.Node().GetElementsByClassName.
func (d *Document) GetElementsByClassName(classNames string) *HTMLCollection {
	return d.root.GetElementsByClassName(classNames)
}
