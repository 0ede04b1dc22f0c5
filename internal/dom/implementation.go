// internal/dom/implementation.go
package dom

import "go.uber.org/zap"

// Implementation creates documents and doctypes that share the options of
// the document it belongs to. Each document has exactly one.
type Implementation struct {
	doc *Document
}

// Implementation returns the document's Implementation. Repeated calls
// return the same value.
func (d *Document) Implementation() *Implementation {
	if d.impl == nil {
		d.impl = &Implementation{doc: d}
	}
	return d.impl
}

// CharacterSet returns the document encoding. Documents are always UTF-8.
func (d *Document) CharacterSet() string { return "UTF-8" }

// Charset is a legacy alias of CharacterSet.
func (d *Document) Charset() string { return d.CharacterSet() }

// InputEncoding is a legacy alias of CharacterSet.
func (d *Document) InputEncoding() string { return d.CharacterSet() }

// ContentType returns the MIME type the document was created with.
func (d *Document) ContentType() string { return d.contentType }

// CompatMode returns "CSS1Compat"; quirks mode is never entered.
func (d *Document) CompatMode() string { return "CSS1Compat" }

// HasFeature always reports true.
func (im *Implementation) HasFeature() bool { return true }

// CreateDocumentType creates a doctype owned by the implementation's
// document.
func (im *Implementation) CreateDocumentType(name, publicID, systemID string) (*Node, error) {
	return im.doc.CreateDocumentType(name, publicID, systemID)
}

// options returns the options new documents inherit.
func (im *Implementation) options(html bool) Options {
	return Options{HTML: html, SelectorCacheSize: im.doc.cacheSize, Logger: im.doc.logger}
}

// CreateDocument creates an XML document. When doctype is non-nil it is
// adopted and appended first; when qualifiedName is non-empty a document
// element in namespace is appended after it. The caller keeps its
// reference to doctype and owns the returned document.
func (im *Implementation) CreateDocument(namespace, qualifiedName string, doctype *Node) (*Document, error) {
	if doctype != nil && doctype.typ != DocumentTypeNode {
		return nil, newError(HierarchyRequest, "createDocument", "%s is not a doctype", doctype.typ)
	}
	doc := NewDocument(im.options(false))
	switch namespace {
	case HTMLNamespace:
		doc.contentType = "application/xhtml+xml"
	case SVGNamespace:
		doc.contentType = "image/svg+xml"
	}

	var root *Node
	if qualifiedName != "" {
		var err error
		if root, err = doc.CreateElementNS(namespace, qualifiedName); err != nil {
			doc.Release()
			return nil, err
		}
		defer root.Release()
	}
	if doctype != nil {
		if _, err := doc.AdoptNode(doctype); err != nil {
			doc.Release()
			return nil, err
		}
		if _, err := doc.root.AppendChild(doctype); err != nil {
			doc.Release()
			return nil, err
		}
	}
	if root != nil {
		if _, err := doc.root.AppendChild(root); err != nil {
			doc.Release()
			return nil, err
		}
	}
	im.doc.logger.Debug("created document",
		zap.String("content_type", doc.contentType),
		zap.String("root", qualifiedName),
	)
	return doc, nil
}

// CreateHTMLDocument creates an HTML document holding a doctype and an
// html element with head and body. A non-empty title adds a title element
// to the head.
func (im *Implementation) CreateHTMLDocument(title string) *Document {
	doc := NewDocument(im.options(true))
	in := doc.interner
	doctype, err := doc.CreateDocumentType("html", "", "")
	invariant(err == nil, "html doctype: %v", err)
	doc.appendOwned(doc.root, doctype)

	html := doc.appendOwned(doc.root, doc.newElement(doc.nsHTML, Atom{}, in.Intern("html")))
	head := doc.appendOwned(html, doc.newElement(doc.nsHTML, Atom{}, in.Intern("head")))
	if title != "" {
		t := doc.appendOwned(head, doc.newElement(doc.nsHTML, Atom{}, in.Intern("title")))
		doc.appendOwned(t, doc.CreateTextNode(title))
	}
	doc.appendOwned(html, doc.newElement(doc.nsHTML, Atom{}, in.Intern("body")))
	return doc
}

// appendOwned appends a freshly created child and hands its creation
// reference to the tree.
func (d *Document) appendOwned(parent, child *Node) *Node {
	_, err := parent.AppendChild(child)
	invariant(err == nil, "append %s: %v", child.typ, err)
	child.Release()
	return child
}
