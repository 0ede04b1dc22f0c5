// internal/importer/html.go
package importer

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/domkit/internal/dom"
)

// x/net/html reports foreign content with short namespace names.
var htmlNamespaces = map[string]string{
	"":      dom.HTMLNamespace,
	"svg":   dom.SVGNamespace,
	"math":  dom.MathMLNamespace,
	"xlink": "http://www.w3.org/1999/xlink",
	"xml":   dom.XMLNamespace,
	"xmlns": dom.XMLNSNamespace,
}

// FromHTML parses a complete HTML document from r and appends the result to
// doc's document node.
func FromHTML(doc *dom.Document, r io.Reader) (Stats, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Stats{}, fmt.Errorf("parsing html: %w", err)
	}
	b := newBuilder(doc)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := b.htmlNode(doc.Node(), c); err != nil {
			return b.stats, err
		}
	}
	return b.stats, nil
}

// FragmentFromHTML parses r as the contents of a <body> element and returns
// a DocumentFragment holding the result. The caller owns the fragment.
func FragmentFromHTML(doc *dom.Document, r io.Reader) (*dom.Node, Stats, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parsing html fragment: %w", err)
	}
	frag := doc.CreateDocumentFragment()
	b := newBuilder(doc)
	for _, n := range nodes {
		if err := b.htmlNode(frag, n); err != nil {
			frag.Release()
			return nil, b.stats, err
		}
	}
	return frag, b.stats, nil
}

func (b *builder) htmlNode(parent *dom.Node, n *html.Node) error {
	switch n.Type {
	case html.ElementNode:
		return b.htmlElement(parent, n)
	case html.TextNode:
		return b.text(parent, n.Data)
	case html.CommentNode:
		return b.comment(parent, n.Data)
	case html.DoctypeNode:
		return b.htmlDoctype(parent, n)
	}
	// ErrorNode, RawNode and nested DocumentNodes carry nothing to import.
	return nil
}

func (b *builder) htmlElement(parent *dom.Node, n *html.Node) error {
	el, err := b.createHTMLElement(n)
	if err != nil {
		b.skip("element", n.Data, err)
		return b.htmlChildren(parent, n)
	}
	b.stats.Elements++
	for _, a := range n.Attr {
		if err := b.setHTMLAttribute(el, a); err != nil {
			b.skip("attribute", a.Key, err)
		}
	}
	if err := b.htmlChildren(el, n); err != nil {
		el.Release()
		return err
	}
	return b.link(parent, el)
}

func (b *builder) htmlChildren(parent *dom.Node, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := b.htmlNode(parent, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) createHTMLElement(n *html.Node) (*dom.Node, error) {
	if n.Namespace == "" && b.doc.IsHTML() {
		return b.doc.CreateElement(n.Data)
	}
	ns, ok := htmlNamespaces[n.Namespace]
	if !ok {
		return nil, fmt.Errorf("unknown namespace %q", n.Namespace)
	}
	return b.doc.CreateElementNS(ns, n.Data)
}

func (b *builder) setHTMLAttribute(el *dom.Node, a html.Attribute) error {
	if a.Namespace == "" {
		return el.SetAttribute(a.Key, a.Val)
	}
	ns, ok := htmlNamespaces[a.Namespace]
	if !ok {
		return fmt.Errorf("unknown attribute namespace %q", a.Namespace)
	}
	return el.SetAttributeNS(ns, a.Namespace+":"+a.Key, a.Val)
}

func (b *builder) htmlDoctype(parent *dom.Node, n *html.Node) error {
	var public, system string
	for _, a := range n.Attr {
		switch a.Key {
		case "public":
			public = a.Val
		case "system":
			system = a.Val
		}
	}
	dt, err := b.doc.CreateDocumentType(n.Data, public, system)
	if err != nil {
		b.skip("doctype", n.Data, err)
		return nil
	}
	b.stats.Other++
	return b.link(parent, dt)
}
