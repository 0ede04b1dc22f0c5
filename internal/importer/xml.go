// internal/importer/xml.go
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/domkit/internal/dom"
)

// FromXML parses an XML document from r and appends it to doc's document
// node. Namespace prefixes are resolved against their declarations. CDATA
// sections become CDATASection nodes, or Text nodes in HTML documents, which
// can not hold them.
func FromXML(doc *dom.Document, r io.Reader) (Stats, error) {
	src := etree.NewDocument()
	src.ReadSettings.PreserveCData = true
	if _, err := src.ReadFrom(r); err != nil {
		return Stats{}, fmt.Errorf("parsing xml: %w", err)
	}
	b := newBuilder(doc)
	if err := b.xmlTokens(doc.Node(), src.Child); err != nil {
		return b.stats, err
	}
	return b.stats, nil
}

func (b *builder) xmlTokens(parent *dom.Node, tokens []etree.Token) error {
	for _, tok := range tokens {
		var err error
		switch t := tok.(type) {
		case *etree.Element:
			err = b.xmlElement(parent, t)
		case *etree.CharData:
			err = b.xmlCharData(parent, t)
		case *etree.Comment:
			err = b.comment(parent, t.Data)
		case *etree.ProcInst:
			err = b.xmlProcInst(parent, t)
		case *etree.Directive:
			err = b.xmlDirective(parent, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) xmlElement(parent *dom.Node, e *etree.Element) error {
	qualified := e.Tag
	if e.Space != "" {
		qualified = e.Space + ":" + e.Tag
	}
	el, err := b.doc.CreateElementNS(e.NamespaceURI(), qualified)
	if err != nil {
		b.skip("element", qualified, err)
		return b.xmlTokens(parent, e.Child)
	}
	b.stats.Elements++
	for i := range e.Attr {
		a := &e.Attr[i]
		if err := el.SetAttributeNS(xmlAttrNamespace(a), a.FullKey(), a.Value); err != nil {
			b.skip("attribute", a.FullKey(), err)
		}
	}
	if err := b.xmlTokens(el, e.Child); err != nil {
		el.Release()
		return err
	}
	return b.link(parent, el)
}

// xmlAttrNamespace resolves an attribute's namespace URI. Unprefixed
// attributes have none; xml and xmlns are bound without declarations.
func xmlAttrNamespace(a *etree.Attr) string {
	switch {
	case a.Space == "" && a.Key == "xmlns", a.Space == "xmlns":
		return dom.XMLNSNamespace
	case a.Space == "xml":
		return dom.XMLNamespace
	case a.Space == "":
		return ""
	}
	return a.NamespaceURI()
}

func (b *builder) xmlCharData(parent *dom.Node, c *etree.CharData) error {
	if !c.IsCData() {
		return b.text(parent, c.Data)
	}
	if parent.NodeType() == dom.DocumentNode {
		return nil
	}
	section, err := b.doc.CreateCDATASection(c.Data)
	if err != nil {
		return b.text(parent, c.Data)
	}
	b.stats.Other++
	return b.link(parent, section)
}

func (b *builder) xmlProcInst(parent *dom.Node, p *etree.ProcInst) error {
	if strings.EqualFold(p.Target, "xml") {
		// The XML declaration is not a node.
		return nil
	}
	pi, err := b.doc.CreateProcessingInstruction(p.Target, p.Inst)
	if err != nil {
		b.skip("processing instruction", p.Target, err)
		return nil
	}
	b.stats.Other++
	return b.link(parent, pi)
}

// xmlDirective imports <!DOCTYPE ...>; other declarations are dropped.
func (b *builder) xmlDirective(parent *dom.Node, d *etree.Directive) error {
	name, public, system, ok := parseDoctype(d.Data)
	if !ok {
		return nil
	}
	dt, err := b.doc.CreateDocumentType(name, public, system)
	if err != nil {
		b.skip("doctype", name, err)
		return nil
	}
	b.stats.Other++
	return b.link(parent, dt)
}

// parseDoctype splits `DOCTYPE name [PUBLIC "pub" "sys" | SYSTEM "sys"]`.
// An internal subset is ignored.
func parseDoctype(data string) (name, public, system string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(data), "DOCTYPE")
	if !found {
		return "", "", "", false
	}
	if i := strings.IndexByte(rest, '['); i >= 0 {
		rest = rest[:i]
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", "", "", false
	}
	name = fields[0]
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), name))

	var keyword string
	keyword, rest, _ = strings.Cut(rest, " ")
	literals := quoted(rest)
	switch strings.ToUpper(keyword) {
	case "PUBLIC":
		if len(literals) > 0 {
			public = literals[0]
		}
		if len(literals) > 1 {
			system = literals[1]
		}
	case "SYSTEM":
		if len(literals) > 0 {
			system = literals[0]
		}
	}
	return name, public, system, true
}

// quoted returns the single- or double-quoted literals in s, in order.
func quoted(s string) []string {
	var out []string
	for {
		i := strings.IndexAny(s, `"'`)
		if i < 0 {
			return out
		}
		q := s[i]
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			return out
		}
		out = append(out, s[i+1:i+1+end])
		s = s[i+2+end:]
	}
}
