// internal/dump/tree.go

// Package dump renders dom trees and mutation records for output: a plain
// JSON shape for tooling and a DevTools protocol snapshot.
package dump

import (
	"io"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/domkit/internal/dom"
)

// Attr is one attribute of a NodeJSON element.
type Attr struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Value     string `json:"value"`
}

// NodeJSON is the JSON shape of one node and its subtree.
type NodeJSON struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Namespace  string      `json:"namespace,omitempty"`
	Attributes []Attr      `json:"attributes,omitempty"`
	Data       string      `json:"data,omitempty"`
	PublicID   string      `json:"publicId,omitempty"`
	SystemID   string      `json:"systemId,omitempty"`
	ShadowRoot *NodeJSON   `json:"shadowRoot,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Children   []*NodeJSON `json:"children,omitempty"`
}

// Tree converts n and its subtree, including open shadow roots.
func Tree(n *dom.Node) *NodeJSON {
	out := &NodeJSON{Type: n.NodeType().String()}
	switch n.NodeType() {
	case dom.ElementNode:
		out.Name = n.TagName()
		out.Namespace = n.NamespaceURI()
		for _, a := range n.Attributes() {
			out.Attributes = append(out.Attributes, Attr{Name: a.QualifiedName(), Namespace: a.Namespace, Value: a.Value})
		}
		if sr := n.ShadowRoot(); sr != nil {
			out.ShadowRoot = Tree(sr)
		}
	case dom.TextNode, dom.CDATASectionNode, dom.CommentNode:
		out.Data = n.Data()
	case dom.ProcessingInstructionNode:
		out.Name = n.Target()
		out.Data = n.Data()
	case dom.DocumentTypeNode:
		out.Name = n.Name()
		out.PublicID = n.PublicID()
		out.SystemID = n.SystemID()
	case dom.ShadowRootNode:
		out.Mode = n.Mode().String()
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out.Children = append(out.Children, Tree(c))
	}
	return out
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
