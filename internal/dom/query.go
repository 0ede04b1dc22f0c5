// internal/dom/query.go
package dom

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/domkit/internal/selector"
)

// compile returns the cached compiled form of sel, mapping parse failures
// to Syntax errors.
func (d *Document) compile(op, sel string) (*selector.Selector, error) {
	s, err := d.selectors.Get(sel)
	if err != nil {
		d.logger.Debug("selector rejected", zap.String("op", op), zap.String("selector", sel), zap.Error(err))
		return nil, &Error{Kind: Syntax, Op: op, Err: err}
	}
	return s, nil
}

// scopeOf returns the element :scope refers to for a query rooted at n.
func scopeOf(n *Node) selector.Element {
	if n.typ == ElementNode {
		return viewOf(n)
	}
	return nil
}

// QuerySelector returns the first descendant element in tree order that
// matches sel, or nil.
func (n *Node) QuerySelector(sel string) (*Node, error) {
	s, err := n.doc.compile("querySelector", sel)
	if err != nil {
		return nil, err
	}
	scope := scopeOf(n)
	var found *Node
	walkDescendants(n, func(d *Node) bool {
		if found != nil {
			return false
		}
		if d.typ == ElementNode && s.Match(viewOf(d), scope) {
			found = d
			return false
		}
		return true
	})
	return found, nil
}

// QuerySelectorAll returns a static snapshot of the matching descendant
// elements in document order. Release the list when done.
func (n *Node) QuerySelectorAll(sel string) (*StaticNodeList, error) {
	s, err := n.doc.compile("querySelectorAll", sel)
	if err != nil {
		return nil, err
	}
	scope := scopeOf(n)
	var out []*Node
	walkDescendants(n, func(d *Node) bool {
		if d.typ == ElementNode && s.Match(viewOf(d), scope) {
			out = append(out, d)
		}
		return true
	})
	return newStaticNodeList(out), nil
}

// Matches reports whether the element matches sel.
func (n *Node) Matches(sel string) (bool, error) {
	if n.typ != ElementNode {
		return false, errNotElement("matches", n)
	}
	s, err := n.doc.compile("matches", sel)
	if err != nil {
		return false, err
	}
	return s.Match(viewOf(n), viewOf(n)), nil
}

// WebkitMatchesSelector is the legacy alias of Matches.
func (n *Node) WebkitMatchesSelector(sel string) (bool, error) { return n.Matches(sel) }

// Closest returns the nearest inclusive ancestor element matching sel.
func (n *Node) Closest(sel string) (*Node, error) {
	if n.typ != ElementNode {
		return nil, errNotElement("closest", n)
	}
	s, err := n.doc.compile("closest", sel)
	if err != nil {
		return nil, err
	}
	scope := viewOf(n)
	for el := n; el != nil; el = el.ParentElement() {
		if s.Match(viewOf(el), scope) {
			return el, nil
		}
	}
	return nil, nil
}
