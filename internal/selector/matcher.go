// internal/selector/matcher.go
package selector

import (
	"strings"

	"github.com/golang/groupcache/lru"
)

// Element is the view of a tree element the matcher needs. It lives here,
// rather than the matcher importing the tree package, to break the import cycle
// between the node model and the selector engine.
//
// Navigation methods return nil (an untyped nil interface) when there is no
// such element, and must not cross shadow-root or document boundaries.
type Element interface {
	LocalName() string
	NamespaceURI() string
	// IsHTML reports an HTML-namespace element in an HTML document; type and
	// attribute name matching is ASCII case-insensitive for those.
	IsHTML() bool
	ID() string
	HasClass(name string) bool
	ClassBloom() uint64
	Attribute(name string) (string, bool)
	Parent() Element
	PrevSibling() Element
	NextSibling() Element
	IsEmpty() bool
	IsRoot() bool
	Same(other Element) bool
}

// Selector is a compiled selector list.
type Selector struct {
	Source string
	Group  SelectorGroup
}

// Compile parses text into a reusable Selector.
func Compile(text string) (*Selector, error) {
	group, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &Selector{Source: text, Group: group}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string) *Selector {
	s, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return s
}

// Match reports whether el matches any selector in the list. scope is the
// element :scope refers to; nil means the root element.
func (s *Selector) Match(el, scope Element) bool {
	_, ok := matches(el, s.Group, scope)
	return ok
}

// MatchingSelector returns the first complex selector in the list that matches el.
func (s *Selector) MatchingSelector(el, scope Element) (*ComplexSelector, bool) {
	return matches(el, s.Group, scope)
}

// Specificities returns the specificity of each complex selector in list order.
func (s *Selector) Specificities() []Specificity {
	out := make([]Specificity, len(s.Group))
	for i, cs := range s.Group {
		out[i] = cs.CalculateSpecificity()
	}
	return out
}

func matches(el Element, group SelectorGroup, scope Element) (*ComplexSelector, bool) {
	if el == nil {
		return nil, false
	}
	for i := range group {
		complexSelector := &group[i]
		currentIndex := len(complexSelector.Selectors) - 1
		if currentIndex < 0 {
			continue
		}
		if recursiveMatch(el, complexSelector, currentIndex, scope) {
			return complexSelector, true
		}
	}
	return nil, false
}

func recursiveMatch(el Element, complexSelector *ComplexSelector, index int, scope Element) bool {
	if el == nil || index < 0 {
		return false
	}
	current := complexSelector.Selectors[index]
	if !matchesCompound(el, &current.Compound, scope) {
		return false
	}
	if index == 0 {
		return true
	}
	nextIndex := index - 1
	switch current.Combinator {
	case CombinatorDescendant:
		for parent := el.Parent(); parent != nil; parent = parent.Parent() {
			if recursiveMatch(parent, complexSelector, nextIndex, scope) {
				return true
			}
		}
		return false
	case CombinatorChild:
		return recursiveMatch(el.Parent(), complexSelector, nextIndex, scope)
	case CombinatorAdjacentSibling:
		return recursiveMatch(el.PrevSibling(), complexSelector, nextIndex, scope)
	case CombinatorGeneralSibling:
		for sibling := el.PrevSibling(); sibling != nil; sibling = sibling.PrevSibling() {
			if recursiveMatch(sibling, complexSelector, nextIndex, scope) {
				return true
			}
		}
		return false
	case CombinatorNone:
		return true
	}
	return false
}

func matchesCompound(el Element, c *CompoundSelector, scope Element) bool {
	if c.TagName != "" && c.TagName != "*" {
		if el.IsHTML() {
			if el.LocalName() != c.tagLower {
				return false
			}
		} else if el.LocalName() != c.TagName {
			return false
		}
	}
	if c.classMask != 0 && !MayContain(el.ClassBloom(), c.classMask) {
		return false
	}
	for _, id := range c.IDs {
		if el.ID() != id {
			return false
		}
	}
	for _, class := range c.Classes {
		if !el.HasClass(class) {
			return false
		}
	}
	for i := range c.Attributes {
		if !matchesAttribute(el, &c.Attributes[i]) {
			return false
		}
	}
	for i := range c.PseudoClasses {
		if !matchesPseudo(el, &c.PseudoClasses[i], scope) {
			return false
		}
	}
	return true
}

func matchesAttribute(el Element, sel *AttributeSelector) bool {
	actual, found := el.Attribute(sel.Name)
	if !found {
		return false
	}
	want := sel.Value
	if sel.CaseInsensitive {
		actual = asciiLower(actual)
		want = asciiLower(want)
	}

	switch sel.Operator {
	case "":
		return true
	case "=":
		return actual == want
	case "~=":
		if want == "" || strings.ContainsAny(want, " \t\n\r\f") {
			return false
		}
		for _, word := range strings.Fields(actual) {
			if word == want {
				return true
			}
		}
		return false
	case "|=":
		return actual == want || strings.HasPrefix(actual, want+"-")
	case "^=":
		return want != "" && strings.HasPrefix(actual, want)
	case "$=":
		return want != "" && strings.HasSuffix(actual, want)
	case "*=":
		return want != "" && strings.Contains(actual, want)
	default:
		return false
	}
}

func matchesPseudo(el Element, pc *PseudoClass, scope Element) bool {
	switch pc.Kind {
	case PseudoRoot:
		return el.IsRoot()
	case PseudoEmpty:
		return el.IsEmpty()
	case PseudoFirstChild:
		return el.PrevSibling() == nil
	case PseudoLastChild:
		return el.NextSibling() == nil
	case PseudoOnlyChild:
		return el.PrevSibling() == nil && el.NextSibling() == nil
	case PseudoFirstOfType:
		return countSiblings(el, true, true) == 0
	case PseudoLastOfType:
		return countSiblings(el, false, true) == 0
	case PseudoOnlyOfType:
		return countSiblings(el, true, true) == 0 && countSiblings(el, false, true) == 0
	case PseudoNthChild:
		return pc.Nth.Matches(countSiblings(el, true, false) + 1)
	case PseudoNthLastChild:
		return pc.Nth.Matches(countSiblings(el, false, false) + 1)
	case PseudoNthOfType:
		return pc.Nth.Matches(countSiblings(el, true, true) + 1)
	case PseudoNthLastOfType:
		return pc.Nth.Matches(countSiblings(el, false, true) + 1)
	case PseudoNot:
		_, ok := matches(el, pc.Args, scope)
		return !ok
	case PseudoIs, PseudoWhere:
		_, ok := matches(el, pc.Args, scope)
		return ok
	case PseudoScope:
		if scope == nil {
			return el.IsRoot()
		}
		return el.Same(scope)
	case PseudoChecked:
		return isChecked(el)
	case PseudoDisabled:
		return canBeDisabled(el) && hasAttr(el, "disabled")
	case PseudoEnabled:
		return canBeDisabled(el) && !hasAttr(el, "disabled")
	}
	return false
}

// countSiblings counts element siblings before (or after) el, optionally
// restricted to those with the same expanded name.
func countSiblings(el Element, before, sameType bool) int {
	n := 0
	step := func(e Element) Element {
		if before {
			return e.PrevSibling()
		}
		return e.NextSibling()
	}
	for sib := step(el); sib != nil; sib = step(sib) {
		if sameType && (sib.LocalName() != el.LocalName() || sib.NamespaceURI() != el.NamespaceURI()) {
			continue
		}
		n++
	}
	return n
}

func hasAttr(el Element, name string) bool {
	_, ok := el.Attribute(name)
	return ok
}

func isChecked(el Element) bool {
	if !el.IsHTML() {
		return false
	}
	switch el.LocalName() {
	case "input":
		typ, _ := el.Attribute("type")
		typ = asciiLower(typ)
		return (typ == "checkbox" || typ == "radio") && hasAttr(el, "checked")
	case "option":
		return hasAttr(el, "selected")
	}
	return false
}

func canBeDisabled(el Element) bool {
	if !el.IsHTML() {
		return false
	}
	switch el.LocalName() {
	case "button", "input", "select", "textarea", "optgroup", "option", "fieldset":
		return true
	}
	return false
}

// Cache is a bounded LRU of compiled selectors keyed by source text. Failed
// compilations are cached too so a repeated bad selector is rejected cheaply.
type Cache struct {
	lru *lru.Cache
}

type cacheEntry struct {
	sel *Selector
	err error
}

// NewCache creates a cache holding at most size selectors; size <= 0 means unbounded.
func NewCache(size int) *Cache {
	return &Cache{lru: lru.New(size)}
}

// Get returns the compiled selector for text, compiling it on a miss.
func (c *Cache) Get(text string) (*Selector, error) {
	if v, ok := c.lru.Get(text); ok {
		e := v.(cacheEntry)
		return e.sel, e.err
	}
	sel, err := Compile(text)
	c.lru.Add(text, cacheEntry{sel: sel, err: err})
	return sel, err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.lru.Len() }
