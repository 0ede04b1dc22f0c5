// internal/dom/classlist.go
package dom

import (
	"slices"
	"strings"
)

// DOMTokenList is the live token view of an element's class attribute.
type DOMTokenList struct {
	el *Node
}

// ClassList returns the element's class token list.
func (n *Node) ClassList() *DOMTokenList {
	if n.typ != ElementNode {
		return nil
	}
	if n.elem.classList == nil {
		n.elem.classList = &DOMTokenList{el: n}
	}
	return n.elem.classList
}

func (l *DOMTokenList) tokens() []string {
	l.el.ensureClasses()
	out := make([]string, len(l.el.elem.classes))
	for i, a := range l.el.elem.classes {
		out[i] = a.String()
	}
	return out
}

func validateToken(op, token string) error {
	if token == "" {
		return newError(Syntax, op, "the token must not be empty")
	}
	if strings.ContainsFunc(token, isASCIIWhitespace) {
		return newError(InvalidCharacter, op, "the token %q contains whitespace", token)
	}
	return nil
}

// update writes tokens back, skipping the write when there is no class
// attribute and nothing to store.
func (l *DOMTokenList) update(tokens []string) error {
	if len(tokens) == 0 && !l.el.HasAttribute("class") {
		return nil
	}
	return l.el.SetAttribute("class", strings.Join(tokens, " "))
}

// Length returns the number of unique tokens.
func (l *DOMTokenList) Length() int {
	l.el.ensureClasses()
	return len(l.el.elem.classes)
}

// Item returns the token at index i, or "" and false when out of range.
func (l *DOMTokenList) Item(i int) (string, bool) {
	l.el.ensureClasses()
	if i < 0 || i >= len(l.el.elem.classes) {
		return "", false
	}
	return l.el.elem.classes[i].String(), true
}

// Contains reports whether token is present.
func (l *DOMTokenList) Contains(token string) bool {
	return l.el.hasClass(token)
}

// Add appends each token not already present.
func (l *DOMTokenList) Add(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken("add", t); err != nil {
			return err
		}
	}
	set := l.tokens()
	for _, t := range tokens {
		if !slices.Contains(set, t) {
			set = append(set, t)
		}
	}
	return l.update(set)
}

// Remove deletes each given token.
func (l *DOMTokenList) Remove(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken("remove", t); err != nil {
			return err
		}
	}
	set := slices.DeleteFunc(l.tokens(), func(s string) bool { return slices.Contains(tokens, s) })
	return l.update(set)
}

// Toggle removes token when present and adds it otherwise. An optional force
// pins the outcome. It returns whether token is present afterwards.
func (l *DOMTokenList) Toggle(token string, force ...bool) (bool, error) {
	if err := validateToken("toggle", token); err != nil {
		return false, err
	}
	set := l.tokens()
	if slices.Contains(set, token) {
		if len(force) > 0 && force[0] {
			return true, nil
		}
		return false, l.update(slices.DeleteFunc(set, func(s string) bool { return s == token }))
	}
	if len(force) > 0 && !force[0] {
		return false, nil
	}
	return true, l.update(append(set, token))
}

// Replace swaps token for newToken in place. It reports whether token was present.
func (l *DOMTokenList) Replace(token, newToken string) (bool, error) {
	if err := validateToken("replace", token); err != nil {
		return false, err
	}
	if err := validateToken("replace", newToken); err != nil {
		return false, err
	}
	set := l.tokens()
	i := slices.Index(set, token)
	if i < 0 {
		return false, nil
	}
	if slices.Contains(set, newToken) {
		set = slices.Delete(set, i, i+1)
	} else {
		set[i] = newToken
	}
	return true, l.update(set)
}

// Value returns the class attribute.
func (l *DOMTokenList) Value() string { return l.el.ClassName() }

// SetValue replaces the class attribute.
func (l *DOMTokenList) SetValue(v string) error { return l.el.SetClassName(v) }

func (l *DOMTokenList) String() string { return l.Value() }
