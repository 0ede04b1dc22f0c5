// internal/dom/interner.go
package dom

import "strings"

// atomEntry is the canonical, document-owned storage for one interned string.
type atomEntry struct {
	s  string
	id uint32
}

// Atom is a reference to an interned string. Atoms can only be obtained from an
// Interner, so anything typed Atom is guaranteed to be document-owned storage
// rather than a view into a caller's buffer. Two atoms from the same interner
// are equal (==) exactly when their strings are equal. The zero Atom is "absent".
type Atom struct {
	e *atomEntry
}

// String returns the interned text ("" for the zero Atom).
func (a Atom) String() string {
	if a.e == nil {
		return ""
	}
	return a.e.s
}

// IsZero reports whether the atom is absent.
func (a Atom) IsZero() bool { return a.e == nil }

// ID is the sequence number assigned at interning time; 0 for the zero Atom.
func (a Atom) ID() uint32 {
	if a.e == nil {
		return 0
	}
	return a.e.id
}

// Interner deduplicates strings into stable, immutable storage scoped to one
// document.
type Interner struct {
	index map[string]*atomEntry
	empty Atom
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	in := &Interner{index: make(map[string]*atomEntry)}
	in.empty = in.Intern("")
	return in
}

// Intern returns the canonical atom for s, copying s into owned storage the
// first time it is seen.
func (in *Interner) Intern(s string) Atom {
	if e, ok := in.index[s]; ok {
		return Atom{e: e}
	}
	owned := strings.Clone(s)
	e := &atomEntry{s: owned, id: uint32(len(in.index) + 1)}
	in.index[owned] = e
	return Atom{e: e}
}

// InternBytes interns the contents of b. The caller may reuse b immediately.
func (in *Interner) InternBytes(b []byte) Atom {
	// The map lookup with a converted key does not allocate.
	if e, ok := in.index[string(b)]; ok {
		return Atom{e: e}
	}
	return in.Intern(string(b))
}

// Lookup returns the atom for s without creating one.
func (in *Interner) Lookup(s string) (Atom, bool) {
	e, ok := in.index[s]
	if !ok {
		return Atom{}, false
	}
	return Atom{e: e}, true
}

// Empty returns the atom for "".
func (in *Interner) Empty() Atom { return in.empty }

// Len returns the number of distinct strings interned.
func (in *Interner) Len() int { return len(in.index) }

// Owns reports whether a was produced by this interner.
func (in *Interner) Owns(a Atom) bool {
	if a.e == nil {
		return false
	}
	e, ok := in.index[a.e.s]
	return ok && e == a.e
}
