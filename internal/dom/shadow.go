// internal/dom/shadow.go
package dom

// ShadowRootMode controls whether a shadow root is reachable from its host.
type ShadowRootMode uint8

const (
	ShadowRootOpen ShadowRootMode = iota
	ShadowRootClosed
)

func (m ShadowRootMode) String() string {
	if m == ShadowRootClosed {
		return "closed"
	}
	return "open"
}

type shadowData struct {
	host *Node
	mode ShadowRootMode
}

// Elements that can host a shadow root, besides custom elements.
var shadowHostNames = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "body": true, "div": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "main": true, "nav": true, "p": true,
	"section": true, "span": true,
}

// isCustomElementName is the lenient form of the valid custom element name
// check: a lowercase ASCII letter first, at least one hyphen, no uppercase.
func isCustomElementName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	hyphen := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '-':
			hyphen = true
		case c >= 'A' && c <= 'Z':
			return false
		}
	}
	return hyphen
}

// AttachShadow creates a shadow root for n. The root is owned by its host;
// the returned pointer is borrowed.
func (n *Node) AttachShadow(mode ShadowRootMode) (*Node, error) {
	const op = "attachShadow"
	if n.typ != ElementNode {
		return nil, errNotElement(op, n)
	}
	e := n.elem
	local := e.local.String()
	if e.ns != n.doc.nsHTML || !(shadowHostNames[local] || isCustomElementName(local)) {
		return nil, newError(NotSupported, op, "<%s> can not host a shadow root", local)
	}
	if e.shadowRoot != nil {
		return nil, newError(NotSupported, op, "<%s> already hosts a shadow root", local)
	}
	sr := n.doc.newNode(ShadowRootNode)
	sr.refs = 0
	sr.shadow = &shadowData{host: n, mode: mode}
	e.shadowRoot = sr
	n.doc.bump(false)
	return sr, nil
}

// ShadowRoot returns n's open shadow root. Closed roots are only reachable
// through the value AttachShadow returned.
func (n *Node) ShadowRoot() *Node {
	if n.typ != ElementNode || n.elem.shadowRoot == nil {
		return nil
	}
	if n.elem.shadowRoot.shadow.mode == ShadowRootClosed {
		return nil
	}
	return n.elem.shadowRoot
}

// Host returns a shadow root's host element.
func (n *Node) Host() *Node {
	if n.typ != ShadowRootNode {
		return nil
	}
	return n.shadow.host
}

// Mode returns a shadow root's mode.
func (n *Node) Mode() ShadowRootMode {
	if n.typ != ShadowRootNode {
		return ShadowRootOpen
	}
	return n.shadow.mode
}

func (n *Node) isSlot() bool {
	return n.typ == ElementNode && n.elem.ns == n.doc.nsHTML && n.elem.local.String() == "slot"
}

// AssignSlots assigns the host's element and text children to the slots of
// this shadow root. An element goes to the first slot whose name equals its
// slot attribute; text and unnamed elements go to the first unnamed slot.
// Children with no matching slot stay unassigned. Earlier assignments are
// cleared first. It returns the number of assigned children.
func (n *Node) AssignSlots() (int, error) {
	if n.typ != ShadowRootNode {
		return 0, newError(NotSupported, "assignSlots", "%s is not a shadow root", n.typ)
	}
	host := n.shadow.host
	if host == nil {
		return 0, newError(InvalidState, "assignSlots", "the shadow root has no host")
	}

	named := make(map[string]*Node)
	var slots []*Node
	walkDescendants(n, func(d *Node) bool {
		if d.isSlot() {
			slots = append(slots, d)
			name, _ := d.GetAttribute("name")
			if _, seen := named[name]; !seen {
				named[name] = d
			}
		}
		return true
	})
	for _, s := range slots {
		for _, c := range s.elem.slotAssigned {
			c.assignedSlot = nil
		}
		s.elem.slotAssigned = nil
	}

	assigned := 0
	for c := host.first; c != nil; c = c.next {
		if c.assignedSlot != nil {
			c.assignedSlot.unassign(c)
		}
		var name string
		switch {
		case c.typ == ElementNode:
			name, _ = c.GetAttribute("slot")
		case c.isText():
		default:
			continue
		}
		slot := named[name]
		if slot == nil {
			continue
		}
		c.assignedSlot = slot
		slot.elem.slotAssigned = append(slot.elem.slotAssigned, c)
		assigned++
	}
	n.doc.bump(false)
	return assigned, nil
}

// AssignedNodes returns the nodes assigned to a slot, in assignment order.
func (n *Node) AssignedNodes() []*Node {
	if n.typ != ElementNode || len(n.elem.slotAssigned) == 0 {
		return nil
	}
	out := make([]*Node, len(n.elem.slotAssigned))
	copy(out, n.elem.slotAssigned)
	return out
}

// AssignedSlot returns the slot n is assigned to, or nil.
func (n *Node) AssignedSlot() *Node { return n.assignedSlot }

// unassign removes child from slot n's assigned list.
func (n *Node) unassign(child *Node) {
	e := n.elem
	for i, c := range e.slotAssigned {
		if c == child {
			e.slotAssigned = append(e.slotAssigned[:i], e.slotAssigned[i+1:]...)
			break
		}
	}
	child.assignedSlot = nil
}
