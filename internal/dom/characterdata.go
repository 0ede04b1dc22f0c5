// internal/dom/characterdata.go
package dom

import "strings"

// CharacterData operations apply to Text, CDATASection, Comment and
// ProcessingInstruction nodes. Offsets and counts are in UTF-16 code units.

func errNotCharacterData(op string, n *Node) error {
	return newError(NotSupported, op, "%s is not character data", n.typ)
}

// Data returns the character data.
func (n *Node) Data() string {
	if !n.isCharacterData() {
		return ""
	}
	return n.char.data
}

// SetData replaces the character data.
func (n *Node) SetData(data string) {
	if !n.isCharacterData() {
		return
	}
	n.setCharacterData(strings.Clone(data))
}

// Target returns a processing instruction's target.
func (n *Node) Target() string {
	if n.typ != ProcessingInstructionNode {
		return ""
	}
	return n.char.target
}

// Length returns the data length in UTF-16 code units.
func (n *Node) Length() int {
	if !n.isCharacterData() {
		return 0
	}
	return utf16Len(n.char.data)
}

// SubstringData returns count code units starting at offset.
func (n *Node) SubstringData(offset, count int) (string, error) {
	if !n.isCharacterData() {
		return "", errNotCharacterData("substringData", n)
	}
	start, end, err := utf16Range(n.char.data, offset, count)
	if err != nil {
		return "", withOp(err, "substringData")
	}
	return n.char.data[start:end], nil
}

// AppendData appends data.
func (n *Node) AppendData(data string) {
	if !n.isCharacterData() {
		return
	}
	n.setCharacterData(n.char.data + data)
}

// InsertData inserts data at offset.
func (n *Node) InsertData(offset int, data string) error {
	return n.replaceData("insertData", offset, 0, data)
}

// DeleteData removes count code units at offset.
func (n *Node) DeleteData(offset, count int) error {
	return n.replaceData("deleteData", offset, count, "")
}

// ReplaceData replaces count code units at offset with data.
func (n *Node) ReplaceData(offset, count int, data string) error {
	return n.replaceData("replaceData", offset, count, data)
}

// replaceData applies a data replacement, reporting errors under op.
func (n *Node) replaceData(op string, offset, count int, data string) error {
	if !n.isCharacterData() {
		return errNotCharacterData(op, n)
	}
	old := n.char.data
	start, end, err := utf16Range(old, offset, count)
	if err != nil {
		return withOp(err, op)
	}
	n.setCharacterData(old[:start] + data + old[end:])
	return nil
}

// setCharacterData queues a characterData record and stores data.
func (n *Node) setCharacterData(data string) {
	n.doc.queueCharacterData(n, n.char.data)
	n.char.data = data
	n.doc.bump(false)
}

// SplitText splits a Text or CDATASection node at offset. n keeps the data
// before offset; a new node of the same kind holding the rest is inserted
// after n when n has a parent, and returned with one reference owned by the
// caller. An offset inside a surrogate pair splits before the pair.
func (n *Node) SplitText(offset int) (*Node, error) {
	if !n.isText() {
		return nil, newError(NotSupported, "splitText", "%s is not a Text node", n.typ)
	}
	old := n.char.data
	at, err := utf16ToByte(old, offset)
	if err != nil {
		return nil, withOp(err, "splitText")
	}
	tail := n.doc.newCharacterNode(n.typ, old[at:], "")
	if n.parent != nil {
		n.parent.insert(tail, n.next)
	}
	n.setCharacterData(old[:at])
	return tail, nil
}

// WholeText returns the data of n and its contiguous Text siblings.
func (n *Node) WholeText() string {
	if !n.isText() {
		return ""
	}
	start := n
	for start.prev != nil && start.prev.isText() {
		start = start.prev
	}
	var sb strings.Builder
	for c := start; c != nil && c.isText(); c = c.next {
		sb.WriteString(c.char.data)
	}
	return sb.String()
}

func withOp(err error, op string) error {
	if de, ok := err.(*Error); ok && de.Op == "" {
		de.Op = op
	}
	return err
}
