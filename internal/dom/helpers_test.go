// internal/dom/helpers_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newDoc returns an HTML document that is released when the test ends.
func newDoc(t *testing.T) *Document {
	t.Helper()
	d := NewDocument(Options{HTML: true, Logger: zaptest.NewLogger(t)})
	t.Cleanup(d.Release)
	return d
}

// newXMLDoc returns a non-HTML document that is released when the test ends.
func newXMLDoc(t *testing.T) *Document {
	t.Helper()
	d := NewDocument(Options{Logger: zaptest.NewLogger(t)})
	t.Cleanup(d.Release)
	return d
}

// elem creates an element with alternating attribute names and values.
// The caller owns the returned reference.
func elem(t *testing.T, d *Document, name string, attrs ...string) *Node {
	t.Helper()
	n, err := d.CreateElement(name)
	require.NoError(t, err)
	for i := 0; i+1 < len(attrs); i += 2 {
		require.NoError(t, n.SetAttribute(attrs[i], attrs[i+1]))
	}
	return n
}

// add appends child to parent and hands the creation reference to the tree.
func add(t *testing.T, parent, child *Node) *Node {
	t.Helper()
	_, err := parent.AppendChild(child)
	require.NoError(t, err)
	child.Release()
	return child
}

// children lists the child pointers of n.
func children(n *Node) []*Node {
	var out []*Node
	for c := n.first; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// checkTree verifies the sibling and parent links of every node under root:
// each child appears in its parent's list exactly once and the doubly linked
// list agrees in both directions.
func checkTree(t *testing.T, root *Node) {
	t.Helper()
	var visit func(n *Node)
	visit = func(n *Node) {
		seen := make(map[*Node]bool)
		var prev *Node
		for c := n.first; c != nil; c = c.next {
			require.False(t, seen[c], "%s listed twice under %s", c, n)
			seen[c] = true
			require.True(t, c.parent == n, "%s has the wrong parent", c)
			require.True(t, c.prev == prev, "%s has a broken prev link", c)
			require.False(t, c.destroyed, "%s is linked but destroyed", c)
			prev = c
			visit(c)
		}
		require.True(t, n.last == prev, "%s has a stale last child", n)
	}
	visit(root)
}
