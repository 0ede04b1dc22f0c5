// internal/dom/clone_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneNode(t *testing.T) {
	d := newDoc(t)
	div := add(t, d.Node(), elem(t, d, "div", "id", "a", "class", "x y"))
	span := add(t, div, elem(t, d, "span"))
	add(t, span, d.CreateTextNode("text"))
	add(t, div, d.CreateComment("c"))

	shallow := div.CloneNode(false)
	defer shallow.Release()
	assert.Nil(t, shallow.ParentNode())
	assert.False(t, shallow.HasChildNodes())
	assert.Equal(t, div.Attributes(), shallow.Attributes())
	assert.Equal(t, 1, shallow.RefCount())

	deep := div.CloneNode(true)
	defer deep.Release()
	assert.True(t, deep.IsEqualNode(div))
	assert.False(t, deep.IsSameNode(div))
	checkTree(t, deep)

	require.NoError(t, deep.SetAttribute("id", "b"))
	assert.Equal(t, "a", div.ID(), "clones share no state with the source")
	assert.False(t, deep.IsEqualNode(div))

	t.Run("releasing a clone frees the whole copy", func(t *testing.T) {
		live := d.LiveNodes()
		c := div.CloneNode(true)
		assert.Equal(t, live+4, d.LiveNodes())
		c.Release()
		assert.Equal(t, live, d.LiveNodes())
	})
}

func TestCloneDocument(t *testing.T) {
	d := newDoc(t)
	dt, err := d.CreateDocumentType("html", "", "")
	require.NoError(t, err)
	add(t, d.Node(), dt)
	add(t, d.Node(), elem(t, d, "html", "lang", "en"))

	root := d.Node().CloneNode(true)
	defer root.Release()
	clone := root.OwnerDocument()
	defer clone.Release()

	assert.NotSame(t, d, clone)
	assert.True(t, clone.IsHTML())
	assert.Equal(t, "html", clone.Doctype().Name())
	assert.True(t, clone.Node().IsEqualNode(d.Node()))
	assert.NotSame(t, d.Interner(), clone.Interner())
}

func TestImportNode(t *testing.T) {
	src := newDoc(t)
	div := elem(t, src, "div", "title", "t")
	defer div.Release()
	add(t, div, src.CreateTextNode("x"))

	dst := newDoc(t)
	imported, err := dst.ImportNode(div, true)
	require.NoError(t, err)
	defer imported.Release()
	assert.Same(t, dst, imported.OwnerDocument())
	assert.Same(t, dst, imported.FirstChild().OwnerDocument())
	assert.True(t, imported.IsEqualNode(div))
	for _, a := range imported.elem.attrs.list {
		assert.True(t, dst.Interner().Owns(a.value), "attributes are interned in the importing document")
	}

	_, err = dst.ImportNode(src.Node(), true)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestAdoptNode(t *testing.T) {
	src := newDoc(t)
	parent := add(t, src.Node(), elem(t, src, "div"))
	child := add(t, parent, elem(t, src, "p", "class", "k"))
	add(t, child, src.CreateTextNode("x"))

	dst := newDoc(t)
	srcLive, dstLive := src.LiveNodes(), dst.LiveNodes()

	adopted, err := dst.AdoptNode(child)
	require.NoError(t, err)
	defer adopted.Release()
	assert.Same(t, child, adopted)
	assert.Nil(t, child.ParentNode())
	assert.Same(t, dst, child.OwnerDocument())
	assert.Same(t, dst, child.FirstChild().OwnerDocument())
	assert.Equal(t, srcLive-2, src.LiveNodes())
	assert.Equal(t, dstLive+2, dst.LiveNodes())

	_, err = dst.Node().AppendChild(child)
	require.NoError(t, err)
	assert.True(t, child.ClassList().Contains("k"))
	found, err := dst.QuerySelector(".k")
	require.NoError(t, err)
	assert.Same(t, child, found)

	_, err = dst.AdoptNode(src.Node())
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestIsEqualNode(t *testing.T) {
	d := newDoc(t)
	a := elem(t, d, "p", "x", "1", "y", "2")
	defer a.Release()
	b := elem(t, d, "p", "y", "2", "x", "1")
	defer b.Release()
	assert.True(t, a.IsEqualNode(b), "attribute order does not matter")

	add(t, a, d.CreateTextNode("t"))
	assert.False(t, a.IsEqualNode(b))
	add(t, b, d.CreateComment("t"))
	assert.False(t, a.IsEqualNode(b), "same data, different kinds")
	assert.False(t, a.IsEqualNode(nil))

	dt1, _ := d.CreateDocumentType("html", "p", "s")
	defer dt1.Release()
	dt2, _ := d.CreateDocumentType("html", "p", "other")
	defer dt2.Release()
	assert.False(t, dt1.IsEqualNode(dt2))
}
