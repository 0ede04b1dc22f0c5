// internal/dom/characterdata_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Bridge(t *testing.T) {
	const s = "aé中\U0001F600b" // 1+1+1+2+1 code units
	assert.Equal(t, 6, utf16Len(s))
	assert.Equal(t, 0, utf16Len(""))
	assert.Equal(t, 3, utf16Len("a\xffb"), "an invalid byte counts as one unit")

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 6},
		{4, 6}, // inside the surrogate pair rounds down
		{5, 10},
		{6, 11},
	}
	for _, tt := range tests {
		got, err := utf16ToByte(s, tt.offset)
		require.NoError(t, err, "offset %d", tt.offset)
		assert.Equal(t, tt.want, got, "offset %d", tt.offset)
	}

	_, err := utf16ToByte(s, 7)
	assert.ErrorIs(t, err, ErrIndexSize)
	_, err = utf16ToByte(s, -1)
	assert.ErrorIs(t, err, ErrIndexSize)
}

func TestCharacterDataEdits(t *testing.T) {
	d := newDoc(t)
	text := d.CreateTextNode("hello world")
	defer text.Release()

	sub, err := text.SubstringData(6, 100)
	require.NoError(t, err)
	assert.Equal(t, "world", sub)

	require.NoError(t, text.InsertData(5, ","))
	assert.Equal(t, "hello, world", text.Data())
	require.NoError(t, text.DeleteData(0, 7))
	assert.Equal(t, "world", text.Data())
	require.NoError(t, text.ReplaceData(0, 1, "W"))
	assert.Equal(t, "World", text.Data())
	text.AppendData("!")
	assert.Equal(t, "World!", text.Data())
	assert.Equal(t, 6, text.Length())

	gen := d.Generation()
	err = text.InsertData(99, "x")
	assert.ErrorIs(t, err, ErrIndexSize)
	assert.Equal(t, gen, d.Generation(), "a rejected edit is not a mutation")
	assert.Equal(t, "World!", text.Data())

	text.SetNodeValue("reset")
	assert.Equal(t, "reset", text.TextContent())

	t.Run("offsets are UTF-16 code units", func(t *testing.T) {
		n := d.CreateTextNode("\U0001F600x")
		defer n.Release()
		assert.Equal(t, 3, n.Length())
		sub, err := n.SubstringData(2, 1)
		require.NoError(t, err)
		assert.Equal(t, "x", sub)
		require.NoError(t, n.DeleteData(0, 2))
		assert.Equal(t, "x", n.Data())
	})

	t.Run("element nodes are not character data", func(t *testing.T) {
		e := elem(t, d, "p")
		defer e.Release()
		_, err := e.SubstringData(0, 1)
		assert.ErrorIs(t, err, ErrNotSupported)
		assert.Equal(t, 0, e.Length())
	})
}

func TestSplitText(t *testing.T) {
	d := newDoc(t)
	p := add(t, d.Node(), elem(t, d, "p"))
	text := add(t, p, d.CreateTextNode("hello world"))
	add(t, p, elem(t, d, "br"))

	tail, err := text.SplitText(5)
	require.NoError(t, err)
	defer tail.Release()
	assert.Equal(t, "hello", text.Data())
	assert.Equal(t, " world", tail.Data())
	assert.Same(t, tail, text.NextSibling())
	assert.Equal(t, "hello world", text.WholeText())
	checkTree(t, d.Node())

	_, err = text.SplitText(6)
	assert.ErrorIs(t, err, ErrIndexSize)

	t.Run("never inside a surrogate pair", func(t *testing.T) {
		const original = "\U0001F600x"
		n := d.CreateTextNode(original)
		defer n.Release()

		rest, err := n.SplitText(1)
		require.NoError(t, err)
		defer rest.Release()
		assert.Equal(t, "", n.Data())
		assert.Equal(t, original, rest.Data())
		assert.Equal(t, original, n.Data()+rest.Data())
	})

	t.Run("surrogate pair after a BMP character", func(t *testing.T) {
		const original = "a\U0001F600b"
		n := d.CreateTextNode(original)
		defer n.Release()

		rest, err := n.SplitText(2)
		require.NoError(t, err)
		defer rest.Release()
		assert.Equal(t, "a", n.Data())
		assert.Equal(t, "\U0001F600b", rest.Data())
		assert.Equal(t, original, n.Data()+rest.Data())
	})

	t.Run("comments can not be split", func(t *testing.T) {
		c := d.CreateComment("x")
		defer c.Release()
		_, err := c.SplitText(0)
		assert.ErrorIs(t, err, ErrNotSupported)
	})
}

func TestCreateCharacterNodes(t *testing.T) {
	html := newDoc(t)
	_, err := html.CreateCDATASection("x")
	assert.ErrorIs(t, err, ErrNotSupported)

	xml := newXMLDoc(t)
	cdata, err := xml.CreateCDATASection("a < b")
	require.NoError(t, err)
	defer cdata.Release()
	assert.Equal(t, "#cdata-section", cdata.NodeName())
	_, err = xml.CreateCDATASection("]]>")
	assert.ErrorIs(t, err, ErrInvalidCharacter)

	pi, err := xml.CreateProcessingInstruction("xml-stylesheet", `href="a.css"`)
	require.NoError(t, err)
	defer pi.Release()
	assert.Equal(t, "xml-stylesheet", pi.Target())
	assert.Equal(t, "xml-stylesheet", pi.NodeName())
	_, err = xml.CreateProcessingInstruction("x", "?>")
	assert.ErrorIs(t, err, ErrInvalidCharacter)
}
