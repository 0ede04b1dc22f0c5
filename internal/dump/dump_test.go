// internal/dump/dump_test.go
package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domkit/internal/dom"
	"github.com/xkilldash9x/domkit/internal/importer"
)

func load(t *testing.T, markup string) *dom.Document {
	t.Helper()
	d := dom.NewHTMLDocument()
	t.Cleanup(d.Release)
	_, err := importer.FromHTML(d, strings.NewReader(markup))
	require.NoError(t, err)
	return d
}

func TestTree(t *testing.T) {
	d := load(t, `<!DOCTYPE html><p id="x" class="a">hi<!--c--></p>`)
	p, err := d.QuerySelector("p")
	require.NoError(t, err)

	want := &NodeJSON{
		Type:      "Element",
		Name:      "P",
		Namespace: dom.HTMLNamespace,
		Attributes: []Attr{
			{Name: "id", Value: "x"},
			{Name: "class", Value: "a"},
		},
		Children: []*NodeJSON{
			{Type: "Text", Data: "hi"},
			{Type: "Comment", Data: "c"},
		},
	}
	if diff := cmp.Diff(want, Tree(p)); diff != "" {
		t.Errorf("Tree mismatch (-want +got):\n%s", diff)
	}

	doc := Tree(d.Node())
	assert.Equal(t, "Document", doc.Type)
	require.NotEmpty(t, doc.Children)
	assert.Equal(t, &NodeJSON{Type: "DocumentType", Name: "html"}, doc.Children[0])
}

func TestTreeShadowRoot(t *testing.T) {
	d := load(t, `<div id="host"><span>light</span></div>`)
	host := d.GetElementById("host")
	sr, err := host.AttachShadow(dom.ShadowRootOpen)
	require.NoError(t, err)
	text := d.CreateTextNode("shadow")
	_, err = sr.AppendChild(text)
	require.NoError(t, err)
	text.Release()

	got := Tree(host)
	require.NotNil(t, got.ShadowRoot)
	assert.Equal(t, "open", got.ShadowRoot.Mode)
	assert.Equal(t, []*NodeJSON{{Type: "Text", Data: "shadow"}}, got.ShadowRoot.Children)
	assert.Len(t, got.Children, 1, "light children stay separate")
}

func TestWriteJSON(t *testing.T) {
	d := load(t, `<a href="/x?a=1&amp;b=2">link</a>`)
	a, err := d.QuerySelector("a")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Tree(a)))
	assert.Contains(t, buf.String(), `"value": "/x?a=1&b=2"`, "HTML characters are not escaped")
	assert.Contains(t, buf.String(), "\n  ", "output is indented")

	var back NodeJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, Tree(a), &back)
}

func TestCDP(t *testing.T) {
	d := load(t, `<!DOCTYPE html><body><svg viewBox="0 0 1 1"></svg><p title="t">x</p></body>`)
	root := CDP(d.Node())

	assert.Equal(t, cdp.NodeID(1), root.NodeID)
	assert.Equal(t, cdp.NodeTypeDocument, root.NodeType)
	assert.Equal(t, "#document", root.NodeName)
	require.Len(t, root.Children, 2)

	doctype := root.Children[0]
	assert.Equal(t, cdp.NodeTypeDocumentType, doctype.NodeType)
	assert.Equal(t, "html", doctype.Name)
	assert.Equal(t, root.NodeID, doctype.ParentID)
	assert.Same(t, root, doctype.Parent)

	html := root.Children[1]
	assert.Equal(t, "HTML", html.NodeName)
	assert.Equal(t, "html", html.LocalName)
	assert.Equal(t, int64(2), html.ChildNodeCount)

	body := html.Children[1]
	svg, p := body.Children[0], body.Children[1]
	assert.True(t, svg.IsSVG)
	assert.Equal(t, []string{"viewBox", "0 0 1 1"}, svg.Attributes)
	assert.False(t, p.IsSVG)
	assert.Equal(t, []string{"title", "t"}, p.Attributes)
	assert.Equal(t, "x", p.Children[0].NodeValue)

	var ids []cdp.NodeID
	var walk func(*cdp.Node)
	walk = func(n *cdp.Node) {
		ids = append(ids, n.NodeID)
		assert.Equal(t, cdp.BackendNodeID(n.NodeID), n.BackendNodeID)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	for i, id := range ids {
		assert.Equal(t, cdp.NodeID(i+1), id, "ids follow tree order")
	}
}

func TestCDPShadowAndSlots(t *testing.T) {
	d := load(t, `<div id="host"><b slot="s">x</b></div>`)
	host := d.GetElementById("host")
	sr, err := host.AttachShadow(dom.ShadowRootOpen)
	require.NoError(t, err)
	slot, err := d.CreateElement("slot")
	require.NoError(t, err)
	require.NoError(t, slot.SetAttribute("name", "s"))
	_, err = sr.AppendChild(slot)
	require.NoError(t, err)
	slot.Release()
	_, err = sr.AssignSlots()
	require.NoError(t, err)

	got := CDP(host)
	require.Len(t, got.ShadowRoots, 1)
	shadow := got.ShadowRoots[0]
	assert.Equal(t, cdp.ShadowRootTypeOpen, shadow.ShadowRootType)
	assert.Equal(t, cdp.NodeTypeDocumentFragment, shadow.NodeType)

	slotNode := shadow.Children[0]
	b := got.Children[0]
	require.NotNil(t, b.AssignedSlot)
	assert.Equal(t, cdp.BackendNodeID(slotNode.NodeID), b.AssignedSlot.BackendNodeID)
	assert.Equal(t, "SLOT", b.AssignedSlot.NodeName)
}

func TestRecords(t *testing.T) {
	d := load(t, `<ul id="list"><li>a</li></ul>`)
	list := d.GetElementById("list")
	obs := d.NewMutationObserver(nil)
	defer obs.Disconnect()
	require.NoError(t, obs.Observe(list, dom.MutationObserverInit{
		ChildList:         true,
		AttributeOldValue: dom.Bool(true),
	}))

	require.NoError(t, list.SetAttribute("id", "renamed"))
	li, err := d.CreateElement("li")
	require.NoError(t, err)
	_, err = list.AppendChild(li)
	require.NoError(t, err)
	li.Release()

	records := obs.TakeRecords()
	defer dom.ReleaseRecords(records)
	old := "list"
	want := []RecordJSON{
		{Type: "attributes", Target: "<UL>", AttributeName: "id", OldValue: &old},
		{Type: "childList", Target: "<UL>", AddedNodes: []string{"<LI>"}, PreviousSibling: "<LI>"},
	}
	if diff := cmp.Diff(want, Records(records), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}
