// File: cmd/query_test.go
package cmd

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domkit/internal/dump"
)

const listPage = `<!DOCTYPE html>
<html><body>
<ul id="menu">
  <li class="item">One</li>
  <li class="item active">Two <b>bold</b></li>
  <li>Three</li>
</ul>
</body></html>`

func TestQueryText(t *testing.T) {
	page := writeFile(t, t.TempDir(), "list.html", listPage)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "first match only",
			args: []string{"-s", "li"},
			want: []string{page + ": <LI.item> One"},
		},
		{
			name: "all matches in document order",
			args: []string{"-s", "li", "--all"},
			want: []string{
				page + ": <LI.item> One",
				page + ": <LI.item.active> Two bold",
				page + ": <LI> Three",
			},
		},
		{
			name: "id and combinators",
			args: []string{"-s", "#menu > li.active b", "-a"},
			want: []string{page + ": <B> bold"},
		},
		{
			name: "no match prints nothing",
			args: []string{"-s", "table", "--all"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, append([]string{"query"}, append(tt.args, page)...)...)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, lines(out)); diff != "" {
				t.Errorf("query output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryJSON(t *testing.T) {
	page := writeFile(t, t.TempDir(), "list.html", listPage)
	out, _, err := executeCommand(t, "query", "-s", ".active", "--format", "json", page)
	require.NoError(t, err)

	var got []struct {
		File    string          `json:"file"`
		Matches []dump.NodeJSON `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, page, got[0].File)
	require.Len(t, got[0].Matches, 1)
	m := got[0].Matches[0]
	assert.Equal(t, "LI", m.Name)
	assert.Equal(t, []dump.Attr{{Name: "class", Value: "item active"}}, m.Attributes)
	require.Len(t, m.Children, 2)
	assert.Equal(t, "Two ", m.Children[0].Data)
}

func TestQueryManyFilesKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var files, want []string
	for i := 0; i < 12; i++ {
		files = append(files, writeFile(t, dir, fmt.Sprintf("f%02d.html", i), fmt.Sprintf(`<p id="p%d">%d</p>`, i, i)))
		want = append(want, fmt.Sprintf("%s: <P#p%d> %d", files[i], i, i))
	}
	args := append([]string{"query", "-s", "p", "--concurrency", "3"}, files...)
	out, _, err := executeCommand(t, args...)
	require.NoError(t, err)
	assert.Equal(t, want, lines(out))
}

func TestQueryXMLAndStdin(t *testing.T) {
	dir := t.TempDir()
	feed := writeFile(t, dir, "feed.xml", `<?xml version="1.0"?>
<feed><entry lang="en"><title>First</title></entry><entry><title>Second</title></entry></feed>`)

	out, _, err := executeCommand(t, "query", "-s", "entry[lang] > title", feed)
	require.NoError(t, err)
	assert.Equal(t, []string{feed + ": <title> First"}, lines(out), "XML documents keep name case")

	resetForTest(t)
	root := newRootCmd()
	stdin = strings.NewReader(`<div><span class="hit">from stdin</span></div>`)
	var buf strings.Builder
	root.SetOut(&buf)
	root.SetArgs([]string{"query", "-s", ".hit", "-"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "-: <SPAN.hit> from stdin\n", buf.String())
}

func TestQueryErrors(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "list.html", listPage)

	t.Run("selector is required", func(t *testing.T) {
		_, _, err := executeCommand(t, "query", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"selector" not set`)
	})

	t.Run("at least one file", func(t *testing.T) {
		_, _, err := executeCommand(t, "query", "-s", "li")
		require.Error(t, err)
	})

	t.Run("syntax errors name the file", func(t *testing.T) {
		_, _, err := executeCommand(t, "query", "-s", "li >", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), page)
		assert.Contains(t, err.Error(), "SyntaxError")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := executeCommand(t, "query", "-s", "li", page, dir+"/missing.html")
		require.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := executeCommand(t, "query", "-s", "li", "--format", "yaml", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_format")
	})

	t.Run("input larger than the limit", func(t *testing.T) {
		t.Setenv("DOMKIT_QUERY_MAX_INPUT_BYTES", "16")
		_, _, err := executeCommand(t, "query", "-s", "li", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds query.max_input_bytes")
	})

	t.Run("malformed XML", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.xml", "<a><b></a>")
		_, _, err := executeCommand(t, "query", "-s", "a", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing")
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, markupXML, kindOf("a/b.XML"))
	assert.Equal(t, markupXML, kindOf("icon.svg"))
	assert.Equal(t, markupHTML, kindOf("index.htm"))
	assert.Equal(t, markupHTML, kindOf("-"))
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
