// internal/selector/parser_test.go
package selector

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreCompiled = cmpopts.IgnoreUnexported(CompoundSelector{})

// Helper functions to build expected structures concisely
func c(tag string, ids, classes []string, attrs []AttributeSelector, pseudos ...PseudoClass) CompoundSelector {
	return CompoundSelector{TagName: tag, IDs: ids, Classes: classes, Attributes: attrs, PseudoClasses: pseudos}
}

func cs(selectors ...CompoundWithCombinator) ComplexSelector {
	return ComplexSelector{Selectors: selectors}
}

func sc(comb Combinator, sel CompoundSelector) CompoundWithCombinator {
	return CompoundWithCombinator{Combinator: comb, Compound: sel}
}

func TestParseCompoundSelectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CompoundSelector
	}{
		{"Tag", "div", c("div", nil, nil, nil)},
		{"ID", "#main", c("", []string{"main"}, nil, nil)},
		{"Class", ".button", c("", nil, []string{"button"}, nil)},
		{"Multiple Classes", ".btn.primary", c("", nil, []string{"btn", "primary"}, nil)},
		{"Combined", "input#username.required", c("input", []string{"username"}, []string{"required"}, nil)},
		{"Universal", "*", c("*", nil, nil, nil)},
		{"Attr Presence", "[disabled]", c("", nil, nil, []AttributeSelector{{Name: "disabled"}})},
		{"Attr Exact", `[type="text"]`, c("", nil, nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "text"}})},
		{"Attr Unquoted", `[type=text]`, c("", nil, nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "text"}})},
		{"Attr Contains Word (~=)", `[class~="alert"]`, c("", nil, nil, []AttributeSelector{{Name: "class", Operator: "~=", Value: "alert"}})},
		{"Attr Prefix Hyphen (|=)", `[lang|="en"]`, c("", nil, nil, []AttributeSelector{{Name: "lang", Operator: "|=", Value: "en"}})},
		{"Attr Starts With (^=)", `[href^="https"]`, c("", nil, nil, []AttributeSelector{{Name: "href", Operator: "^=", Value: "https"}})},
		{"Attr Ends With ($=)", `[src$=".png"]`, c("", nil, nil, []AttributeSelector{{Name: "src", Operator: "$=", Value: ".png"}})},
		{"Attr Contains Substring (*=)", `[title*="ex"]`, c("", nil, nil, []AttributeSelector{{Name: "title", Operator: "*=", Value: "ex"}})},
		{"Attr Case Flag", `[type="TEXT" i]`, c("", nil, nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "TEXT", CaseInsensitive: true}})},
		{"Attr Whitespace", `[ type = "a" ]`, c("", nil, nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "a"}})},
		{"Escaped Class", `.a\:b`, c("", nil, []string{"a:b"}, nil)},
		{"Hex Escape", `#\31 23`, c("", []string{"123"}, nil, nil)},
		{"Pseudo", "li:first-child", c("li", nil, nil, nil, PseudoClass{Name: "first-child", Kind: PseudoFirstChild})},
		{"Pseudo Uppercase", "li:FIRST-CHILD", c("li", nil, nil, nil, PseudoClass{Name: "first-child", Kind: PseudoFirstChild})},
		{"Nth", "li:nth-child(2n+1)", c("li", nil, nil, nil, PseudoClass{Name: "nth-child", Kind: PseudoNthChild, Nth: Nth{A: 2, B: 1}})},
		{"Nth Spaced", "li:nth-of-type( -n + 3 )", c("li", nil, nil, nil, PseudoClass{Name: "nth-of-type", Kind: PseudoNthOfType, Nth: Nth{A: -1, B: 3}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, group, 1)
			require.Len(t, group[0].Selectors, 1)
			got := group[0].Selectors[0].Compound
			if diff := cmp.Diff(tt.expected, got, ignoreCompiled); diff != "" {
				t.Errorf("compound mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCombinators(t *testing.T) {
	input := `
		div p,
		article > section,
		h1 + h2,
		h2 ~ p,
		.container .item>span
	`
	group, err := Parse(input)
	require.NoError(t, err)

	expected := SelectorGroup{
		cs(sc(CombinatorNone, c("div", nil, nil, nil)), sc(CombinatorDescendant, c("p", nil, nil, nil))),
		cs(sc(CombinatorNone, c("article", nil, nil, nil)), sc(CombinatorChild, c("section", nil, nil, nil))),
		cs(sc(CombinatorNone, c("h1", nil, nil, nil)), sc(CombinatorAdjacentSibling, c("h2", nil, nil, nil))),
		cs(sc(CombinatorNone, c("h2", nil, nil, nil)), sc(CombinatorGeneralSibling, c("p", nil, nil, nil))),
		cs(
			sc(CombinatorNone, c("", nil, []string{"container"}, nil)),
			sc(CombinatorDescendant, c("", nil, []string{"item"}, nil)),
			sc(CombinatorChild, c("span", nil, nil, nil)),
		),
	}
	if diff := cmp.Diff(expected, group, ignoreCompiled); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNestedPseudoClasses(t *testing.T) {
	group, err := Parse("div:not(.a, #b):is(p > span):where(em)")
	require.NoError(t, err)
	pcs := group[0].Selectors[0].Compound.PseudoClasses
	require.Len(t, pcs, 3)

	assert.Equal(t, PseudoNot, pcs[0].Kind)
	assert.Len(t, pcs[0].Args, 2)
	assert.Equal(t, PseudoIs, pcs[1].Kind)
	require.Len(t, pcs[1].Args, 1)
	assert.Len(t, pcs[1].Args[0].Selectors, 2)
	assert.Equal(t, CombinatorChild, pcs[1].Args[0].Selectors[1].Combinator)
	assert.Equal(t, PseudoWhere, pcs[2].Kind)
}

func TestParseSyntaxErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"div >",
		"> div",
		"div,",
		",div",
		"div,,p",
		"a::before",
		"a:hover",
		"a:nth-child()",
		"a:nth-child(2n+)",
		"a:nth-child(foo)",
		"a:not(",
		"a:not()",
		"ns|div",
		"*|div",
		"[ns|attr]",
		"[attr",
		"[attr=]",
		"[attr=a x]",
		"div#",
		"div.",
		".1a",
		`"unterminated`,
		`[a="unterminated]`,
		"div\\",
		"div)",
		"div{",
		"#1abc",
		"li#-2x",
		"a:nth-child(2 n + 1)",
		"a:nth-child(- n+1)",
		"a:nth-child(+ n)",
		"a:nth-child(2n+1 2)",
		"a:nth-child(1.5)",
		"a:nth-child(n- -1)",
		"div:has(> p)",
		"li:nth-child(2n+1 of .x)",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			var se *SyntaxError
			assert.True(t, errors.As(err, &se), "expected *SyntaxError, got %T", err)
		})
	}
}

func TestParseNth(t *testing.T) {
	tests := []struct {
		in   string
		want Nth
	}{
		{"odd", Nth{2, 1}},
		{"EVEN", Nth{2, 0}},
		{"3", Nth{0, 3}},
		{"-3", Nth{0, -3}},
		{"n", Nth{1, 0}},
		{"-n+2", Nth{-1, 2}},
		{"+n-1", Nth{1, -1}},
		{"2n", Nth{2, 0}},
		{"2n + 1", Nth{2, 1}},
		{"-2n+10", Nth{-2, 10}},
		{" 3n- 2 ", Nth{3, -2}},
		{"2n -1", Nth{2, -1}},
		{"-N-3", Nth{-1, -3}},
		{"n- 4", Nth{1, -4}},
		{"+5", Nth{0, 5}},
	}
	for _, tt := range tests {
		got, err := ParseNth(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "n+", "2x", "++1", "1n2", "n--1", "2 n+1", "- n+1", "+ n", "2n 1", "2n+ +1", "odd 1"} {
		_, err := ParseNth(bad)
		assert.Error(t, err, bad)
	}
}

func TestNthMatches(t *testing.T) {
	odd := Nth{A: 2, B: 1}
	assert.True(t, odd.Matches(1))
	assert.False(t, odd.Matches(2))
	assert.True(t, odd.Matches(3))

	firstThree := Nth{A: -1, B: 3}
	assert.True(t, firstThree.Matches(1))
	assert.True(t, firstThree.Matches(3))
	assert.False(t, firstThree.Matches(4))

	exact := Nth{B: 2}
	assert.True(t, exact.Matches(2))
	assert.False(t, exact.Matches(4))
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		input string
		want  Specificity
	}{
		{"*", Specificity{0, 0, 0}},
		{"div", Specificity{0, 0, 1}},
		{"div.a", Specificity{0, 1, 1}},
		{"#x.a[href]", Specificity{1, 2, 0}},
		{"ul > li:first-child", Specificity{0, 1, 2}},
		{"div:not(#a, .b)", Specificity{1, 0, 1}},
		{":is(p, #x)", Specificity{1, 0, 0}},
		{":where(#x) p", Specificity{0, 0, 1}},
	}
	for _, tt := range tests {
		sel, err := Compile(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, sel.Specificities()[0], tt.input)
	}
}

func TestSpecificityLess(t *testing.T) {
	assert.True(t, Specificity{0, 5, 5}.Less(Specificity{1, 0, 0}))
	assert.True(t, Specificity{0, 1, 5}.Less(Specificity{0, 2, 0}))
	assert.False(t, Specificity{0, 1, 1}.Less(Specificity{0, 1, 1}))
}
