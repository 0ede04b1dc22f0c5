// internal/selector/parser.go
package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectorGroup represents a comma-separated list of selectors (e.g., "h1, h2 .title").
// An element matches the group when it matches any member.
type SelectorGroup []ComplexSelector

// ComplexSelector represents a sequence of compound selectors joined by combinators (e.g., "div > p").
// Matching starts from the last entry and walks left.
type ComplexSelector struct {
	Selectors []CompoundWithCombinator
}

// CompoundWithCombinator pairs a compound selector with the combinator that
// joins it to the entry on its left. The first entry carries CombinatorNone.
type CompoundWithCombinator struct {
	Combinator Combinator
	Compound   CompoundSelector
}

// CompoundSelector is a run of simple selectors that must all match one element.
type CompoundSelector struct {
	TagName       string // "" when absent, "*" for the universal selector
	tagLower      string
	IDs           []string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoClass

	classMask uint64
}

// AttributeSelector represents a CSS attribute selector like `[href]` or `[target="_blank" i]`.
type AttributeSelector struct {
	Name            string
	Operator        string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value           string
	CaseInsensitive bool
}

// PseudoKind enumerates the supported pseudo-classes.
type PseudoKind int

const (
	PseudoRoot PseudoKind = iota
	PseudoEmpty
	PseudoFirstChild
	PseudoLastChild
	PseudoOnlyChild
	PseudoFirstOfType
	PseudoLastOfType
	PseudoOnlyOfType
	PseudoNthChild
	PseudoNthLastChild
	PseudoNthOfType
	PseudoNthLastOfType
	PseudoNot
	PseudoIs
	PseudoWhere
	PseudoScope
	PseudoChecked
	PseudoDisabled
	PseudoEnabled
)

var simplePseudos = map[string]PseudoKind{
	"root":          PseudoRoot,
	"empty":         PseudoEmpty,
	"first-child":   PseudoFirstChild,
	"last-child":    PseudoLastChild,
	"only-child":    PseudoOnlyChild,
	"first-of-type": PseudoFirstOfType,
	"last-of-type":  PseudoLastOfType,
	"only-of-type":  PseudoOnlyOfType,
	"scope":         PseudoScope,
	"checked":       PseudoChecked,
	"disabled":      PseudoDisabled,
	"enabled":       PseudoEnabled,
}

var functionalPseudos = map[string]PseudoKind{
	"nth-child":        PseudoNthChild,
	"nth-last-child":   PseudoNthLastChild,
	"nth-of-type":      PseudoNthOfType,
	"nth-last-of-type": PseudoNthLastOfType,
	"not":              PseudoNot,
	"is":               PseudoIs,
	"where":            PseudoWhere,
}

// PseudoClass is one parsed pseudo-class. Nth is set for the :nth-* family,
// Args for :not, :is and :where.
type PseudoClass struct {
	Name string
	Kind PseudoKind
	Nth  Nth
	Args SelectorGroup
}

// Nth is an An+B expression.
type Nth struct {
	A, B int
}

// Matches reports whether the 1-based position index satisfies An+B for some n >= 0.
func (n Nth) Matches(index int) bool {
	if n.A == 0 {
		return index == n.B
	}
	diff := index - n.B
	if diff%n.A != 0 {
		return false
	}
	return diff/n.A >= 0
}

// Combinator defines the relationship between compound selectors.
type Combinator int

const (
	CombinatorNone            Combinator = iota // No combinator (first selector)
	CombinatorDescendant                        // Space
	CombinatorChild                             // >
	CombinatorAdjacentSibling                   // +
	CombinatorGeneralSibling                    // ~
)

// Parse compiles selector text into a SelectorGroup. Unlike a stylesheet
// parser, any invalid input fails the whole selector with a *SyntaxError.
func Parse(input string) (SelectorGroup, error) {
	tz, err := NewTokenizer(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{tz: tz, input: input}
	group, err := p.parseSelectorGroup(false)
	if err != nil {
		return nil, err
	}
	if tok := p.tz.Peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s", tok.Type)
	}
	return group, nil
}

// Parser holds the state of the selector parser.
type Parser struct {
	tz    *Tokenizer
	input string
	depth int
}

const maxNesting = 32

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) skipWhitespace() bool {
	skipped := false
	for p.tz.Peek().Type == TokenWhitespace {
		p.tz.Next()
		skipped = true
	}
	return skipped
}

// parseSelectorGroup parses a comma-separated list of complex selectors. When
// nested it stops before a closing parenthesis.
func (p *Parser) parseSelectorGroup(nested bool) (SelectorGroup, error) {
	var group SelectorGroup
	for {
		p.skipWhitespace()
		complexSelector, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		group = append(group, complexSelector)

		p.skipWhitespace()
		tok := p.tz.Peek()
		switch {
		case tok.Type == TokenComma:
			p.tz.Next()
			continue
		case tok.Type == TokenEOF && !nested:
			return group, nil
		case tok.Type == TokenRightParen && nested:
			return group, nil
		default:
			return nil, p.errorf(tok, "unexpected %s", tok.Type)
		}
	}
}

func (p *Parser) parseComplexSelector() (ComplexSelector, error) {
	var complexSelector ComplexSelector
	combinator := CombinatorNone

	for {
		compound, ok, err := p.parseCompoundSelector()
		if err != nil {
			return ComplexSelector{}, err
		}
		if !ok {
			tok := p.tz.Peek()
			if combinator == CombinatorNone {
				return ComplexSelector{}, p.errorf(tok, "expected selector, found %s", tok.Type)
			}
			return ComplexSelector{}, p.errorf(tok, "dangling combinator")
		}
		complexSelector.Selectors = append(complexSelector.Selectors, CompoundWithCombinator{
			Combinator: combinator,
			Compound:   compound,
		})

		sawSpace := p.skipWhitespace()
		tok := p.tz.Peek()
		switch {
		case tok.Type == TokenGreater:
			combinator = CombinatorChild
		case tok.Type == TokenDelim && tok.Value == "+":
			combinator = CombinatorAdjacentSibling
		case tok.Type == TokenTilde:
			combinator = CombinatorGeneralSibling
		case tok.Type == TokenComma || tok.Type == TokenRightParen || tok.Type == TokenEOF:
			return complexSelector, nil
		case sawSpace:
			combinator = CombinatorDescendant
			continue
		default:
			return ComplexSelector{}, p.errorf(tok, "unexpected %s", tok.Type)
		}
		p.tz.Next()
		p.skipWhitespace()
	}
}

// parseCompoundSelector parses a single compound (e.g., div#id.class1[attr]:first-child).
// ok is false when no simple selector starts at the current token.
func (p *Parser) parseCompoundSelector() (CompoundSelector, bool, error) {
	var compound CompoundSelector
	found := false

	tok := p.tz.Peek()
	switch {
	case tok.Type == TokenIdent:
		p.tz.Next()
		compound.TagName = tok.Value
		found = true
	case tok.Type == TokenDelim && tok.Value == "*":
		p.tz.Next()
		compound.TagName = "*"
		found = true
	}
	if next := p.tz.Peek(); next.Type == TokenDelim && next.Value == "|" {
		return compound, false, p.errorf(next, "namespace prefixes are not supported")
	}

	for {
		tok := p.tz.Peek()
		switch {
		case tok.Type == TokenHash:
			p.tz.Next()
			if !tok.ID {
				return compound, false, p.errorf(tok, "%q is not a valid id selector", "#"+tok.Value)
			}
			compound.IDs = append(compound.IDs, tok.Value)
		case tok.Type == TokenDelim && tok.Value == ".":
			p.tz.Next()
			name := p.tz.Next()
			if name.Type != TokenIdent {
				return compound, false, p.errorf(name, "expected class name after '.'")
			}
			compound.Classes = append(compound.Classes, name.Value)
		case tok.Type == TokenLeftBracket:
			p.tz.Next()
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return compound, false, err
			}
			compound.Attributes = append(compound.Attributes, attr)
		case tok.Type == TokenColon:
			p.tz.Next()
			pseudo, err := p.parsePseudoClass()
			if err != nil {
				return compound, false, err
			}
			compound.PseudoClasses = append(compound.PseudoClasses, pseudo)
		default:
			if found {
				compound.finish()
			}
			return compound, found, nil
		}
		found = true
	}
}

func (c *CompoundSelector) finish() {
	c.tagLower = strings.ToLower(c.TagName)
	c.classMask = 0
	for _, class := range c.Classes {
		c.classMask |= BloomBits(class)
	}
}

// parseAttributeSelector parses the contents of `[...]`; the '[' is already consumed.
func (p *Parser) parseAttributeSelector() (AttributeSelector, error) {
	p.skipWhitespace()
	name := p.tz.Next()
	if name.Type == TokenDelim && (name.Value == "|" || name.Value == "*") {
		return AttributeSelector{}, p.errorf(name, "namespace prefixes are not supported")
	}
	if name.Type != TokenIdent {
		return AttributeSelector{}, p.errorf(name, "expected attribute name")
	}
	if next := p.tz.Peek(); next.Type == TokenDelim && next.Value == "|" {
		return AttributeSelector{}, p.errorf(next, "namespace prefixes are not supported")
	}
	p.skipWhitespace()

	op := p.tz.Next()
	sel := AttributeSelector{Name: name.Value}
	switch op.Type {
	case TokenRightBracket:
		return sel, nil
	case TokenEquals:
		sel.Operator = "="
	case TokenIncludeMatch:
		sel.Operator = "~="
	case TokenDashMatch:
		sel.Operator = "|="
	case TokenPrefixMatch:
		sel.Operator = "^="
	case TokenSuffixMatch:
		sel.Operator = "$="
	case TokenSubstringMatch:
		sel.Operator = "*="
	default:
		return AttributeSelector{}, p.errorf(op, "expected attribute operator or ']'")
	}

	p.skipWhitespace()
	value := p.tz.Next()
	if value.Type != TokenIdent && value.Type != TokenString {
		return AttributeSelector{}, p.errorf(value, "expected attribute value")
	}
	sel.Value = value.Value
	p.skipWhitespace()

	if flag := p.tz.Peek(); flag.Type == TokenIdent {
		p.tz.Next()
		switch strings.ToLower(flag.Value) {
		case "i":
			sel.CaseInsensitive = true
		case "s":
		default:
			return AttributeSelector{}, p.errorf(flag, "unknown attribute flag %q", flag.Value)
		}
		p.skipWhitespace()
	}

	if end := p.tz.Next(); end.Type != TokenRightBracket {
		return AttributeSelector{}, p.errorf(end, "expected ']' to close attribute selector")
	}
	return sel, nil
}

// parsePseudoClass parses what follows a ':'.
func (p *Parser) parsePseudoClass() (PseudoClass, error) {
	tok := p.tz.Next()
	switch tok.Type {
	case TokenColon:
		return PseudoClass{}, p.errorf(tok, "pseudo-elements are not supported")
	case TokenIdent:
		name := strings.ToLower(tok.Value)
		kind, ok := simplePseudos[name]
		if !ok {
			return PseudoClass{}, p.errorf(tok, "unsupported pseudo-class :%s", tok.Value)
		}
		return PseudoClass{Name: name, Kind: kind}, nil
	case TokenFunction:
		name := strings.ToLower(tok.Value)
		kind, ok := functionalPseudos[name]
		if !ok {
			return PseudoClass{}, p.errorf(tok, "unsupported pseudo-class :%s()", tok.Value)
		}
		pc := PseudoClass{Name: name, Kind: kind}
		switch kind {
		case PseudoNot, PseudoIs, PseudoWhere:
			if p.depth >= maxNesting {
				return PseudoClass{}, p.errorf(tok, "selector nesting too deep")
			}
			p.depth++
			args, err := p.parseSelectorGroup(true)
			p.depth--
			if err != nil {
				return PseudoClass{}, err
			}
			pc.Args = args
		default:
			nth, err := p.parseNthArgument(tok)
			if err != nil {
				return PseudoClass{}, err
			}
			pc.Nth = nth
		}
		if end := p.tz.Next(); end.Type != TokenRightParen {
			return PseudoClass{}, p.errorf(end, "expected ')'")
		}
		return pc, nil
	default:
		return PseudoClass{}, p.errorf(tok, "expected pseudo-class name")
	}
}

// parseNthArgument reads the tokens up to the closing parenthesis and parses
// them as An+B. The ')' is left for the caller.
func (p *Parser) parseNthArgument(fn Token) (Nth, error) {
	first := p.tz.Peek()
	var toks []Token
	for {
		tok := p.tz.Peek()
		if tok.Type == TokenRightParen {
			nth, ok := parseAnB(toks)
			if !ok {
				text := strings.TrimSpace(p.input[first.Pos:tok.Pos])
				if text == "" {
					return Nth{}, p.errorf(first, "empty An+B expression")
				}
				return Nth{}, p.errorf(first, "invalid An+B expression %q", text)
			}
			return nth, nil
		}
		if tok.Type == TokenEOF {
			return Nth{}, p.errorf(fn, "unterminated :%s()", fn.Value)
		}
		toks = append(toks, p.tz.Next())
	}
}

// ParseNth parses an An+B microsyntax expression such as "2n+1", "-n+3", "odd" or "7".
func ParseNth(text string) (Nth, error) {
	tz, err := NewTokenizer(text)
	if err != nil {
		return Nth{}, fmt.Errorf("invalid An+B expression %q: %w", text, err)
	}
	toks := tz.Tokens()
	nth, ok := parseAnB(toks[:len(toks)-1])
	if !ok {
		if strings.TrimSpace(text) == "" {
			return Nth{}, fmt.Errorf("empty An+B expression")
		}
		return Nth{}, fmt.Errorf("invalid An+B expression %q", text)
	}
	return nth, nil
}

// parseAnB follows the An+B grammar over tokens. Whitespace is allowed only
// around the whole expression and around the sign that introduces B, so
// "2n + 1" parses while "2 n+1" and "- n+1" do not.
func parseAnB(toks []Token) (Nth, bool) {
	toks = trimWhitespace(toks)
	if len(toks) == 0 {
		return Nth{}, false
	}

	var nth Nth
	var unit string
	first := toks[0]
	rest := toks[1:]
	switch first.Type {
	case TokenNumber:
		b, ok := integer(first.Raw, true)
		return Nth{B: b}, ok && len(rest) == 0
	case TokenDimension:
		a, ok := integer(first.Raw, true)
		if !ok {
			return Nth{}, false
		}
		nth.A, unit = a, asciiLower(first.Value)
	case TokenIdent:
		v := asciiLower(first.Value)
		if len(rest) == 0 && v == "odd" {
			return Nth{A: 2, B: 1}, true
		}
		if len(rest) == 0 && v == "even" {
			return Nth{A: 2, B: 0}, true
		}
		nth.A, unit = 1, v
		if strings.HasPrefix(v, "-") {
			nth.A, unit = -1, v[1:]
		}
	case TokenDelim:
		// "+n": the sign must touch the n.
		if first.Value != "+" || len(rest) == 0 || rest[0].Type != TokenIdent || rest[0].Pos != first.Pos+1 {
			return Nth{}, false
		}
		nth.A, unit = 1, asciiLower(rest[0].Value)
		if strings.HasPrefix(unit, "-") {
			return Nth{}, false
		}
		rest = rest[1:]
	default:
		return Nth{}, false
	}

	switch {
	case unit == "n":
	case unit == "n-":
		rest = trimWhitespace(rest)
		if len(rest) != 1 || rest[0].Type != TokenNumber {
			return Nth{}, false
		}
		b, ok := integer(rest[0].Raw, false)
		nth.B = -b
		return nth, ok
	case strings.HasPrefix(unit, "n-"):
		b, ok := integer(unit[2:], false)
		nth.B = -b
		return nth, ok && len(rest) == 0
	default:
		return Nth{}, false
	}

	rest = trimWhitespace(rest)
	switch {
	case len(rest) == 0:
		return nth, true
	case len(rest) == 1 && rest[0].Type == TokenNumber:
		raw := rest[0].Raw
		if raw[0] != '+' && raw[0] != '-' {
			return Nth{}, false
		}
		b, ok := integer(raw, true)
		nth.B = b
		return nth, ok
	case rest[0].Type == TokenDelim && (rest[0].Value == "+" || rest[0].Value == "-"):
		num := trimWhitespace(rest[1:])
		if len(num) != 1 || num[0].Type != TokenNumber {
			return Nth{}, false
		}
		b, ok := integer(num[0].Raw, false)
		if rest[0].Value == "-" {
			b = -b
		}
		nth.B = b
		return nth, ok
	}
	return Nth{}, false
}

func trimWhitespace(toks []Token) []Token {
	for len(toks) > 0 && toks[0].Type == TokenWhitespace {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Type == TokenWhitespace {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// integer parses a run of ASCII digits, with an optional sign when signed
// is set.
func integer(s string, signed bool) (int, bool) {
	digits := s
	if signed && s != "" && (s[0] == '+' || s[0] == '-') {
		digits = s[1:]
	}
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strings.ContainsAny(digits, "+-") {
		return 0, false
	}
	if s[0] == '-' {
		n = -n
	}
	return n, true
}

// asciiLower lowercases ASCII letters only, as CSS case-insensitive
// comparisons require.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
