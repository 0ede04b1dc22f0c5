// internal/selector/tokenizer.go
package selector

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenFunction // identifier immediately followed by '(' ; Value excludes the paren
	TokenHash
	TokenString
	TokenNumber
	TokenDimension // number followed by an identifier, e.g. "2n"
	TokenDelim     // '.', '*', '|', '+', '-', '!' and any other single code point
	TokenWhitespace
	TokenGreater // '>'
	TokenTilde   // '~'
	TokenComma
	TokenColon
	TokenLeftBracket
	TokenRightBracket
	TokenLeftParen
	TokenRightParen
	TokenIncludeMatch   // ~=
	TokenDashMatch      // |=
	TokenPrefixMatch    // ^=
	TokenSuffixMatch    // $=
	TokenSubstringMatch // *=
	TokenEquals         // =
)

var tokenNames = [...]string{
	TokenEOF:            "EOF",
	TokenIdent:          "ident",
	TokenFunction:       "function",
	TokenHash:           "hash",
	TokenString:         "string",
	TokenNumber:         "number",
	TokenDimension:      "dimension",
	TokenDelim:          "delim",
	TokenWhitespace:     "whitespace",
	TokenGreater:        "'>'",
	TokenTilde:          "'~'",
	TokenComma:          "','",
	TokenColon:          "':'",
	TokenLeftBracket:    "'['",
	TokenRightBracket:   "']'",
	TokenLeftParen:      "'('",
	TokenRightParen:     "')'",
	TokenIncludeMatch:   "'~='",
	TokenDashMatch:      "'|='",
	TokenPrefixMatch:    "'^='",
	TokenSuffixMatch:    "'$='",
	TokenSubstringMatch: "'*='",
	TokenEquals:         "'='",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme. Value holds the decoded text (escapes resolved) for
// idents, functions, hashes, strings and delims; Raw holds the source text
// for numbers and dimensions.
type Token struct {
	Type  TokenType
	Value string
	Raw   string
	Pos   int
	// ID marks a hash whose name would also start an identifier. Only those
	// are valid id selectors; "#1a" lexes as a hash without it.
	ID bool
}

// SyntaxError reports malformed selector text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("selector syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Tokenizer lexes selector text into a finite token sequence. The whole input
// is lexed eagerly so the stream can be rewound with Reset or Mark/Restore.
type Tokenizer struct {
	input  string
	tokens []Token
	pos    int
}

// NewTokenizer lexes input, returning a *SyntaxError for bad escapes and
// unterminated strings.
func NewTokenizer(input string) (*Tokenizer, error) {
	l := lexer{input: input}
	toks, err := l.run()
	if err != nil {
		return nil, err
	}
	return &Tokenizer{input: input, tokens: toks}, nil
}

// Next returns the next token; after the end it keeps returning EOF.
func (t *Tokenizer) Next() Token {
	tok := t.tokens[t.pos]
	if tok.Type != TokenEOF {
		t.pos++
	}
	return tok
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() Token { return t.tokens[t.pos] }

// Reset rewinds to the first token.
func (t *Tokenizer) Reset() { t.pos = 0 }

// Mark returns the current position for a later Restore.
func (t *Tokenizer) Mark() int { return t.pos }

// Restore rewinds (or advances) to a position obtained from Mark.
func (t *Tokenizer) Restore(mark int) {
	if mark < 0 || mark >= len(t.tokens) {
		mark = len(t.tokens) - 1
	}
	t.pos = mark
}

// Tokens returns the full token slice, EOF included.
func (t *Tokenizer) Tokens() []Token { return t.tokens }

// Tokenize is a convenience wrapper returning all tokens.
func Tokenize(input string) ([]Token, error) {
	t, err := NewTokenizer(input)
	if err != nil {
		return nil, err
	}
	return t.Tokens(), nil
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) run() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == TokenEOF {
			return out, nil
		}
	}
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) peekAt(off int) rune {
	p := l.pos
	for i := 0; i < off; i++ {
		if p >= len(l.input) {
			return -1
		}
		_, w := utf8.DecodeRuneInString(l.input[p:])
		p += w
	}
	if p >= len(l.input) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

func (l *lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	return r
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (Token, error) {
	if l.eof() {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	start := l.pos
	c := l.peekAt(0)

	switch {
	case isSpace(c):
		for !l.eof() && isSpace(l.peekAt(0)) {
			l.advance()
		}
		return Token{Type: TokenWhitespace, Value: " ", Pos: start}, nil
	case c == '"' || c == '\'':
		return l.lexString()
	case c == '#':
		l.advance()
		if l.startsName() {
			id := l.startsIdent()
			name, err := l.lexName()
			if err != nil {
				return Token{}, err
			}
			return Token{Type: TokenHash, Value: name, Pos: start, ID: id}, nil
		}
		return Token{Type: TokenDelim, Value: "#", Pos: start}, nil
	case c == '(':
		l.advance()
		return Token{Type: TokenLeftParen, Pos: start}, nil
	case c == ')':
		l.advance()
		return Token{Type: TokenRightParen, Pos: start}, nil
	case c == '[':
		l.advance()
		return Token{Type: TokenLeftBracket, Pos: start}, nil
	case c == ']':
		l.advance()
		return Token{Type: TokenRightBracket, Pos: start}, nil
	case c == ',':
		l.advance()
		return Token{Type: TokenComma, Pos: start}, nil
	case c == ':':
		l.advance()
		return Token{Type: TokenColon, Pos: start}, nil
	case c == '>':
		l.advance()
		return Token{Type: TokenGreater, Pos: start}, nil
	case c == '=':
		l.advance()
		return Token{Type: TokenEquals, Pos: start}, nil
	case c == '~' || c == '|' || c == '^' || c == '$' || c == '*':
		if l.peekAt(1) == '=' {
			l.advance()
			l.advance()
			return Token{Type: matchTokens[c], Pos: start}, nil
		}
		l.advance()
		if c == '~' {
			return Token{Type: TokenTilde, Pos: start}, nil
		}
		return Token{Type: TokenDelim, Value: string(c), Pos: start}, nil
	case l.startsNumber():
		return l.lexNumeric()
	case l.startsIdent():
		name, err := l.lexName()
		if err != nil {
			return Token{}, err
		}
		if l.peekAt(0) == '(' {
			l.advance()
			return Token{Type: TokenFunction, Value: name, Pos: start}, nil
		}
		return Token{Type: TokenIdent, Value: name, Pos: start}, nil
	case c == '\\':
		// A backslash that cannot start an identifier is an invalid escape.
		return Token{}, l.errorf(start, "invalid escape")
	}

	l.advance()
	return Token{Type: TokenDelim, Value: string(c), Pos: start}, nil
}

var matchTokens = map[rune]TokenType{
	'~': TokenIncludeMatch,
	'|': TokenDashMatch,
	'^': TokenPrefixMatch,
	'$': TokenSuffixMatch,
	'*': TokenSubstringMatch,
}

func (l *lexer) lexString() (Token, error) {
	start := l.pos
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "unterminated string")
		}
		c := l.peekAt(0)
		switch {
		case c == quote:
			l.advance()
			return Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
		case c == '\n' || c == '\r' || c == '\f':
			return Token{}, l.errorf(start, "unterminated string")
		case c == '\\':
			next := l.peekAt(1)
			if next == -1 {
				return Token{}, l.errorf(l.pos, "escape at end of input")
			}
			if next == '\n' || next == '\f' || next == '\r' {
				// Escaped newline is a line continuation inside strings.
				l.advance()
				if l.advance() == '\r' && l.peekAt(0) == '\n' {
					l.advance()
				}
				continue
			}
			r, err := l.lexEscape()
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(l.advance())
		}
	}
}

// lexEscape consumes a backslash escape and returns the decoded code point.
func (l *lexer) lexEscape() (rune, error) {
	start := l.pos
	l.advance() // '\'
	if l.eof() {
		return 0, l.errorf(start, "escape at end of input")
	}
	c := l.peekAt(0)
	if c == '\n' || c == '\r' || c == '\f' {
		return 0, l.errorf(start, "escaped newline outside string")
	}
	if !isHex(c) {
		return l.advance(), nil
	}
	var v rune
	for i := 0; i < 6 && isHex(l.peekAt(0)); i++ {
		v = v*16 + hexVal(l.advance())
	}
	// One whitespace character after a hex escape is part of the escape.
	if s := l.peekAt(0); isSpace(s) {
		if l.advance() == '\r' && l.peekAt(0) == '\n' {
			l.advance()
		}
	}
	if v == 0 || v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		v = utf8.RuneError
	}
	return v, nil
}

func (l *lexer) validEscapeAt(off int) bool {
	if l.peekAt(off) != '\\' {
		return false
	}
	n := l.peekAt(off + 1)
	return n != '\n' && n != '\r' && n != '\f' && n != -1
}

func (l *lexer) startsName() bool {
	c := l.peekAt(0)
	return isNameChar(c) || l.validEscapeAt(0)
}

func (l *lexer) startsIdent() bool {
	c := l.peekAt(0)
	switch {
	case c == '-':
		n := l.peekAt(1)
		return isNameStart(n) || n == '-' || l.validEscapeAt(1)
	case isNameStart(c):
		return true
	case c == '\\':
		return l.validEscapeAt(0)
	}
	return false
}

func (l *lexer) startsNumber() bool {
	c := l.peekAt(0)
	if c == '+' || c == '-' {
		n := l.peekAt(1)
		return isDigit(n) || (n == '.' && isDigit(l.peekAt(2)))
	}
	if c == '.' {
		return isDigit(l.peekAt(1))
	}
	return isDigit(c)
}

func (l *lexer) lexName() (string, error) {
	var sb strings.Builder
	for !l.eof() {
		c := l.peekAt(0)
		switch {
		case isNameChar(c):
			sb.WriteRune(l.advance())
		case c == '\\':
			if l.peekAt(1) == -1 {
				return "", l.errorf(l.pos, "escape at end of input")
			}
			r, err := l.lexEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			return sb.String(), nil
		}
	}
	return sb.String(), nil
}

func (l *lexer) lexNumeric() (Token, error) {
	start := l.pos
	if c := l.peekAt(0); c == '+' || c == '-' {
		l.advance()
	}
	for isDigit(l.peekAt(0)) {
		l.advance()
	}
	if l.peekAt(0) == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peekAt(0)) {
			l.advance()
		}
	}
	num := l.input[start:l.pos]
	if l.startsIdent() {
		unit, err := l.lexName()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenDimension, Value: unit, Raw: num, Pos: start}, nil
	}
	return Token{Type: TokenNumber, Raw: num, Pos: start}, nil
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isHex(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c rune) rune {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isNameStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x80
}

func isNameChar(c rune) bool {
	return isNameStart(c) || isDigit(c) || c == '-'
}
