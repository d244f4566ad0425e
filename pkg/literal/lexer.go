package literal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType identifies a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenComma
	TokenSemicolon
	TokenEquals
	TokenString
	TokenNumber
	TokenIdent
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenSemicolon:
		return "';'"
	case TokenEquals:
		return "'='"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenIdent:
		return "identifier"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// Token is one lexical unit. Value holds the decoded string for strings,
// the raw text for numbers and the name for identifiers.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// pollEvery is how many tokens are produced between context checks.
const pollEvery = 1024

var punctuation = map[byte]TokenType{
	'{': TokenLBrace, '}': TokenRBrace,
	'[': TokenLBracket, ']': TokenRBracket,
	':': TokenColon, ',': TokenComma,
	';': TokenSemicolon, '=': TokenEquals,
}

// Lexer splits literal source text into tokens.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize returns all tokens up to and including TokenEOF.
func (l *Lexer) Tokenize(ctx context.Context) ([]Token, error) {
	var tokens []Token
	for {
		if len(tokens)%pollEvery == 0 {
			if err := checkContext(ctx); err != nil {
				return nil, err
			}
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.off}
}

func (l *Lexer) errorf(p Position, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: p}
}

func (l *Lexer) peekRune() (rune, int) {
	if l.off >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else if utf8.RuneStart(l.src[l.off]) {
			l.col++
		}
		l.off++
	}
}

func (l *Lexer) skipSpaceAndComments() error {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.advance(1)
		case strings.HasPrefix(l.src[l.off:], "//"):
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance(1)
			}
		case strings.HasPrefix(l.src[l.off:], "/*"):
			start := l.pos()
			end := strings.Index(l.src[l.off+2:], "*/")
			if end < 0 {
				return l.errorf(start, "unterminated comment")
			}
			l.advance(end + 4)
		default:
			r, size := l.peekRune()
			if r == '\uFEFF' || r == '\u00A0' || r == '\u2028' || r == '\u2029' {
				l.advance(size)
				continue
			}
			return nil
		}
	}
	return nil
}

func (l *Lexer) next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	p := l.pos()
	if l.off >= len(l.src) {
		return Token{Type: TokenEOF, Pos: p}, nil
	}

	c := l.src[l.off]
	if tt, ok := punctuation[c]; ok {
		l.advance(1)
		return Token{Type: tt, Value: string(c), Pos: p}, nil
	}

	switch {
	case c == '"' || c == '\'':
		s, err := l.lexQuoted(c)
		return Token{Type: TokenString, Value: s, Pos: p}, err
	case c == '`':
		s, err := l.lexTemplate()
		return Token{Type: TokenString, Value: s, Pos: p}, err
	case isDigit(c) || c == '.' || c == '-' || c == '+':
		return l.lexNumber(p)
	}

	r, size := l.peekRune()
	if isIdentStart(r) {
		start := l.off
		l.advance(size)
		for {
			r, size = l.peekRune()
			if size == 0 || !isIdentPart(r) {
				break
			}
			l.advance(size)
		}
		return Token{Type: TokenIdent, Value: l.src[start:l.off], Pos: p}, nil
	}
	return Token{}, l.errorf(p, "unexpected character %q", r)
}

func (l *Lexer) lexNumber(p Position) (Token, error) {
	start := l.off
	if c := l.src[l.off]; c == '-' || c == '+' {
		l.advance(1)
	}
	if l.off+1 < len(l.src) && l.src[l.off] == '0' && (l.src[l.off+1] == 'x' || l.src[l.off+1] == 'X') {
		l.advance(2)
		digits := l.off
		for l.off < len(l.src) && isHexDigit(l.src[l.off]) {
			l.advance(1)
		}
		if l.off == digits {
			return Token{}, l.errorf(p, "malformed hex number")
		}
		return Token{Type: TokenNumber, Value: l.src[start:l.off], Pos: p}, nil
	}

	intDigits := l.scanDigits()
	fracDigits := 0
	if l.off < len(l.src) && l.src[l.off] == '.' {
		l.advance(1)
		fracDigits = l.scanDigits()
	}
	if intDigits == 0 && fracDigits == 0 {
		return Token{}, l.errorf(p, "unexpected character %q", l.src[start])
	}
	if l.off < len(l.src) && (l.src[l.off] == 'e' || l.src[l.off] == 'E') {
		l.advance(1)
		if l.off < len(l.src) && (l.src[l.off] == '+' || l.src[l.off] == '-') {
			l.advance(1)
		}
		if l.scanDigits() == 0 {
			return Token{}, l.errorf(p, "malformed exponent")
		}
	}
	if r, size := l.peekRune(); size > 0 && isIdentPart(r) {
		return Token{}, l.errorf(l.pos(), "identifier directly after number")
	}
	return Token{Type: TokenNumber, Value: l.src[start:l.off], Pos: p}, nil
}

func (l *Lexer) scanDigits() int {
	n := 0
	for l.off < len(l.src) && isDigit(l.src[l.off]) {
		l.advance(1)
		n++
	}
	return n
}

func (l *Lexer) lexQuoted(quote byte) (string, error) {
	start := l.pos()
	l.advance(1)
	var sb strings.Builder
	for {
		if l.off >= len(l.src) {
			return "", l.errorf(start, "unterminated string")
		}
		c := l.src[l.off]
		switch {
		case c == quote:
			l.advance(1)
			return sb.String(), nil
		case c == '\n' || c == '\r':
			return "", l.errorf(l.pos(), "newline in string")
		case c == '\\':
			if err := l.lexEscape(&sb); err != nil {
				return "", err
			}
		default:
			_, size := l.peekRune()
			sb.WriteString(l.src[l.off : l.off+size])
			l.advance(size)
		}
	}
}

func (l *Lexer) lexTemplate() (string, error) {
	start := l.pos()
	l.advance(1)
	var sb strings.Builder
	for {
		if l.off >= len(l.src) {
			return "", l.errorf(start, "unterminated template string")
		}
		c := l.src[l.off]
		switch {
		case c == '`':
			l.advance(1)
			return sb.String(), nil
		case c == '$' && l.off+1 < len(l.src) && l.src[l.off+1] == '{':
			return "", l.errorf(l.pos(), "template substitutions are not supported")
		case c == '\\':
			if err := l.lexEscape(&sb); err != nil {
				return "", err
			}
		case c == '\r':
			// template literals normalize CRLF and CR to LF
			l.advance(1)
			if l.off < len(l.src) && l.src[l.off] == '\n' {
				l.advance(1)
			}
			sb.WriteByte('\n')
		default:
			_, size := l.peekRune()
			sb.WriteString(l.src[l.off : l.off+size])
			l.advance(size)
		}
	}
}

// lexEscape decodes one backslash escape starting at the backslash.
func (l *Lexer) lexEscape(sb *strings.Builder) error {
	p := l.pos()
	l.advance(1)
	if l.off >= len(l.src) {
		return l.errorf(p, "unterminated escape")
	}
	c := l.src[l.off]
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\r':
		// line continuation
		l.advance(1)
		if l.off < len(l.src) && l.src[l.off] == '\n' {
			l.advance(1)
		}
		return nil
	case '\n':
	case 'x':
		if l.off+3 > len(l.src) {
			return l.errorf(p, "malformed \\x escape")
		}
		n, err := strconv.ParseUint(l.src[l.off+1:l.off+3], 16, 8)
		if err != nil {
			return l.errorf(p, "malformed \\x escape")
		}
		sb.WriteRune(rune(n))
		l.advance(3)
		return nil
	case 'u':
		r, err := l.lexUnicodeEscape(p)
		if err != nil {
			return err
		}
		sb.WriteRune(r)
		return nil
	default:
		_, size := l.peekRune()
		sb.WriteString(l.src[l.off : l.off+size])
		l.advance(size)
		return nil
	}
	l.advance(1)
	return nil
}

// lexUnicodeEscape decodes \uXXXX (with surrogate pairs) and \u{X...}; the
// cursor is on the 'u'.
func (l *Lexer) lexUnicodeEscape(p Position) (rune, error) {
	l.advance(1)
	if l.off < len(l.src) && l.src[l.off] == '{' {
		end := strings.IndexByte(l.src[l.off:], '}')
		if end < 2 {
			return 0, l.errorf(p, "malformed \\u{} escape")
		}
		n, err := strconv.ParseUint(l.src[l.off+1:l.off+end], 16, 32)
		if err != nil || n > unicode.MaxRune {
			return 0, l.errorf(p, "malformed \\u{} escape")
		}
		l.advance(end + 1)
		return rune(n), nil
	}
	hi, ok := l.hex4()
	if !ok {
		return 0, l.errorf(p, "malformed \\u escape")
	}
	if hi >= 0xD800 && hi < 0xDC00 && strings.HasPrefix(l.src[l.off:], "\\u") {
		save := *l
		l.advance(2)
		if lo, ok := l.hex4(); ok && lo >= 0xDC00 && lo < 0xE000 {
			return (hi-0xD800)<<10 + (lo - 0xDC00) + 0x10000, nil
		}
		*l = save
	}
	if hi >= 0xD800 && hi < 0xE000 {
		return utf8.RuneError, nil
	}
	return hi, nil
}

func (l *Lexer) hex4() (rune, bool) {
	if l.off+4 > len(l.src) {
		return 0, false
	}
	n, err := strconv.ParseUint(l.src[l.off:l.off+4], 16, 32)
	if err != nil {
		return 0, false
	}
	l.advance(4)
	return rune(n), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
