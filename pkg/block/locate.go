// Package block finds literal-valued declarations inside larger documents and
// splices re-rendered declarations back into them.
package block

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrNotFound indicates the declaration does not occur in the text.
	ErrNotFound = errors.New("declaration not found")
	// ErrUnsupportedLiteral indicates the declaration is not initialized with '[' or '{'.
	ErrUnsupportedLiteral = errors.New("unsupported expression start")
	// ErrUnterminatedLiteral indicates the closing delimiter is never reached.
	ErrUnterminatedLiteral = errors.New("unterminated literal")
)

// LocateError carries the declaration name and offset of a locate failure.
type LocateError struct {
	Name   string
	Offset int
	Detail string
	Err    error
}

func (e *LocateError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return fmt.Sprintf("could not find \"const %s=\"", e.Name)
	case e.Detail != "":
		return fmt.Sprintf("%s for %s: %s", e.Err, e.Name, e.Detail)
	default:
		return fmt.Sprintf("%s for %s at offset %d", e.Err, e.Name, e.Offset)
	}
}

func (e *LocateError) Unwrap() error {
	return e.Err
}

// Span is a half-open byte range [Start, End) of a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Valid reports whether the span lies inside a text of length n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

// Slice returns text[Start:End].
func (s Span) Slice(text string) string {
	return text[s.Start:s.End]
}

func declarationPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\w$])(const\s+` + regexp.QuoteMeta(name) + `\s*=)`)
}

// Locate finds the first `const <name>=` declaration in text whose value is an
// array or object literal and returns the span covering the whole statement:
// from the `const` keyword through the matching closing delimiter, plus any
// whitespace and a single `;` when a terminator follows.
//
// Delimiters inside quoted strings (', ", `) and comments are ignored.
func Locate(text, name string) (Span, error) {
	return locateIn(text, name, 0, len(text))
}

func locateIn(text, name string, from, to int) (Span, error) {
	loc := declarationPattern(name).FindStringSubmatchIndex(text[from:to])
	if loc == nil {
		return Span{}, &LocateError{Name: name, Offset: -1, Err: ErrNotFound}
	}
	start := from + loc[2]
	i := from + loc[3]

	for i < to && isSpace(text[i]) {
		i++
	}
	if i >= to {
		return Span{}, &LocateError{Name: name, Offset: i, Detail: "end of input", Err: ErrUnsupportedLiteral}
	}
	open := text[i]
	var closer byte
	switch open {
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return Span{}, &LocateError{Name: name, Offset: i, Detail: fmt.Sprintf("%q", open), Err: ErrUnsupportedLiteral}
	}

	end, err := scanBalanced(text[:to], i, open, closer)
	if err != nil {
		return Span{}, &LocateError{Name: name, Offset: i, Err: err}
	}

	j := end
	for j < to && isSpace(text[j]) {
		j++
	}
	if j < to && text[j] == ';' {
		end = j + 1
	}
	return Span{Start: start, End: end}, nil
}

// scanBalanced returns the offset just past the delimiter that closes the one
// at text[at].
func scanBalanced(text string, at int, open, closer byte) (int, error) {
	depth := 0
	var quote byte
	escape := false

	for i := at; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 >= len(text) {
				continue
			}
			switch text[i+1] {
			case '/':
				for i < len(text) && text[i] != '\n' {
					i++
				}
			case '*':
				k := strings.Index(text[i+2:], "*/")
				if k < 0 {
					return 0, ErrUnterminatedLiteral
				}
				i += k + 3
			}
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, ErrUnterminatedLiteral
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
