package literal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDepth bounds array/object nesting.
const MaxDepth = 1000

// Declaration is one `const NAME = literal` statement.
type Declaration struct {
	Name  string
	Value *Value
	Pos   Position
}

// Expect maps a binding name to the container kind it must have.
type Expect map[string]Kind

// ParseValue parses a single literal expression.
func ParseValue(src string) (*Value, error) {
	p, err := newParser(context.Background(), src)
	if err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return v, nil
}

// ParseDeclarations parses a sequence of literal-valued declarations such as
//
//	const V=[{cat:"Fruit",name:"Tomato"}];
//	export let DEFAULTS = {a: 1,};
//
// Anything other than declarations with literal initializers is rejected.
func ParseDeclarations(ctx context.Context, src string) ([]Declaration, error) {
	p, err := newParser(ctx, src)
	if err != nil {
		return nil, err
	}
	var decls []Declaration
	seen := map[string]bool{}
	for p.peek().Type != TokenEOF {
		if p.peek().Type == TokenSemicolon {
			p.advance()
			continue
		}
		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, &SyntaxError{Msg: fmt.Sprintf("identifier %q has already been declared", d.Name), Pos: d.Pos}
		}
		seen[d.Name] = true
		decls = append(decls, d)
	}
	return decls, nil
}

// Materialize evaluates src as literal declarations and returns the bindings
// named in expect, each checked against its expected kind. With an empty expect
// every declared binding is returned.
//
// Evaluation is deterministic and never executes the text; ctx bounds how long
// it may take. A context deadline surfaces as ErrEvaluationTimeout.
func Materialize(ctx context.Context, src string, expect Expect) (map[string]*Value, error) {
	decls, err := ParseDeclarations(ctx, src)
	if err != nil {
		if errors.Is(err, ErrEvaluationTimeout) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	all := make(map[string]*Value, len(decls))
	for _, d := range decls {
		all[d.Name] = d.Value
	}
	if len(expect) == 0 {
		return all, nil
	}

	out := make(map[string]*Value, len(expect))
	for name, want := range expect {
		v, ok := all[name]
		if !ok {
			return nil, &ShapeError{Binding: name, Want: want, Missing: true}
		}
		if v.Kind() != want {
			return nil, &ShapeError{Binding: name, Want: want, Got: v.Kind()}
		}
		out[name] = v
	}
	return out, nil
}

func checkContext(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrEvaluationTimeout, err)
	default:
		return fmt.Errorf("evaluation canceled: %w", err)
	}
}

type parser struct {
	ctx    context.Context
	tokens []Token
	i      int
	depth  int
	nodes  int
}

func newParser(ctx context.Context, src string) (*parser, error) {
	tokens, err := NewLexer(src).Tokenize(ctx)
	if err != nil {
		return nil, err
	}
	return &parser{ctx: ctx, tokens: tokens}, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.i]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.i]
	if tok.Type != TokenEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, &SyntaxError{Msg: fmt.Sprintf("expected %s, found %s", tt, describe(tok)), Pos: tok.Pos}
	}
	return p.advance(), nil
}

func (p *parser) unexpected(tok Token) error {
	return &SyntaxError{Msg: "unexpected " + describe(tok), Pos: tok.Pos}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Value)
	case TokenNumber:
		return fmt.Sprintf("number %s", tok.Value)
	case TokenString:
		return "string"
	default:
		return tok.Type.String()
	}
}

func (p *parser) parseDeclaration() (Declaration, error) {
	tok := p.peek()
	if tok.Type == TokenIdent && tok.Value == "export" {
		p.advance()
		tok = p.peek()
	}
	if tok.Type != TokenIdent || (tok.Value != "const" && tok.Value != "let" && tok.Value != "var") {
		return Declaration{}, &SyntaxError{Msg: "expected declaration, found " + describe(tok), Pos: tok.Pos}
	}
	p.advance()

	name, err := p.expect(TokenIdent)
	if err != nil {
		return Declaration{}, err
	}
	if _, err := p.expect(TokenEquals); err != nil {
		return Declaration{}, err
	}
	v, err := p.parseValue()
	if err != nil {
		return Declaration{}, err
	}
	if p.peek().Type == TokenSemicolon {
		p.advance()
	}
	return Declaration{Name: name.Value, Value: v, Pos: tok.Pos}, nil
}

func (p *parser) parseValue() (*Value, error) {
	p.nodes++
	if p.nodes%pollEvery == 0 {
		if err := checkContext(p.ctx); err != nil {
			return nil, err
		}
	}

	tok := p.peek()
	var v *Value
	switch tok.Type {
	case TokenLBrace:
		return p.parseObject()
	case TokenLBracket:
		return p.parseArray()
	case TokenString:
		v = String(tok.Value)
	case TokenNumber:
		n, err := parseNumber(tok.Value)
		if err != nil {
			return nil, &SyntaxError{Msg: err.Error(), Pos: tok.Pos}
		}
		v = Number(n)
	case TokenIdent:
		switch tok.Value {
		case "true":
			v = Bool(true)
		case "false":
			v = Bool(false)
		case "null", "undefined":
			v = Null()
		default:
			return nil, &SyntaxError{Msg: fmt.Sprintf("unsupported identifier %q in literal", tok.Value), Pos: tok.Pos}
		}
	default:
		return nil, p.unexpected(tok)
	}
	p.advance()
	v.pos = tok.Pos
	return v, nil
}

func (p *parser) enter(tok Token) error {
	p.depth++
	if p.depth > MaxDepth {
		return &SyntaxError{Msg: fmt.Sprintf("nesting deeper than %d", MaxDepth), Pos: tok.Pos}
	}
	return nil
}

func (p *parser) parseArray() (*Value, error) {
	open := p.advance()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	arr := Array()
	arr.items = []*Value{}
	arr.pos = open.Pos
	for {
		if p.peek().Type == TokenRBracket {
			p.advance()
			return arr, nil
		}
		if p.peek().Type == TokenComma {
			return nil, &SyntaxError{Msg: "array holes are not supported", Pos: p.peek().Pos}
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, item)

		switch tok := p.peek(); tok.Type {
		case TokenComma:
			p.advance()
		case TokenRBracket:
		default:
			return nil, &SyntaxError{Msg: "expected ',' or ']', found " + describe(tok), Pos: tok.Pos}
		}
	}
}

func (p *parser) parseObject() (*Value, error) {
	open := p.advance()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	obj := Object()
	obj.members = []Member{}
	obj.pos = open.Pos
	for {
		tok := p.peek()
		if tok.Type == TokenRBrace {
			p.advance()
			return obj, nil
		}

		var key string
		switch tok.Type {
		case TokenIdent, TokenString:
			key = tok.Value
		case TokenNumber:
			n, err := parseNumber(tok.Value)
			if err != nil {
				return nil, &SyntaxError{Msg: err.Error(), Pos: tok.Pos}
			}
			key = FormatNumber(n)
		default:
			return nil, &SyntaxError{Msg: "expected property name, found " + describe(tok), Pos: tok.Pos}
		}
		p.advance()

		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		// duplicate keys keep their first position and the last value
		obj.Set(key, val)

		switch tok := p.peek(); tok.Type {
		case TokenComma:
			p.advance()
		case TokenRBrace:
		default:
			return nil, &SyntaxError{Msg: "expected ',' or '}', found " + describe(tok), Pos: tok.Pos}
		}
	}
}

func parseNumber(raw string) (float64, error) {
	s := raw
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	var n float64
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %s", raw)
		}
		n = float64(u)
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("invalid number %s", raw)
		}
		n = f
	}
	if math.IsInf(n, 0) {
		return 0, fmt.Errorf("number %s is out of range", raw)
	}
	if neg {
		n = -n
	}
	return n, nil
}
