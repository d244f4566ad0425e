package literal

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// EmitOptions configures the emitter.
type EmitOptions struct {
	// Indent is the per-level indentation. Empty means compact output.
	Indent string
	// Newline separates lines in indented output (default "\n").
	Newline string
}

// DefaultEmitOptions matches JSON.stringify(v, null, 2).
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Indent: "  ", Newline: "\n"}
}

// Emit renders v as indented JSON text using DefaultEmitOptions.
func Emit(v *Value) string {
	return EmitWithOptions(v, DefaultEmitOptions())
}

// EmitCompact renders v as JSON text without insignificant whitespace.
func EmitCompact(v *Value) string {
	return EmitWithOptions(v, EmitOptions{})
}

// EmitWithOptions renders v with custom options. The output is always valid
// JSON and therefore valid literal source.
func EmitWithOptions(v *Value, opts EmitOptions) string {
	if opts.Newline == "" {
		opts.Newline = "\n"
	}
	e := &emitter{opts: opts}
	e.emit(v, 0)
	return e.sb.String()
}

type emitter struct {
	sb   strings.Builder
	opts EmitOptions
}

func (e *emitter) emit(v *Value, depth int) {
	switch v.Kind() {
	case KindNull:
		e.sb.WriteString("null")
	case KindBool:
		if v.boolVal {
			e.sb.WriteString("true")
		} else {
			e.sb.WriteString("false")
		}
	case KindNumber:
		e.sb.WriteString(FormatNumber(v.numVal))
	case KindString:
		writeQuoted(&e.sb, v.strVal)
	case KindArray:
		e.emitArray(v, depth)
	case KindObject:
		e.emitObject(v, depth)
	}
}

func (e *emitter) emitArray(v *Value, depth int) {
	if len(v.items) == 0 {
		e.sb.WriteString("[]")
		return
	}
	e.sb.WriteByte('[')
	for i, it := range v.items {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.newline(depth + 1)
		e.emit(it, depth+1)
	}
	e.newline(depth)
	e.sb.WriteByte(']')
}

func (e *emitter) emitObject(v *Value, depth int) {
	if len(v.members) == 0 {
		e.sb.WriteString("{}")
		return
	}
	e.sb.WriteByte('{')
	for i, m := range v.members {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.newline(depth + 1)
		writeQuoted(&e.sb, m.Key)
		e.sb.WriteByte(':')
		if e.opts.Indent != "" {
			e.sb.WriteByte(' ')
		}
		e.emit(m.Value, depth+1)
	}
	e.newline(depth)
	e.sb.WriteByte('}')
}

func (e *emitter) newline(depth int) {
	if e.opts.Indent == "" {
		return
	}
	e.sb.WriteString(e.opts.Newline)
	for i := 0; i < depth; i++ {
		e.sb.WriteString(e.opts.Indent)
	}
}

const hexDigits = "0123456789abcdef"

// writeQuoted writes s as a JSON string. Non-ASCII text is kept verbatim;
// only quotes, backslashes and control characters are escaped.
func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				sb.WriteString("\ufffd")
			} else {
				sb.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0xf])
			} else {
				sb.WriteByte(c)
			}
		}
		i++
	}
	sb.WriteByte('"')
}

// FormatNumber renders f the way JavaScript's Number#toString does for
// finite values: integers without a fraction, exponent form below 1e-6 and
// from 1e21 up.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + string(sign) + exp
}
