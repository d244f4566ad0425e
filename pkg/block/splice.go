package block

import (
	"fmt"
	"strings"

	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// DetectNewline returns "\r\n" when text already uses CRLF line endings and
// "\n" otherwise.
func DetectNewline(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Render formats a declaration as `const <name>=` followed by the value as
// two-space indented JSON and a terminating semicolon.
func Render(name string, v *literal.Value, newline string) string {
	if newline == "" {
		newline = "\n"
	}
	body := literal.EmitWithOptions(v, literal.EmitOptions{Indent: "  ", Newline: newline})
	return "const " + name + "=" + body + ";"
}

// Splice replaces the bytes of doc covered by span with the rendered
// declaration. Bytes outside the span are preserved exactly.
func Splice(doc string, span Span, name string, v *literal.Value, newline string) (string, error) {
	if !span.Valid(len(doc)) {
		return "", fmt.Errorf("invalid span [%d,%d) for document of %d bytes", span.Start, span.End, len(doc))
	}
	var sb strings.Builder
	sb.Grow(len(doc) - span.Len() + v.Len()*64)
	sb.WriteString(doc[:span.Start])
	sb.WriteString(Render(name, v, newline))
	sb.WriteString(doc[span.End:])
	return sb.String(), nil
}
