package block

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ScriptSpans returns the byte ranges of the bodies of all <script> elements
// in an HTML document, in document order. Text that is not HTML yields no
// spans.
func ScriptSpans(doc string) []Span {
	z := html.NewTokenizer(strings.NewReader(doc))
	var spans []Span
	offset := 0
	inScript := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return spans
		}
		n := len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if inScript && n > 0 {
				// consecutive text tokens of one script body are merged
				if last := len(spans) - 1; last >= 0 && spans[last].End == offset {
					spans[last].End = offset + n
				} else {
					spans = append(spans, Span{Start: offset, End: offset + n})
				}
			}
		default:
			inScript = false
		}
		offset += n
	}
}

// LocateScript is Locate restricted to the inline scripts of an HTML document.
// Scripts are searched in order and the first one declaring name wins; the
// returned span is in document offsets. Documents without scripts are searched
// in full.
func LocateScript(doc, name string) (Span, error) {
	scripts := ScriptSpans(doc)
	if len(scripts) == 0 {
		return Locate(doc, name)
	}
	for _, s := range scripts {
		span, err := locateIn(doc, name, s.Start, s.End)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return span, err
	}
	return Span{}, &LocateError{Name: name, Offset: -1, Err: ErrNotFound}
}
