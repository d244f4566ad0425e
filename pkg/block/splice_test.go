package block

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machsheltie/gardenplanner/pkg/literal"
)

func TestDetectNewline(t *testing.T) {
	assert.Equal(t, "\n", DetectNewline("a\nb"))
	assert.Equal(t, "\r\n", DetectNewline("a\nb\r\nc"))
	assert.Equal(t, "\n", DetectNewline(""))
}

func TestRender(t *testing.T) {
	v := literal.Array(literal.Object(literal.Field("name", literal.String("Kale"))))
	want := "const V=[\n  {\n    \"name\": \"Kale\"\n  }\n];"
	assert.Equal(t, want, Render("V", v, "\n"))
	assert.Equal(t, "const V=[];", Render("V", literal.Array(), ""))
}

func TestSplice_PreservesSurroundingBytes(t *testing.T) {
	head := "// crops\r\nconst CATEGORY_SCHEMA_DEFAULTS={};\r\n"
	tail := "\r\nconst CROP_SCHEMA_OVERRIDES={};\r\nexport default V;\r\n"
	doc := head + "const V=[{cat:'A',name:'Tomato',tips:'old'}];" + tail

	span, err := Locate(doc, "V")
	require.NoError(t, err)

	v := literal.Array(literal.Object(
		literal.Field("cat", literal.String("A")),
		literal.Field("name", literal.String("Tomato")),
		literal.Field("tips", literal.String("new")),
	))
	out, err := Splice(doc, span, "V", v, DetectNewline(doc))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, head))
	assert.True(t, strings.HasSuffix(out, tail))
	block := out[len(head) : len(out)-len(tail)]
	assert.NotContains(t, strings.ReplaceAll(block, "\r\n", ""), "\n", "rendered block must use CRLF only")
	assert.True(t, strings.HasSuffix(block, "];"))
}

func TestSplice_RoundTrip(t *testing.T) {
	doc := "const V=[{cat:'Fruit',name:'Tomato',vars:['Roma',\"Cherry\",],days:75,},{cat:'Leafy',name:'Kale',},];\n"
	span, err := Locate(doc, "V")
	require.NoError(t, err)

	ctx := context.Background()
	before, err := literal.Materialize(ctx, span.Slice(doc), literal.Expect{"V": literal.KindArray})
	require.NoError(t, err)

	out, err := Splice(doc, span, "V", before["V"], "\n")
	require.NoError(t, err)

	span2, err := Locate(out, "V")
	require.NoError(t, err)
	after, err := literal.Materialize(ctx, span2.Slice(out), literal.Expect{"V": literal.KindArray})
	require.NoError(t, err)

	assert.True(t, literal.Equal(before["V"], after["V"]))
	assert.Equal(t, "\n", out[span2.End:])
}

func TestSplice_InvalidSpan(t *testing.T) {
	_, err := Splice("const V=[];", Span{Start: 4, End: 99}, "V", literal.Array(), "\n")
	assert.Error(t, err)
}
