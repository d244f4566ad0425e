package literal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_MatchesJSONStringifyLayout(t *testing.T) {
	v := Array(
		Object(
			Field("cat", String("Fruit")),
			Field("name", String("Tomato")),
			Field("vars", Array(String("Roma"), String("Cherry"))),
			Field("meta", Object()),
			Field("tags", Array()),
			Field("days", Number(75)),
			Field("ok", Bool(true)),
			Field("none", Null()),
		),
	)

	want := `[
  {
    "cat": "Fruit",
    "name": "Tomato",
    "vars": [
      "Roma",
      "Cherry"
    ],
    "meta": {},
    "tags": [],
    "days": 75,
    "ok": true,
    "none": null
  }
]`
	assert.Equal(t, want, Emit(v))
}

func TestEmit_Newline(t *testing.T) {
	v := Array(Number(1), Number(2))
	out := EmitWithOptions(v, EmitOptions{Indent: "  ", Newline: "\r\n"})
	assert.Equal(t, "[\r\n  1,\r\n  2\r\n]", out)
}

func TestEmitCompact_IsValidJSON(t *testing.T) {
	v, err := ParseValue(`{name: 'Bok "Choy"', note: "tab\there\u0001", emoji: "🥬", n: -0.000001}`)
	require.NoError(t, err)

	out := EmitCompact(v)
	assert.Equal(t, `{"name":"Bok \"Choy\"","note":"tab\there\u0001","emoji":"🥬","n":-0.000001}`, out)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Bok \"Choy\"", decoded["name"])
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-42, "-42"},
		{0.1, "0.1"},
		{1.5e-7, "1.5e-7"},
		{1e21, "1e+21"},
		{123456789012, "123456789012"},
		{2.5e-6, "0.0000025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestRoundTrip(t *testing.T) {
	src := `[{cat:'Leafy',name:"Kale",tips:'Harvest "outer" leaves\nfirst',vars:[{n:'Lacinato',d:60}],x:1e-9}]`
	first, err := ParseValue(src)
	require.NoError(t, err)

	second, err := ParseValue(Emit(first))
	require.NoError(t, err)
	assert.True(t, Equal(first, second), "emit/parse round trip changed the tree:\n%s", Emit(second))
}

func TestEqual(t *testing.T) {
	a := Object(Field("a", Number(1)), Field("b", Array(String("x"))))
	b := Object(Field("b", Array(String("x"))), Field("a", Number(1)))

	assert.True(t, Equal(a, b), "member order must not matter")
	assert.True(t, Equal(nil, Null()))
	assert.False(t, Equal(Number(1), String("1")))
	assert.False(t, Equal(Array(Number(1), Number(2)), Array(Number(2), Number(1))), "array order matters")
	assert.False(t, Equal(a, Object(Field("a", Number(1)))))
	assert.False(t, Equal(
		Object(Field("a", Number(1)), Field("b", Null())),
		Object(Field("a", Number(1)), Field("c", Null())),
	))
}

func TestClone_IsDeep(t *testing.T) {
	orig := Object(Field("vars", Array(String("Roma"))))
	cp := orig.Clone()

	vars, _ := cp.Get("vars")
	vars.Append(String("Cherry"))
	cp.Set("tips", String("new"))

	origVars, _ := orig.Get("vars")
	assert.Equal(t, 1, origVars.Len())
	assert.False(t, orig.Has("tips"))
	assert.False(t, Equal(orig, cp))
}
