package literal

import "fmt"

// Kind represents the type of a literal value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is a node of a parsed literal tree.
// Only the field matching kind is meaningful.
type Value struct {
	kind Kind

	boolVal bool
	numVal  float64
	strVal  string

	items   []*Value
	members []Member

	pos Position
}

// Member is one key/value pair of an object. Objects keep their members in source order.
type Member struct {
	Key   string
	Value *Value
}

// Position is a location in the parsed text.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Number creates a numeric value.
func Number(v float64) *Value {
	return &Value{kind: KindNumber, numVal: v}
}

// String creates a string value.
func String(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Array creates an array value.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Object creates an object value from members.
func Object(members ...Member) *Value {
	return &Value{kind: KindObject, members: members}
}

// Field is shorthand for building a Member.
func Field(key string, v *Value) Member {
	return Member{Key: key, Value: v}
}

// Kind returns the value kind. A nil value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null or nil.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// Pos returns the position the value was parsed at.
func (v *Value) Pos() Position {
	if v == nil {
		return Position{}
	}
	return v.pos
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("literal: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsNumber returns the numeric value.
func (v *Value) AsNumber() (float64, error) {
	if v.Kind() != KindNumber {
		return 0, fmt.Errorf("literal: expected number, got %s", v.Kind())
	}
	return v.numVal, nil
}

// AsString returns the string value.
func (v *Value) AsString() (string, error) {
	if v.Kind() != KindString {
		return "", fmt.Errorf("literal: expected string, got %s", v.Kind())
	}
	return v.strVal, nil
}

// Items returns the elements of an array, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Members returns the members of an object, or nil for any other kind.
func (v *Value) Members() []Member {
	if v.Kind() != KindObject {
		return nil
	}
	return v.members
}

// Len returns the number of array elements or object members.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the member value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Has reports whether an object carries key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Set replaces the member stored under key, or appends it when missing.
// It panics on non-object values.
func (v *Value) Set(key string, val *Value) {
	if v.Kind() != KindObject {
		panic("literal: cannot set on non-object")
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Append adds an element to an array. It panics on non-array values.
func (v *Value) Append(val *Value) {
	if v.Kind() != KindArray {
		panic("literal: cannot append to non-array")
	}
	v.items = append(v.items, val)
}

// Clone returns a deep copy of v. Source positions are kept.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{
		kind:    v.kind,
		boolVal: v.boolVal,
		numVal:  v.numVal,
		strVal:  v.strVal,
		pos:     v.pos,
	}
	if v.items != nil {
		out.items = make([]*Value, len(v.items))
		for i, it := range v.items {
			out.items[i] = it.Clone()
		}
	}
	if v.members != nil {
		out.members = make([]Member, len(v.members))
		for i, m := range v.members {
			out.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return out
}

// Interface converts the tree to plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v *Value) Interface() any {
	switch v.Kind() {
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindArray:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}
