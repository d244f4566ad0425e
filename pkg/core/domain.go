// Package core holds the record model, the merge algorithm and the import
// pipeline that ties locating, materializing, merging and splicing together.
package core

import (
	"fmt"
	"strings"

	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// AddedSentinel is the single field name reported for records that were
// appended because the target did not have them.
const AddedSentinel = "<added crop>"

// keySeparator joins the identity parts of a RecordKey. It cannot occur in
// the trimmed display form of a field.
const keySeparator = "\x00"

// Identity names the two fields that identify a record.
type Identity struct {
	Category string `json:"category" yaml:"category"`
	Name     string `json:"name" yaml:"name"`
}

// DefaultIdentity identifies crops by their category and name.
func DefaultIdentity() Identity {
	return Identity{Category: "cat", Name: "name"}
}

func (id Identity) orDefault() Identity {
	def := DefaultIdentity()
	if id.Category == "" {
		id.Category = def.Category
	}
	if id.Name == "" {
		id.Name = def.Name
	}
	return id
}

// RecordKey is the derived identity of a record. Two records describe the
// same entity iff their keys are equal.
type RecordKey string

// Key derives the RecordKey of rec.
func (id Identity) Key(rec *literal.Value) RecordKey {
	id = id.orDefault()
	return RecordKey(fieldText(rec, id.Category) + keySeparator + fieldText(rec, id.Name))
}

// Parts splits the key back into its category and name.
func (k RecordKey) Parts() (category, name string) {
	category, name, _ = strings.Cut(string(k), keySeparator)
	return category, name
}

// String renders the key for humans as "name [category]".
func (k RecordKey) String() string {
	category, name := k.Parts()
	return name + " [" + category + "]"
}

// fieldText is the trimmed string form of a field. Absent and falsy values
// (null, false, 0, "") all read as the empty string.
func fieldText(rec *literal.Value, field string) string {
	v, ok := rec.Get(field)
	if !ok {
		return ""
	}
	var s string
	switch v.Kind() {
	case literal.KindNull:
		return ""
	case literal.KindBool:
		if b, _ := v.AsBool(); b {
			s = "true"
		}
	case literal.KindNumber:
		if n, _ := v.AsNumber(); n != 0 && n == n {
			s = literal.FormatNumber(n)
		}
	case literal.KindString:
		s, _ = v.AsString()
	default:
		s = literal.EmitCompact(v)
	}
	return strings.TrimSpace(s)
}

// RecordSet is an ordered sequence of records. Every element is an object.
type RecordSet []*literal.Value

// NewRecordSet checks that v is an array of objects and wraps its elements.
// binding names the declaration in errors.
func NewRecordSet(binding string, v *literal.Value) (RecordSet, error) {
	if v.Kind() != literal.KindArray {
		return nil, &literal.ShapeError{Binding: binding, Want: literal.KindArray, Got: v.Kind()}
	}
	items := v.Items()
	set := make(RecordSet, len(items))
	for i, item := range items {
		if item.Kind() != literal.KindObject {
			return nil, &literal.ShapeError{
				Binding: fmt.Sprintf("%s[%d]", binding, i),
				Want:    literal.KindObject,
				Got:     item.Kind(),
			}
		}
		set[i] = item
	}
	return set, nil
}

// Clone deep-copies every record.
func (rs RecordSet) Clone() RecordSet {
	out := make(RecordSet, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Value returns the set as an array value sharing the records.
func (rs RecordSet) Value() *literal.Value {
	return literal.Array(rs...)
}

// ChangeEntry lists the fields that changed on one entity.
type ChangeEntry struct {
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Fields   []string `json:"fields" yaml:"fields"`
	// Index is the position of the entity in the merged set.
	Index int `json:"index" yaml:"index"`
}

// Added reports whether the entry describes an appended record.
func (c ChangeEntry) Added() bool {
	return len(c.Fields) == 1 && c.Fields[0] == AddedSentinel
}

// EventType represents the kind of change observed on a watched document.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a watched document.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}
