package core

import (
	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// DefaultFields are the record fields merged when none are configured.
var DefaultFields = []string{"cn", "tips", "vars"}

// MergeOptions configures Merge.
type MergeOptions struct {
	// Fields are copied from source to target in this order. Empty means DefaultFields.
	Fields []string
	// AddMissing appends source records that have no counterpart in the target.
	AddMissing bool
	// Identity selects the key fields. The zero value means DefaultIdentity.
	Identity Identity
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Merged     RecordSet
	Changes    []ChangeEntry
	MatchCount int
	Added      int
	// DuplicateSourceKeys lists keys that occurred more than once in the
	// source, in first-seen order. The last occurrence is the one used.
	DuplicateSourceKeys []RecordKey
}

// Merge reconciles target against source.
//
// For every target record with a same-key source record, each configured
// field present on the source replaces the target value when the two differ
// structurally. Fields absent on the source are left alone. With AddMissing,
// unmatched source records are appended in order of first appearance,
// deduplicated by key; a duplicated key appends its last occurrence.
//
// Neither input is modified; the merged set holds deep copies.
func Merge(target, source RecordSet, opts MergeOptions) MergeResult {
	id := opts.Identity.orDefault()
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	res := MergeResult{Merged: target.Clone()}

	byKey := make(map[RecordKey]*literal.Value, len(source))
	seen := make(map[RecordKey]int, len(source))
	for _, rec := range source {
		k := id.Key(rec)
		seen[k]++
		if seen[k] == 2 {
			res.DuplicateSourceKeys = append(res.DuplicateSourceKeys, k)
		}
		byKey[k] = rec
	}

	for i, rec := range res.Merged {
		k := id.Key(rec)
		src, ok := byKey[k]
		if !ok {
			continue
		}
		res.MatchCount++

		var changed []string
		for _, field := range fields {
			sv, ok := src.Get(field)
			if !ok {
				continue
			}
			tv, _ := rec.Get(field)
			if literal.Equal(tv, sv) && rec.Has(field) {
				continue
			}
			rec.Set(field, sv.Clone())
			changed = append(changed, field)
		}
		if len(changed) > 0 {
			category, name := k.Parts()
			res.Changes = append(res.Changes, ChangeEntry{Name: name, Category: category, Fields: changed, Index: i})
		}
	}

	if opts.AddMissing {
		keys := make(map[RecordKey]bool, len(res.Merged))
		for _, rec := range res.Merged {
			keys[id.Key(rec)] = true
		}
		for _, rec := range source {
			k := id.Key(rec)
			if keys[k] {
				continue
			}
			keys[k] = true
			res.Merged = append(res.Merged, byKey[k].Clone())
			res.Added++
			category, name := k.Parts()
			res.Changes = append(res.Changes, ChangeEntry{
				Name:     name,
				Category: category,
				Fields:   []string{AddedSentinel},
				Index:    len(res.Merged) - 1,
			})
		}
	}
	return res
}
