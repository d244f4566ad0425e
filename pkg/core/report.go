package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// Outcome says what an import run did with the target document.
type Outcome string

const (
	OutcomeDryRun    Outcome = "dry-run"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeUpdated   Outcome = "updated"
)

// Format selects how a Report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// RecordPatch is the RFC 7386 merge patch that turns a target record into
// its merged form. For appended records it is the whole record.
type RecordPatch struct {
	Name     string         `json:"name" yaml:"name"`
	Category string         `json:"category" yaml:"category"`
	Patch    map[string]any `json:"patch" yaml:"patch"`
}

// Report summarizes one import run.
type Report struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	SourceCount int `json:"source_records" yaml:"source_records"`
	TargetCount int `json:"target_records" yaml:"target_records"`
	MatchCount  int `json:"matched" yaml:"matched"`
	Added       int `json:"added" yaml:"added"`

	Fields              []string      `json:"fields" yaml:"fields"`
	Changes             []ChangeEntry `json:"changes" yaml:"changes"`
	DuplicateSourceKeys []string      `json:"duplicate_source_keys,omitempty" yaml:"duplicate_source_keys,omitempty"`
	Patches             []RecordPatch `json:"patches,omitempty" yaml:"patches,omitempty"`
	Diff                string        `json:"diff,omitempty" yaml:"diff,omitempty"`

	DryRun  bool    `json:"dry_run" yaml:"dry_run"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// TargetDisplay is the target path as shown to the user.
	TargetDisplay string `json:"-" yaml:"-"`
}

// Summary renders the change list the way the text report prints it.
func (r *Report) Summary() string {
	if len(r.Changes) == 0 {
		return "No matching crop variety/tip changes detected."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d crop entries changed:", len(r.Changes))
	for _, c := range r.Changes {
		fmt.Fprintf(&sb, "\n- %s [%s]: %s", c.Name, c.Category, strings.Join(c.Fields, ", "))
	}
	return sb.String()
}

// Conclusion is the last line of the text report.
func (r *Report) Conclusion() string {
	switch r.Outcome {
	case OutcomeDryRun:
		return "Dry run only; no files written."
	case OutcomeUpdated:
		return "Updated " + r.TargetDisplay
	default:
		return "Nothing to write."
	}
}

// Encode writes the report to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.writeText(w)
	}
}

func (r *Report) writeText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source crops: %d\n", r.SourceCount)
	fmt.Fprintf(&sb, "Target crops: %d\n", r.TargetCount)
	fmt.Fprintf(&sb, "Matched crops: %d\n", r.MatchCount)
	sb.WriteString(r.Summary())
	sb.WriteString("\n")
	if r.Diff != "" {
		sb.WriteString(r.Diff)
		if !strings.HasSuffix(r.Diff, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(r.Conclusion())
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func recordPatches(target RecordSet, res MergeResult) ([]RecordPatch, error) {
	patches := make([]RecordPatch, 0, len(res.Changes))
	for _, c := range res.Changes {
		before := literal.Object()
		if !c.Added() {
			before = target[c.Index]
		}
		after := res.Merged[c.Index]

		raw, err := jsonpatch.CreateMergePatch([]byte(literal.EmitCompact(before)), []byte(literal.EmitCompact(after)))
		if err != nil {
			return nil, fmt.Errorf("merge patch for %s: %w", c.Name, err)
		}
		var patch map[string]any
		if err := json.Unmarshal(raw, &patch); err != nil {
			return nil, fmt.Errorf("merge patch for %s: %w", c.Name, err)
		}
		patches = append(patches, RecordPatch{Name: c.Name, Category: c.Category, Patch: patch})
	}
	return patches, nil
}

func unifiedDiff(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}
