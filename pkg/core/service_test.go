package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machsheltie/gardenplanner/pkg/block"
	"github.com/machsheltie/gardenplanner/pkg/core"
	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// MemoryStore implements core.DocumentStore in memory.
type MemoryStore struct {
	docs   map[string]string
	writes int
}

func NewMemoryStore(docs map[string]string) *MemoryStore {
	return &MemoryStore{docs: docs}
}

func (m *MemoryStore) Read(ctx context.Context, path string) (string, error) {
	text, ok := m.docs[path]
	if !ok {
		return "", &core.FileNotFoundError{Path: "/mem/" + path}
	}
	return text, nil
}

func (m *MemoryStore) Write(ctx context.Context, path string, text string) error {
	m.docs[path] = text
	m.writes++
	return nil
}

const sourcePage = `<!doctype html>
<html><body>
<h1>Planting calendar</h1>
<script>
const V=[
  {cat:'Fruit',name:'Tomato',cn:'番茄',tips:'Stake early',vars:['Roma','Cherry']},
  {cat:'Leafy',name:'Kale',cn:'羽衣甘蓝',tips:'Frost sweetens',vars:['Lacinato']}
];
draw(V);
</script>
</body></html>`

const targetScript = "// generated crop data\r\n" +
	"const CATEGORY_SCHEMA_DEFAULTS={Fruit:{spacing:24}};\r\n" +
	"const V=[{cat:\"Fruit\",name:\"Tomato\",cn:\"番茄\",tips:\"old\",vars:[\"Roma\"],days:75}];\r\n" +
	"const CROP_SCHEMA_OVERRIDES={};\r\n" +
	"export { V };\r\n"

func newService(store core.DocumentStore) *core.Service {
	return core.NewService(store, core.Config{})
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes Merged Target", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
		report, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html"})
		require.NoError(t, err)

		assert.Equal(t, 2, report.SourceCount)
		assert.Equal(t, 1, report.TargetCount)
		assert.Equal(t, 1, report.MatchCount)
		assert.Equal(t, core.OutcomeUpdated, report.Outcome)
		require.Len(t, report.Changes, 1)
		assert.Equal(t, []string{"tips", "vars"}, report.Changes[0].Fields)
		assert.NotEmpty(t, report.RunID)
		assert.Equal(t, 1, store.writes)

		out := store.docs[core.DefaultTarget]
		assert.True(t, strings.HasPrefix(out, "// generated crop data\r\nconst CATEGORY_SCHEMA_DEFAULTS={Fruit:{spacing:24}};\r\nconst V=[\r\n"))
		assert.True(t, strings.HasSuffix(out, "];\r\nconst CROP_SCHEMA_OVERRIDES={};\r\nexport { V };\r\n"))

		span, err := block.Locate(out, "V")
		require.NoError(t, err)
		got, err := literal.Materialize(ctx, span.Slice(out), literal.Expect{"V": literal.KindArray})
		require.NoError(t, err)
		tomato := got["V"].Items()[0]
		tips, _ := tomato.Get("tips")
		assert.Equal(t, "Stake early", tips.Interface())
		days, _ := tomato.Get("days")
		assert.Equal(t, 75.0, days.Interface(), "unmerged fields survive")
	})

	t.Run("Add Missing", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
		report, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html", AddMissing: true})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added)
		require.Len(t, report.Changes, 2)
		assert.True(t, report.Changes[1].Added())

		again, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html", AddMissing: true})
		require.NoError(t, err)
		assert.Empty(t, again.Changes)
		assert.Equal(t, core.OutcomeUnchanged, again.Outcome)
		assert.Equal(t, 1, store.writes)
	})

	t.Run("Dry Run Never Writes", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
		report, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html", DryRun: true, Diff: true})
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeDryRun, report.Outcome)
		assert.Equal(t, 0, store.writes)
		assert.Equal(t, targetScript, store.docs[core.DefaultTarget])
		assert.Contains(t, report.Diff, "+    \"tips\": \"Stake early\",")
	})

	t.Run("Patches", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
		report, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html", DryRun: true, Patches: true, AddMissing: true})
		require.NoError(t, err)
		require.Len(t, report.Patches, 2)
		assert.Equal(t, map[string]any{"tips": "Stake early", "vars": []any{"Roma", "Cherry"}}, report.Patches[0].Patch)
		assert.Equal(t, "Kale", report.Patches[1].Patch["name"])
	})

	t.Run("Custom Fields", func(t *testing.T) {
		store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
		report, err := newService(store).Import(ctx, core.ImportRequest{Source: "cal.html", Fields: []string{"cn"}})
		require.NoError(t, err)
		assert.Empty(t, report.Changes)
		assert.Equal(t, core.OutcomeUnchanged, report.Outcome)
		assert.Equal(t, 0, store.writes)
	})
}

func TestService_ImportErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		docs   map[string]string
		source string
		want   error
	}{
		{"Missing Source Path", nil, "", core.ErrMissingSource},
		{"Source File Not Found", map[string]string{core.DefaultTarget: targetScript}, "nope.html", core.ErrFileNotFound},
		{"Target File Not Found", map[string]string{"cal.html": sourcePage}, "cal.html", core.ErrFileNotFound},
		{"Source Binding Missing", map[string]string{"cal.html": "<script>const W=[];</script>", core.DefaultTarget: targetScript}, "cal.html", block.ErrNotFound},
		{"Source Truncated", map[string]string{"cal.html": "const V=[{cat:'A',name:'Tom", core.DefaultTarget: targetScript}, "cal.html", block.ErrUnterminatedLiteral},
		{"Source Not An Array", map[string]string{"cal.html": "const V={};", core.DefaultTarget: targetScript}, "cal.html", literal.ErrShape},
		{"Source Is Code", map[string]string{"cal.html": "const V=[compute()];", core.DefaultTarget: targetScript}, "cal.html", literal.ErrEvaluation},
		{"Target Missing Auxiliary", map[string]string{"cal.html": sourcePage, core.DefaultTarget: "const V=[];\nconst CATEGORY_SCHEMA_DEFAULTS={};"}, "cal.html", block.ErrNotFound},
		{"Target Auxiliary Not Parseable", map[string]string{"cal.html": sourcePage, core.DefaultTarget: "const V=[];const CATEGORY_SCHEMA_DEFAULTS={a:b};const CROP_SCHEMA_OVERRIDES={};"}, "cal.html", literal.ErrEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := tt.docs
			if docs == nil {
				docs = map[string]string{}
			}
			store := NewMemoryStore(docs)
			before := docs[core.DefaultTarget]

			_, err := newService(store).Import(ctx, core.ImportRequest{Source: tt.source})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, store.writes)
			assert.Equal(t, before, docs[core.DefaultTarget])
		})
	}
}

func TestService_FileNotFoundNamesTheSide(t *testing.T) {
	store := NewMemoryStore(map[string]string{"cal.html": sourcePage})
	_, err := newService(store).Import(context.Background(), core.ImportRequest{Source: "cal.html"})
	require.Error(t, err)

	var nf *core.FileNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Target file not found: /mem/data/crops.js", err.Error())
}

func TestReport_Encode(t *testing.T) {
	store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
	svc := core.NewService(store, core.Config{})
	report, err := svc.Import(context.Background(), core.ImportRequest{Source: "cal.html", DryRun: true})
	require.NoError(t, err)

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Encode(&buf, core.FormatText))
		want := "Source crops: 2\n" +
			"Target crops: 1\n" +
			"Matched crops: 1\n" +
			"1 crop entries changed:\n" +
			"- Tomato [Fruit]: tips, vars\n" +
			"Dry run only; no files written.\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Encode(&buf, core.FormatJSON))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "dry-run", decoded["outcome"])
		assert.Equal(t, 1.0, decoded["matched"])
		assert.Equal(t, report.RunID, decoded["run_id"])
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Encode(&buf, core.FormatYAML))
		assert.Contains(t, buf.String(), "outcome: dry-run\n")
		assert.Contains(t, buf.String(), "  - name: Tomato\n")
	})
}

func TestReport_Conclusion(t *testing.T) {
	r := &core.Report{Outcome: core.OutcomeUnchanged}
	assert.Equal(t, "No matching crop variety/tip changes detected.", r.Summary())
	assert.Equal(t, "Nothing to write.", r.Conclusion())

	r = &core.Report{Outcome: core.OutcomeUpdated, TargetDisplay: "data/crops.js"}
	assert.Equal(t, "Updated data/crops.js", r.Conclusion())
}

func TestParseFormat(t *testing.T) {
	f, err := core.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, core.FormatText, f)

	f, err = core.ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, core.FormatYAML, f)

	_, err = core.ParseFormat("xml")
	assert.Error(t, err)
}

func TestService_State(t *testing.T) {
	store := NewMemoryStore(map[string]string{"cal.html": sourcePage, core.DefaultTarget: targetScript})
	svc := newService(store)
	assert.Equal(t, "import-service", svc.ComponentType())

	state := svc.State().(core.ServiceState)
	assert.Equal(t, 0, state.Runs)
	assert.Equal(t, "store", state.StoreType)
	assert.Equal(t, "2s", state.EvalTimeout)

	report, err := svc.Import(context.Background(), core.ImportRequest{Source: "cal.html", DryRun: true})
	require.NoError(t, err)
	state = svc.State().(core.ServiceState)
	assert.Equal(t, 1, state.Runs)
	assert.Equal(t, report.RunID, state.LastRunID)
	assert.Equal(t, core.OutcomeDryRun, state.LastOutcome)
}
