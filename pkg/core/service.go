package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/machsheltie/gardenplanner/pkg/block"
	"github.com/machsheltie/gardenplanner/pkg/literal"
)

// Defaults applied by NewService and Import.
const (
	DefaultTarget      = "data/crops.js"
	DefaultDeclaration = "V"
	DefaultEvalTimeout = 2 * time.Second
)

// DefaultAuxiliary are the declarations that must accompany the record set
// in a target document.
var DefaultAuxiliary = []string{"CATEGORY_SCHEMA_DEFAULTS", "CROP_SCHEMA_OVERRIDES"}

// Config tunes a Service. Zero fields take the package defaults.
type Config struct {
	Declaration string
	// Auxiliary declarations are materialized alongside the target record
	// set and must be objects. They are never rewritten.
	Auxiliary []string
	Identity  Identity
	// Fields are merged when a request names none. Empty means DefaultFields.
	Fields      []string
	EvalTimeout time.Duration
	// BaseDir is the directory reported paths are made relative to.
	BaseDir string
	Logger  *slog.Logger
}

// ImportRequest describes one import run.
type ImportRequest struct {
	Source     string
	Target     string
	Fields     []string
	AddMissing bool
	DryRun     bool
	// Diff attaches a unified diff of the target document to the report.
	Diff bool
	// Patches attaches an RFC 7386 merge patch per changed record.
	Patches bool
}

// Service runs the import pipeline against a DocumentStore.
type Service struct {
	store  DocumentStore
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	runs    int
	lastRun *Report
}

// NewService creates a new Service.
func NewService(store DocumentStore, cfg Config) *Service {
	if cfg.Declaration == "" {
		cfg.Declaration = DefaultDeclaration
	}
	if cfg.Auxiliary == nil {
		cfg.Auxiliary = DefaultAuxiliary
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = DefaultEvalTimeout
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields
	}
	cfg.Identity = cfg.Identity.orDefault()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cfg: cfg, logger: logger}
}

// Store returns the underlying document store.
func (s *Service) Store() DocumentStore {
	return s.store
}

// Import merges the record set of req.Source into req.Target.
//
// Every stage before the write must succeed; on error the target document is
// left untouched. Dry runs and runs without changes never write.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*Report, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, ErrMissingSource
	}
	if req.Target == "" {
		req.Target = DefaultTarget
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = s.cfg.Fields
	}

	runID := uuid.NewString()
	log := s.logger.With("run", runID)
	started := time.Now()

	sourcePath, err := s.resolve(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	log.Debug("import started", "source", sourcePath, "target", req.Target, "fields", strings.Join(fields, ","))

	sourceText, err := s.read(ctx, "Source", sourcePath)
	if err != nil {
		return nil, err
	}
	targetText, err := s.read(ctx, "Target", req.Target)
	if err != nil {
		return nil, err
	}

	source, err := s.extractSource(ctx, sourceText)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, span, err := s.extractTarget(ctx, targetText)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	res := Merge(target, source, MergeOptions{
		Fields:     fields,
		AddMissing: req.AddMissing,
		Identity:   s.cfg.Identity,
	})
	for _, k := range res.DuplicateSourceKeys {
		log.Warn("duplicate source record; last occurrence wins", "key", k.String())
	}

	report := &Report{
		RunID:         runID,
		Source:        s.abs(sourcePath),
		Target:        s.abs(req.Target),
		SourceCount:   len(source),
		TargetCount:   len(target),
		MatchCount:    res.MatchCount,
		Added:         res.Added,
		Changes:       res.Changes,
		Fields:        fields,
		DryRun:        req.DryRun,
		Outcome:       OutcomeUnchanged,
		TargetDisplay: s.rel(req.Target),
	}
	for _, k := range res.DuplicateSourceKeys {
		report.DuplicateSourceKeys = append(report.DuplicateSourceKeys, k.String())
	}
	if req.Patches {
		if report.Patches, err = recordPatches(target, res); err != nil {
			return nil, err
		}
	}

	if len(res.Changes) > 0 && (req.Diff || !req.DryRun) {
		next, err := block.Splice(targetText, span, s.cfg.Declaration, res.Merged.Value(), block.DetectNewline(targetText))
		if err != nil {
			return nil, err
		}
		if req.Diff {
			if report.Diff, err = unifiedDiff(report.TargetDisplay, targetText, next); err != nil {
				return nil, err
			}
		}
		if !req.DryRun {
			if err := s.store.Write(ctx, req.Target, next); err != nil {
				return nil, fmt.Errorf("write target: %w", err)
			}
			report.Outcome = OutcomeUpdated
		}
	}
	if req.DryRun {
		report.Outcome = OutcomeDryRun
	}

	log.Info("import finished",
		"matched", res.MatchCount,
		"changed", len(res.Changes),
		"added", res.Added,
		"outcome", string(report.Outcome),
		"duration", time.Since(started),
	)

	s.mu.Lock()
	s.runs++
	s.lastRun = report
	s.mu.Unlock()
	return report, nil
}

// extractSource materializes the record set of a source document. HTML
// sources are searched inside their scripts only.
func (s *Service) extractSource(ctx context.Context, text string) (RecordSet, error) {
	span, err := block.LocateScript(text, s.cfg.Declaration)
	if err != nil {
		return nil, err
	}
	bindings, err := s.materialize(ctx, span.Slice(text), literal.Expect{s.cfg.Declaration: literal.KindArray})
	if err != nil {
		return nil, err
	}
	return NewRecordSet(s.cfg.Declaration, bindings[s.cfg.Declaration])
}

// extractTarget materializes the target record set together with the
// auxiliary declarations and returns the span to splice into.
func (s *Service) extractTarget(ctx context.Context, text string) (RecordSet, block.Span, error) {
	span, err := block.Locate(text, s.cfg.Declaration)
	if err != nil {
		return nil, block.Span{}, err
	}
	parts := []string{span.Slice(text)}
	expect := literal.Expect{s.cfg.Declaration: literal.KindArray}
	for _, name := range s.cfg.Auxiliary {
		aux, err := block.Locate(text, name)
		if err != nil {
			return nil, block.Span{}, err
		}
		parts = append(parts, aux.Slice(text))
		expect[name] = literal.KindObject
	}

	bindings, err := s.materialize(ctx, strings.Join(parts, "\n"), expect)
	if err != nil {
		return nil, block.Span{}, err
	}
	set, err := NewRecordSet(s.cfg.Declaration, bindings[s.cfg.Declaration])
	if err != nil {
		return nil, block.Span{}, err
	}
	return set, span, nil
}

func (s *Service) materialize(ctx context.Context, src string, expect literal.Expect) (map[string]*literal.Value, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EvalTimeout)
	defer cancel()
	return literal.Materialize(ctx, src, expect)
}

func (s *Service) resolve(ctx context.Context, pattern string) (string, error) {
	r, ok := s.store.(Resolver)
	if !ok {
		return pattern, nil
	}
	return r.Resolve(ctx, pattern)
}

func (s *Service) read(ctx context.Context, role, path string) (string, error) {
	text, err := s.store.Read(ctx, path)
	if err != nil {
		var nf *FileNotFoundError
		if errors.As(err, &nf) {
			nf.Role = role
		}
		return "", err
	}
	return text, nil
}

func (s *Service) abs(path string) string {
	if l, ok := s.store.(Locator); ok {
		if abs, err := l.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

// rel renders path relative to BaseDir for display, falling back to the
// absolute form.
func (s *Service) rel(path string) string {
	abs := s.abs(path)
	if s.cfg.BaseDir == "" || !filepath.IsAbs(abs) {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(s.cfg.BaseDir, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Watch observes a document if the store supports watching.
func (s *Service) Watch(ctx context.Context, path string) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx, path)
}
