package align

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"weaklabel/internal/diagnostic"
	"weaklabel/internal/mapping"
	"weaklabel/internal/match"
	"weaklabel/internal/span"
)

// Aligner aligns records against texts. It holds no per-call state and is
// safe for concurrent use.
type Aligner struct {
	cfg      Config
	searcher match.Searcher
	opts     match.NormalizeOptions
	log      *zap.Logger
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithLogger sets the logger used for per-field debug output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.log = l
		}
	}
}

// New builds an Aligner.
func New(cfg Config, opts ...Option) (*Aligner, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Aligner{
		cfg:      cfg,
		searcher: cfg.searcher(),
		opts:     match.NormalizeOptions{FoldAccents: cfg.FoldAccents},
		log:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Config returns the effective configuration.
func (a *Aligner) Config() Config {
	return a.cfg
}

// Align aligns record against text with a one-off Aligner.
func Align(text string, record any, cfg Config) (*Result, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return a.Align(text, record)
}

// Align finds a span for every searchable field of record. record must be
// a *Record, a Record or a map[string]any. Only invalid input is an error;
// fields without a span are reported in Result.Diagnostics.
func (a *Aligner) Align(text string, record any) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}

	rec, err := toRecord(record, a.cfg.LabelMap)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	w := &walk{
		Aligner: a,
		text:    runes,
		reg:     span.NewRegistry(runes, a.cfg.Masking()),
	}

	w.record(rec, mapping.FieldPath{})

	return &Result{
		Text:        text,
		Spans:       w.reg.Spans(),
		Diagnostics: w.diags,
	}, nil
}

// walk is the state of one alignment.
type walk struct {
	*Aligner

	text  []rune
	reg   *span.Registry
	diags diagnostic.List
}

// record visits rec in three passes: leaves, nested values, then groups.
func (w *walk) record(rec *Record, path mapping.FieldPath) {
	for _, f := range rec.Fields {
		if w.cfg.isGroup(f.Key) {
			continue
		}

		switch f.Value.Kind {
		case KindScalar, KindContextual:
			w.leaf(f.Key, f.Value, path.Child(f.Key))
		}
	}

	for _, f := range rec.Fields {
		if w.cfg.isGroup(f.Key) {
			continue
		}

		w.nested(f.Key, f.Value, path)
	}

	for _, group := range w.cfg.GroupKeys {
		for _, f := range rec.Fields {
			if strings.EqualFold(f.Key, strings.TrimSpace(group)) {
				w.leaf(f.Key, f.Value, path.Child(f.Key))
				w.nested(f.Key, f.Value, path)
			}
		}
	}
}

// nested descends into records and lists. Top-level scalars are handled by
// the first pass; list elements that are scalars are searched here.
func (w *walk) nested(key string, v Value, path mapping.FieldPath) {
	switch v.Kind {
	case KindRecord:
		if v.Record != nil {
			w.record(v.Record, path.Child(key))
		}

	case KindList:
		for i, item := range v.Items {
			elem := path.Elem(key, i)

			switch item.Kind {
			case KindRecord:
				if item.Record != nil {
					w.record(item.Record, elem)
				}
			case KindScalar, KindContextual:
				w.leaf(key, item, elem)
			case KindList:
				w.nested(key, item, path)
			}
		}
	}
}

// leaf searches one value and records its span or its diagnostic.
func (w *walk) leaf(key string, v Value, path mapping.FieldPath) {
	if v.Kind != KindScalar && v.Kind != KindContextual {
		return
	}

	if v.IsBlank() {
		return
	}

	label := w.cfg.LabelMap.Label(key)
	if w.cfg.ignored(label, path) {
		return
	}

	lv := leafValue{raw: strings.TrimSpace(v.Text)}
	if v.Kind == KindContextual {
		lv = leafValue{
			raw:    strings.TrimSpace(v.Context.Text),
			before: v.Context.Before,
			after:  v.Context.After,
		}
	}

	canonical := w.cfg.Canonical.Apply(label, lv.raw)

	fail := diagnostic.Diagnostic{
		Reason: diagnostic.NotFound,
		Label:  label,
		Field:  key,
		Path:   path.String(),
		Value:  canonical,
	}

	if canonical != lv.raw {
		fail.Raw = lv.raw
	}

	tried := false

	for _, vr := range w.variants(key, lv, canonical) {
		accepted, d := w.try(vr, fail)
		if accepted {
			return
		}

		if !tried || d.Reason.Outranks(fail.Reason) || (d.Reason == fail.Reason && d.BestScore > fail.BestScore) {
			fail = d
		}

		tried = true
	}

	if !tried {
		fail.Message = "value is empty after normalization"
	}

	w.diags.Add(fail)

	w.log.Debug("field not aligned",
		zap.String("label", fail.Label),
		zap.String("value", fail.Value),
		zap.Stringer("reason", fail.Reason),
		zap.String("path", fail.Path),
	)
}

// try searches one variant and offers the candidate to the registry. On
// failure it returns the diagnostic describing this variant's outcome.
func (w *walk) try(vr variant, base diagnostic.Diagnostic) (bool, diagnostic.Diagnostic) {
	hay := match.Haystack{Work: w.reg.Work(), Orig: w.text}

	c, err := w.searcher.Search(hay, vr.needle)
	if err != nil {
		d := base
		d.Reason = reasonOf(err)
		d.Message = err.Error()
		d.BestScore = c.Score

		return false, d
	}

	if vr.prefix != "" {
		settled, ok := w.settle(w.text, c, vr)
		if !ok {
			d := base
			d.Reason = diagnostic.NotFound
			d.Message = fmt.Sprintf("value part %q scores %.1f below %.1f",
				string(w.text[settled.Start:settled.End]), settled.Score, w.cfg.MinScore())
			d.BestScore = settled.Score

			return false, d
		}

		c = settled
	}

	cand := span.Span{
		Start: c.Start,
		End:   c.End,
		Label: base.Label,
		Field: base.Field,
		Path:  base.Path,
		Query: c.Query,
		Score: c.Score,
	}

	decision, conflict := w.reg.Offer(cand)
	if decision == span.Accepted {
		return true, base
	}

	d := base
	d.BestScore = c.Score

	if decision == span.RejectedOutOfRange {
		d.Reason = diagnostic.NotFound
		d.Message = fmt.Sprintf("candidate %s outside text", cand)

		return false, d
	}

	cand.Text = string(w.text[cand.Start:cand.End])

	d.Reason = diagnostic.OverlapRejected
	d.Message = decision.String()
	d.Candidate = &cand
	d.Conflict = conflict

	return false, d
}

func reasonOf(err error) diagnostic.Reason {
	switch {
	case errors.Is(err, match.ErrTextTooLong):
		return diagnostic.TextTooLong
	case errors.Is(err, match.ErrContextMismatch):
		return diagnostic.ContextMismatch
	default:
		return diagnostic.NotFound
	}
}
