// Package batch aligns many documents in parallel.
package batch

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weaklabel/internal/align"
	"weaklabel/internal/dataset"
	"weaklabel/internal/diagnostic"
)

// Options tunes Run.
type Options struct {
	// Jobs bounds the number of documents aligned at once (0 = GOMAXPROCS).
	Jobs int
	// Logger receives per-document warnings and the run summary.
	Logger *zap.Logger
}

// Item is the outcome for one document.
type Item struct {
	Doc    dataset.Document
	Result *align.Result
	// Err is the document's input error; the batch itself continues.
	Err error
}

// Stats summarizes a run.
type Stats struct {
	RunID       string
	Documents   int
	Failed      int
	Complete    int
	Spans       int
	Diagnostics int
	ByReason    [diagnostic.ReasonTotal]int
	Elapsed     time.Duration
}

// Run aligns docs with a, at most opts.Jobs at a time. Items come back in
// input order. Invalid documents are reported per item; only context
// cancellation aborts the run.
func Run(ctx context.Context, docs []dataset.Document, a *align.Aligner, opts Options) ([]Item, Stats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	stats := Stats{RunID: uuid.NewString(), Documents: len(docs)}
	log = log.With(zap.String("run_id", stats.RunID))

	if len(docs) == 0 {
		return nil, stats, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	items := make([]Item, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(docs)))

	for i, doc := range docs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if doc.Err != nil {
				items[i] = Item{Doc: doc, Err: doc.Err}
				return nil
			}

			res, err := a.Align(doc.Text, doc.Record)
			items[i] = Item{Doc: doc, Result: res, Err: err}

			if err != nil && !errors.Is(err, align.ErrInvalidInput) {
				return err
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	for _, it := range items {
		if it.Err != nil {
			stats.Failed++

			log.Warn("document skipped", zap.String("id", it.Doc.ID), zap.Error(it.Err))

			continue
		}

		stats.Spans += len(it.Result.Spans)
		stats.Diagnostics += len(it.Result.Diagnostics)

		if it.Result.Diagnostics.IsEmpty() {
			stats.Complete++
		}

		counts := it.Result.Diagnostics.Counts()
		for r := range counts {
			stats.ByReason[r] += counts[r]
		}
	}

	stats.Elapsed = time.Since(start)

	log.Info("batch aligned",
		zap.Int("documents", stats.Documents),
		zap.Int("failed", stats.Failed),
		zap.Int("complete", stats.Complete),
		zap.Int("spans", stats.Spans),
		zap.Int("diagnostics", stats.Diagnostics),
		zap.Int("jobs", jobs),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return items, stats, nil
}

// Coverage returns the share of documents aligned without diagnostics.
func (s Stats) Coverage() float64 {
	if s.Documents == 0 {
		return 0
	}

	return float64(s.Complete) / float64(s.Documents)
}

// Reason returns the number of diagnostics with reason r.
func (s Stats) Reason(r diagnostic.Reason) int {
	if int(r) < 0 || int(r) >= len(s.ByReason) {
		return 0
	}

	return s.ByReason[r]
}
