// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rescore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/answer"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/scoring"
	"github.com/poiesic/cyberbench/storage"
)

// Rescorer recomputes the scores of recorded benchmark entries without
// querying the model again. Entries are scored in parallel on a worker pool.
type Rescorer struct {
	embedder      ai.Embedder
	scorerOptions []scoring.Option
	results       storage.ResultRepository
	poolSize      int
	maxAttempts   int
	retryDelay    time.Duration
	progress      io.Writer
	reportEvery   int
	logger        *slog.Logger
}

// Option configures a Rescorer.
type Option func(*Rescorer) error

// WithPoolSize sets the number of concurrent workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Rescorer) error {
		r.poolSize = max(size, 1)
		return nil
	}
}

// WithRetry sets how embedding calls are retried.
// Default is 3 attempts starting at one second.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(r *Rescorer) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.maxAttempts = maxAttempts
		r.retryDelay = baseDelay
		return nil
	}
}

// WithProgress prints progress to w every `every` entries.
func WithProgress(w io.Writer, every int) Option {
	return func(r *Rescorer) error {
		r.progress = w
		r.reportEvery = every
		return nil
	}
}

// WithResultRepository enables rescoring of stored runs.
func WithResultRepository(results storage.ResultRepository) Option {
	return func(r *Rescorer) error {
		r.results = results
		return nil
	}
}

// WithScorerOptions passes options to the scorer built by the rescorer.
func WithScorerOptions(opts ...scoring.Option) Option {
	return func(r *Rescorer) error {
		r.scorerOptions = append(r.scorerOptions, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rescorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRescorer creates a rescorer that embeds through embedder.
func NewRescorer(embedder ai.Embedder, opts ...Option) (*Rescorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	r := &Rescorer{
		embedder:    embedder,
		poolSize:    max(runtime.NumCPU()/2, 1),
		maxAttempts: 3,
		retryDelay:  time.Second,
		reportEvery: 10,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "rescore")
	return r, nil
}

// RescoreReport returns a copy of report with every entry rescored and the
// summary recomputed. Run metadata and the partial flag are kept.
func (r *Rescorer) RescoreReport(ctx context.Context, report *core.Report) (*core.Report, error) {
	started := time.Now().UTC()
	entries, err := r.rescore(ctx, report.DetailedResults)
	if err != nil {
		return nil, err
	}

	summary := core.Summarize(entries)
	summary.RunID = report.Summary.RunID
	summary.StartedAt = started
	summary.FinishedAt = time.Now().UTC()
	summary.Partial = report.Summary.Partial
	return &core.Report{Summary: summary, DetailedResults: entries}, nil
}

// RescoreRun rescores the stored entries of runID, writes the new scores
// and summary back and returns the resulting report.
func (r *Rescorer) RescoreRun(ctx context.Context, runID string) (*core.Report, error) {
	if r.results == nil {
		return nil, ErrRepositoryRequired
	}
	stored, err := r.results.GetResults(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRun, runID)
	}

	indexes := make([]int, 0, len(stored))
	for i := range stored {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	report := &core.Report{DetailedResults: make([]core.BenchmarkEntry, len(indexes))}
	for i, idx := range indexes {
		report.DetailedResults[i] = *stored[idx]
	}
	if prev, err := r.results.GetSummary(ctx, runID); err == nil {
		report.Summary = *prev
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load summary of %s: %w", runID, err)
	}
	report.Summary.RunID = runID

	rescored, err := r.RescoreReport(ctx, report)
	if err != nil {
		return nil, err
	}

	err = r.results.WithTransaction(ctx, func(ctx context.Context) error {
		for i, idx := range indexes {
			if err := r.results.SaveResult(ctx, runID, idx, &rescored.DetailedResults[i]); err != nil {
				return err
			}
		}
		return r.results.SaveSummary(ctx, runID, &rescored.Summary)
	})
	if err != nil {
		return nil, fmt.Errorf("store rescored run %s: %w", runID, err)
	}
	r.logger.Info("run rescored", "run", runID, "entries", len(indexes),
		"average_score", rescored.Summary.AverageScore)
	return rescored, nil
}

func (r *Rescorer) rescore(ctx context.Context, entries []core.BenchmarkEntry) ([]core.BenchmarkEntry, error) {
	scorer := scoring.NewScorer(
		NewRetryingEmbedder(r.embedder, r.maxAttempts, r.retryDelay),
		append([]scoring.Option{scoring.WithLogger(r.logger)}, r.scorerOptions...)...,
	)

	pool, err := ants.NewPool(r.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	progress := NewProgress(r.progress, len(entries), r.reportEvery)
	progress.Start()
	defer progress.Done()

	out := make([]core.BenchmarkEntry, len(entries))
	var wg sync.WaitGroup
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			out[i] = rescoreEntry(ctx, scorer, &entries[i])
			progress.Add(1)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit entry %s: %w", entries[i].ID, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rescore interrupted after %d of %d entries: %w", progress.Count(), len(entries), err)
	}
	return out, nil
}

// rescoreEntry scores the stored outputs of e. Outputs that no longer parse
// are treated as raw text, as the harness does.
func rescoreEntry(ctx context.Context, scorer *scoring.Scorer, e *core.BenchmarkEntry) core.BenchmarkEntry {
	gold := decodeOutput(e.GoldOutput)
	model := decodeOutput(e.ModelOutput)
	scores := scorer.Composite(ctx, gold, model)

	next := *e
	next.Fallbacks = slices.Clone(e.Fallbacks)
	next.Scores = scores
	next.SemanticSimilarity = scores.SemanticSimilarity
	return next
}

func decodeOutput(raw []byte) *answer.Node {
	if len(raw) == 0 {
		return answer.RawOutput("")
	}
	n, _ := answer.ParseOrRaw(string(raw))
	return n
}
