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


package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/answer"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/dataset"
	"github.com/poiesic/cyberbench/guard"
	"github.com/poiesic/cyberbench/scoring"
	"github.com/poiesic/cyberbench/storage"
)

// DefaultDelay is the pause between two queries.
const DefaultDelay = 10 * time.Second

// Harness drives a dataset through the query and validation collaborators
// and scores every answer against its gold output.
// Entries are processed one at a time; a Harness is not safe for concurrent Runs.
type Harness struct {
	generator   ai.Generator
	validator   guard.Validator
	scorer      *scoring.Scorer
	results     storage.ResultRepository
	checkpoints storage.CheckpointRepository
	monitor     Monitor
	delay       time.Duration
	repair      bool
	runID       string
	resume      bool
	logger      *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness) error

// WithDelay sets the pause between queries. Zero disables it.
// Default is DefaultDelay.
func WithDelay(delay time.Duration) Option {
	return func(h *Harness) error {
		if delay < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDelay, delay)
		}
		h.delay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor for observing runs.
func WithMonitor(monitor Monitor) Option {
	return func(h *Harness) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		h.monitor = monitor
		return nil
	}
}

// WithResultRepository stores every recorded entry and the final summary.
func WithResultRepository(results storage.ResultRepository) Option {
	return func(h *Harness) error {
		h.results = results
		return nil
	}
}

// WithCheckpoints records the last completed index of each run.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(h *Harness) error {
		h.checkpoints = checkpoints
		return nil
	}
}

// WithRepairJSON retries a failed model answer parse after repairing
// unquoted keys.
func WithRepairJSON(enabled bool) Option {
	return func(h *Harness) error {
		h.repair = enabled
		return nil
	}
}

// WithRunID names the run. Default is a random UUID.
func WithRunID(runID string) Option {
	return func(h *Harness) error {
		if runID != "" {
			h.runID = runID
		}
		return nil
	}
}

// WithResume continues runID, skipping entries already stored for it.
// Requires WithResultRepository.
func WithResume(runID string) Option {
	return func(h *Harness) error {
		if runID == "" {
			return fmt.Errorf("%w: empty run id", ErrResumeUnavailable)
		}
		h.runID = runID
		h.resume = true
		return nil
	}
}

// NewHarness creates a harness from its collaborators.
func NewHarness(generator ai.Generator, validator guard.Validator, scorer *scoring.Scorer, opts ...Option) (*Harness, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if validator == nil {
		return nil, ErrValidatorRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	h := &Harness{
		generator: generator,
		validator: validator,
		scorer:    scorer,
		monitor:   &noopMonitor{},
		delay:     DefaultDelay,
		runID:     uuid.NewString(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	if h.resume && h.results == nil {
		return nil, ErrResumeUnavailable
	}
	h.logger = h.logger.With("component", "bench", "run", h.runID)
	return h, nil
}

// RunID returns the identifier of the harness's run.
func (h *Harness) RunID() string {
	return h.runID
}

// Run loads the dataset at datasetPath, evaluates every entry and writes the
// report to outputPath. A missing or unreadable dataset is fatal. When ctx is
// cancelled the completed entries are still written as a partial report and
// the context error is returned alongside it.
func (h *Harness) Run(ctx context.Context, datasetPath, outputPath string) (*core.Report, error) {
	ds, err := dataset.LoadJSONL(datasetPath, dataset.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.logger.Info("dataset loaded", "path", datasetPath, "entries", len(ds.Entries), "skipped", len(ds.Skipped))

	report, runErr := h.Evaluate(ctx, ds.Entries)
	if outputPath != "" {
		if err := WriteReport(outputPath, report); err != nil {
			return report, errors.Join(runErr, err)
		}
		h.logger.Info("report written", "path", outputPath,
			"entries", report.Summary.TotalEntries, "partial", report.Summary.Partial)
	}
	return report, runErr
}

// Evaluate scores entries in order and aggregates the results. It always
// returns a report; on cancellation the report covers the completed entries,
// is marked partial and the wrapped context error is returned.
func (h *Harness) Evaluate(ctx context.Context, entries []core.DatasetEntry) (*core.Report, error) {
	started := time.Now().UTC()
	results := make([]core.BenchmarkEntry, 0, len(entries))

	stored, err := h.storedResults(ctx)
	if err != nil {
		return h.finish(ctx, results, started, true), err
	}

	h.monitor.RunStarted(h.runID, len(entries))

	var runErr error
	queried := false
	for i := range entries {
		entry := &entries[i]
		if prev, ok := stored[i]; ok && prev.ID == entry.ID {
			h.logger.Debug("entry already recorded", "entry", entry.ID, "index", i)
			results = append(results, *prev)
			continue
		}

		if queried {
			if err := h.wait(ctx); err != nil {
				runErr = err
				break
			}
		} else if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		result, err := h.evaluate(ctx, i, entry)
		queried = true
		if err != nil {
			runErr = err
			break
		}
		results = append(results, *result)

		if err := h.record(ctx, i, result); err != nil {
			runErr = err
			break
		}
	}

	if runErr != nil {
		h.logger.Warn("run stopped early", "completed", len(results), "total", len(entries), "err", runErr)
		if ctx.Err() != nil {
			runErr = fmt.Errorf("benchmark interrupted after %d of %d entries: %w", len(results), len(entries), runErr)
		}
	}
	return h.finish(ctx, results, started, runErr != nil), runErr
}

func (h *Harness) storedResults(ctx context.Context) (map[int]*core.BenchmarkEntry, error) {
	if !h.resume {
		return nil, nil
	}
	stored, err := h.results.GetResults(ctx, h.runID)
	if err != nil {
		return nil, fmt.Errorf("load recorded entries: %w", err)
	}
	if h.checkpoints != nil {
		cp, err := h.checkpoints.LoadCheckpoint(ctx, h.runID)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
		if cp != nil {
			h.logger.Info("resuming run", "last_index", cp.LastIndex, "recorded", len(stored))
		}
	}
	return stored, nil
}

// evaluate runs QUERY, VALIDATE, PARSE and SCORE for one entry. It only
// fails when ctx is cancelled; every other failure becomes a fallback.
func (h *Harness) evaluate(ctx context.Context, index int, entry *core.DatasetEntry) (*core.BenchmarkEntry, error) {
	start := time.Now()
	logger := h.logger.With("entry", entry.ID)
	h.monitor.EntryStarted(index, entry)

	var fallbacks []core.Fallback

	raw, err := h.generator.Generate(ctx, ai.BenchmarkPrompt(entry.Instruction, entry.Input))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		logger.Warn("query failed, scoring an empty answer", "err", err)
		h.monitor.QueryFailed(entry, err)
		fallbacks = append(fallbacks, core.FallbackQueryFailed)
		raw = ""
	}
	raw = strings.TrimSpace(raw)

	validated := guard.ValidateWithFallback(ctx, h.validator, raw, logger)
	switch {
	case validated.Err != nil:
		logger.Warn("validation failed, using raw answer", "err", validated.Err)
		fallbacks = append(fallbacks, core.FallbackValidationFailed)
		h.monitor.ValidationFallback(entry, core.FallbackValidationFailed)
	case validated.Rewrapped:
		logger.Debug("answer passed validation after rewrap")
		fallbacks = append(fallbacks, core.FallbackValidationRetry)
		h.monitor.ValidationFallback(entry, core.FallbackValidationRetry)
	}

	model, fb := h.parseModel(validated.Text)
	if fb != "" {
		logger.Warn("model answer is not JSON", "fallback", fb)
		fallbacks = append(fallbacks, fb)
		h.monitor.ParseFallback(entry, fb)
	}

	gold, err := answer.ParseOrRaw(entry.Output)
	if err != nil {
		logger.Warn("gold answer is not JSON", "err", err)
		fallbacks = append(fallbacks, core.FallbackGoldParse)
		h.monitor.ParseFallback(entry, core.FallbackGoldParse)
	}

	scores := h.scorer.Composite(ctx, gold, model)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result, err := newEntry(entry, gold, model, scores, fallbacks)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logger.Debug("entry scored", "composite", scores.Composite, "semantic", scores.SemanticSimilarity, "elapsed", elapsed)
	h.monitor.EntryFinished(index, result, elapsed)
	return result, nil
}

// parseModel narrows fenced output to its JSON object and parses it. The
// returned fallback is empty when the text parsed as is.
func (h *Harness) parseModel(text string) (*answer.Node, core.Fallback) {
	text = answer.ExtractJSON(text)
	n, err := answer.ParseOrRaw(text)
	if err == nil {
		return n, ""
	}
	if h.repair {
		if repaired, rerr := answer.Parse(answer.Repair(text)); rerr == nil {
			return repaired, core.FallbackModelRepaired
		}
	}
	return n, core.FallbackModelParse
}

func newEntry(entry *core.DatasetEntry, gold, model *answer.Node, scores core.ScoreReport, fallbacks []core.Fallback) (*core.BenchmarkEntry, error) {
	goldJSON, err := gold.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode gold output of %s: %w", entry.ID, err)
	}
	modelJSON, err := model.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode model output of %s: %w", entry.ID, err)
	}
	return &core.BenchmarkEntry{
		ID:                 entry.ID,
		Category:           entry.Category,
		GoldOutput:         goldJSON,
		ModelOutput:        modelJSON,
		SemanticSimilarity: scores.SemanticSimilarity,
		Scores:             scores,
		Fallbacks:          fallbacks,
	}, nil
}

// record stores a finished entry and advances the checkpoint.
func (h *Harness) record(ctx context.Context, index int, result *core.BenchmarkEntry) error {
	if h.results != nil {
		if err := h.results.SaveResult(ctx, h.runID, index, result); err != nil {
			return fmt.Errorf("%w: save entry %s: %w", ErrPersistFailed, result.ID, err)
		}
	}
	if h.checkpoints != nil {
		cp := &core.Checkpoint{RunID: h.runID, LastIndex: index}
		if err := h.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
			return fmt.Errorf("%w: save checkpoint: %w", ErrPersistFailed, err)
		}
	}
	return nil
}

// wait sleeps for the configured delay unless ctx ends first.
func (h *Harness) wait(ctx context.Context) error {
	if h.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(h.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (h *Harness) finish(ctx context.Context, results []core.BenchmarkEntry, started time.Time, partial bool) *core.Report {
	summary := core.Summarize(results)
	summary.RunID = h.runID
	summary.StartedAt = started
	summary.FinishedAt = time.Now().UTC()
	summary.Partial = partial

	if h.results != nil {
		// The run context may already be cancelled; the summary is still worth keeping.
		if err := h.results.SaveSummary(context.WithoutCancel(ctx), h.runID, &summary); err != nil {
			h.logger.Warn("failed to store summary", "err", err)
		}
	}
	h.monitor.RunFinished(&summary)
	h.logger.Info("run finished",
		"entries", summary.TotalEntries,
		"average_score", summary.AverageScore,
		"rating", summary.PerformanceRating,
		"partial", summary.Partial)

	return &core.Report{Summary: summary, DetailedResults: results}
}
