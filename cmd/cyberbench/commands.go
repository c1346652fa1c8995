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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/cyberbench"
	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/ai/cache"
	"github.com/poiesic/cyberbench/ai/openai"
	"github.com/poiesic/cyberbench/answer"
	"github.com/poiesic/cyberbench/assistant"
	"github.com/poiesic/cyberbench/bench"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/guard"
	"github.com/poiesic/cyberbench/rescore"
	"github.com/poiesic/cyberbench/scoring"
	"github.com/poiesic/cyberbench/storage/badger"
	"github.com/urfave/cli/v2"
)

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithBackend(ai.Backend(strings.ToLower(c.String("backend")))),
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithMaxTokens(c.Int("max-tokens")),
	}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	return ai.NewConfig(opts...)
}

// embeddingConfig builds a config for commands that only embed.
func embeddingConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("embedding-api-key")),
	)
}

func buildValidator(name string) (guard.Validator, error) {
	switch strings.ToLower(name) {
	case "schema", "":
		v, err := guard.NewSchemaValidator()
		if err != nil {
			return nil, err
		}
		return v, nil
	case "passthrough":
		return guard.PassthroughValidator{}, nil
	default:
		return nil, fmt.Errorf("unknown validator %q: must be schema or passthrough", name)
	}
}

func buildSanitizer(c *cli.Context) (*guard.Sanitizer, error) {
	if path := c.String("rules"); path != "" {
		rs, err := guard.LoadRules(path)
		if err != nil {
			return nil, err
		}
		return guard.NewSanitizer(rs)
	}
	return guard.NewDefaultSanitizer(c.String("policy"))
}

func openWorkspace(ctx context.Context, c *cli.Context) (*cyberbench.Workspace, error) {
	ws, err := cyberbench.NewWorkspace(ctx, c.String("db"),
		cyberbench.WithAIConfig(aiConfigFromFlags(c)),
		cyberbench.WithEmbeddingCache(c.Int64("embedding-cache")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

func benchCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator, err := buildValidator(c.String("validator"))
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	opts := []bench.Option{
		bench.WithDelay(c.Duration("delay")),
		bench.WithRepairJSON(c.Bool("repair-json")),
		bench.WithRunID(c.String("run-id")),
	}
	if runID := c.String("resume"); runID != "" {
		opts = append(opts, bench.WithResume(runID))
	}

	if addr := c.String("metrics-addr"); addr != "" {
		monitor := bench.NewPrometheusMonitor()
		opts = append(opts, bench.WithMonitor(monitor))
		shutdown := serveMetrics(addr, monitor.Handler())
		defer shutdown()
	}

	harness, err := ws.NewHarness(validator, ws.NewScorer(scoring.WithMaxDepth(c.Int("max-depth"))), opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Run: %s\n", harness.RunID())
	fmt.Fprintf(os.Stderr, "Dataset: %s\n", c.String("dataset"))
	fmt.Fprintf(os.Stderr, "Generator: %s (%s)\n", c.String("generator-model"), c.String("backend"))
	fmt.Fprintf(os.Stderr, "Delay: %s\n", c.Duration("delay"))
	fmt.Fprintln(os.Stderr)

	report, runErr := harness.Run(ctx, c.String("dataset"), c.String("output"))
	if report != nil && !c.Bool("quiet") {
		if err := bench.PrintSummary(os.Stdout, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nDetailed results saved to: %s\n", c.String("output"))
	}
	return runErr
}

func serveMetrics(addr string, handler http.Handler) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func newEmbedder(c *cli.Context) (*cache.Embedder, error) {
	cfg := embeddingConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return cache.NewEmbedder(embedder, 0)
}

func scoreCommand(c *cli.Context) error {
	ctx := context.Background()

	goldText, err := os.ReadFile(c.String("gold"))
	if err != nil {
		return err
	}
	predText, err := os.ReadFile(c.String("pred"))
	if err != nil {
		return err
	}

	gold, err := answer.ParseOrRaw(strings.TrimSpace(string(goldText)))
	if err != nil {
		slog.Warn("gold answer is not JSON, scoring it as raw text", "err", err)
	}
	pred, err := answer.ParseOrRaw(answer.ExtractJSON(strings.TrimSpace(string(predText))))
	if err != nil {
		slog.Warn("predicted answer is not JSON, scoring it as raw text", "err", err)
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}
	defer embedder.Close()

	scorer := scoring.NewScorer(embedder, scoring.WithMaxDepth(c.Int("max-depth")))
	breakdown := scorer.Explain(ctx, gold, pred)
	return writeJSON(c.App.Writer, breakdown)
}

func rescoreCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportPath, runID := c.String("report"), c.String("run")
	if (reportPath == "") == (runID == "") {
		return errors.New("exactly one of --report or --run is required")
	}
	if c.Int("workers") <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}
	defer embedder.Close()

	opts := []rescore.Option{
		rescore.WithPoolSize(c.Int("workers")),
		rescore.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		rescore.WithProgress(os.Stderr, c.Int("report-interval")),
	}

	var rescored *core.Report
	if runID != "" {
		backend, err := badger.OpenBackend(c.String("db"), false)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer backend.Close()

		opts = append(opts, rescore.WithResultRepository(badger.NewResultRepository(backend)))
		r, err := rescore.NewRescorer(embedder, opts...)
		if err != nil {
			return err
		}
		rescored, err = r.RescoreRun(ctx, runID)
		if err != nil {
			return err
		}
	} else {
		report, err := bench.ReadReport(reportPath)
		if err != nil {
			return err
		}
		r, err := rescore.NewRescorer(embedder, opts...)
		if err != nil {
			return err
		}
		rescored, err = r.RescoreReport(ctx, report)
		if err != nil {
			return err
		}
	}

	output := c.String("output")
	if output == "" {
		output = reportPath
	}
	if output != "" {
		if err := bench.WriteReport(output, rescored); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Rescored report saved to: %s\n", output)
	}
	return bench.PrintSummary(c.App.Writer, rescored)
}

func sanitizeCommand(c *cli.Context) error {
	sanitizer, err := buildSanitizer(c)
	if err != nil {
		return err
	}

	prompt := strings.Join(c.Args().Slice(), " ")
	if prompt == "" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return err
		}
		prompt = string(data)
	}

	clean, err := sanitizer.Sanitize(prompt)
	if err != nil {
		return fmt.Errorf("prompt rejected: %w", err)
	}
	fmt.Fprintln(c.App.Writer, clean)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompt := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return errors.New("a prompt is required")
	}

	validator, err := buildValidator(c.String("validator"))
	if err != nil {
		return err
	}
	sanitizer, err := buildSanitizer(c)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	a, err := ws.NewAssistant(validator, sanitizer, assistant.WithHistoryTurns(c.Int("history-turns")))
	if err != nil {
		return err
	}

	reply, err := a.Ask(ctx, c.String("session"), prompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

func historyCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	turns, err := badger.NewTurnRepository(backend)
	if err != nil {
		return err
	}
	defer turns.Close()

	history, err := turns.History(ctx, c.String("session"))
	if err != nil {
		return err
	}
	for _, t := range history {
		fmt.Fprintf(c.App.Writer, "[%s] %s: %s\n", t.Timestamp.Format(time.RFC3339), t.Speaker.Label(), t.Message)
	}
	return nil
}

func runsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	results := badger.NewResultRepository(backend)

	if runID := c.String("delete"); runID != "" {
		if err := results.DeleteRun(ctx, runID); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted run %s\n", runID)
		return nil
	}

	runs, err := results.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if run.Summary == nil {
			fmt.Fprintf(c.App.Writer, "%s\t%d entries\tin progress\n", run.RunID, run.Entries)
			continue
		}
		partial := ""
		if run.Summary.Partial {
			partial = " (partial)"
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d entries\t%.3f %s%s\n",
			run.RunID, run.Entries, run.Summary.AverageScore, run.Summary.PerformanceRating, partial)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
