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


// Package cyberbench wires storage, AI services and guards into the
// benchmark harness, the live assistant and the rescorer.
package cyberbench

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/ai/cache"
	"github.com/poiesic/cyberbench/ai/gemini"
	"github.com/poiesic/cyberbench/ai/openai"
	"github.com/poiesic/cyberbench/assistant"
	"github.com/poiesic/cyberbench/bench"
	"github.com/poiesic/cyberbench/guard"
	"github.com/poiesic/cyberbench/rescore"
	"github.com/poiesic/cyberbench/scoring"
	"github.com/poiesic/cyberbench/storage"
	"github.com/poiesic/cyberbench/storage/badger"
)

// Workspace owns an on-disk result store and the AI services used to
// answer and score prompts.
type Workspace struct {
	backend     *badger.Backend
	results     *badger.ResultRepository
	checkpoints *badger.CheckpointRepository
	turns       *badger.TurnRepository
	provider    ai.AIProvider
	embedder    *cache.Embedder
	logger      *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig  *ai.Config
	provider  ai.AIProvider
	inMemory  bool
	cacheCost int64
	logger    *slog.Logger
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(cfg *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
func WithProvider(provider ai.AIProvider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path is ignored.
func WithInMemory() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// WithEmbeddingCache sets the embedding cache budget in bytes.
func WithEmbeddingCache(maxCost int64) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.cacheCost = maxCost
	}
}

// WithLogger sets the logger handed to the components the workspace builds.
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.logger = logger
	}
}

// NewProvider builds the AI provider selected by cfg. Embeddings always go
// through the OpenAI-compatible endpoint; generation uses cfg.Backend.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != ai.BackendGemini {
		return openai.NewProvider(cfg)
	}

	embedder, err := openai.NewConcreteEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	generator, err := gemini.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return openai.NewProviderWithGenerator(cfg, embedder, generator), nil
}

// NewWorkspace opens the store at filePath and connects the AI services.
func NewWorkspace(ctx context.Context, filePath string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	turns, err := badger.NewTurnRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = NewProvider(ctx, options.aiConfig)
		if err != nil {
			turns.Close()
			backend.Close()
			return nil, err
		}
	}

	embedder, err := cache.NewEmbedder(provider.Embedder(), options.cacheCost)
	if err != nil {
		provider.Close()
		turns.Close()
		backend.Close()
		return nil, err
	}

	return &Workspace{
		backend:     backend,
		results:     badger.NewResultRepository(backend),
		checkpoints: badger.NewCheckpointRepository(backend),
		turns:       turns,
		provider:    provider,
		embedder:    embedder,
		logger:      options.logger,
	}, nil
}

// Close releases the AI services and the store.
func (w *Workspace) Close() error {
	w.embedder.Close()
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := w.turns.Close(); err != nil {
		w.logger.Error("error closing turn repository", "err", err)
		errs = append(errs, err)
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (w *Workspace) ResultRepository() storage.ResultRepository {
	return w.results
}

func (w *Workspace) CheckpointRepository() storage.CheckpointRepository {
	return w.checkpoints
}

func (w *Workspace) TurnRepository() storage.TurnRepository {
	return w.turns
}

// Embedder returns the cached embedder shared by every scorer of the workspace.
func (w *Workspace) Embedder() ai.Embedder {
	return w.embedder
}

func (w *Workspace) Generator() ai.Generator {
	return w.provider.Generator()
}

func (w *Workspace) NewScorer(opts ...scoring.Option) *scoring.Scorer {
	return scoring.NewScorer(w.embedder, append([]scoring.Option{scoring.WithLogger(w.logger)}, opts...)...)
}

// NewHarness creates a harness that records its entries in the workspace.
func (w *Workspace) NewHarness(validator guard.Validator, scorer *scoring.Scorer, opts ...bench.Option) (*bench.Harness, error) {
	if scorer == nil {
		scorer = w.NewScorer()
	}
	defaults := []bench.Option{
		bench.WithLogger(w.logger),
		bench.WithResultRepository(w.results),
		bench.WithCheckpoints(w.checkpoints),
	}
	return bench.NewHarness(w.provider.Generator(), validator, scorer, append(defaults, opts...)...)
}

func (w *Workspace) NewAssistant(validator guard.Validator, sanitizer assistant.Sanitizer, opts ...assistant.Option) (*assistant.Assistant, error) {
	opts = append([]assistant.Option{assistant.WithLogger(w.logger)}, opts...)
	return assistant.NewAssistant(w.provider.Generator(), validator, sanitizer, w.turns, opts...)
}

func (w *Workspace) NewRescorer(opts ...rescore.Option) (*rescore.Rescorer, error) {
	defaults := []rescore.Option{
		rescore.WithLogger(w.logger),
		rescore.WithResultRepository(w.results),
	}
	return rescore.NewRescorer(w.embedder, append(defaults, opts...)...)
}
