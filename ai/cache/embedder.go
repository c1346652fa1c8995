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


// Package cache memoizes embeddings so that a text compared many times
// within a scoring pass is embedded once.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/cyberbench/ai"
)

// DefaultMaxCost bounds the cache at roughly 64 MiB of vector data.
const DefaultMaxCost = 64 << 20

// Embedder wraps an ai.Embedder with a ristretto cache keyed by text.
type Embedder struct {
	inner  ai.Embedder
	cache  *ristretto.Cache[string, []float32]
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder wraps inner. maxCost is the budget in bytes; values <= 0
// select DefaultMaxCost.
func NewEmbedder(inner ai.Embedder, maxCost int64) (*Embedder, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return &Embedder{
		inner:  inner,
		cache:  c,
		logger: slog.Default().With("component", "embedding-cache"),
	}, nil
}

// EmbedText returns the cached vector for text or embeds and caches it.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v, nil
	}
	v, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, v, vectorCost(v))
	return v, nil
}

// EmbedTexts embeds only the texts missing from the cache, in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(missing), len(vectors))
	}
	for j, v := range vectors {
		out[missingIdx[j]] = v
		e.cache.Set(missing[j], v, vectorCost(v))
	}
	e.logger.Debug("embedded cache misses", "requested", len(texts), "missing", len(missing))
	return out, nil
}

// Wait blocks until pending cache writes are visible.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache.
func (e *Embedder) Close() {
	e.cache.Close()
}

func vectorCost(v []float32) int64 {
	return int64(len(v)*4) + 1
}
