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
	"log/slog"
	"time"

	"github.com/poiesic/cyberbench/ai"
)

// RetryWithBackoff runs operation until it succeeds, maxAttempts is
// exhausted or ctx ends. The pause after attempt n is baseDelay * 2^(n-1).
// The error of the last attempt is returned when every attempt fails.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var err error
	delay := baseDelay
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = operation(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			return err
		}
		slog.Debug("attempt failed, backing off", "attempt", attempt, "max_attempts", maxAttempts, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// RetryingEmbedder retries failed embedding calls with exponential backoff.
type RetryingEmbedder struct {
	inner       ai.Embedder
	maxAttempts int
	baseDelay   time.Duration
}

var _ ai.Embedder = (*RetryingEmbedder)(nil)

// NewRetryingEmbedder wraps inner. maxAttempts below one is treated as one.
func NewRetryingEmbedder(inner ai.Embedder, maxAttempts int, baseDelay time.Duration) *RetryingEmbedder {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingEmbedder{inner: inner, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// EmbedText implements ai.Embedder.
func (e *RetryingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vec, err = e.inner.EmbedText(ctx, text)
		return err
	}, e.maxAttempts, e.baseDelay)
	return vec, err
}

// EmbedTexts implements ai.Embedder.
func (e *RetryingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vecs, err = e.inner.EmbedTexts(ctx, texts)
		return err
	}, e.maxAttempts, e.baseDelay)
	return vecs, err
}
