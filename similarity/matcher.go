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


package similarity

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/textnorm"
)

// DefaultThreshold is the gate applied when callers have no stronger opinion.
const DefaultThreshold = 0.7

// Signal weights. The combined score is the maximum of the weighted terms,
// not their sum.
const (
	sequenceWeight     = 0.4
	semanticWeight     = 0.4
	preprocessedWeight = 0.2
)

// Matcher combines the signals into one fuzzy match score. It holds only
// read-only collaborators and is safe for concurrent use.
type Matcher struct {
	normalizer *textnorm.Normalizer
	semantic   *Semantic
}

// Option configures a Matcher.
type Option func(*matcherOptions)

type matcherOptions struct {
	normalizer *textnorm.Normalizer
	logger     *slog.Logger
}

// WithNormalizer replaces the default text normalizer.
func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(o *matcherOptions) {
		o.normalizer = n
	}
}

// WithLogger sets the logger used for signal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *matcherOptions) {
		o.logger = logger
	}
}

// NewMatcher creates a Matcher whose semantic signal uses embedder.
func NewMatcher(embedder ai.Embedder, opts ...Option) *Matcher {
	o := &matcherOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.normalizer == nil {
		o.normalizer = textnorm.NewNormalizer()
	}
	return &Matcher{
		normalizer: o.normalizer,
		semantic:   NewSemantic(embedder, o.logger),
	}
}

// Normalizer returns the normalizer used for preprocessed comparisons.
func (m *Matcher) Normalizer() *textnorm.Normalizer {
	return m.normalizer
}

// Semantic returns the embedding cosine similarity of a and b.
func (m *Matcher) Semantic(ctx context.Context, a, b string) float64 {
	return m.semantic.Similarity(ctx, a, b)
}

// Match scores how well a matches b. The policy, in order:
//
//  1. blank input scores 0
//  2. a case-insensitive exact match scores 1
//  3. containment returns its length ratio, bypassing the threshold
//  4. otherwise the score is max(0.4*sequence, 0.4*semantic, 0.2*preprocessed)
//     and is returned only when it reaches threshold, else 0
func (m *Matcher) Match(ctx context.Context, a, b string, threshold float64) float64 {
	if IsBlank(a) || IsBlank(b) {
		return 0
	}
	if score, ok := Exact(a, b); ok {
		return score
	}
	if score, ok := Containment(a, b); ok {
		return score
	}

	seq := SequenceRatio(strings.ToLower(a), strings.ToLower(b))
	sem := m.semantic.Similarity(ctx, a, b)
	proc := SequenceRatio(m.normalizer.Preprocess(a), m.normalizer.Preprocess(b))

	combined := math.Max(seq*sequenceWeight, math.Max(sem*semanticWeight, proc*preprocessedWeight))
	if combined >= threshold {
		return combined
	}
	return 0
}
