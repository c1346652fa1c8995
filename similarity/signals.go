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
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/poiesic/cyberbench/ai"
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Exact reports whether a and b are equal ignoring case and surrounding
// whitespace. The score is 1 when they are.
func Exact(a, b string) (float64, bool) {
	if fold(a) == fold(b) {
		return 1, true
	}
	return 0, false
}

// Containment reports whether one trimmed, lowercased string contains the
// other. The score is the rune length of the shorter over the longer.
func Containment(a, b string) (float64, bool) {
	fa, fb := fold(a), fold(b)
	if !strings.Contains(fb, fa) && !strings.Contains(fa, fb) {
		return 0, false
	}
	la, lb := utf8.RuneCountInString(fa), utf8.RuneCountInString(fb)
	shorter, longer := la, lb
	if la > lb {
		shorter, longer = lb, la
	}
	if longer == 0 {
		return 0, true
	}
	return float64(shorter) / float64(longer), true
}

// SequenceRatio is the Ratcliff/Obershelp similarity of a and b computed
// over runes: twice the matched length divided by the total length.
// Two empty strings are identical.
func SequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Cosine returns the cosine similarity of a and b floored at 0. Vectors of
// different length or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return Clamp(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Clamp limits v to [0, 1]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Semantic scores texts by the cosine similarity of their embeddings.
type Semantic struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewSemantic creates a semantic signal over embedder.
func NewSemantic(embedder ai.Embedder, logger *slog.Logger) *Semantic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Semantic{
		embedder: embedder,
		logger:   logger.With("signal", "semantic"),
	}
}

// Similarity embeds a and b together and returns their cosine similarity.
// Blank input and embedding failures score 0.
func (s *Semantic) Similarity(ctx context.Context, a, b string) float64 {
	if IsBlank(a) || IsBlank(b) {
		return 0
	}
	vectors, err := s.embedder.EmbedTexts(ctx, []string{a, b})
	if err != nil {
		s.logger.Debug("embedding failed, scoring 0", "err", err)
		return 0
	}
	if len(vectors) != 2 {
		s.logger.Debug("embedder returned wrong vector count", "count", len(vectors))
		return 0
	}
	return Cosine(vectors[0], vectors[1])
}
