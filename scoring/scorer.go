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


package scoring

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/answer"
	"github.com/poiesic/cyberbench/concept"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/similarity"
)

// Fuzzy match gates used by the sub-scorers.
const (
	fieldThreshold        = 0.3
	criticalThreshold     = 0.8
	completenessThreshold = 0.5
)

// Composite weights.
const (
	relevanceWeight    = 0.35
	accuracyWeight     = 0.35
	completenessWeight = 0.20
	semanticWeight     = 0.10
)

// CriticalFields are key fragments that mark a flat key as security-critical.
var CriticalFields = []string{
	"vulnerability", "cve", "exploit", "attack", "malware",
	"name", "identifier", "date", "product", "method", "vector",
}

// Scorer computes ScoreReports for gold/predicted answer pairs.
type Scorer struct {
	matcher   *similarity.Matcher
	extractor *concept.Extractor
	maxDepth  int
	logger    *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithMatcher replaces the fuzzy matcher built from the embedder.
func WithMatcher(m *similarity.Matcher) Option {
	return func(s *Scorer) {
		s.matcher = m
	}
}

// WithExtractor replaces the default concept extractor.
func WithExtractor(e *concept.Extractor) Option {
	return func(s *Scorer) {
		s.extractor = e
	}
}

// WithMaxDepth sets the flattening depth. Values below zero are ignored.
func WithMaxDepth(depth int) Option {
	return func(s *Scorer) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a Scorer whose semantic signals use embedder.
func NewScorer(embedder ai.Embedder, opts ...Option) *Scorer {
	s := &Scorer{
		maxDepth: answer.DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.matcher == nil {
		s.matcher = similarity.NewMatcher(embedder, similarity.WithLogger(s.logger))
	}
	if s.extractor == nil {
		s.extractor = concept.MustNewExtractor(concept.WithNormalizer(s.matcher.Normalizer()))
	}
	s.logger = s.logger.With("component", "scorer")
	return s
}

// Matcher returns the fuzzy matcher.
func (s *Scorer) Matcher() *similarity.Matcher {
	return s.matcher
}

// pair is a flattened gold/predicted comparison.
type pair struct {
	gold, pred         *answer.FlatMap
	goldText, predText string
}

func (s *Scorer) flatten(gold, pred *answer.Node) *pair {
	p := &pair{
		gold: answer.Flatten(gold, s.maxDepth),
		pred: answer.Flatten(pred, s.maxDepth),
	}
	p.goldText = p.gold.Text()
	p.predText = p.pred.Text()
	return p
}

// Relevance scores topical closeness of pred to gold:
// 0.4*conceptOverlap + 0.3*textSimilarity + 0.3*fieldScore, capped at 1.
func (s *Scorer) Relevance(ctx context.Context, gold, pred *answer.Node) float64 {
	p := s.flatten(gold, pred)
	return s.relevance(ctx, p, s.matcher.Semantic(ctx, p.goldText, p.predText))
}

func (s *Scorer) relevance(ctx context.Context, p *pair, textSim float64) float64 {
	overlap := s.conceptOverlap(p)
	field := s.fieldScore(ctx, p)
	return min(1.0, overlap*0.4+textSim*0.3+field*0.3)
}

// ConceptOverlap compares the concept sets of the flattened texts.
func (s *Scorer) ConceptOverlap(gold, pred *answer.Node) float64 {
	return s.conceptOverlap(s.flatten(gold, pred))
}

func (s *Scorer) conceptOverlap(p *pair) float64 {
	return concept.Overlap(s.extractor.Extract(p.goldText), s.extractor.Extract(p.predText))
}

// FieldScore averages, over gold entries, the best key/value match among
// pred entries. It is 0 when either side has no entries.
func (s *Scorer) FieldScore(ctx context.Context, gold, pred *answer.Node) float64 {
	return s.fieldScore(ctx, s.flatten(gold, pred))
}

func (s *Scorer) fieldScore(ctx context.Context, p *pair) float64 {
	if p.gold.Len() == 0 {
		return 0
	}
	var total float64
	for _, g := range p.gold.Entries() {
		best := 0.0
		for _, pr := range p.pred.Entries() {
			keySim := s.matcher.Match(ctx, g.Key, pr.Key, fieldThreshold)
			valSim := s.matcher.Match(ctx, g.Value, pr.Value, fieldThreshold)
			best = max(best, keySim*0.3+valSim*0.7)
		}
		total += best
	}
	return total / float64(p.gold.Len())
}

// Accuracy scores agreement on critical fields, blended with whole-text
// similarity: 0.6*criticalAccuracy + 0.4*textSimilarity.
func (s *Scorer) Accuracy(ctx context.Context, gold, pred *answer.Node) float64 {
	p := s.flatten(gold, pred)
	return s.accuracy(ctx, p, s.matcher.Semantic(ctx, p.goldText, p.predText))
}

func (s *Scorer) accuracy(ctx context.Context, p *pair, textSim float64) float64 {
	return s.criticalAccuracy(ctx, p)*0.6 + textSim*0.4
}

// CriticalAccuracy is the fraction of critical gold fields whose value is
// closely matched by some critical pred field; 1 when gold has none.
func (s *Scorer) CriticalAccuracy(ctx context.Context, gold, pred *answer.Node) float64 {
	return s.criticalAccuracy(ctx, s.flatten(gold, pred))
}

func (s *Scorer) criticalAccuracy(ctx context.Context, p *pair) float64 {
	var critical, matched int
	for _, g := range p.gold.Entries() {
		if !IsCritical(g.Key) {
			continue
		}
		critical++
		best := 0.0
		for _, pr := range p.pred.Entries() {
			if IsCritical(pr.Key) {
				best = max(best, s.matcher.Match(ctx, g.Value, pr.Value, criticalThreshold))
			}
		}
		if best > criticalThreshold {
			matched++
		}
	}
	if critical == 0 {
		return 1
	}
	return float64(matched) / float64(critical)
}

// IsCritical reports whether a flat key names a security-critical field.
func IsCritical(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range CriticalFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// Completeness is the fraction of gold values covered by some pred value.
// An empty gold answer scores 1 against an empty prediction and 0.5
// otherwise.
func (s *Scorer) Completeness(ctx context.Context, gold, pred *answer.Node) float64 {
	return s.completeness(ctx, s.flatten(gold, pred))
}

func (s *Scorer) completeness(ctx context.Context, p *pair) float64 {
	if p.gold.Len() == 0 {
		if p.pred.Len() == 0 {
			return 1
		}
		return 0.5
	}
	covered := 0
	for _, g := range p.gold.Entries() {
		for _, pr := range p.pred.Entries() {
			if s.matcher.Match(ctx, g.Value, pr.Value, completenessThreshold) > completenessThreshold {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(p.gold.Len())
}

// Composite scores pred against gold on every axis.
func (s *Scorer) Composite(ctx context.Context, gold, pred *answer.Node) core.ScoreReport {
	return s.Explain(ctx, gold, pred).Report
}

// Breakdown is a ScoreReport together with the intermediate signals it was
// built from.
type Breakdown struct {
	Report           core.ScoreReport `json:"scores"`
	ConceptOverlap   float64          `json:"concept_overlap"`
	FieldScore       float64          `json:"field_score"`
	CriticalAccuracy float64          `json:"critical_accuracy"`
	TextSimilarity   float64          `json:"text_similarity"`
	GoldConcepts     []string         `json:"gold_concepts"`
	PredConcepts     []string         `json:"pred_concepts"`
	GoldFields       int              `json:"gold_fields"`
	PredFields       int              `json:"pred_fields"`
}

// Explain computes the composite score and keeps its intermediate signals.
func (s *Scorer) Explain(ctx context.Context, gold, pred *answer.Node) Breakdown {
	p := s.flatten(gold, pred)
	textSim := s.matcher.Semantic(ctx, p.goldText, p.predText)

	goldConcepts := s.extractor.Extract(p.goldText)
	predConcepts := s.extractor.Extract(p.predText)
	overlap := concept.Overlap(goldConcepts, predConcepts)
	field := s.fieldScore(ctx, p)
	critical := s.criticalAccuracy(ctx, p)

	relevance := similarity.Clamp(min(1.0, overlap*0.4+textSim*0.3+field*0.3))
	accuracy := similarity.Clamp(critical*0.6 + textSim*0.4)
	completeness := similarity.Clamp(s.completeness(ctx, p))
	semantic := similarity.Clamp(s.matcher.Semantic(ctx, gold.Canonical(), pred.Canonical()))

	composite := relevance*relevanceWeight +
		accuracy*accuracyWeight +
		completeness*completenessWeight +
		semantic*semanticWeight

	s.logger.Debug("scored pair",
		"gold_fields", p.gold.Len(),
		"pred_fields", p.pred.Len(),
		"composite", composite)

	return Breakdown{
		Report: core.ScoreReport{
			Relevance:          relevance,
			Accuracy:           accuracy,
			CompletenessScore:  completeness,
			SemanticSimilarity: semantic,
			Composite:          composite,
		},
		ConceptOverlap:   overlap,
		FieldScore:       field,
		CriticalAccuracy: critical,
		TextSimilarity:   textSim,
		GoldConcepts:     goldConcepts.Sorted(),
		PredConcepts:     predConcepts.Sorted(),
		GoldFields:       p.gold.Len(),
		PredFields:       p.pred.Len(),
	}
}
