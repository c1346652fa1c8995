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


package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// letters, digits, underscore, whitespace, hyphen and period survive
	disallowedRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\.]`)
)

// defaultMinTokenLength is the shortest token Preprocess keeps.
const defaultMinTokenLength = 3

// Normalizer turns free text into comparable forms. A Normalizer is
// immutable after construction and safe for concurrent use.
type Normalizer struct {
	stopwords      map[string]struct{}
	stem           func(string) string
	minTokenLength int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStopwords replaces the English stopword set.
func WithStopwords(words []string) Option {
	return func(n *Normalizer) {
		n.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			n.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithStemmer replaces the Porter stemmer.
func WithStemmer(stem func(string) string) Option {
	return func(n *Normalizer) {
		n.stem = stem
	}
}

// WithMinTokenLength sets the minimum rune length of a kept token.
func WithMinTokenLength(length int) Option {
	return func(n *Normalizer) {
		n.minTokenLength = length
	}
}

// NewNormalizer creates a Normalizer using English stopwords and the
// Porter stemmer unless overridden.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		stopwords:      englishStopwords,
		stem:           porterstemmer.StemString,
		minTokenLength: defaultMinTokenLength,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize lowercases text, collapses whitespace and replaces every
// character other than letters, digits, underscore, hyphen and period
// with a space.
func (n *Normalizer) Normalize(text string) string {
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(text)), " ")
	return disallowedRunes.ReplaceAllString(text, " ")
}

// Tokenize splits normalized text into word tokens. Sentence-final periods
// are detached from their word except on abbreviations; inner periods
// (versions, hostnames) are kept.
func (n *Normalizer) Tokenize(text string) []string {
	fields := strings.Fields(n.Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimRight(f, "."); trimmed != f && !isAbbreviation(trimmed) {
			f = trimmed
		}
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// isAbbreviation reports whether s is dotted single letters such as "e.g".
func isAbbreviation(s string) bool {
	if !strings.Contains(s, ".") {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if utf8.RuneCountInString(part) != 1 {
			return false
		}
	}
	return true
}

// Tokens returns the stemmed content tokens of text: stopwords and tokens
// shorter than the minimum length are dropped.
func (n *Normalizer) Tokens(text string) []string {
	raw := n.Tokenize(text)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		if utf8.RuneCountInString(tok) < n.minTokenLength {
			continue
		}
		tokens = append(tokens, n.stem(tok))
	}
	return tokens
}

// Preprocess returns the space-joined stemmed content tokens of text.
// Empty input yields an empty string.
func (n *Normalizer) Preprocess(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// IsStopword reports whether word is in the stopword set.
func (n *Normalizer) IsStopword(word string) bool {
	_, ok := n.stopwords[strings.ToLower(word)]
	return ok
}
