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


// Package concept extracts cybersecurity concepts from free text and
// measures topical overlap between concept sets.
package concept

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/cyberbench/textnorm"
)

// DefaultPatterns are matched against lowercased text; every match is a concept.
var DefaultPatterns = []string{
	`cve-\d{4}-\d+`,
	`#\w+gate[r]?`,
	`owasp\s+(?:top\s+)?(?:10|\d+)`,
	`nist`,
	`privilege\s+escalation`,
	`access\s+control`,
	`vulnerability`,
	`exploit`,
	`malware`,
	`antivirus`,
	`quarantine`,
	`ntfs\s+junction`,
	`administrator`,
	`user-level`,
	`shellshock`,
	`bash`,
	`gnu`,
	`broken\s+access\s+control`,
	`security\s+misconfiguration`,
}

// DefaultLexicon lists stems; a preprocessed token containing any of them
// is a concept.
var DefaultLexicon = []string{
	"vulnerabil", "exploit", "attack", "malwar", "antivir", "quarantin",
	"junction", "privilege", "access", "control", "security", "bash",
	"shellshock", "microsoft", "window", "defender", "system", "endpoint",
	"essential", "owasp", "nist", "administrator", "user", "level", "account",
}

// Extractor derives concept sets from text. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	patterns   []*regexp.Regexp
	lexicon    []string
	normalizer *textnorm.Normalizer
}

// Option configures an Extractor.
type Option func(*extractorConfig)

type extractorConfig struct {
	patterns   []string
	lexicon    []string
	normalizer *textnorm.Normalizer
}

// WithPatterns replaces the concept patterns.
func WithPatterns(patterns ...string) Option {
	return func(c *extractorConfig) {
		c.patterns = patterns
	}
}

// WithLexicon replaces the stem lexicon.
func WithLexicon(stems ...string) Option {
	return func(c *extractorConfig) {
		c.lexicon = stems
	}
}

// WithNormalizer sets the normalizer used to preprocess text.
func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(c *extractorConfig) {
		c.normalizer = n
	}
}

// NewExtractor compiles the configured patterns. It fails only when a
// supplied pattern is not a valid regular expression.
func NewExtractor(opts ...Option) (*Extractor, error) {
	cfg := &extractorConfig{
		patterns: DefaultPatterns,
		lexicon:  DefaultLexicon,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.normalizer == nil {
		cfg.normalizer = textnorm.NewNormalizer()
	}

	compiled := make([]*regexp.Regexp, 0, len(cfg.patterns))
	for _, p := range cfg.patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("concept pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &Extractor{
		patterns:   compiled,
		lexicon:    cfg.lexicon,
		normalizer: cfg.normalizer,
	}, nil
}

// MustNewExtractor is NewExtractor for the built-in configuration.
func MustNewExtractor(opts ...Option) *Extractor {
	e, err := NewExtractor(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the union of pattern matches in the lowercased text and
// preprocessed tokens containing a lexicon stem.
func (e *Extractor) Extract(text string) Set {
	set := Set{}
	lower := strings.ToLower(text)
	for _, re := range e.patterns {
		for _, m := range re.FindAllString(lower, -1) {
			set[m] = struct{}{}
		}
	}
	for _, tok := range e.normalizer.Tokens(text) {
		if e.inLexicon(tok) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func (e *Extractor) inLexicon(token string) bool {
	for _, stem := range e.lexicon {
		if strings.Contains(token, stem) {
			return true
		}
	}
	return false
}
