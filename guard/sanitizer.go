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


package guard

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// Sanitizer rejects prompts matching a rule table. It is immutable after
// construction and safe for concurrent use.
type Sanitizer struct {
	policy string
	rules  []compiledRule
	logger *slog.Logger
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithSanitizerLogger sets the logger.
func WithSanitizerLogger(logger *slog.Logger) SanitizerOption {
	return func(s *Sanitizer) {
		s.logger = logger
	}
}

// NewSanitizer compiles rs into a Sanitizer.
func NewSanitizer(rs *RuleSet, opts ...SanitizerOption) (*Sanitizer, error) {
	rules, err := compileRules(rs.Rules)
	if err != nil {
		return nil, err
	}
	s := &Sanitizer{
		policy: rs.Policy,
		rules:  rules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sanitizer", "policy", s.policy)
	return s, nil
}

// NewDefaultSanitizer builds a Sanitizer from an embedded policy.
func NewDefaultSanitizer(policy string, opts ...SanitizerOption) (*Sanitizer, error) {
	rs, err := DefaultRules(policy)
	if err != nil {
		return nil, err
	}
	return NewSanitizer(rs, opts...)
}

// Policy returns the name of the rule table in use.
func (s *Sanitizer) Policy() string {
	return s.policy
}

// Len returns the number of rules.
func (s *Sanitizer) Len() int {
	return len(s.rules)
}

// Sanitize matches the lowercased prompt against every rule. A match fails
// with ErrDisallowedPattern naming the rule; otherwise the prompt is
// returned with control characters removed.
func (s *Sanitizer) Sanitize(prompt string) (string, error) {
	if rule, ok := firstMatch(s.rules, strings.ToLower(prompt)); ok {
		s.logger.Warn("rejected prompt", "rule", rule.Name, "category", rule.Category)
		return "", fmt.Errorf("%w: %s (%s)", ErrDisallowedPattern, rule.Name, rule.Category)
	}
	return controlChars.ReplaceAllString(prompt, ""), nil
}
