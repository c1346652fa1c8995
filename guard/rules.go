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
	"embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Embedded policy names.
const (
	PolicyFull    = "full"
	PolicyMinimal = "minimal"
	PolicyOutput  = "output"
)

//go:embed rules/*.yaml
var embeddedRules embed.FS

// Rule is one disallowed pattern.
type Rule struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// RuleSet is a named rule table.
type RuleSet struct {
	Policy string `yaml:"policy"`
	Rules  []Rule `yaml:"rules"`
}

// ParseRules decodes a YAML rule table and checks that every pattern
// compiles.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	}
	for i, r := range rs.Rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("%w: rule %d (%s) has no pattern", ErrInvalidRules, i, r.Name)
		}
		if _, err := compileRule(r); err != nil {
			return nil, err
		}
	}
	return &rs, nil
}

// LoadRules reads a YAML rule table from path.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	return ParseRules(data)
}

// DefaultRules returns an embedded policy.
func DefaultRules(policy string) (*RuleSet, error) {
	data, err := embeddedRules.ReadFile("rules/" + policy + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	return ParseRules(data)
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// compileRule compiles r case-insensitively.
func compileRule(r Rule) (compiledRule, error) {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w: rule %s: %w", ErrInvalidRules, r.Name, err)
	}
	return compiledRule{Rule: r, re: re}, nil
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// firstMatch returns the first rule matching text.
func firstMatch(rules []compiledRule, text string) (*Rule, bool) {
	for i := range rules {
		if rules[i].re.MatchString(text) {
			return &rules[i].Rule, true
		}
	}
	return nil, false
}
