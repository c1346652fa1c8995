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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const envelopeSchema = `{
  "type": "object",
  "required": ["generated_output"],
  "properties": {
    "generated_output": { "type": "string" }
  },
  "additionalProperties": false
}`

// SchemaValidator accepts text that is a valid output envelope whose content
// matches no output rule.
type SchemaValidator struct {
	schema *jsonschema.Schema
	rules  []compiledRule
	logger *slog.Logger
}

// SchemaOption configures a SchemaValidator.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	rules  *RuleSet
	logger *slog.Logger
}

// WithOutputRules replaces the embedded output rule table.
func WithOutputRules(rs *RuleSet) SchemaOption {
	return func(c *schemaConfig) {
		c.rules = rs
	}
}

// WithValidatorLogger sets the logger.
func WithValidatorLogger(logger *slog.Logger) SchemaOption {
	return func(c *schemaConfig) {
		c.logger = logger
	}
}

// NewSchemaValidator compiles the envelope schema and output rules.
func NewSchemaValidator(opts ...SchemaOption) (*SchemaValidator, error) {
	cfg := &schemaConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rules == nil {
		rs, err := DefaultRules(PolicyOutput)
		if err != nil {
			return nil, err
		}
		cfg.rules = rs
	}

	schema, err := jsonschema.CompileString("generated_output.json", envelopeSchema)
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	rules, err := compileRules(cfg.rules.Rules)
	if err != nil {
		return nil, err
	}
	return &SchemaValidator{
		schema: schema,
		rules:  rules,
		logger: cfg.logger.With("component", "validator"),
	}, nil
}

// Validate implements Validator. Text that is not an envelope fails without
// error.
func (v *SchemaValidator) Validate(ctx context.Context, text string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Outcome{}, nil
	}
	if err := v.schema.Validate(doc); err != nil {
		v.logger.Debug("envelope rejected", "err", err)
		return Outcome{}, nil
	}

	content := doc.(map[string]any)[EnvelopeField].(string)
	if rule, ok := firstMatch(v.rules, content); ok {
		v.logger.Warn("output rejected", "rule", rule.Name, "category", rule.Category)
		return Outcome{}, nil
	}
	return Outcome{Passed: true, ValidatedText: &content}, nil
}
