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
)

// EnvelopeField is the key of the output envelope.
const EnvelopeField = "generated_output"

// Outcome is the result of validating a piece of text.
type Outcome struct {
	Passed bool
	// ValidatedText is the accepted content; nil when nothing was accepted.
	ValidatedText *string
}

// Validator checks model output.
type Validator interface {
	Validate(ctx context.Context, text string) (Outcome, error)
}

// Wrap returns text inside the output envelope.
func Wrap(text string) string {
	b, _ := json.Marshal(map[string]string{EnvelopeField: text})
	return string(b)
}

// Result reports which path ValidateWithFallback took.
type Result struct {
	Text string
	// Rewrapped is set when the raw text failed and the envelope passed.
	Rewrapped bool
	// Err is set when both attempts failed and Text is the raw input.
	Err error
}

// ValidateWithFallback validates raw, then raw wrapped in the output
// envelope, and finally falls back to raw itself. Validator errors count as
// failed attempts; they never escape.
func ValidateWithFallback(ctx context.Context, v Validator, raw string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	out, err := v.Validate(ctx, raw)
	if err == nil && out.Passed && out.ValidatedText != nil {
		return Result{Text: *out.ValidatedText}
	}
	if err != nil {
		logger.Debug("validator error on raw text", "err", err)
	}

	out, err = v.Validate(ctx, Wrap(raw))
	if err == nil && out.Passed && out.ValidatedText != nil {
		return Result{Text: *out.ValidatedText, Rewrapped: true}
	}
	if err == nil {
		err = ErrValidationFailed
	} else {
		err = fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return Result{Text: raw, Err: err}
}

// PassthroughValidator accepts everything unchanged. Envelopes are unwrapped.
type PassthroughValidator struct{}

// Validate implements Validator.
func (PassthroughValidator) Validate(_ context.Context, text string) (Outcome, error) {
	if inner, ok := unwrap(text); ok {
		return Outcome{Passed: true, ValidatedText: &inner}, nil
	}
	return Outcome{Passed: true, ValidatedText: &text}, nil
}

func unwrap(text string) (string, bool) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &env); err != nil || len(env) != 1 {
		return "", false
	}
	raw, ok := env[EnvelopeField]
	if !ok {
		return "", false
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return "", false
	}
	return inner, true
}
