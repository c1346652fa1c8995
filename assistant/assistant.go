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


// Package assistant answers learner prompts in a conversation, keeping a
// per-session history of turns.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/guard"
	"github.com/poiesic/cyberbench/storage"
)

const (
	// ClearHistoryCommand wipes the session history when sent as a prompt.
	ClearHistoryCommand = "CLEAR_HISTORY"

	// HistoryCleared is the reply to ClearHistoryCommand.
	HistoryCleared = "✅ Your chat history has been cleared."

	// DefaultHistoryTurns is how many prior messages are replayed in a prompt.
	DefaultHistoryTurns = 10
)

// Sanitizer screens a prompt before it reaches the model.
type Sanitizer interface {
	Sanitize(prompt string) (string, error)
}

// Assistant is the live conversation path. It is safe for concurrent use
// across sessions; concurrent prompts in one session may interleave turns.
type Assistant struct {
	generator    ai.Generator
	validator    guard.Validator
	sanitizer    Sanitizer
	turns        storage.TurnRepository
	historyTurns int
	logger       *slog.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithHistoryTurns sets how many prior messages are replayed.
// Default is DefaultHistoryTurns; zero replays none.
func WithHistoryTurns(n int) Option {
	return func(a *Assistant) {
		if n >= 0 {
			a.historyTurns = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssistant creates an assistant from its collaborators.
func NewAssistant(generator ai.Generator, validator guard.Validator, sanitizer Sanitizer, turns storage.TurnRepository, opts ...Option) (*Assistant, error) {
	switch {
	case generator == nil:
		return nil, ErrGeneratorRequired
	case validator == nil:
		return nil, ErrValidatorRequired
	case sanitizer == nil:
		return nil, ErrSanitizerRequired
	case turns == nil:
		return nil, ErrTurnRepositoryRequired
	}

	a := &Assistant{
		generator:    generator,
		validator:    validator,
		sanitizer:    sanitizer,
		turns:        turns,
		historyTurns: DefaultHistoryTurns,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "assistant")
	return a, nil
}

// Ask answers prompt within session. The prompt is sanitized and
// pre-checked, the recent history is replayed to the model and the answer
// is validated with fallback. Both the prompt and the answer are appended
// to the session history.
func (a *Assistant) Ask(ctx context.Context, session, prompt string) (string, error) {
	if session == "" {
		return "", ErrSessionRequired
	}
	logger := a.logger.With("session", session)

	prompt, err := a.sanitizer.Sanitize(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", core.ErrEmptyContent
	}

	pre, err := a.validator.Validate(ctx, guard.Wrap(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPromptRejected, err)
	}
	if !pre.Passed {
		logger.Warn("prompt rejected by pre-check")
		return "", ErrPromptRejected
	}

	if strings.ToUpper(strings.TrimSpace(prompt)) == ClearHistoryCommand {
		if err := a.turns.ClearSession(ctx, session); err != nil {
			return "", fmt.Errorf("clear history: %w", err)
		}
		logger.Info("history cleared")
		return HistoryCleared, nil
	}

	history, err := a.recent(ctx, session)
	if err != nil {
		return "", err
	}

	raw, err := a.generator.Generate(ctx, ai.ConversationPrompt(history, prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	result := guard.ValidateWithFallback(ctx, a.validator, raw, logger)
	if result.Err != nil {
		logger.Warn("answer failed validation, returning raw text", "err", result.Err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("%w: empty answer", ErrGenerationFailed)
	}

	now := time.Now().UTC()
	err = a.turns.AppendTurns(ctx,
		&core.Turn{Session: session, Speaker: core.SpeakerTypeHuman, Message: prompt, Timestamp: now},
		&core.Turn{Session: session, Speaker: core.SpeakerTypeAI, Message: result.Text, Timestamp: now},
	)
	if err != nil {
		return "", fmt.Errorf("append history: %w", err)
	}
	return result.Text, nil
}

// History returns every turn of session, oldest first.
func (a *Assistant) History(ctx context.Context, session string) ([]*core.Turn, error) {
	if session == "" {
		return nil, ErrSessionRequired
	}
	return a.turns.History(ctx, session)
}

func (a *Assistant) recent(ctx context.Context, session string) ([]ai.Exchange, error) {
	if a.historyTurns == 0 {
		return nil, nil
	}
	turns, err := a.turns.RecentTurns(ctx, session, a.historyTurns)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	exchanges := make([]ai.Exchange, len(turns))
	for i, t := range turns {
		exchanges[i] = ai.Exchange{Role: t.Speaker.Label(), Message: t.Message}
	}
	return exchanges, nil
}
