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


package core

import (
	"fmt"
	"math"
	"time"
)

// ValidateDatasetEntry validates a DatasetEntry according to domain rules.
//
// Validation rules:
//   - Output must not be empty
//
// NOT validated:
//   - ID (the loader assigns a placeholder when missing)
//   - Instruction and Input (either may be empty)
func ValidateDatasetEntry(entry *DatasetEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidDatasetEntry)
	}

	if entry.Output == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDatasetEntry, ErrEmptyOutput)
	}

	return nil
}

// ValidateTurn validates a Turn according to domain rules.
//
// Validation rules:
//   - Session must not be empty
//   - Message must not be empty
//   - SpeakerType must be valid (Human or AI)
//   - Timestamp must not be in the future
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Session == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptySession)
	}

	if turn.Message == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}

	if err := ValidateSpeakerType(turn.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	if !IsValidTimestamp(turn.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateScoreReport checks that every score lies in [0, 1].
func ValidateScoreReport(r *ScoreReport) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"relevance", r.Relevance},
		{"accuracy", r.Accuracy},
		{"completeness_score", r.CompletenessScore},
		{"semantic_similarity", r.SemanticSimilarity},
		{"composite", r.Composite},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < 0 || c.value > 1 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidScore, c.name, c.value)
		}
	}
	return nil
}

// ValidateCheckpoint checks that a checkpoint names a run and a dataset index.
func ValidateCheckpoint(cp *Checkpoint) error {
	if cp == nil {
		return fmt.Errorf("%w: checkpoint is nil", ErrInvalidCheckpoint)
	}
	if cp.RunID == "" {
		return fmt.Errorf("%w: run id is empty", ErrInvalidCheckpoint)
	}
	if cp.LastIndex < 0 {
		return fmt.Errorf("%w: last index %d", ErrInvalidCheckpoint, cp.LastIndex)
	}
	return nil
}

// ValidateSpeakerType validates that a SpeakerType has a valid value.
func ValidateSpeakerType(speaker SpeakerType) error {
	if speaker != SpeakerTypeHuman && speaker != SpeakerTypeAI {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeakerType, speaker)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
