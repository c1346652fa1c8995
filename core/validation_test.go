package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidateTurn(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		turn    *Turn
		wantErr error
	}{
		{
			name: "valid turn",
			turn: &Turn{
				Session:   "s1",
				Speaker:   SpeakerTypeHuman,
				Message:   "What is XSS?",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid assistant turn",
			turn: &Turn{
				Session:   "s1",
				Speaker:   SpeakerTypeAI,
				Message:   "Cross-site scripting is...",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil turn",
			turn:    nil,
			wantErr: ErrInvalidTurn,
		},
		{
			name: "empty session",
			turn: &Turn{
				Speaker:   SpeakerTypeHuman,
				Message:   "Hello",
				Timestamp: validTime,
			},
			wantErr: ErrEmptySession,
		},
		{
			name: "empty message",
			turn: &Turn{
				Session:   "s1",
				Speaker:   SpeakerTypeHuman,
				Message:   "",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "invalid speaker type",
			turn: &Turn{
				Session:   "s1",
				Speaker:   SpeakerType(999),
				Message:   "Hello",
				Timestamp: validTime,
			},
			wantErr: ErrInvalidSpeakerType,
		},
		{
			name: "future timestamp",
			turn: &Turn{
				Session:   "s1",
				Speaker:   SpeakerTypeHuman,
				Message:   "Hello",
				Timestamp: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.turn)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTurn() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateTurn() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTurn() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDatasetEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *DatasetEntry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &DatasetEntry{ID: "1", Instruction: "Describe", Output: `{"a":"b"}`},
			wantErr: nil,
		},
		{
			name:    "valid entry without id",
			entry:   &DatasetEntry{Output: "text"},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidDatasetEntry,
		},
		{
			name:    "empty output",
			entry:   &DatasetEntry{ID: "1", Instruction: "Describe"},
			wantErr: ErrEmptyOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetEntry(tt.entry)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDatasetEntry() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDatasetEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateScoreReport(t *testing.T) {
	tests := []struct {
		name    string
		report  ScoreReport
		wantErr bool
	}{
		{
			name:    "all zero",
			report:  ScoreReport{},
			wantErr: false,
		},
		{
			name:    "all one",
			report:  ScoreReport{1, 1, 1, 1, 1},
			wantErr: false,
		},
		{
			name:    "negative",
			report:  ScoreReport{Relevance: -0.1},
			wantErr: true,
		},
		{
			name:    "above one",
			report:  ScoreReport{Composite: 1.01},
			wantErr: true,
		},
		{
			name:    "NaN",
			report:  ScoreReport{Accuracy: math.NaN()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScoreReport(&tt.report)
			if tt.wantErr != (err != nil) {
				t.Errorf("ValidateScoreReport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidScore) {
				t.Errorf("ValidateScoreReport() error = %v, want %v", err, ErrInvalidScore)
			}
		})
	}
}

func TestValidateSpeakerType(t *testing.T) {
	tests := []struct {
		name    string
		speaker SpeakerType
		wantErr bool
	}{
		{
			name:    "human speaker",
			speaker: SpeakerTypeHuman,
			wantErr: false,
		},
		{
			name:    "AI speaker",
			speaker: SpeakerTypeAI,
			wantErr: false,
		},
		{
			name:    "invalid speaker (0)",
			speaker: SpeakerType(0),
			wantErr: true,
		},
		{
			name:    "invalid speaker (999)",
			speaker: SpeakerType(999),
			wantErr: true,
		},
		{
			name:    "invalid speaker (-1)",
			speaker: SpeakerType(-1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpeakerType(tt.speaker)

			if tt.wantErr && err == nil {
				t.Error("ValidateSpeakerType() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSpeakerType() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidSpeakerType) {
				t.Errorf("ValidateSpeakerType() error = %v, want %v", err, ErrInvalidSpeakerType)
			}
		})
	}
}

func TestValidateCheckpoint(t *testing.T) {
	tests := []struct {
		name    string
		cp      *Checkpoint
		wantErr bool
	}{
		{"valid", &Checkpoint{RunID: "run-1", LastIndex: 3}, false},
		{"first entry", &Checkpoint{RunID: "run-1"}, false},
		{"nil", nil, true},
		{"no run id", &Checkpoint{LastIndex: 1}, true},
		{"negative index", &Checkpoint{RunID: "run-1", LastIndex: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckpoint(tt.cp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCheckpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCheckpoint) {
				t.Errorf("ValidateCheckpoint() error = %v, want %v", err, ErrInvalidCheckpoint)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "current time (approximately)",
			ts:   time.Now(),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
