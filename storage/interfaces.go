package storage

import (
	"context"

	"github.com/poiesic/cyberbench/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// RunInfo describes a stored benchmark run.
type RunInfo struct {
	RunID   string
	Entries int
	Summary *core.Summary // nil until the run has been summarized
}

// ResultRepository stores benchmark entries per run.
type ResultRepository interface {
	Repository
	// SaveResult stores the entry recorded for dataset position index of a run.
	// Saving the same position again replaces it.
	SaveResult(ctx context.Context, runID string, index int, entry *core.BenchmarkEntry) error

	// GetResult retrieves one entry.
	// Returns ErrNotFound if the entry doesn't exist.
	GetResult(ctx context.Context, runID string, index int) (*core.BenchmarkEntry, error)

	// GetResults retrieves all entries of a run keyed by dataset position.
	GetResults(ctx context.Context, runID string) (map[int]*core.BenchmarkEntry, error)

	// SaveSummary stores the aggregate of a run.
	SaveSummary(ctx context.Context, runID string, summary *core.Summary) error

	// GetSummary retrieves the aggregate of a run.
	// Returns ErrNotFound if the run has no summary.
	GetSummary(ctx context.Context, runID string) (*core.Summary, error)

	// ListRuns returns every run with at least one stored entry or summary,
	// ordered by run ID.
	ListRuns(ctx context.Context) ([]RunInfo, error)

	// DeleteRun removes all entries, the summary and the run marker.
	DeleteRun(ctx context.Context, runID string) error
}

// CheckpointRepository tracks progress of resumable runs.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, setting UpdatedAt.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a run.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, runID string) (*core.Checkpoint, error)
}

// TurnRepository stores assistant conversation turns per session.
type TurnRepository interface {
	Repository
	// AppendTurns appends turns to their sessions in the given order.
	AppendTurns(ctx context.Context, turns ...*core.Turn) error

	// RecentTurns returns up to limit of the latest turns of a session,
	// oldest first.
	RecentTurns(ctx context.Context, session string, limit int) ([]*core.Turn, error)

	// History returns every turn of a session, oldest first.
	History(ctx context.Context, session string) ([]*core.Turn, error)

	// ClearSession removes every turn of a session.
	ClearSession(ctx context.Context, session string) error
}
