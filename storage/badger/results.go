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


package badger

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/storage"
)

// ResultRepository implements storage.ResultRepository for BadgerDB.
type ResultRepository struct {
	backend *Backend
}

var _ storage.ResultRepository = (*ResultRepository)(nil)

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(backend *Backend) *ResultRepository {
	return &ResultRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database.
func (r *ResultRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ResultRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveResult stores one entry and marks the run as known.
func (r *ResultRepository) SaveResult(ctx context.Context, runID string, index int, entry *core.BenchmarkEntry) error {
	value, err := storage.MarshalBenchmarkEntry(entry)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeResultKey(runID, index), value); err != nil {
			return err
		}
		if err := tx.Set(makeRunKey(runID), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetResult retrieves one entry.
func (r *ResultRepository) GetResult(ctx context.Context, runID string, index int) (*core.BenchmarkEntry, error) {
	var entry *core.BenchmarkEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeResultKey(runID, index))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalBenchmarkEntry(val)
			return unmarshalErr
		})
	}, false)
	return entry, err
}

// GetResults retrieves all entries of a run.
func (r *ResultRepository) GetResults(ctx context.Context, runID string) (map[int]*core.BenchmarkEntry, error) {
	results := make(map[int]*core.BenchmarkEntry)
	prefix := makeRunResultsPrefix(runID)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.scanPrefix(tx, prefix, func(key, val []byte) error {
			index, ok := resultIndex(key, len(prefix))
			if !ok {
				return nil
			}
			entry, err := storage.UnmarshalBenchmarkEntry(val)
			if err != nil {
				return err
			}
			results[index] = entry
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SaveSummary stores the aggregate of a run.
func (r *ResultRepository) SaveSummary(ctx context.Context, runID string, summary *core.Summary) error {
	value, err := storage.MarshalSummary(summary)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSummaryKey(runID), value); err != nil {
			return err
		}
		if err := tx.Set(makeRunKey(runID), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSummary retrieves the aggregate of a run.
func (r *ResultRepository) GetSummary(ctx context.Context, runID string) (*core.Summary, error) {
	var summary *core.Summary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		summary, err = r.readSummary(tx, runID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, storage.ErrNotFound
	}
	return summary, nil
}

func (r *ResultRepository) readSummary(tx *badger.Txn, runID string) (*core.Summary, error) {
	item, err := tx.Get(makeSummaryKey(runID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var summary *core.Summary
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		summary, unmarshalErr = storage.UnmarshalSummary(val)
		return unmarshalErr
	})
	return summary, err
}

// ListRuns returns every known run.
func (r *ResultRepository) ListRuns(ctx context.Context) ([]storage.RunInfo, error) {
	var runs []storage.RunInfo
	prefix := []byte(runPrefix + ":")
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var ids []string
		err := r.backend.scanPrefix(tx, prefix, func(key, _ []byte) error {
			id, rest, ok := readComponent(bytes.TrimPrefix(key, prefix))
			if ok && len(rest) == 0 {
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, id := range ids {
			info := storage.RunInfo{RunID: id}
			err := r.backend.scanPrefix(tx, makeRunResultsPrefix(id), func(_, _ []byte) error {
				info.Entries++
				return nil
			})
			if err != nil {
				return err
			}
			if info.Summary, err = r.readSummary(tx, id); err != nil {
				return err
			}
			runs = append(runs, info)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(runs, func(a, b storage.RunInfo) int {
		return strings.Compare(a.RunID, b.RunID)
	})
	return runs, nil
}

// DeleteRun removes a run and everything stored for it.
// Returns ErrNotFound if the run is unknown.
func (r *ResultRepository) DeleteRun(ctx context.Context, runID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeRunKey(runID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if _, err := r.backend.deletePrefix(tx, makeRunResultsPrefix(runID)); err != nil {
			return err
		}
		for _, key := range [][]byte{makeSummaryKey(runID), makeRunKey(runID), makeCheckpointKey(runID)} {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
