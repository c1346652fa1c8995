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
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/storage"
)

// CheckpointRepository stores one progress marker per benchmark run.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

func NewCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{backend: backend}
}

// SaveCheckpoint records progress for checkpoint.RunID. Progress never moves
// backwards: a lower LastIndex than the stored one only refreshes UpdatedAt.
// The stored value is copied back into checkpoint.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	if err := core.ValidateCheckpoint(checkpoint); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(checkpoint.RunID)
		current, err := readCheckpoint(tx, key)
		if err != nil {
			return err
		}
		if current != nil && current.LastIndex > checkpoint.LastIndex {
			checkpoint.LastIndex = current.LastIndex
		}
		checkpoint.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalCheckpoint(checkpoint)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves the checkpoint for a run.
// Returns nil, nil if the run has none.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, runID string) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		checkpoint, err = readCheckpoint(tx, makeCheckpointKey(runID))
		return err
	}, false)
	return checkpoint, err
}

func readCheckpoint(tx *badger.Txn, key []byte) (*core.Checkpoint, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cp *core.Checkpoint
	err = item.Value(func(val []byte) error {
		cp, err = storage.UnmarshalCheckpoint(val)
		return err
	})
	return cp, err
}
