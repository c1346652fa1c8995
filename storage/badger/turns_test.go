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
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnRepository(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	repo := repos.Turns
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 6; i++ {
		speaker := core.SpeakerTypeHuman
		if i%2 == 1 {
			speaker = core.SpeakerTypeAI
		}
		require.NoError(t, repo.AppendTurns(ctx, &core.Turn{
			Session:   "alice",
			Speaker:   speaker,
			Message:   fmt.Sprintf("m%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.AppendTurns(ctx, &core.Turn{Session: "alice:2", Speaker: core.SpeakerTypeHuman, Message: "other"}))

	t.Run("history in order", func(t *testing.T) {
		turns, err := repo.History(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, turns, 6)
		for i, turn := range turns {
			assert.Equal(t, fmt.Sprintf("m%d", i), turn.Message)
		}
	})

	t.Run("recent is oldest first", func(t *testing.T) {
		turns, err := repo.RecentTurns(ctx, "alice", 4)
		require.NoError(t, err)
		require.Len(t, turns, 4)
		assert.Equal(t, "m2", turns[0].Message)
		assert.Equal(t, "m5", turns[3].Message)
	})

	t.Run("recent with larger limit", func(t *testing.T) {
		turns, err := repo.RecentTurns(ctx, "alice", 100)
		require.NoError(t, err)
		assert.Len(t, turns, 6)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := repo.RecentTurns(ctx, "alice", 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("same timestamp keeps insertion order", func(t *testing.T) {
		ts := base.Add(time.Minute)
		require.NoError(t, repo.AppendTurns(ctx,
			&core.Turn{Session: "bob", Speaker: core.SpeakerTypeHuman, Message: "question", Timestamp: ts},
			&core.Turn{Session: "bob", Speaker: core.SpeakerTypeAI, Message: "answer", Timestamp: ts},
		))
		turns, err := repo.History(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "question", turns[0].Message)
		assert.Equal(t, "answer", turns[1].Message)
	})

	t.Run("invalid turn", func(t *testing.T) {
		err := repo.AppendTurns(ctx, &core.Turn{Session: "bob", Speaker: core.SpeakerTypeHuman})
		assert.ErrorIs(t, err, core.ErrInvalidTurn)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, repo.ClearSession(ctx, "alice"))
		turns, err := repo.History(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, turns)

		other, err := repo.History(ctx, "alice:2")
		require.NoError(t, err)
		assert.Len(t, other, 1)
	})
}
