package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cyberbench/core"
	"github.com/poiesic/cyberbench/storage"
)

// TurnRepository implements storage.TurnRepository for BadgerDB.
type TurnRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TurnRepository = (*TurnRepository)(nil)

// NewTurnRepository creates a new TurnRepository.
func NewTurnRepository(backend *Backend) (*TurnRepository, error) {
	idSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		return nil, err
	}

	return &TurnRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the sequence.
func (r *TurnRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *TurnRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendTurns adds turns to storage. Turns without a timestamp are stamped
// with the current time; the sequence keeps same-instant turns in order.
func (r *TurnRepository) AppendTurns(ctx context.Context, turns ...*core.Turn) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
			if turn.Timestamp.IsZero() {
				turn.Timestamp = time.Now().UTC()
			}
			if err := core.ValidateTurn(turn); err != nil {
				return err
			}

			seq, err := r.idSeq.Next()
			if err != nil {
				return err
			}

			value, err := storage.MarshalTurn(turn)
			if err != nil {
				return err
			}
			if err := tx.Set(makeTurnKey(turn.Session, turn.Timestamp, seq), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// RecentTurns retrieves the latest turns of a session, oldest first.
func (r *TurnRepository) RecentTurns(ctx context.Context, session string, limit int) ([]*core.Turn, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent turns first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makeSessionPrefix(session)
		// Seek past the last possible key of the session
		startKey := append(slices.Clone(prefix), bytes.Repeat([]byte{0xff}, 16)...)

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var turn *core.Turn
			if err := item.Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, turn)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Reverse(results)
	return results, nil
}

// History retrieves every turn of a session, oldest first.
func (r *TurnRepository) History(ctx context.Context, session string) ([]*core.Turn, error) {
	var results []*core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.scanPrefix(tx, makeSessionPrefix(session), func(_, val []byte) error {
			turn, err := storage.UnmarshalTurn(val)
			if err != nil {
				return err
			}
			results = append(results, turn)
			return nil
		})
	}, false)
	return results, err
}

// ClearSession removes every turn of a session.
func (r *TurnRepository) ClearSession(ctx context.Context, session string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := r.backend.deletePrefix(tx, makeSessionPrefix(session)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
