package mirror

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/dgraph-io/badger/v4"

	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

// envelope keeps insertion order next to the value; Badger iterates by key.
type envelope[T any] struct {
	Seq   uint64 `json:"seq"`
	Value T      `json:"value"`
}

// Entity provides ordered CRUD over one record type.
type Entity[T any] struct {
	db     *DB
	prefix string
	seq    *badger.Sequence
}

func newEntity[T any](m *DB, prefix string) (*Entity[T], error) {
	seq, err := m.db.GetSequence([]byte(prefixSeq+prefix), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to open sequence for %s: %w", prefix, err)
	}
	return &Entity[T]{db: m, prefix: prefix, seq: seq}, nil
}

// Put creates or replaces the record with id. A replaced record keeps its
// original position.
func (e *Entity[T]) Put(ctx context.Context, id string, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(e.prefix + id)

	return e.db.db.Update(func(txn *badger.Txn) error {
		env := envelope[T]{Value: *v}

		item, err := txn.Get(key)
		switch {
		case err == nil:
			var old envelope[T]
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			env.Seq = old.Seq
		case errors.Is(err, badger.ErrKeyNotFound):
			if env.Seq, err = e.seq.Next(); err != nil {
				return fmt.Errorf("failed to allocate sequence: %w", err)
			}
		default:
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to marshal entity: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return nil
	})
}

// Get retrieves a record by id.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var env envelope[T]
	err := e.db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.NotFoundf("%s%s not found", e.prefix, id)
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		return nil, err
	}
	return &env.Value, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// all iterates over the records in key order.
func (e *Entity[T]) all(ctx context.Context) iter.Seq2[envelope[T], error] {
	return func(yield func(envelope[T], error) bool) {
		_ = e.db.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(envelope[T]{}, err)
					return err
				}

				var env envelope[T]
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &env)
				})
				if err != nil {
					yield(envelope[T]{}, err)
					return err
				}
				if !yield(env, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// List returns every record in insertion order.
func (e *Entity[T]) List(ctx context.Context) ([]T, error) {
	var envs []envelope[T]
	for env, err := range e.all(ctx) {
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}

	slices.SortFunc(envs, func(a, b envelope[T]) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	out := make([]T, len(envs))
	for i, env := range envs {
		out[i] = env.Value
	}
	return out, nil
}

// Count returns the number of records.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	n := 0
	for _, err := range e.all(ctx) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// Clear removes every record of this type.
func (e *Entity[T]) Clear() error {
	if err := e.db.db.DropPrefix([]byte(e.prefix)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", e.prefix, err)
	}
	return nil
}
