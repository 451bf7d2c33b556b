// Package mirror persists the fallback mirror and the session token in an
// embedded Badger database so that offline state survives restarts.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

const (
	prefixEvent = "event:"
	prefixTask  = "task:"
	prefixSeq   = "seq:"

	keySeeded = "meta:seeded"
	keyToken  = "meta:session_token"
)

// DB wraps a Badger database instance.
type DB struct {
	db     *badger.DB
	logger *slog.Logger

	Events *Entity[domain.Event]
	Tasks  *Entity[domain.Task]
}

// Open opens the mirror at path, or an in-memory database when inMemory is
// set.
func Open(path string, inMemory bool, logger *slog.Logger) (*DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // The mirror is small; favour durability

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	m := &DB{db: db, logger: logger}

	if m.Events, err = newEntity[domain.Event](m, prefixEvent); err != nil {
		_ = db.Close()
		return nil, err
	}
	if m.Tasks, err = newEntity[domain.Task](m, prefixTask); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Debug("mirror opened", "path", path, "in_memory", inMemory)
	}
	return m, nil
}

// Close releases the sequences and closes the database.
func (m *DB) Close() error {
	var errs []error
	for _, seq := range []*badger.Sequence{m.Events.seq, m.Tasks.seq} {
		if err := seq.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load returns the persisted mirror. ok is false when the mirror has never
// been seeded.
func (m *DB) Load(ctx context.Context) (events []domain.Event, tasks []domain.Task, ok bool, err error) {
	seeded, err := m.has(keySeeded)
	if err != nil || !seeded {
		return nil, nil, false, err
	}
	if events, err = m.Events.List(ctx); err != nil {
		return nil, nil, false, fmt.Errorf("load events: %w", err)
	}
	if tasks, err = m.Tasks.List(ctx); err != nil {
		return nil, nil, false, fmt.Errorf("load tasks: %w", err)
	}
	return events, tasks, true, nil
}

// Seed replaces the persisted mirror with the given collections and marks it
// as seeded.
func (m *DB) Seed(ctx context.Context, events []domain.Event, tasks []domain.Task) error {
	if err := m.Events.Clear(); err != nil {
		return err
	}
	if err := m.Tasks.Clear(); err != nil {
		return err
	}
	for i := range events {
		if err := m.Events.Put(ctx, events[i].ID.String(), &events[i]); err != nil {
			return fmt.Errorf("seed event %s: %w", events[i].ID, err)
		}
	}
	for i := range tasks {
		if err := m.Tasks.Put(ctx, tasks[i].ID.String(), &tasks[i]); err != nil {
			return fmt.Errorf("seed task %s: %w", tasks[i].ID, err)
		}
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySeeded), []byte("1"))
	})
}

// Reset forgets the persisted mirror so that the next start seeds again.
func (m *DB) Reset() error {
	if err := m.Events.Clear(); err != nil {
		return err
	}
	if err := m.Tasks.Clear(); err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keySeeded))
	})
}

func (m *DB) has(key string) (bool, error) {
	err := m.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key: %w", err)
	}
	return true, nil
}
