package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

const sinkTimeout = 5 * time.Second

type keyed interface {
	Key() domain.EntityID
}

// Sink writes through every change of a repository partition. Failures are
// logged; the in-memory mirror stays authoritative for the session.
type Sink[T keyed] struct {
	entity *Entity[T]
	logger *slog.Logger
}

// EventSink returns a sink persisting fallback events.
func (m *DB) EventSink() *Sink[domain.Event] {
	return &Sink[domain.Event]{entity: m.Events, logger: m.logger}
}

// TaskSink returns a sink persisting fallback tasks.
func (m *DB) TaskSink() *Sink[domain.Task] {
	return &Sink[domain.Task]{entity: m.Tasks, logger: m.logger}
}

// Save persists item.
func (s *Sink[T]) Save(item T) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.entity.Put(ctx, item.Key().String(), &item); err != nil && s.logger != nil {
		s.logger.Warn("mirror write failed",
			slog.String("key", s.entity.prefix+item.Key().String()),
			slog.String("error", err.Error()))
	}
}

// Delete removes the record with id.
func (s *Sink[T]) Delete(id domain.EntityID) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.entity.Delete(ctx, id.String()); err != nil && s.logger != nil {
		s.logger.Warn("mirror delete failed",
			slog.String("key", s.entity.prefix+id.String()),
			slog.String("error", err.Error()))
	}
}

// SaveToken persists the session token.
func (m *DB) SaveToken(_ context.Context, token string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyToken), []byte(token)); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		return nil
	})
}

// LoadToken returns the persisted token, or "" when none is stored.
func (m *DB) LoadToken(_ context.Context) (string, error) {
	var token string
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyToken))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load token: %w", err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		token = string(val)
		return nil
	})
	return token, err
}

// ClearToken forgets the persisted token.
func (m *DB) ClearToken(_ context.Context) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyToken))
	})
}
