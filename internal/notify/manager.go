package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/id"
)

// Subscriber receives events of the types it asked for.
type Subscriber struct {
	SubscribedAt time.Time
	Events       chan Event
	Done         chan struct{}
	ID           string
	// Types filters delivery. Empty means every type.
	Types []EventType
}

func (s *Subscriber) wants(t EventType) bool {
	return len(s.Types) == 0 || slices.Contains(s.Types, t)
}

// Manager fans events out to subscribers.
type Manager struct {
	subscribers map[string]*Subscriber
	events      chan Event
	logger      *slog.Logger
	wg          sync.WaitGroup
	mu          sync.RWMutex

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		subscribers: make(map[string]*Subscriber),
		events:      make(chan Event, 1000),
		logger:      logger,
	}
}

// Start runs the broadcast loop until ctx is cancelled.
// Call it once, in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Debug("notify manager starting")

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				return
			}
			m.broadcast(event)

		case <-ctx.Done():
			m.logger.Debug("notify manager stopping")
			m.closeAll()
			return
		}
	}
}

// Shutdown stops accepting events, drains the queue and closes every
// subscriber.
func (m *Manager) Shutdown(ctx context.Context) error {
	// Mark and close under the write lock so Emit never sends on a closed
	// channel.
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return nil
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("notify drain timeout, some events may be lost")
	}

	m.wg.Wait()
	m.closeAll()
	return nil
}

func (m *Manager) broadcast(event Event) {
	var delivered, dropped int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		if !sub.wants(event.Type) {
			continue
		}
		// Slow subscribers lose events rather than stall the store.
		select {
		case sub.Events <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow subscriber",
				slog.String("subscriber_id", sub.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	m.logger.Debug("event broadcast",
		slog.String("event_type", string(event.Type)),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped)))
}

// Subscribe registers a subscriber for the given types (all when none).
func (m *Manager) Subscribe(types ...EventType) *Subscriber {
	sub := &Subscriber{
		ID:           id.MustGenerate(id.PrefixSubscriber),
		Types:        types,
		Events:       make(chan Event, 100),
		Done:         make(chan struct{}),
		SubscribedAt: time.Now(),
	}

	m.mu.Lock()
	m.subscribers[sub.ID] = sub
	total := len(m.subscribers)
	m.mu.Unlock()

	m.logger.Debug("subscriber added",
		slog.String("subscriber_id", sub.ID),
		slog.Int("total_subscribers", total))
	return sub
}

// Unsubscribe removes a subscriber and closes its channels.
func (m *Manager) Unsubscribe(subID string) {
	m.mu.Lock()
	sub, ok := m.subscribers[subID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.subscribers, subID)
	m.mu.Unlock()

	close(sub.Done)
	close(sub.Events)
}

// Emit queues an event. It never blocks; events are dropped after Shutdown
// or when the queue is full.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("notify queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// SubscriberCount returns the number of live subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscribers {
		close(sub.Done)
		close(sub.Events)
	}
	m.subscribers = make(map[string]*Subscriber)
}
