package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/storage"
)

type hubEntry struct {
	hub    *Hub
	cancel context.CancelFunc
}

// Manager owns one hub per watched session, each fed by a pump reading
// the store's change feed
type Manager struct {
	store   storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	backoff time.Duration

	mu   sync.Mutex
	hubs map[model.SessionID]hubEntry
}

// NewManager creates a new feed Manager
func NewManager(store storage.Storage, clock clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		clock:   clock,
		logger:  logger.With(slog.String("component", "feed")),
		backoff: time.Second,
		hubs:    make(map[model.SessionID]hubEntry),
	}
}

// GetOrCreateHub returns the hub for a session, starting it and its
// pump if needed
func (m *Manager) GetOrCreateHub(id model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.hubs[id]; ok {
		return e.hub
	}

	hub := NewHub(id, m.logger)
	ctx, cancel := context.WithCancel(context.Background())
	p := &pump{
		store:   m.store,
		hub:     hub,
		clock:   m.clock,
		logger:  hub.logger,
		backoff: m.backoff,
	}
	ready := make(chan struct{})
	go hub.Run()
	go p.run(ctx, ready)
	// Clients registered after this point see every write
	<-ready

	m.hubs[id] = hubEntry{hub: hub, cancel: cancel}
	return hub
}

// GetHub returns the hub for a session, or nil if there is none
func (m *Manager) GetHub(id model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[id].hub
}

// Abandoned tells a session's clients that its record was discarded
func (m *Manager) Abandoned(ctx context.Context, id model.SessionID) {
	if hub := m.GetHub(id); hub != nil {
		hub.Broadcast(ctx, Message{Event: EventAbandoned})
	}
}

// RemoveHub stops a session's hub and pump
func (m *Manager) RemoveHub(id model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.hubs[id]; ok {
		e.cancel()
		e.hub.Close()
		delete(m.hubs, id)
		m.logger.Info("feed hub removed", slog.String("session_id", string(id)))
	}
}

// CleanupEmptyHubs stops hubs with no clients
func (m *Manager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.hubs {
		if e.hub.ClientCount() == 0 {
			e.cancel()
			e.hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("feed empty hubs cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// RunJanitor removes empty hubs every interval until ctx is cancelled
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-m.clock.After(interval):
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			return
		}
	}
}

// HubCount returns the number of live hubs
func (m *Manager) HubCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}

// Close stops every hub
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.hubs {
		e.cancel()
		e.hub.Close()
		delete(m.hubs, id)
	}
}
