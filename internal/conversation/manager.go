package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Manager owns the live simulator sessions.
type Manager struct {
	credentials CredentialSource
	factory     ClientFactory
	publisher   TurnPublisher
	logger      *logging.Logger
	opts        []SessionOption

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session registry. Options are applied to every session it creates.
func NewManager(credentials CredentialSource, factory ClientFactory, publisher TurnPublisher, logger *logging.Logger, opts ...SessionOption) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		credentials: credentials,
		factory:     factory,
		publisher:   publisher,
		logger:      logger,
		opts:        opts,
		sessions:    make(map[string]*Session),
	}
}

// Create starts a new session and registers it. Nothing is registered when Start fails.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	session := NewSession("", m.credentials, m.factory, m.publisher, m.logger, m.opts...)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
	return session, nil
}

// Get returns a registered session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return session.Close()
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle closes and forgets every session inactive since before cutoff.
func (m *Manager) EvictIdle(cutoff time.Time) int {
	m.mu.Lock()
	var idle []*Session
	for id, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			idle = append(idle, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range idle {
		if err := session.Close(); err != nil {
			m.logger.Warn("failed to close idle session", "error", err, "session_id", session.ID())
		}
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle simulator sessions", "count", len(idle))
	}
	return len(idle)
}

// Run evicts sessions idle for longer than idleTTL until ctx is done.
// A non-positive idleTTL disables eviction.
func (m *Manager) Run(ctx context.Context, idleTTL time.Duration) {
	if idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval(idleTTL))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(time.Now().Add(-idleTTL))
		}
	}
}

func sweepInterval(idleTTL time.Duration) time.Duration {
	every := idleTTL / 2
	if every > 5*time.Minute {
		every = 5 * time.Minute
	}
	if every < time.Second {
		every = time.Second
	}
	return every
}

// Close releases every session's backend client.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, session := range sessions {
		if err := session.Close(); err != nil {
			m.logger.Warn("failed to close session", "error", err, "session_id", id)
		}
	}
}
