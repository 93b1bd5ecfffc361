package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/entities"
	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/telemetry"
	"github.com/satriahrh/voxtag/usecase"
)

// ErrSessionNotFound is returned for unknown, expired or terminated sessions
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	session  *entities.Session
	registry *usecase.Registry
}

// Manager owns one recording registry per session and drops idle sessions
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	storage     repositories.BlobStorage
	metrics     *telemetry.Metrics
	idleTimeout time.Duration
	onClose     func(sessionID string)
	logger      *zap.Logger

	stopChan  chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	done      chan struct{}
}

// NewManager creates a new session manager
func NewManager(storage repositories.BlobStorage, idleTimeout time.Duration, metrics *telemetry.Metrics, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*entry),
		storage:     storage,
		metrics:     metrics,
		idleTimeout: idleTimeout,
		logger:      logger,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// OnClose registers a callback run after a session is removed
func (m *Manager) OnClose(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = fn
}

// Create starts a new session with an empty registry
func (m *Manager) Create() entities.Session {
	s := entities.NewSession(m.idleTimeout)

	m.mu.Lock()
	m.sessions[s.ID] = &entry{
		session:  s,
		registry: usecase.NewRegistry(m.storage, m.metrics, m.logger.With(zap.String("sessionID", s.ID))),
	}
	m.mu.Unlock()

	m.logger.Info("Session created", zap.String("sessionID", s.ID))
	return *s
}

// Get returns the registry of an active session and extends its idle deadline
func (m *Manager) Get(sessionID string) (*usecase.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok || e.session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	e.session.UpdateLastActive()
	return e.registry, nil
}

// Session returns a snapshot of the session
func (m *Manager) Session(sessionID string) (entities.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return entities.Session{}, ErrSessionNotFound
	}
	return *e.session, nil
}

// Delete terminates a session and removes its recordings
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if ok {
		e.session.Terminate()
		delete(m.sessions, sessionID)
	}
	onClose := m.onClose
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	m.release(ctx, sessionID, e, onClose)
	m.logger.Info("Session terminated", zap.String("sessionID", sessionID))
	return nil
}

// ExpireIdle removes every session past its idle deadline and returns how
// many were removed
func (m *Manager) ExpireIdle(ctx context.Context) int {
	m.mu.Lock()
	expired := make(map[string]*entry)
	for id, e := range m.sessions {
		if e.session.IsExpired() {
			e.session.Expire()
			expired[id] = e
			delete(m.sessions, id)
		}
	}
	onClose := m.onClose
	m.mu.Unlock()

	for id, e := range expired {
		m.release(ctx, id, e, onClose)
	}
	return len(expired)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) release(ctx context.Context, sessionID string, e *entry, onClose func(string)) {
	e.registry.Clear(ctx)
	if onClose != nil {
		onClose(sessionID)
	}
}

// Start begins the background cleanup process
func (m *Manager) Start(interval time.Duration) {
	m.startOnce.Do(func() {
		m.mu.Lock()
		m.started = true
		m.mu.Unlock()

		go m.cleanupLoop(interval)
		m.logger.Info("Session cleanup started", zap.Duration("interval", interval))
	})
}

// Stop gracefully stops the cleanup loop
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
		m.logger.Info("Session cleanup stopped")
	})
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runCleanup()
		}
	}
}

func (m *Manager) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if n := m.ExpireIdle(ctx); n > 0 {
		m.logger.Info("Expired idle sessions", zap.Int("count", n))
	}
}
