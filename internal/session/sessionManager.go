package session

import (
	"context"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/google/uuid"
)

// Manager owns session identity and serializes same-session access. Distinct
// sessions proceed fully in parallel; two requests against one session id
// take turns via a per-session mutex.
type Manager struct {
	store    sessionModel.SessionStore
	maxTurns int
	logger   *logger_i.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func NewManager(store sessionModel.SessionStore) *Manager {
	return &Manager{
		store:    store,
		maxTurns: config.MaxSessionTurns,
		logger:   logger_i.NewLogger("SessionManager"),
		locks:    make(map[string]*sessionLock),
	}
}

// Lock serializes access to one session id and returns the unlock func.
// Lock entries are reference counted so the map does not grow with every
// session id ever seen.
func (m *Manager) Lock(sessionId string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionId]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionId] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Mutex.Lock()
	return func() {
		l.Mutex.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionId)
		}
		m.mu.Unlock()
	}
}

// GetOrCreate resolves the caller-supplied id to a live session. An empty id
// gets a freshly generated one; an unknown id is recreated under the same id
// so clients holding a stale id keep working.
func (m *Manager) GetOrCreate(ctx context.Context, sessionId string) (string, error) {
	log := m.logger.ForTrace(ctx)
	if sessionId == "" {
		sessionId = uuid.NewString()
		log.Debug("Generated new session id", "sessionId", sessionId)
		return sessionId, m.store.Create(ctx, sessionId)
	}
	if !m.store.Exists(ctx, sessionId) {
		log.Debug("Unknown session id, recreating", "sessionId", sessionId)
		return sessionId, m.store.Create(ctx, sessionId)
	}
	return sessionId, nil
}

func (m *Manager) History(ctx context.Context, sessionId string) ([]sessionModel.Turn, error) {
	return m.store.History(ctx, sessionId)
}

// RecordTurn appends under the session's FIFO window. Callers must hold the
// session lock across the read-generate-record span, not just this call.
func (m *Manager) RecordTurn(ctx context.Context, sessionId string, turn sessionModel.Turn) error {
	return m.store.AppendTurn(ctx, sessionId, turn, m.maxTurns)
}

func (m *Manager) Clear(ctx context.Context, sessionId string) error {
	return m.store.Clear(ctx, sessionId)
}

func (m *Manager) Exists(ctx context.Context, sessionId string) bool {
	return m.store.Exists(ctx, sessionId)
}
