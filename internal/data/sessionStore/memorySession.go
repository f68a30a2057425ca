package sessionStore

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
)

// InMemorySessionStore is the fallback when redis is offline. Sessions do
// not survive a restart.
type InMemorySessionStore struct {
	lock     *sync.RWMutex
	sessions map[string]*sessionModel.Session
}

func InitSessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		lock:     new(sync.RWMutex),
		sessions: make(map[string]*sessionModel.Session),
	}
}

func (store *InMemorySessionStore) Exists(ctx context.Context, sessionId string) bool {
	store.lock.RLock()
	defer store.lock.RUnlock()
	_, ok := store.sessions[sessionId]
	return ok
}

func (store *InMemorySessionStore) Create(ctx context.Context, sessionId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.sessions[sessionId] = &sessionModel.Session{
		Id:        sessionId,
		Turns:     make([]sessionModel.Turn, 0),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (store *InMemorySessionStore) AppendTurn(ctx context.Context, sessionId string, turn sessionModel.Turn, maxTurns int) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	session, ok := store.sessions[sessionId]
	if !ok {
		session = &sessionModel.Session{Id: sessionId, CreatedAt: time.Now().UTC()}
		store.sessions[sessionId] = session
	}
	session.Turns = append(session.Turns, turn)
	if len(session.Turns) > maxTurns {
		session.Turns = session.Turns[len(session.Turns)-maxTurns:]
	}
	return nil
}

func (store *InMemorySessionStore) History(ctx context.Context, sessionId string) ([]sessionModel.Turn, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	session, ok := store.sessions[sessionId]
	if !ok {
		return []sessionModel.Turn{}, nil
	}
	turns := make([]sessionModel.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns, nil
}

func (store *InMemorySessionStore) Clear(ctx context.Context, sessionId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	delete(store.sessions, sessionId)
	return nil
}
