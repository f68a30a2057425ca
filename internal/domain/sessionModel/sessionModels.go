package sessionModel

import (
	"context"
	"time"
)

// Turn is one query/answer exchange. Turn order inside a session is always
// chronological and never reordered.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

type Session struct {
	Id        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore is the persistence behind the session manager. Implementations
// do not need to serialize same-session access themselves - the manager holds
// a per-session lock around every store call.
type SessionStore interface {
	Exists(ctx context.Context, sessionId string) bool
	Create(ctx context.Context, sessionId string) error
	// AppendTurn appends and evicts the oldest turns above maxTurns (FIFO).
	AppendTurn(ctx context.Context, sessionId string, turn Turn, maxTurns int) error
	History(ctx context.Context, sessionId string) ([]Turn, error)
	Clear(ctx context.Context, sessionId string) error
}
