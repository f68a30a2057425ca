package sessionStore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/data/redisStore"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// RedisSessionStore keeps each session as a pair of keys: a marker key
// holding the creation time and a list key holding the turns newest-last.
// FIFO eviction is an LTRIM on append.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSessionStore returns nil when redis is unreachable; the caller
// falls back to the in-memory store.
func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	store := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if store == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

// NewTestSessionStore wires an externally built redis store, for tests.
func NewTestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func turnsKey(id string) string {
	return "session:" + id + ":turns"
}

func (s *RedisSessionStore) Exists(ctx context.Context, sessionId string) bool {
	found, err := s.store.Exists(ctx, sessionKey(sessionId))
	if err != nil {
		s.logger.ForTrace(ctx).Error("Failed to check session", "sessionId", sessionId, "err", err)
		return false
	}
	return found
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionId string) error {
	log := s.logger.ForTrace(ctx)
	log.Debug("Creating session", "sessionId", sessionId)
	if err := s.store.Del(ctx, turnsKey(sessionId)); err != nil {
		return err
	}
	return s.store.Set(ctx, sessionKey(sessionId), time.Now().UTC().Format(time.RFC3339), config.RedisSessionTTL)
}

func (s *RedisSessionStore) AppendTurn(ctx context.Context, sessionId string, turn sessionModel.Turn, maxTurns int) error {
	log := s.logger.ForTrace(ctx)
	data, err := json.Marshal(turn)
	if err != nil {
		log.Error("Error marshalling turn", "err", err)
		return err
	}
	if err := s.store.ListPush(ctx, turnsKey(sessionId), data); err != nil {
		log.Error("Error saving turn", "sessionId", sessionId, "err", err)
		return err
	}
	if err := s.store.ListTrimTail(ctx, turnsKey(sessionId), maxTurns); err != nil {
		return err
	}
	return s.store.Expire(ctx, turnsKey(sessionId), config.RedisSessionTTL)
}

func (s *RedisSessionStore) History(ctx context.Context, sessionId string) ([]sessionModel.Turn, error) {
	raw, err := s.store.ListGetAll(ctx, turnsKey(sessionId))
	if err != nil {
		return nil, err
	}
	turns := make([]sessionModel.Turn, 0, len(raw))
	for _, entry := range raw {
		var turn sessionModel.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			s.logger.ForTrace(ctx).Error("Skipping corrupt turn entry", "sessionId", sessionId, "err", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionId string) error {
	s.logger.ForTrace(ctx).Debug("Clearing session", "sessionId", sessionId)
	return s.store.Del(ctx, sessionKey(sessionId), turnsKey(sessionId))
}
