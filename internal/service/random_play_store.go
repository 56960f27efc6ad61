package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quizbox/internal/cache"
	"quizbox/internal/domain"
	"quizbox/internal/logger"
	"time"

	"go.uber.org/zap"
)

// RandomPlayStore keeps the random play progress of each user session.
type RandomPlayStore interface {
	// Load returns an empty session when nothing is stored for sessionID.
	Load(ctx context.Context, sessionID string) (*domain.RandomPlaySession, error)
	Save(ctx context.Context, sessionID string, session *domain.RandomPlaySession) error
}

type randomPlayStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewRandomPlayStore stores sessions in c. ttl should match the user session
// expiration so the progress disappears together with the session.
func NewRandomPlayStore(c domain.Cache, ttl time.Duration) RandomPlayStore {
	return &randomPlayStoreImpl{cache: c, ttl: ttl}
}

func (s *randomPlayStoreImpl) Load(ctx context.Context, sessionID string) (*domain.RandomPlaySession, error) {
	if sessionID == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}
	key := cache.RandomPlayKey(sessionID)

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return domain.NewRandomPlaySession(), nil
		}
		logger.Get().Error("Failed to load random play session", zap.Error(err), zap.String("key", key))
		return nil, domain.NewCacheError(fmt.Sprintf("failed to load random play session for key %s", key), err)
	}
	if data == "" {
		return domain.NewRandomPlaySession(), nil
	}

	session := domain.NewRandomPlaySession()
	if err := json.Unmarshal([]byte(data), session); err != nil {
		// A corrupt entry only costs the user their progress.
		logger.Get().Warn("Discarding unreadable random play session", zap.Error(err), zap.String("key", key))
		return domain.NewRandomPlaySession(), nil
	}
	if session.AnsweredIDs == nil {
		session.AnsweredIDs = []string{}
	}
	// The user session slides on every request; keep the progress alive with it.
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		logger.Get().Warn("Failed to refresh random play session expiration", zap.Error(err), zap.String("key", key))
	}
	return session, nil
}

func (s *randomPlayStoreImpl) Save(ctx context.Context, sessionID string, session *domain.RandomPlaySession) error {
	if sessionID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	if session == nil {
		return domain.NewInvalidInputError("cannot store nil random play session")
	}
	key := cache.RandomPlayKey(sessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to marshal random play session", err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("Failed to save random play session", zap.Error(err), zap.String("key", key))
		return domain.NewCacheError(fmt.Sprintf("failed to save random play session for key %s", key), err)
	}
	logger.Get().Debug("Saved random play session", zap.String("key", key), zap.Int("score", session.Score()))
	return nil
}
