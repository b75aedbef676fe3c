package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 24 * time.Hour

// Sessions guarda "session:{token}" => id do usuário no Redis
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string { return "session:" + token }

// Create emite um token opaco
func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Lookup devolve ErrUnauthenticated para token desconhecido ou expirado
func (s *Sessions) Lookup(ctx context.Context, token string) (string, error) {
	id, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return id, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
