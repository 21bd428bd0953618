// Package session содержит хранилище сессий поверх Redis.
// Обработчики читают из него идентификатор пользователя и дальше передают
// его явным параметром — компоненты не лезут в амбиентное состояние сами.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound возвращается для неизвестной или истекшей сессии.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store хранит сессии пользователей с TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore создает хранилище сессий поверх клиента Redis.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Create открывает новую сессию пользователя и возвращает ее идентификатор.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.New().String()
	if err := s.client.Set(ctx, keyPrefix+sid, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sid, nil
}

// UserID возвращает пользователя, владеющего сессией.
func (s *Store) UserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if userID == "" {
		return "", ErrNotFound
	}
	return userID, nil
}

// Delete закрывает сессию (logout).
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
