package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenStore registra los jti de refresh tokens vigentes. Un jti
// ausente se considera revocado: revocar es borrar.
type RefreshTokenStore interface {
	Store(jti, userID string, ttl time.Duration) error
	Exists(jti string) (bool, error)
	Revoke(jti string) error
}

const refreshStoreTimeout = 500 * time.Millisecond

// memoryRefreshTokenStore sirve para desarrollo y tests de un solo proceso.
type memoryRefreshTokenStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{expires: make(map[string]time.Time)}
}

func (s *memoryRefreshTokenStore) Store(jti, _ string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	// Barrido oportunista: los vencidos no esperan al proximo Exists.
	for key, exp := range s.expires {
		if now.After(exp) {
			delete(s.expires, key)
		}
	}
	s.expires[jti] = now.Add(ttl)
	return nil
}

func (s *memoryRefreshTokenStore) Exists(jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[jti]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(s.expires, jti)
		return false, nil
	}
	return true, nil
}

func (s *memoryRefreshTokenStore) Revoke(jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, jti)
	return nil
}

// redisRefreshTokenStore comparte los jti entre instancias; el TTL de la
// clave coincide con el del token, asi la revocacion implicita es gratis.
type redisRefreshTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{client: client, prefix: "auth:refresh:"}
}

func (s *redisRefreshTokenStore) key(jti string) (string, bool) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", false
	}
	return s.prefix + jti, true
}

func (s *redisRefreshTokenStore) Store(jti, userID string, ttl time.Duration) error {
	key, ok := s.key(jti)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshStoreTimeout)
	defer cancel()
	return s.client.Set(ctx, key, userID, ttl).Err()
}

func (s *redisRefreshTokenStore) Exists(jti string) (bool, error) {
	key, ok := s.key(jti)
	if !ok {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshStoreTimeout)
	defer cancel()
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRefreshTokenStore) Revoke(jti string) error {
	key, ok := s.key(jti)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshStoreTimeout)
	defer cancel()
	return s.client.Del(ctx, key).Err()
}
