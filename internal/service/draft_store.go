package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"twin-llm/internal/domain"
)

// DraftTTL limita la vida de una sesion de onboarding abandonada.
const DraftTTL = 24 * time.Hour

// DraftStore persiste el borrador de onboarding por id de sesion emitido
// por el servidor. Reemplaza el sessionStorage del navegador: sobrevive
// recargas, no sobrevive a una sesion nueva.
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (domain.DraftProfile, bool, error)
	Save(ctx context.Context, sessionID string, draft domain.DraftProfile) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]memoryDraftEntry
}

type memoryDraftEntry struct {
	draft     domain.DraftProfile
	expiresAt time.Time
}

func NewMemoryDraftStore() DraftStore {
	return &memoryDraftStore{drafts: make(map[string]memoryDraftEntry)}
}

func (s *memoryDraftStore) Get(_ context.Context, sessionID string) (domain.DraftProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[sessionID]
	if !ok {
		return domain.DraftProfile{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.drafts, sessionID)
		return domain.DraftProfile{}, false, nil
	}
	return entry.draft, true, nil
}

func (s *memoryDraftStore) Save(_ context.Context, sessionID string, draft domain.DraftProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionID] = memoryDraftEntry{
		draft:     draft,
		expiresAt: time.Now().Add(DraftTTL),
	}
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}

type redisDraftStore struct {
	client *redis.Client
	prefix string
}

func NewRedisDraftStore(client *redis.Client) DraftStore {
	if client == nil {
		return nil
	}
	return &redisDraftStore{client: client, prefix: "onboarding:draft:"}
}

func (s *redisDraftStore) Get(ctx context.Context, sessionID string) (domain.DraftProfile, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err == redis.Nil {
		return domain.DraftProfile{}, false, nil
	}
	if err != nil {
		return domain.DraftProfile{}, false, err
	}
	var draft domain.DraftProfile
	if err := json.Unmarshal(raw, &draft); err != nil {
		return domain.DraftProfile{}, false, err
	}
	return draft, true, nil
}

func (s *redisDraftStore) Save(ctx context.Context, sessionID string, draft domain.DraftProfile) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+sessionID, raw, DraftTTL).Err()
}

func (s *redisDraftStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
