package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store guarda la identidad ligada a cada sesión del navegador.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Bind(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Clear(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

// NewMemoryStore crea un Store en memoria, útil para desarrollo y tests.
func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]memoryEntry)}
}

func (s *memoryStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[sessionID]
	if !ok {
		return "", nil
	}
	if !entry.expiresAt.IsZero() && time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, sessionID)
		return "", nil
	}
	return entry.userID, nil
}

func (s *memoryStore) Bind(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{userID: userID}
	if ttl > 0 {
		entry.expiresAt = time.Now().UTC().Add(ttl)
	}
	s.items[sessionID] = entry
	return nil
}

func (s *memoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
	return nil
}

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore crea un Store respaldado por Redis para despliegues con
// más de una instancia del servicio.
func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		return nil
	}
	return &redisStore{
		client: client,
		prefix: "session:identity:",
	}
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	val, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisStore) Bind(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+sessionID, userID, ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
