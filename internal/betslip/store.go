package betslip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store guarda o slip de cada usuário entre requisições
type Store interface {
	Load(ctx context.Context, userID string) (Slip, error)
	Save(ctx context.Context, userID string, s Slip) error
	Delete(ctx context.Context, userID string) error
}

const DefaultSlipTTL = 24 * time.Hour

// RedisStore grava o slip como JSON em "betslip:{userID}" com TTL renovado a cada escrita
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSlipTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func slipKey(userID string) string {
	return fmt.Sprintf("betslip:%s", userID)
}

// Load devolve um slip vazio quando o usuário ainda não tem nada salvo
func (r *RedisStore) Load(ctx context.Context, userID string) (Slip, error) {
	raw, err := r.rdb.Get(ctx, slipKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Slip{}, nil
	}
	if err != nil {
		return Slip{}, fmt.Errorf("load slip: %w", err)
	}

	var s Slip
	if err := json.Unmarshal(raw, &s); err != nil {
		return Slip{}, fmt.Errorf("decode slip: %w", err)
	}
	return s, nil
}

// Save apaga a chave quando o slip está vazio
func (r *RedisStore) Save(ctx context.Context, userID string, s Slip) error {
	if s.IsEmpty() {
		return r.Delete(ctx, userID)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode slip: %w", err)
	}
	if err := r.rdb.Set(ctx, slipKey(userID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("save slip: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, slipKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete slip: %w", err)
	}
	return nil
}

// MemoryStore é a versão em memória, para testes e dev em processo único
type MemoryStore struct {
	mu    sync.Mutex
	slips map[string]Slip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slips: make(map[string]Slip)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slips[userID]
	s.Items = append([]Item(nil), s.Items...)
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, s Slip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IsEmpty() {
		delete(m.slips, userID)
		return nil
	}
	s.Items = append([]Item(nil), s.Items...)
	m.slips[userID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slips, userID)
	return nil
}
