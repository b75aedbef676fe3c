package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/live-betting-platform/pkg/contracts/cachekeys"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// RedisCache encapsula operações de cache de odds no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetCurrent grava a partida (JSON) e a cotação de cada seleção numa única transação MULTI
func (r *RedisCache) SetCurrent(ctx context.Context, e events.OddsUpdate) error {
	b, err := json.Marshal(e.Match)
	if err != nil {
		return err
	}

	m := e.Match
	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cachekeys.CurrentMatch(m.ID), b, r.TTL)
		for _, sel := range []sports.Selection{sports.SelectionHome, sports.SelectionDraw, sports.SelectionAway} {
			key := cachekeys.Selection(m.ID, sel)
			if v, ok := m.Odds.For(sel); ok {
				pipe.Set(ctx, key, FormatOdds(v), r.TTL)
			} else {
				pipe.Del(ctx, key)
			}
		}
		return nil
	})
	return err
}

// FormatOdds é a representação canônica da cotação no cache ("1.85")
func FormatOdds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
