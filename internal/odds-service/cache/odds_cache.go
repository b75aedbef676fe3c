package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/live-betting-platform/pkg/contracts/cachekeys"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

// GetMatch lê a partida gravada pelo odds-processor; ok=false quando não está em cache
func (c *Cache) GetMatch(ctx context.Context, matchID string) (sports.Match, bool, error) {
	b, err := c.R.Get(ctx, cachekeys.CurrentMatch(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sports.Match{}, false, nil
	}
	if err != nil {
		return sports.Match{}, false, err
	}
	var m sports.Match
	if err := json.Unmarshal(b, &m); err != nil {
		return sports.Match{}, false, err
	}
	return m, true, nil
}
