package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis abre o cliente e valida a conexão com um PING
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
