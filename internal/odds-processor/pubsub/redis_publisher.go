package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// WSUpdate é o payload padrão para o WS do odds-service
type WSUpdate struct {
	MatchID string      `json:"matchId"`
	Payload interface{} `json:"payload"`
}
