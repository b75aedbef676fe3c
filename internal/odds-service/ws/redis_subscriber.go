package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

// broadcastMsg é o formato publicado pelo odds-processor no canal de broadcast
type broadcastMsg struct {
	MatchID string            `json:"matchId"`
	Payload events.OddsUpdate `json:"payload"`
}

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa cada atualização para handle (aplicar no feed, repassar ao hub)
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Desserializa para events.OddsUpdate
// - Chama handle na ordem de chegada
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, log *zap.Logger, handle func(events.OddsUpdate)) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				var upd broadcastMsg
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil || upd.Payload.Match.ID == "" {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				handle(upd.Payload)
			}
		}
	}()
}
