package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/radieske/live-betting-platform/internal/shared/kafka"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

// KafkaPublisher publica bet_placed; satisfaz betslip.Publisher
type KafkaPublisher struct {
	Writer *kafka.Writer
	now    func() time.Time
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, now: time.Now}
}

// PublishBetPlaced usa o usuário como chave: as apostas de um mesmo usuário ficam na mesma partição
func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = p.now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, e.UserID, b)
}
