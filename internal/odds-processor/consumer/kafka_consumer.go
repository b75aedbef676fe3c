package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

// MessageReader é o subconjunto do kafka.Reader usado pelo processor
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Cache interface {
	SetCurrent(ctx context.Context, e events.OddsUpdate) error
}

type Repo interface {
	UpsertMatch(ctx context.Context, e events.OddsUpdate) error
	InsertHistory(ctx context.Context, e events.OddsUpdate) error
}

// Processor consome mensagens de odds do Kafka, faz cache e persiste no banco
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   Repo
	Cache  Cache

	OnConsumed     func()                  // métricas (counter++)
	OnCached       func()                  // métricas
	OnPersist      func()                  // métricas
	OnError        func(string)            // métricas por fase
	OnAfterPersist func(events.OddsUpdate) // broadcast para o odds-service
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		p.Handle(ctx, m.Value)
	}
}

// Handle processa uma única mensagem já lida
func (p *Processor) Handle(ctx context.Context, value []byte) {
	var ev events.OddsUpdate
	if err := json.Unmarshal(value, &ev); err != nil || ev.Match.ID == "" {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		return
	}

	// Atualiza cache Redis com a partida e as cotações
	if err := p.Cache.SetCurrent(ctx, ev); err != nil {
		p.Log.Warn("redis set failed", zap.String("match_id", ev.Match.ID), zap.Error(err))
		p.fail("cache")
		// não bloqueia persistência se falhar o cache
	} else if p.OnCached != nil {
		p.OnCached() // callback de métrica: cache atualizado
	}

	// Persiste a partida e o histórico no Postgres
	if err := p.Repo.UpsertMatch(ctx, ev); err != nil {
		p.Log.Warn("db upsert failed", zap.String("match_id", ev.Match.ID), zap.Error(err))
		p.fail("db_upsert")
		return
	}
	if err := p.Repo.InsertHistory(ctx, ev); err != nil {
		p.Log.Warn("db insert history failed", zap.String("match_id", ev.Match.ID), zap.Error(err))
		p.fail("db_history")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist() // callback de métrica: persistência concluída
	}
	if p.OnAfterPersist != nil {
		p.OnAfterPersist(ev)
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
