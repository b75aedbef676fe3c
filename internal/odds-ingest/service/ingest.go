package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

const (
	SourcePoll         = "poll"
	SourcePerturbation = "perturbation"
)

type MatchSource interface {
	Fetch(ctx context.Context) ([]sports.Match, string, error)
}

type Publisher interface {
	Publish(ctx context.Context, e events.OddsUpdate) error
}

// Ingest é dono do Feed do lado produtor: recebe listas novas do provedor,
// mudanças da simulação ao vivo, e publica cada partida alterada.
type Ingest struct {
	Feed      *odds.Feed
	Source    MatchSource
	Publisher Publisher
	Clock     clock.Clock
	Log       *zap.Logger

	OnPoll    func(origin string, err error) // métricas
	OnPublish func(source string, err error)

	version atomic.Int64
}

func New(feed *odds.Feed, src MatchSource, pub Publisher, clk clock.Clock, log *zap.Logger) *Ingest {
	if clk == nil {
		clk = clock.New()
	}
	in := &Ingest{Feed: feed, Source: src, Publisher: pub, Clock: clk, Log: log}
	// versões continuam crescendo entre reinícios
	in.version.Store(clk.Now().UnixMilli())
	return in
}

// Poll busca a lista completa, troca o conteúdo do Feed e publica todas as partidas.
// Falha do provedor mantém a lista atual.
func (in *Ingest) Poll(ctx context.Context) error {
	matches, origin, err := in.Source.Fetch(ctx)
	if in.OnPoll != nil {
		in.OnPoll(origin, err)
	}
	if err != nil {
		in.Log.Warn("odds poll failed, keeping current matches", zap.String("origin", origin), zap.Error(err))
		return err
	}

	in.Feed.Replace(matches)
	snapshot := in.Feed.Snapshot()
	for _, m := range snapshot {
		in.publish(ctx, m, nil, SourcePoll)
	}
	in.Log.Info("odds poll applied", zap.String("origin", origin), zap.Int("matches", len(snapshot)))
	return nil
}

// PublishChange é o ChangeHandler do Perturber
func (in *Ingest) PublishChange(ctx context.Context, c odds.Change, m sports.Match) {
	in.publish(ctx, m, &events.Change{
		Side:       c.Side,
		Old:        c.Old,
		New:        c.New,
		FlashUntil: c.FlashUntil,
	}, SourcePerturbation)
}

func (in *Ingest) publish(ctx context.Context, m sports.Match, change *events.Change, source string) {
	err := in.Publisher.Publish(ctx, events.OddsUpdate{
		Match:     m,
		Change:    change,
		UpdatedAt: in.Clock.Now().UTC(),
		Source:    source,
		Version:   in.version.Add(1),
	})
	if in.OnPublish != nil {
		in.OnPublish(source, err)
	}
	if err != nil {
		in.Log.Warn("odds publish failed", zap.String("match_id", m.ID), zap.String("source", source), zap.Error(err))
	}
}

// Warmup carrega o seed para o Feed não começar vazio enquanto o primeiro poll não termina
func (in *Ingest) Warmup() {
	if in.Feed.Len() == 0 {
		in.Feed.Replace(odds.Seed())
	}
}

// pollTimeout limita cada execução agendada
const pollTimeout = 15 * time.Second

// PollJob adapta Poll para o cron
func (in *Ingest) PollJob(ctx context.Context) func() {
	return func() {
		ctx, cancel := context.WithTimeout(ctx, pollTimeout)
		defer cancel()
		_ = in.Poll(ctx)
	}
}
