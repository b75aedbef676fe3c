package odds

import (
	"context"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// DefaultPerturbInterval é o intervalo entre passos da simulação ao vivo
const DefaultPerturbInterval = 3 * time.Second

// ChangeHandler recebe cada mudança com o estado da partida logo após o passo
type ChangeHandler func(ctx context.Context, c Change, m sports.Match)

// Perturber roda a simulação de odds ao vivo sobre um Feed
type Perturber struct {
	Feed     *Feed
	Clock    clock.Clock
	Interval time.Duration
	Rand     *rand.Rand
	OnChange ChangeHandler
	Log      *zap.Logger
}

// Run dispara um passo a cada Interval até o contexto ser cancelado
func (p *Perturber) Run(ctx context.Context) {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPerturbInterval
	}

	t := clk.Ticker(interval)
	defer t.Stop()

	p.logger().Info("odds perturber started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			p.logger().Info("context canceled, stopping odds perturber")
			return
		case <-t.C:
			p.Step(ctx)
		}
	}
}

// Step executa um único passo; ok=false quando não havia partida ao vivo
func (p *Perturber) Step(ctx context.Context) (Change, bool) {
	if p.Rand == nil {
		p.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c, ok := p.Feed.PerturbRandom(p.Rand)
	if !ok {
		p.logger().Debug("no live matches to perturb")
		return Change{}, false
	}

	p.logger().Debug("odds perturbed",
		zap.String("match_id", c.MatchID),
		zap.String("side", string(c.Side)),
		zap.Float64("old", c.Old),
		zap.Float64("new", c.New),
	)

	if p.OnChange != nil {
		if m, found := p.Feed.Get(c.MatchID); found {
			p.OnChange(ctx, c, m)
		}
	}
	return c, true
}

func (p *Perturber) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
