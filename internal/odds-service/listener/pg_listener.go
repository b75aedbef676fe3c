package listener

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// Channel é o canal notificado pelo trigger da tabela matches (payload = id da partida)
const Channel = "matches_changed"

type MatchLoader interface {
	GetMatch(ctx context.Context, id string) (sports.Match, error)
}

// Listener assina LISTEN matches_changed e recarrega cada partida alterada
type Listener struct {
	DSN     string
	Loader  MatchLoader
	Log     *zap.Logger
	OnMatch func(sports.Match)

	// Ready é fechado quando o LISTEN foi aceito (opcional)
	Ready chan struct{}
}

// Run bloqueia até o contexto ser cancelado; reconexões ficam a cargo do pq.Listener
func (l *Listener) Run(ctx context.Context) error {
	pl := pq.NewListener(l.DSN, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.Log.Warn("postgres listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer pl.Close()

	if err := pl.Listen(Channel); err != nil {
		return err
	}
	l.Log.Info("listening for match changes", zap.String("channel", Channel))
	if l.Ready != nil {
		close(l.Ready)
	}

	keepalive := time.NewTicker(90 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-pl.Notify:
			// nil após reconexão: notificações podem ter sido perdidas, mas o próximo poll corrige
			if n == nil {
				continue
			}
			l.reload(ctx, n.Extra)
		case <-keepalive.C:
			go func() { _ = pl.Ping() }()
		}
	}
}

func (l *Listener) reload(ctx context.Context, id string) {
	lctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	m, err := l.Loader.GetMatch(lctx, id)
	if err != nil {
		l.Log.Warn("reload changed match failed", zap.String("match_id", id), zap.Error(err))
		return
	}
	if l.OnMatch != nil {
		l.OnMatch(m)
	}
}
