package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/admin"
	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// Origem dos dados devolvidos por Fetch (label de métrica)
const (
	OriginSeed       = "seed"
	OriginTheOddsAPI = "the-odds-api"
)

type ConfigLookup interface {
	Active(ctx context.Context) (admin.Config, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, cfg admin.Config) ([]sports.Match, error)
}

// Source decide de onde vem a lista de partidas: provedor configurado ou seed estático
type Source struct {
	Configs ConfigLookup
	API     Fetcher
	Log     *zap.Logger
}

// Fetch devolve o seed quando não há configuração ativa utilizável.
// Erros do provedor voltam para o chamador, que mantém a lista atual.
func (s *Source) Fetch(ctx context.Context) ([]sports.Match, string, error) {
	cfg, err := s.Configs.Active(ctx)
	if errors.Is(err, admin.ErrNotFound) {
		s.Log.Debug("no active odds api configuration, using seed")
		return odds.Seed(), OriginSeed, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load active config: %w", err)
	}
	if !cfg.Usable() {
		s.Log.Debug("active configuration not usable, using seed",
			zap.String("config_id", cfg.ID),
			zap.String("provider", cfg.ProviderType),
		)
		return odds.Seed(), OriginSeed, nil
	}

	matches, err := s.API.Fetch(ctx, cfg)
	if err != nil {
		return nil, OriginTheOddsAPI, err
	}
	return matches, OriginTheOddsAPI, nil
}
