package odds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/radieske/live-betting-platform/pkg/contracts/cachekeys"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

var (
	ErrUnknownMatch     = errors.New("match not found in odds cache")
	ErrUnknownSelection = errors.New("selection not offered for match")
)

// Quote é a cotação corrente de uma seleção junto com os textos exibidos no slip
type Quote struct {
	Odds          decimal.Decimal
	MatchInfo     string
	SelectionName string
}

// Validator lê as cotações que o odds-processor mantém no Redis
type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// CurrentOdds lê "odds:{matchID}:h2h:{selection}" => "1.85"
func (v *Validator) CurrentOdds(ctx context.Context, matchID string, sel sports.Selection) (decimal.Decimal, error) {
	val, err := v.Rdb.Get(ctx, cachekeys.Selection(matchID, sel)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, ErrUnknownSelection
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(val)
}

// Quote monta a cotação: textos e existência da seleção vêm da partida em cache,
// o preço vem da chave da seleção, gravada na mesma transação pelo odds-processor
func (v *Validator) Quote(ctx context.Context, matchID string, sel sports.Selection) (Quote, error) {
	raw, err := v.Rdb.Get(ctx, cachekeys.CurrentMatch(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Quote{}, ErrUnknownMatch
	}
	if err != nil {
		return Quote{}, err
	}
	var m sports.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return Quote{}, fmt.Errorf("decode cached match %s: %w", matchID, err)
	}
	q, err := QuoteFor(m, sel)
	if err != nil {
		return Quote{}, err
	}
	if q.Odds, err = v.CurrentOdds(ctx, matchID, sel); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// QuoteFor extrai a cotação de uma partida já carregada
func QuoteFor(m sports.Match, sel sports.Selection) (Quote, error) {
	price, ok := m.Odds.For(sel)
	if !ok {
		return Quote{}, ErrUnknownSelection
	}
	return Quote{
		Odds:          decimal.NewFromFloat(price).Round(2),
		MatchInfo:     m.Info(),
		SelectionName: m.SelectionName(sel),
	}, nil
}
