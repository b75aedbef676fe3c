package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/radieske/live-betting-platform/internal/admin"
	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

const (
	regions = "eu"
	markets = "h2h"

	// logo genérico: o provedor não manda escudo
	defaultLogo = "🏟️"
)

// APIError é uma resposta não-2xx do provedor
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("odds api: http %d: %s", e.StatusCode, e.Body)
}

// formato de /v4/sports/{sport}/odds
type apiEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []market `json:"markets"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// TheOddsAPI busca os próximos eventos em the-odds-api.com (ou num servidor compatível)
type TheOddsAPI struct {
	HTTP *http.Client
}

func NewTheOddsAPI() *TheOddsAPI {
	return &TheOddsAPI{HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// Fetch chama {baseUrl}/v4/sports/upcoming/odds/ e converte para o formato de partida
func (c *TheOddsAPI) Fetch(ctx context.Context, cfg admin.Config) ([]sports.Match, error) {
	q := url.Values{}
	q.Set("regions", regions)
	q.Set("markets", markets)
	q.Set("apiKey", cfg.APIKey)
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/v4/sports/upcoming/odds/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds api request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var evs []apiEvent
	if err := json.NewDecoder(res.Body).Decode(&evs); err != nil {
		return nil, fmt.Errorf("decode odds api response: %w", err)
	}
	return transform(evs), nil
}

// transform usa só o primeiro mercado da primeira casa.
// Casa/fora são casados pelo nome do time; sem preço vira 1.0, que a normalização sobe para 1.01.
func transform(evs []apiEvent) []sports.Match {
	out := make([]sports.Match, 0, len(evs))
	for _, ev := range evs {
		var outcomes []outcome
		if len(ev.Bookmakers) > 0 && len(ev.Bookmakers[0].Markets) > 0 {
			outcomes = ev.Bookmakers[0].Markets[0].Outcomes
		}

		m := sports.Match{
			ID:        ev.ID,
			Sport:     ev.SportKey,
			League:    ev.SportTitle,
			HomeTeam:  sports.Team{Name: ev.HomeTeam, Logo: defaultLogo},
			AwayTeam:  sports.Team{Name: ev.AwayTeam, Logo: defaultLogo},
			IsLive:    false,
			StartTime: ev.CommenceTime,
		}
		m.Odds.Home = odds.NormalizeOdds(priceOr(outcomes, ev.HomeTeam, 1.0))
		m.Odds.Away = odds.NormalizeOdds(priceOr(outcomes, ev.AwayTeam, 1.0))
		if p, ok := price(outcomes, "Draw"); ok {
			d := odds.NormalizeOdds(p)
			m.Odds.Draw = &d
		}
		out = append(out, m)
	}
	return out
}

func price(outcomes []outcome, name string) (float64, bool) {
	for _, o := range outcomes {
		if o.Name == name {
			return o.Price, true
		}
	}
	return 0, false
}

func priceOr(outcomes []outcome, name string, def float64) float64 {
	if p, ok := price(outcomes, name); ok && p > 0 {
		return p
	}
	return def
}
