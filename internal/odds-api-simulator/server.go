package simulator

import (
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/odds-api-simulator/dto"
)

// fixture é uma partida do catálogo com as faixas de preço sorteadas a cada chamada
type fixture struct {
	id, sportKey, sportTitle string
	home, away               string
	startsIn                 time.Duration
	homeRange, awayRange     [2]float64
	drawRange                *[2]float64 // nil: esporte sem empate
}

func draw(min, max float64) *[2]float64 { return &[2]float64{min, max} }

// Catálogo fixo de partidas simuladas
var catalog = []fixture{
	{id: "sim-epl-001", sportKey: "soccer_epl", sportTitle: "EPL", home: "Arsenal", away: "Chelsea", startsIn: 2 * time.Hour,
		homeRange: [2]float64{1.60, 2.40}, awayRange: [2]float64{2.80, 4.50}, drawRange: draw(3.00, 4.00)},
	{id: "sim-laliga-001", sportKey: "soccer_spain_la_liga", sportTitle: "La Liga", home: "Atletico Madrid", away: "Sevilla", startsIn: 5 * time.Hour,
		homeRange: [2]float64{1.50, 2.10}, awayRange: [2]float64{3.50, 5.50}, drawRange: draw(3.20, 4.20)},
	{id: "sim-nba-001", sportKey: "basketball_nba", sportTitle: "NBA", home: "Golden State Warriors", away: "Denver Nuggets", startsIn: 9 * time.Hour,
		homeRange: [2]float64{1.70, 2.30}, awayRange: [2]float64{1.60, 2.20}},
	{id: "sim-atp-001", sportKey: "tennis_atp_paris", sportTitle: "ATP Paris Masters", home: "Jannik Sinner", away: "Daniil Medvedev", startsIn: 26 * time.Hour,
		homeRange: [2]float64{1.30, 1.70}, awayRange: [2]float64{2.20, 3.40}},
	{id: "sim-mma-001", sportKey: "mma_mixed_martial_arts", sportTitle: "MMA", home: "Islam Makhachev", away: "Arman Tsarukyan", startsIn: 48 * time.Hour,
		homeRange: [2]float64{1.25, 1.55}, awayRange: [2]float64{2.50, 3.80}},
}

// Server imita a the-odds-api para desenvolvimento local
type Server struct {
	log    *zap.Logger
	clock  clock.Clock
	apiKey string // vazio aceita qualquer chave

	mu  sync.Mutex
	rng *rand.Rand

	OnRequest func(status int) // métricas
}

func NewServer(log *zap.Logger, clk clock.Clock, apiKey string, rng *rand.Rand) *Server {
	if clk == nil {
		clk = clock.New()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Server{log: log, clock: clk, apiKey: apiKey, rng: rng}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v4/sports/{sport}/odds", s.odds)
	r.Get("/v4/sports/{sport}/odds/", s.odds)
	return r
}

func (s *Server) odds(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("apiKey")
	if key == "" || (s.apiKey != "" && key != s.apiKey) {
		s.reply(w, http.StatusUnauthorized, map[string]string{"message": "API key is not valid"})
		return
	}
	if m := r.URL.Query().Get("markets"); m != "" && m != "h2h" {
		s.reply(w, http.StatusUnprocessableEntity, map[string]string{"message": "only h2h is simulated"})
		return
	}

	sport := chi.URLParam(r, "sport")
	now := s.clock.Now().UTC()

	out := make([]dto.Event, 0, len(catalog))
	for _, f := range catalog {
		if sport != "upcoming" && sport != f.sportKey {
			continue
		}
		out = append(out, s.event(f, now))
	}
	s.reply(w, http.StatusOK, out)
}

// event sorteia os preços da partida; a casa de apostas é sempre uma só
func (s *Server) event(f fixture, now time.Time) dto.Event {
	s.mu.Lock()
	outcomes := []dto.Outcome{
		{Name: f.home, Price: s.rnd(f.homeRange)},
		{Name: f.away, Price: s.rnd(f.awayRange)},
	}
	if f.drawRange != nil {
		outcomes = append(outcomes, dto.Outcome{Name: "Draw", Price: s.rnd(*f.drawRange)})
	}
	s.mu.Unlock()

	return dto.Event{
		ID:           f.id,
		SportKey:     f.sportKey,
		SportTitle:   f.sportTitle,
		CommenceTime: now.Add(f.startsIn).Truncate(time.Minute).Format(time.RFC3339),
		HomeTeam:     f.home,
		AwayTeam:     f.away,
		Bookmakers: []dto.Bookmaker{{
			Key:        "simbook",
			Title:      "Simulated Book",
			LastUpdate: now.Format(time.RFC3339),
			Markets:    []dto.Market{{Key: "h2h", Outcomes: outcomes}},
		}},
	}
}

// gera número aleatório na faixa, com 2 casas
func (s *Server) rnd(r [2]float64) float64 {
	v := r[0] + s.rng.Float64()*(r[1]-r[0])
	return math.Round(v*100) / 100
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	if s.OnRequest != nil {
		s.OnRequest(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
