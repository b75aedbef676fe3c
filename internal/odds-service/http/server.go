package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/internal/odds-service/dto"
	"github.com/radieske/live-betting-platform/internal/odds-service/repo"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

type MatchReader interface {
	GetMatch(ctx context.Context, id string) (sports.Match, error)
}

type MatchCache interface {
	GetMatch(ctx context.Context, id string) (sports.Match, bool, error)
}

// API expõe os endpoints REST de consulta de partidas e odds
// Lê do Feed em memória; cache (Redis) e banco (Postgres) cobrem partidas que o feed ainda não tem
type API struct {
	Feed     *odds.Feed
	ReadRepo MatchReader
	Cache    MatchCache
	WS       http.HandlerFunc // upgrade do hub; nil desativa /ws
	Log      *zap.Logger
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/matches", a.listMatches)   // ?sport=football&live=true|false
	r.Get("/v1/matches/{id}", a.getMatch) // partida única
	r.Get("/v1/sports", a.listCategories) // categorias do menu
	r.Get("/v1/flashes", a.listFlashes)   // cotações em destaque
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listMatches retorna as partidas do feed, filtradas por categoria e/ou situação.
// live ausente traz todas; live=false são as próximas partidas.
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var live *bool
	if q.Has("live") {
		v, err := strconv.ParseBool(q.Get("live"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "live must be true or false"})
			return
		}
		live = &v
	}
	writeJSON(w, http.StatusOK, a.Feed.Filter(q.Get("sport"), live))
}

// getMatch busca no feed, depois no cache e por fim no banco
func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if m, ok := a.Feed.Get(id); ok {
		writeJSON(w, http.StatusOK, m)
		return
	}

	if a.Cache != nil {
		m, ok, err := a.Cache.GetMatch(r.Context(), id)
		if err != nil {
			a.Log.Warn("cache read failed", zap.String("match_id", id), zap.Error(err))
		} else if ok {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}

	m, err := a.ReadRepo.GetMatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, odds.Categories())
}

func (a *API) listFlashes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.FlashesFrom(a.Feed.Flashing()))
}
