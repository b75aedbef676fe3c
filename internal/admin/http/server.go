package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/admin"
	"github.com/radieske/live-betting-platform/internal/admin/dto"
)

// Repo define as operações de configuração usadas pelo painel
type Repo interface {
	List(ctx context.Context) ([]admin.Config, error)
	Get(ctx context.Context, id string) (admin.Config, error)
	Create(ctx context.Context, in admin.NewConfig) (admin.Config, error)
	Update(ctx context.Context, id string, patch admin.Patch) (admin.Config, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (admin.Config, error)
}

// Server expõe o CRUD de credenciais de provedores de odds.
// O gateway só encaminha para cá requisições de administradores.
type Server struct {
	log      *zap.Logger
	repo     Repo
	validate *validator.Validate
}

func NewServer(log *zap.Logger, repo Repo) *Server {
	return &Server{log: log, repo: repo, validate: validator.New()}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/admin/configs", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.delete)
		r.Post("/{id}/activate", s.setActive(true))
		r.Post("/{id}/deactivate", s.setActive(false))
	})
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	cfgs, err := s.repo.List(r.Context())
	if err != nil {
		s.fail(w, "list configs", err)
		return
	}
	out := make([]dto.ConfigResponse, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, dto.FromConfig(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get config", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromConfig(c))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.repo.Create(r.Context(), admin.NewConfig{
		Name:         req.Name,
		ProviderType: req.ProviderType,
		APIKey:       req.APIKey,
		BaseURL:      req.BaseURL,
	})
	if err != nil {
		s.fail(w, "create config", err)
		return
	}
	s.log.Info("api configuration created", zap.String("config_id", c.ID), zap.String("provider", c.ProviderType))
	writeJSON(w, http.StatusCreated, dto.FromConfig(c))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.repo.Update(r.Context(), chi.URLParam(r, "id"), admin.Patch{
		Name:         req.Name,
		ProviderType: req.ProviderType,
		APIKey:       req.APIKey,
		BaseURL:      req.BaseURL,
	})
	if err != nil {
		s.fail(w, "update config", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromConfig(c))
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "delete config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		c, err := s.repo.SetActive(r.Context(), id, active)
		if err != nil {
			s.fail(w, "set active config", err)
			return
		}
		s.log.Info("api configuration toggled", zap.String("config_id", id), zap.Bool("active", active))
		writeJSON(w, http.StatusOK, dto.FromConfig(c))
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, admin.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
