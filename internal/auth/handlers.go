package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceReader é o wallet-service visto pelo /me
type BalanceReader interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

type signInRequest struct {
	Username string `json:"username"` // username ou email
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type meResponse struct {
	User
	// nil quando o wallet-service não respondeu
	Balance *decimal.Decimal `json:"balance"`
}

// Handler expõe /api/auth/*; precisa rodar atrás do Middleware
type Handler struct {
	svc    *Service
	wallet BalanceReader
	log    *zap.Logger
}

func NewHandler(svc *Service, wallet BalanceReader, log *zap.Logger) *Handler {
	return &Handler{svc: svc, wallet: wallet, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/auth/signup", h.signUp)
	r.Post("/api/auth/signin", h.signIn)
	r.Post("/api/auth/signout", h.signOut)
	r.With(RequireUser).Get("/api/auth/me", h.me)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	user, err := h.svc.SignUp(r.Context(), req)
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Account created successfully", "user": user})
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, verrs.Error())
	case errors.Is(err, ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("sign up failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	token, user, err := h.svc.SignIn(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, signInResponse{Token: token, User: user})
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.log.Error("sign in failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SignOut(r.Context(), BearerToken(r)); err != nil {
		h.log.Warn("sign out failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// me devolve o perfil mesmo com a carteira fora do ar
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	resp := meResponse{User: user}
	if h.wallet != nil {
		bal, err := h.wallet.Balance(r.Context(), user.ID)
		if err != nil {
			h.log.Warn("balance lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			resp.Balance = &bal
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
