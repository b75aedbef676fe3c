package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/wallet-service/dto"
	"github.com/radieske/live-betting-platform/internal/wallet-service/repo"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (repo.Wallet, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal, externalRef string) (decimal.Decimal, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, externalRef string) (decimal.Decimal, error)
	Ledger(ctx context.Context, userID string, limit int) ([]repo.LedgerEntry, error)
}

// Server expõe endpoints HTTP para operações de carteira (wallet)
type Server struct {
	log      *zap.Logger
	repo     Repo
	validate *validator.Validate
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server {
	return &Server{log: log, repo: repo, validate: validator.New()}
}

// Router retorna o roteador HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/wallet", s.getWallet)        // saldo (cria a carteira no primeiro acesso)
	r.Get("/wallet/ledger", s.ledger)    // extrato
	r.Post("/wallet/deposit", s.deposit) // crédito
	r.Post("/wallet/debit", s.debit)     // débito condicional
	return r
}

// userID vem do gateway; ?userId= continua aceito para chamadas internas
func userID(r *http.Request) string {
	if id := r.Header.Get(headers.UserID); id != "" {
		return id
	}
	return r.URL.Query().Get("userId")
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	wal, err := s.repo.GetOrCreateWallet(r.Context(), uid)
	if err != nil {
		s.log.Error("get wallet failed", zap.String("user_id", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: uid, WalletID: wal.ID, Balance: wal.Balance})
}

func (s *Server) ledger(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	entries, err := s.repo.Ledger(r.Context(), uid, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.LedgerResponse{UserID: uid, Entries: entries})
}

// deposit adiciona saldo à carteira do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := s.decodeAmount(w, r)
	if !ok {
		return
	}
	// garante a carteira antes do crédito
	if _, err := s.repo.GetOrCreateWallet(r.Context(), uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bal, err := s.repo.Deposit(r.Context(), uid, req.Amount, req.ExternalRef)
	if err != nil {
		s.log.Error("deposit failed", zap.String("user_id", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: uid, Balance: bal})
}

// debit retira o total de uma colocação; 402 quando o saldo não cobre
func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := s.decodeAmount(w, r)
	if !ok {
		return
	}
	if req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "externalRef required")
		return
	}

	bal, err := s.repo.Debit(r.Context(), uid, req.Amount, req.ExternalRef)
	switch {
	case errors.Is(err, repo.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
		return
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "wallet not found")
		return
	case errors.Is(err, repo.ErrDuplicateRef):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error("debit failed", zap.String("user_id", uid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("wallet debited",
		zap.String("user_id", uid),
		zap.String("amount", req.Amount.String()),
		zap.String("external_ref", req.ExternalRef),
	)
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: uid, Balance: bal})
}

func (s *Server) decodeAmount(w http.ResponseWriter, r *http.Request) (string, dto.AmountRequest, bool) {
	var req dto.AmountRequest
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return "", req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return "", req, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", req, false
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return "", req, false
	}
	return uid, req, true
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
