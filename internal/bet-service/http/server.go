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
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/bet-service/dto"
	"github.com/radieske/live-betting-platform/internal/bet-service/odds"
	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// Resultados de colocação usados como label de métrica
const (
	OutcomePlaced       = "placed"
	OutcomePartial      = "partial"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeRejected     = "rejected"
	OutcomeWalletError  = "wallet_error"
)

type Quoter interface {
	Quote(ctx context.Context, matchID string, sel sports.Selection) (odds.Quote, error)
}

type Placer interface {
	Place(ctx context.Context, userID string, slip *betslip.Slip) (betslip.Receipt, error)
}

type BetLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]betslip.Bet, error)
}

// Server expõe o bet slip do usuário e o histórico de apostas
type Server struct {
	log      *zap.Logger
	slips    betslip.Store
	quotes   Quoter
	ledger   Placer
	bets     BetLister
	validate *validator.Validate

	OnPlaced func(outcome string) // métricas
}

func NewServer(log *zap.Logger, slips betslip.Store, q Quoter, l Placer, bets BetLister) *Server {
	return &Server{log: log, slips: slips, quotes: q, ledger: l, bets: bets, validate: validator.New()}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requireUser)

	r.Get("/betslip", s.getSlip)
	r.Delete("/betslip", s.clearSlip)
	r.Post("/betslip/items", s.addItem)
	r.Patch("/betslip/items/{matchId}", s.updateStake)
	r.Delete("/betslip/items/{matchId}", s.removeItem)
	r.Get("/betslip/items/{matchId}/{selection}", s.selected)
	r.Post("/betslip/place", s.place)
	r.Get("/bets", s.listBets)
	return r
}

type ctxKey struct{}

// requireUser exige o header preenchido pelo gateway
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get(headers.UserID)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, betslip.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid)))
	})
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(ctxKey{}).(string)
	return uid
}

func (s *Server) loadSlip(w http.ResponseWriter, r *http.Request) (betslip.Slip, bool) {
	slip, err := s.slips.Load(r.Context(), userID(r))
	if err != nil {
		s.log.Error("load slip failed", zap.String("user_id", userID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "slip unavailable")
		return betslip.Slip{}, false
	}
	return slip, true
}

// editableSlip carrega o slip para edição; slip com débito pendente só aceita nova colocação
func (s *Server) editableSlip(w http.ResponseWriter, r *http.Request) (betslip.Slip, bool) {
	slip, ok := s.loadSlip(w, r)
	if !ok {
		return slip, false
	}
	if slip.DebitPending {
		writeError(w, http.StatusConflict, betslip.ErrDebitPending.Error())
		return slip, false
	}
	return slip, true
}

func (s *Server) saveSlip(w http.ResponseWriter, r *http.Request, slip betslip.Slip) bool {
	if err := s.slips.Save(r.Context(), userID(r), slip); err != nil {
		s.log.Error("save slip failed", zap.String("user_id", userID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "slip unavailable")
		return false
	}
	return true
}

func (s *Server) getSlip(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.loadSlip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, slip.Summary())
}

func (s *Server) clearSlip(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.editableSlip(w, r); !ok {
		return
	}
	if err := s.slips.Delete(r.Context(), userID(r)); err != nil {
		s.log.Error("clear slip failed", zap.String("user_id", userID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "slip unavailable")
		return
	}
	writeJSON(w, http.StatusOK, betslip.Slip{}.Summary())
}

// addItem confere a cotação atual antes de colocar o item no slip.
// Odds zerada no request aceita a cotação corrente.
func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stake := betslip.DefaultStake
	if req.Stake != nil {
		if req.Stake.IsNegative() {
			writeError(w, http.StatusBadRequest, "stake must not be negative")
			return
		}
		stake = *req.Stake
	}

	q, err := s.quotes.Quote(r.Context(), req.MatchID, req.Selection)
	switch {
	case errors.Is(err, odds.ErrUnknownMatch), errors.Is(err, odds.ErrUnknownSelection):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.log.Error("quote lookup failed", zap.String("match_id", req.MatchID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "odds unavailable")
		return
	}
	if !req.Odds.IsZero() && !req.Odds.Equal(q.Odds) {
		writeJSON(w, http.StatusConflict, dto.OddsChangedResponse{Error: "odds changed", CurrentOdds: q.Odds})
		return
	}

	slip, ok := s.editableSlip(w, r)
	if !ok {
		return
	}
	slip.Add(betslip.Item{
		MatchID:       req.MatchID,
		Selection:     req.Selection,
		Odds:          q.Odds,
		Stake:         stake,
		MatchInfo:     q.MatchInfo,
		SelectionName: q.SelectionName,
	})
	if !s.saveSlip(w, r, slip) {
		return
	}
	writeJSON(w, http.StatusOK, slip.Summary())
}

func (s *Server) updateStake(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Stake.IsNegative() {
		writeError(w, http.StatusBadRequest, "stake must not be negative")
		return
	}
	slip, ok := s.editableSlip(w, r)
	if !ok {
		return
	}
	if !slip.UpdateStake(chi.URLParam(r, "matchId"), req.Stake) {
		writeError(w, http.StatusNotFound, "match not in slip")
		return
	}
	if !s.saveSlip(w, r, slip) {
		return
	}
	writeJSON(w, http.StatusOK, slip.Summary())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.editableSlip(w, r)
	if !ok {
		return
	}
	slip.Remove(chi.URLParam(r, "matchId"))
	if !s.saveSlip(w, r, slip) {
		return
	}
	writeJSON(w, http.StatusOK, slip.Summary())
}

func (s *Server) selected(w http.ResponseWriter, r *http.Request) {
	slip, ok := s.loadSlip(w, r)
	if !ok {
		return
	}
	matchID, sel := chi.URLParam(r, "matchId"), sports.Selection(chi.URLParam(r, "selection"))
	writeJSON(w, http.StatusOK, dto.SelectedResponse{
		MatchID:   matchID,
		Selection: sel,
		Selected:  slip.Contains(matchID, sel),
	})
}

// place coloca o slip inteiro. Antes do débito o ledger grava o slip como pendente;
// uma nova chamada reaproveita a mesma referência de colocação.
func (s *Server) place(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	slip, ok := s.loadSlip(w, r)
	if !ok {
		return
	}

	receipt, err := s.ledger.Place(r.Context(), uid, &slip)

	var partial *betslip.PartialPersistenceError
	switch {
	case err == nil:
		s.observe(OutcomePlaced)
	case errors.As(err, &partial):
		s.observe(OutcomePartial)
	case errors.Is(err, betslip.ErrUnauthenticated):
		s.observe(OutcomeRejected)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, betslip.ErrEmptySlip), errors.Is(err, betslip.ErrInvalidStake):
		s.observe(OutcomeRejected)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, betslip.ErrInsufficientFunds):
		s.observe(OutcomeInsufficient)
		writeError(w, http.StatusPaymentRequired, err.Error())
		return
	default:
		s.observe(OutcomeWalletError)
		s.log.Error("placement failed", zap.String("user_id", uid), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	// débito feito: o slip foi consumido pelo ledger
	if err := s.slips.Delete(r.Context(), uid); err != nil {
		s.log.Warn("failed to clear placed slip", zap.String("user_id", uid), zap.Error(err))
	}

	resp := dto.PlaceResponse{Receipt: receipt}
	if partial != nil {
		for _, f := range partial.Failed {
			resp.Failed = append(resp.Failed, dto.FailedItem{MatchID: f.Item.MatchID, Error: f.Err.Error()})
		}
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	bets, err := s.bets.ListByUser(r.Context(), userID(r), limit)
	if err != nil {
		s.log.Error("list bets failed", zap.String("user_id", userID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.BetsResponse{Bets: bets})
}

func (s *Server) observe(outcome string) {
	if s.OnPlaced != nil {
		s.OnPlaced(outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
