package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/bet-service/odds"
	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/internal/betslip/mockbetslip"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

type fakeQuoter map[string]sports.Match

func (f fakeQuoter) Quote(_ context.Context, matchID string, sel sports.Selection) (odds.Quote, error) {
	m, ok := f[matchID]
	if !ok {
		return odds.Quote{}, odds.ErrUnknownMatch
	}
	return odds.QuoteFor(m, sel)
}

type mockLister struct{ mock.Mock }

func (m *mockLister) ListByUser(ctx context.Context, userID string, limit int) ([]betslip.Bet, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]betslip.Bet), args.Error(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	srv      *Server
	store    *betslip.MemoryStore
	wallet   *mockbetslip.Wallet
	bets     *mockbetslip.BetRecorder
	outcomes []string
}

func newFixture() *fixture {
	draw := 3.4
	quotes := fakeQuoter{
		"1": {ID: "1", HomeTeam: sports.Team{Name: "Manchester City"}, AwayTeam: sports.Team{Name: "Liverpool"}, Odds: sports.Odds{Home: 1.85, Draw: &draw, Away: 4.2}},
		"2": {ID: "2", HomeTeam: sports.Team{Name: "Real Madrid"}, AwayTeam: sports.Team{Name: "Barcelona"}, Odds: sports.Odds{Home: 2.1, Away: 3.5}},
	}
	f := &fixture{
		store:  betslip.NewMemoryStore(),
		wallet: &mockbetslip.Wallet{},
		bets:   &mockbetslip.BetRecorder{},
	}
	ledger := betslip.NewLedger(f.wallet, f.bets, nil, zap.NewNop())
	ledger.Checkpoint = f.store.Save
	f.srv = NewServer(zap.NewNop(), f.store, quotes, ledger, &mockLister{})
	f.srv.OnPlaced = func(o string) { f.outcomes = append(f.outcomes, o) }
	return f
}

func (f *fixture) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(headers.UserID, user)
	}
	rr := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeSummary(t *testing.T, rr *httptest.ResponseRecorder) betslip.Summary {
	t.Helper()
	var s betslip.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid summary: %v (%s)", err, rr.Body.String())
	}
	return s
}

func TestAddItem(t *testing.T) {
	tests := map[string]struct {
		body      map[string]any
		wantCode  int
		wantStake string
	}{
		"matching odds":   {body: map[string]any{"matchId": "1", "selection": "home", "odds": "1.85", "stake": "10"}, wantCode: http.StatusOK},
		"stake omitted":   {body: map[string]any{"matchId": "1", "selection": "home", "odds": "1.85"}, wantCode: http.StatusOK, wantStake: "10"},
		"explicit stake":  {body: map[string]any{"matchId": "1", "selection": "away", "stake": "2.5"}, wantCode: http.StatusOK, wantStake: "2.5"},
		"zero stake kept": {body: map[string]any{"matchId": "1", "selection": "away", "stake": "0"}, wantCode: http.StatusOK, wantStake: "0"},
		"odds omitted":    {body: map[string]any{"matchId": "1", "selection": "draw", "stake": "10"}, wantCode: http.StatusOK},
		"odds changed":    {body: map[string]any{"matchId": "1", "selection": "home", "odds": "1.80", "stake": "10"}, wantCode: http.StatusConflict},
		"unknown match":   {body: map[string]any{"matchId": "99", "selection": "home", "stake": "10"}, wantCode: http.StatusNotFound},
		"no draw market":  {body: map[string]any{"matchId": "2", "selection": "draw", "stake": "10"}, wantCode: http.StatusNotFound},
		"bad selection":   {body: map[string]any{"matchId": "1", "selection": "over", "stake": "10"}, wantCode: http.StatusBadRequest},
		"missing matchId": {body: map[string]any{"selection": "home", "stake": "10"}, wantCode: http.StatusBadRequest},
		"negative stake":  {body: map[string]any{"matchId": "1", "selection": "home", "stake": "-5"}, wantCode: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			rr := f.do(t, http.MethodPost, "/betslip/items", "u1", tc.body)
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rr.Code, rr.Body.String())
			}
			slip, _ := f.store.Load(context.Background(), "u1")
			wantLen := 0
			if tc.wantCode == http.StatusOK {
				wantLen = 1
			}
			if slip.Len() != wantLen {
				t.Fatalf("expected %d items stored, got %d", wantLen, slip.Len())
			}
			if tc.wantStake != "" && !slip.Items[0].Stake.Equal(dec(tc.wantStake)) {
				t.Errorf("expected stake %s, got %s", tc.wantStake, slip.Items[0].Stake)
			}
		})
	}
}

func TestOddsChangedReturnsCurrentOdds(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "2", "selection": "away", "odds": "3.45"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var body struct {
		CurrentOdds decimal.Decimal `json:"currentOdds"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if !body.CurrentOdds.Equal(dec("3.5")) {
		t.Errorf("expected current odds 3.5, got %s", body.CurrentOdds)
	}
}

func TestSlipLifecycle(t *testing.T) {
	f := newFixture()

	f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "1", "selection": "home", "stake": "10"})
	f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "2", "selection": "home", "stake": "20"})
	// a segunda seleção da partida 1 substitui a primeira
	rr := f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "1", "selection": "away", "stake": "5"})
	s := decodeSummary(t, rr)
	if len(s.Items) != 2 || s.Items[0].Selection != sports.SelectionAway || !s.Items[0].Odds.Equal(dec("4.2")) {
		t.Fatalf("expected replaced item, got %+v", s.Items)
	}

	rr = f.do(t, http.MethodPatch, "/betslip/items/1", "u1", map[string]any{"stake": "10"})
	s = decodeSummary(t, rr)
	if !s.TotalStake.Equal(dec("30")) || !s.CombinedOdds.Equal(dec("8.82")) {
		t.Errorf("unexpected totals: stake %s odds %s", s.TotalStake, s.CombinedOdds)
	}

	if rr := f.do(t, http.MethodPatch, "/betslip/items/1", "u1", map[string]any{"stake": "-1"}); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative stake, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPatch, "/betslip/items/9", "u1", map[string]any{"stake": "1"}); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for stake on missing item, got %d", rr.Code)
	}

	s = decodeSummary(t, f.do(t, http.MethodDelete, "/betslip/items/2", "u1", nil))
	if len(s.Items) != 1 {
		t.Errorf("expected 1 item after remove, got %d", len(s.Items))
	}
	s = decodeSummary(t, f.do(t, http.MethodDelete, "/betslip/items/2", "u1", nil))
	if len(s.Items) != 1 {
		t.Errorf("removing a missing item should be a no-op, got %d items", len(s.Items))
	}

	s = decodeSummary(t, f.do(t, http.MethodDelete, "/betslip", "u1", nil))
	if len(s.Items) != 0 {
		t.Errorf("expected empty slip after clear, got %d", len(s.Items))
	}

	other := decodeSummary(t, f.do(t, http.MethodGet, "/betslip", "u2", nil))
	if len(other.Items) != 0 {
		t.Errorf("slips must be per user")
	}
}

func TestRequiresUser(t *testing.T) {
	f := newFixture()
	if rr := f.do(t, http.MethodGet, "/betslip", "", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestPlace(t *testing.T) {
	tests := map[string]struct {
		setup       func(f *fixture)
		wantCode    int
		wantOutcome string
		wantItems   int
	}{
		"success": {
			setup: func(f *fixture) {
				f.wallet.On("Balance", mock.Anything, "u1").Return(dec("1250"), nil)
				f.wallet.On("Debit", mock.Anything, "u1", mock.Anything, mock.Anything).Return(dec("1220"), nil)
				f.bets.On("Record", mock.Anything, mock.Anything).Return(nil)
			},
			wantCode: http.StatusCreated, wantOutcome: OutcomePlaced, wantItems: 0,
		},
		"insufficient funds keeps slip": {
			setup: func(f *fixture) {
				f.wallet.On("Balance", mock.Anything, "u1").Return(dec("29.99"), nil)
			},
			wantCode: http.StatusPaymentRequired, wantOutcome: OutcomeInsufficient, wantItems: 2,
		},
		"wallet down keeps slip": {
			setup: func(f *fixture) {
				f.wallet.On("Balance", mock.Anything, "u1").Return(decimal.Zero, errors.New("connection refused"))
			},
			wantCode: http.StatusBadGateway, wantOutcome: OutcomeWalletError, wantItems: 2,
		},
		"partial persistence": {
			setup: func(f *fixture) {
				f.wallet.On("Balance", mock.Anything, "u1").Return(dec("1250"), nil)
				f.wallet.On("Debit", mock.Anything, "u1", mock.Anything, mock.Anything).Return(dec("1220"), nil)
				f.bets.On("Record", mock.Anything, mock.MatchedBy(func(b betslip.Bet) bool { return b.MatchID == "1" })).Return(nil)
				f.bets.On("Record", mock.Anything, mock.MatchedBy(func(b betslip.Bet) bool { return b.MatchID == "2" })).Return(errors.New("timeout"))
			},
			wantCode: http.StatusMultiStatus, wantOutcome: OutcomePartial, wantItems: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			tc.setup(f)
			f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "1", "selection": "home", "stake": "10"})
			f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "2", "selection": "home", "stake": "20"})

			rr := f.do(t, http.MethodPost, "/betslip/place", "u1", nil)
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rr.Code, rr.Body.String())
			}
			if len(f.outcomes) != 1 || f.outcomes[0] != tc.wantOutcome {
				t.Errorf("expected outcome %s, got %v", tc.wantOutcome, f.outcomes)
			}
			slip, _ := f.store.Load(context.Background(), "u1")
			if slip.Len() != tc.wantItems {
				t.Errorf("expected %d items left, got %d", tc.wantItems, slip.Len())
			}
		})
	}
}

func TestPlaceEmptySlip(t *testing.T) {
	f := newFixture()
	if rr := f.do(t, http.MethodPost, "/betslip/place", "u1", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	f.wallet.AssertNotCalled(t, "Balance", mock.Anything, mock.Anything)
}

func TestSelected(t *testing.T) {
	f := newFixture()
	f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "1", "selection": "draw"})

	tests := map[string]struct {
		path string
		user string
		want bool
	}{
		"selected":        {path: "/betslip/items/1/draw", user: "u1", want: true},
		"other selection": {path: "/betslip/items/1/home", user: "u1", want: false},
		"other match":     {path: "/betslip/items/2/draw", user: "u1", want: false},
		"other user":      {path: "/betslip/items/1/draw", user: "u2", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, tc.path, tc.user, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			var body struct {
				Selected bool `json:"selected"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			if body.Selected != tc.want {
				t.Errorf("expected selected=%v, got %v", tc.want, body.Selected)
			}
		})
	}
}

func TestPendingDebitLocksSlipUntilRetry(t *testing.T) {
	f := newFixture()
	f.wallet.On("Balance", mock.Anything, "u1").Return(dec("30"), nil)
	f.wallet.On("Debit", mock.Anything, "u1", mock.Anything, mock.Anything).Return(decimal.Zero, context.DeadlineExceeded).Once()
	f.wallet.On("Debit", mock.Anything, "u1", mock.Anything, mock.Anything).Return(decimal.Zero, betslip.ErrAlreadyDebited).Once()
	f.bets.On("Record", mock.Anything, mock.Anything).Return(nil)

	f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "1", "selection": "home", "stake": "10"})
	f.do(t, http.MethodPost, "/betslip/items", "u1", map[string]any{"matchId": "2", "selection": "home", "stake": "20"})

	if rr := f.do(t, http.MethodPost, "/betslip/place", "u1", nil); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on lost debit response, got %d", rr.Code)
	}
	pending, _ := f.store.Load(context.Background(), "u1")
	if !pending.DebitPending || pending.PlacementID == "" {
		t.Fatalf("expected pending slip with placement id, got %+v", pending)
	}

	edits := map[string]struct {
		method string
		path   string
		body   any
	}{
		"add":    {method: http.MethodPost, path: "/betslip/items", body: map[string]any{"matchId": "1", "selection": "away"}},
		"stake":  {method: http.MethodPatch, path: "/betslip/items/1", body: map[string]any{"stake": "50"}},
		"remove": {method: http.MethodDelete, path: "/betslip/items/2"},
		"clear":  {method: http.MethodDelete, path: "/betslip"},
	}
	for name, e := range edits {
		t.Run(name, func(t *testing.T) {
			if rr := f.do(t, e.method, e.path, "u1", e.body); rr.Code != http.StatusConflict {
				t.Errorf("expected 409 while debit pending, got %d", rr.Code)
			}
		})
	}
	if s := decodeSummary(t, f.do(t, http.MethodGet, "/betslip", "u1", nil)); len(s.Items) != 2 || !s.DebitPending {
		t.Fatalf("pending slip must be untouched, got %+v", s)
	}

	if rr := f.do(t, http.MethodPost, "/betslip/place", "u1", nil); rr.Code != http.StatusCreated {
		t.Fatalf("expected retry to place, got %d: %s", rr.Code, rr.Body.String())
	}
	debits := 0
	for _, c := range f.wallet.Calls {
		if c.Method == "Debit" {
			debits++
			if c.Arguments.String(3) != pending.PlacementID {
				t.Errorf("expected reference %s on every debit, got %s", pending.PlacementID, c.Arguments.String(3))
			}
		}
	}
	if debits != 2 {
		t.Errorf("expected 2 debit attempts with one reference, got %d", debits)
	}
	f.bets.AssertNumberOfCalls(t, "Record", 2)
	if slip, _ := f.store.Load(context.Background(), "u1"); slip.Len() != 0 || slip.DebitPending {
		t.Errorf("expected consumed slip, got %+v", slip)
	}
}
