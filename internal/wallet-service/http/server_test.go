package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/wallet-service/repo"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetOrCreateWallet(ctx context.Context, userID string) (repo.Wallet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repo.Wallet), args.Error(1)
}

func (m *mockRepo) Deposit(ctx context.Context, userID string, amount decimal.Decimal, ref string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount.String(), ref)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockRepo) Debit(ctx context.Context, userID string, amount decimal.Decimal, ref string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount.String(), ref)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockRepo) Ledger(ctx context.Context, userID string, limit int) ([]repo.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	var out []repo.LedgerEntry
	if args.Get(0) != nil {
		out = args.Get(0).([]repo.LedgerEntry)
	}
	return out, args.Error(1)
}

func doRequest(t *testing.T, h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(headers.UserID, userID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetWallet(t *testing.T) {
	m := &mockRepo{}
	m.On("GetOrCreateWallet", mock.Anything, "u1").Return(repo.Wallet{ID: "w1", UserID: "u1", Balance: decimal.RequireFromString("1250.00")}, nil)

	rr := doRequest(t, NewServer(zap.NewNop(), m).Router(), http.MethodGet, "/wallet", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var got struct {
		UserID  string `json:"userId"`
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.UserID != "u1" || got.Balance != "1250" {
		t.Errorf("unexpected body: %+v", got)
	}
	m.AssertExpectations(t)
}

func TestGetWalletRequiresUser(t *testing.T) {
	m := &mockRepo{}
	rr := doRequest(t, NewServer(zap.NewNop(), m).Router(), http.MethodGet, "/wallet", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	m.AssertNotCalled(t, "GetOrCreateWallet", mock.Anything, mock.Anything)
}

func TestDebit(t *testing.T) {
	tests := map[string]struct {
		body     string
		repoErr  error
		callRepo bool
		wantCode int
	}{
		"ok":                 {body: `{"amount":"30","externalRef":"p1"}`, callRepo: true, wantCode: http.StatusOK},
		"insufficient funds": {body: `{"amount":"30","externalRef":"p1"}`, callRepo: true, repoErr: repo.ErrInsufficientFunds, wantCode: http.StatusPaymentRequired},
		"unknown wallet":     {body: `{"amount":"30","externalRef":"p1"}`, callRepo: true, repoErr: repo.ErrNotFound, wantCode: http.StatusNotFound},
		"duplicate ref":      {body: `{"amount":"30","externalRef":"p1"}`, callRepo: true, repoErr: repo.ErrDuplicateRef, wantCode: http.StatusConflict},
		"db down":            {body: `{"amount":"30","externalRef":"p1"}`, callRepo: true, repoErr: errors.New("boom"), wantCode: http.StatusInternalServerError},
		"missing ref":        {body: `{"amount":"30"}`, wantCode: http.StatusBadRequest},
		"negative amount":    {body: `{"amount":"-1","externalRef":"p1"}`, wantCode: http.StatusBadRequest},
		"zero amount":        {body: `{"amount":"0","externalRef":"p1"}`, wantCode: http.StatusBadRequest},
		"bad json":           {body: `{`, wantCode: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := &mockRepo{}
			if tc.callRepo {
				m.On("Debit", mock.Anything, "u1", "30", "p1").Return(decimal.RequireFromString("1220"), tc.repoErr)
			}

			rr := doRequest(t, NewServer(zap.NewNop(), m).Router(), http.MethodPost, "/wallet/debit", "u1", tc.body)
			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d: %s", tc.wantCode, rr.Code, rr.Body.String())
			}
			if !tc.callRepo {
				m.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestDepositCreatesWalletFirst(t *testing.T) {
	m := &mockRepo{}
	m.On("GetOrCreateWallet", mock.Anything, "u1").Return(repo.Wallet{ID: "w1", UserID: "u1"}, nil)
	m.On("Deposit", mock.Anything, "u1", "100.5", "").Return(decimal.RequireFromString("1350.5"), nil)

	rr := doRequest(t, NewServer(zap.NewNop(), m).Router(), http.MethodPost, "/wallet/deposit", "u1", `{"amount":"100.50"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	m.AssertExpectations(t)
}
