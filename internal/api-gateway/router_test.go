package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/auth"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
)

type tokens map[string]auth.User

func (t tokens) Authenticate(_ context.Context, token string) (auth.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return auth.User{}, auth.ErrUnauthenticated
}

type noUsers struct{}

func (noUsers) Create(context.Context, auth.User, string) (auth.User, error) {
	return auth.User{}, auth.ErrUserExists
}
func (noUsers) FindByLogin(context.Context, string) (auth.User, string, error) {
	return auth.User{}, "", auth.ErrInvalidCredentials
}
func (noUsers) Get(context.Context, string) (auth.User, error) {
	return auth.User{}, auth.ErrUnauthenticated
}

type noSessions struct{}

func (noSessions) Create(context.Context, string) (string, error) { return "", auth.ErrUnauthenticated }
func (noSessions) Lookup(context.Context, string) (string, error) { return "", auth.ErrUnauthenticated }
func (noSessions) Delete(context.Context, string) error           { return nil }

type seen struct {
	Upstream string `json:"upstream"`
	Path     string `json:"path"`
	Query    string `json:"query"`
	UserID   string `json:"userId"`
	Admin    string `json:"admin"`
}

func upstream(t *testing.T, name string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(seen{
			Upstream: name,
			Path:     r.URL.Path,
			Query:    r.URL.RawQuery,
			UserID:   r.Header.Get(headers.UserID),
			Admin:    r.Header.Get(headers.UserAdmin),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T) (http.Handler, map[string]int) {
	svc := auth.NewService(noUsers{}, noSessions{}, nil, zap.NewNop())
	g, err := New(zap.NewNop(), tokens{
		"user":  {ID: "u1"},
		"admin": {ID: "a1", IsAdmin: true},
	}, auth.NewHandler(svc, nil, zap.NewNop()), Targets{
		Odds:   upstream(t, "odds").URL,
		Bet:    upstream(t, "bet").URL,
		Wallet: upstream(t, "wallet").URL,
		Admin:  upstream(t, "admin").URL,
	})
	require.NoError(t, err)

	served := map[string]int{}
	g.OnServed = func(route string, _ int) { served[route]++ }
	return g.Router(), served
}

func TestRouting(t *testing.T) {
	tests := map[string]struct {
		method    string
		path      string
		token     string
		wantCode  int
		wantUp    string
		wantPath  string
		wantUser  string
		wantAdmin string
	}{
		"matches are public":       {method: http.MethodGet, path: "/api/matches?sport=football", wantCode: 200, wantUp: "odds", wantPath: "/v1/matches"},
		"single match":             {method: http.MethodGet, path: "/api/matches/3", wantCode: 200, wantUp: "odds", wantPath: "/v1/matches/3"},
		"sports":                   {method: http.MethodGet, path: "/api/sports", wantCode: 200, wantUp: "odds", wantPath: "/v1/sports"},
		"betslip needs a session":  {method: http.MethodGet, path: "/api/betslip", wantCode: 401},
		"betslip with session":     {method: http.MethodPost, path: "/api/betslip/items", token: "user", wantCode: 200, wantUp: "bet", wantPath: "/betslip/items", wantUser: "u1", wantAdmin: "false"},
		"bet history":              {method: http.MethodGet, path: "/api/bets", token: "user", wantCode: 200, wantUp: "bet", wantPath: "/bets", wantUser: "u1", wantAdmin: "false"},
		"wallet balance":           {method: http.MethodGet, path: "/api/wallet", token: "user", wantCode: 200, wantUp: "wallet", wantPath: "/wallet", wantUser: "u1", wantAdmin: "false"},
		"deposit is not exposed":   {method: http.MethodPost, path: "/api/wallet/deposit", token: "user", wantCode: 404},
		"admin forbidden for user": {method: http.MethodGet, path: "/api/admin/configs", token: "user", wantCode: 403},
		"admin activate":           {method: http.MethodPost, path: "/api/admin/configs/abc/activate", token: "admin", wantCode: 200, wantUp: "admin", wantPath: "/admin/configs/abc/activate", wantUser: "a1", wantAdmin: "true"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newGateway(t)
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tc.wantCode, rr.Code, rr.Body.String())
			if tc.wantUp == "" {
				return
			}
			var got seen
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tc.wantUp, got.Upstream)
			assert.Equal(t, tc.wantPath, got.Path)
			assert.Equal(t, tc.wantUser, got.UserID)
			assert.Equal(t, tc.wantAdmin, got.Admin)
		})
	}
}

func TestSpoofedIdentityNeverReachesUpstream(t *testing.T) {
	h, _ := newGateway(t)
	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	req.Header.Set(headers.UserID, "victim")
	req.Header.Set(headers.UserAdmin, "true")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var got seen
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Empty(t, got.UserID)
	assert.Empty(t, got.Admin)
}

func TestUpstreamDownReturnsBadGateway(t *testing.T) {
	svc := auth.NewService(noUsers{}, noSessions{}, nil, zap.NewNop())
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	g, err := New(zap.NewNop(), tokens{}, auth.NewHandler(svc, nil, zap.NewNop()), Targets{
		Odds: dead.URL, Bet: dead.URL, Wallet: dead.URL, Admin: dead.URL,
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sports", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestObserveUsesRoutePattern(t *testing.T) {
	h, served := newGateway(t)
	for _, p := range []string{"/api/matches/1", "/api/matches/2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	assert.Equal(t, 2, served["/api/matches/{id}"])
}

func TestNewRejectsBadTargets(t *testing.T) {
	_, err := New(zap.NewNop(), tokens{}, nil, Targets{Odds: "not a url"})
	assert.Error(t, err)
}
