package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/auth"
)

// Targets são as URLs base dos serviços internos
type Targets struct {
	Odds   string
	Bet    string
	Wallet string
	Admin  string
}

// Gateway é o único ponto exposto ao navegador: resolve a sessão e
// repassa as chamadas com X-User-ID / X-User-Admin preenchidos
type Gateway struct {
	log      *zap.Logger
	authn    auth.Authenticator
	authAPI  *auth.Handler
	odds     *url.URL
	bet      *url.URL
	wallet   *url.URL
	admin    *url.URL
	OnServed func(route string, status int)
}

func New(log *zap.Logger, authn auth.Authenticator, authAPI *auth.Handler, t Targets) (*Gateway, error) {
	g := &Gateway{log: log, authn: authn, authAPI: authAPI}
	for _, p := range []struct {
		raw string
		dst **url.URL
	}{{t.Odds, &g.odds}, {t.Bet, &g.bet}, {t.Wallet, &g.wallet}, {t.Admin, &g.admin}} {
		u, err := url.Parse(p.raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream url %q", p.raw)
		}
		*p.dst = u
	}
	return g, nil
}

func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(g.observe)
	r.Use(auth.Middleware(g.authn, g.log))

	g.authAPI.Routes(r)

	// feed público: /api/x -> /v1/x
	odds := g.proxy(g.odds, func(p string) string { return "/v1" + strings.TrimPrefix(p, "/api") })
	r.Get("/api/sports", odds.ServeHTTP)
	r.Get("/api/flashes", odds.ServeHTTP)
	r.Get("/api/matches", odds.ServeHTTP)
	r.Get("/api/matches/{id}", odds.ServeHTTP)
	r.Get("/ws", g.proxy(g.odds, same).ServeHTTP)

	stripAPI := func(p string) string { return strings.TrimPrefix(p, "/api") }

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		bet := g.proxy(g.bet, stripAPI)
		r.Handle("/api/betslip", bet)
		r.Handle("/api/betslip/*", bet)
		r.Get("/api/bets", bet.ServeHTTP)

		// depósito e débito ficam só na rede interna
		wallet := g.proxy(g.wallet, stripAPI)
		r.Get("/api/wallet", wallet.ServeHTTP)
		r.Get("/api/wallet/ledger", wallet.ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		admin := g.proxy(g.admin, stripAPI)
		r.Handle("/api/admin/configs", admin)
		r.Handle("/api/admin/configs/*", admin)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

func same(p string) string { return p }

func (g *Gateway) proxy(target *url.URL, path func(string) string) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = path(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			g.log.Warn("upstream failed", zap.String("upstream", target.Host), zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
		},
	}
}

// observe reporta o padrão de rota do chi e o status final
func (g *Gateway) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if g.OnServed == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		g.OnServed(route, status)
	})
}
