package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	gateway "github.com/radieske/live-betting-platform/internal/api-gateway"
	"github.com/radieske/live-betting-platform/internal/auth"
	"github.com/radieske/live-betting-platform/internal/bet-service/wallet"
	"github.com/radieske/live-betting-platform/internal/shared/cache"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
)

var requests = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "gateway_requests_total", Help: "Requisições atendidas pelo gateway"},
	[]string{"route", "code"},
)

func main() {
	cfg := config.Load()

	log, err := logger.New("api-gateway", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "api-gateway"), zap.String("env", cfg.Env))

	prometheus.MustRegister(requests)

	ctx := context.Background()
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	svc := auth.NewService(
		auth.NewUsers(pg),
		auth.NewSessions(rdb, cfg.SessionTTL),
		strings.Split(cfg.AdminUsernames, ","),
		log,
	)

	gw, err := gateway.New(log, svc, auth.NewHandler(svc, wallet.New(cfg.WalletURL), log), gateway.Targets{
		Odds:   cfg.OddsURL,
		Bet:    cfg.BetURL,
		Wallet: cfg.WalletURL,
		Admin:  cfg.AdminURL,
	})
	if err != nil {
		log.Fatal("gateway config", zap.Error(err))
	}
	gw.OnServed = func(route string, status int) {
		requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}

	metrics.StartMetricsServer(cfg.MetricsPort, log, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, gw.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
