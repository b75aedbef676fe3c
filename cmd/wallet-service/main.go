package main

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
	whttp "github.com/radieske/live-betting-platform/internal/wallet-service/http"
	wrepo "github.com/radieske/live-betting-platform/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("wallet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "wallet-service"), zap.String("env", cfg.Env))

	initial, err := decimal.NewFromString(cfg.InitialBalance)
	if err != nil {
		log.Fatal("invalid INITIAL_BALANCE", zap.String("value", cfg.InitialBalance), zap.Error(err))
	}

	// Conexão com Postgres para operações de carteira
	pg, err := db.ConnectPostgres(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := wrepo.NewPostgres(pg, initial)
	api := whttp.NewServer(log, repo)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8082
		Handler: api.Router(),
	}

	metrics.StartMetricsServer(cfg.MetricsPort, log, pg.PingContext)

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
