package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/admin"
	ahttp "github.com/radieske/live-betting-platform/internal/admin/http"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("admin-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "admin-service"), zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	api := ahttp.NewServer(log, admin.NewPostgres(pg))
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8084
		Handler: api.Router(),
	}

	metrics.StartMetricsServer(cfg.MetricsPort, log, pg.PingContext)

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
