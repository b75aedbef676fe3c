package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	bhttp "github.com/radieske/live-betting-platform/internal/bet-service/http"
	"github.com/radieske/live-betting-platform/internal/bet-service/odds"
	kpub "github.com/radieske/live-betting-platform/internal/bet-service/producer"
	"github.com/radieske/live-betting-platform/internal/bet-service/repo"
	"github.com/radieske/live-betting-platform/internal/bet-service/wallet"
	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/internal/shared/cache"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/kafka"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Postgres
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cotações do odds-processor e slips dos usuários
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic bet_placed)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	repository := repo.NewPostgres(pg)
	ledger := betslip.NewLedger(wallet.New(cfg.WalletURL), repository, kpub.NewKafkaPublisher(writer), log)
	slips := betslip.NewRedisStore(rdb, cfg.SessionTTL)
	ledger.Checkpoint = slips.Save

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_slip_placements_total", Help: "colocações por resultado"}, []string{"outcome"})
	prometheus.MustRegister(placements)

	api := bhttp.NewServer(log, slips, odds.NewValidator(rdb), ledger, repository)
	api.OnPlaced = func(outcome string) { placements.WithLabelValues(outcome).Inc() }

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	metrics.StartMetricsServer(cfg.MetricsPort, log, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
