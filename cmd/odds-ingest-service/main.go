package main

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/admin"
	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/internal/odds-ingest/provider"
	"github.com/radieske/live-betting-platform/internal/odds-ingest/publisher"
	"github.com/radieske/live-betting-platform/internal/odds-ingest/service"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("Kafka brokers", zap.String("brokers", cfg.KafkaBrokers))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// configuração ativa do provedor fica no Postgres (admin-service)
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicOddsUpdates, cfg.Env, log)
	defer pub.Close()

	polls := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_ingest_polls_total", Help: "polls por origem e resultado"}, []string{"origin", "result"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_ingest_published_total", Help: "eventos publicados por origem e resultado"}, []string{"source", "result"})
	perturbations := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_perturbations_total", Help: "passos de perturbação com mudança"})
	prometheus.MustRegister(polls, published, perturbations)

	clk := clock.New()
	feed := odds.NewFeed(clk, cfg.OddsFlashDuration)
	src := &provider.Source{Configs: admin.NewPostgres(pg), API: provider.NewTheOddsAPI(), Log: log}

	ingest := service.New(feed, src, pub, clk, log)
	ingest.OnPoll = func(origin string, err error) { polls.WithLabelValues(origin, result(err)).Inc() }
	ingest.OnPublish = func(source string, err error) { published.WithLabelValues(source, result(err)).Inc() }
	ingest.Warmup()

	// primeiro poll imediato; depois no agendamento do cron
	ingest.PollJob(ctx)()
	c := cron.New()
	if _, err := c.AddFunc(cfg.OddsPollSchedule, ingest.PollJob(ctx)); err != nil {
		log.Fatal("invalid poll schedule", zap.String("schedule", cfg.OddsPollSchedule), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	perturber := &odds.Perturber{
		Feed:     feed,
		Clock:    clk,
		Interval: cfg.OddsPerturbInterval,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:      log,
		OnChange: func(ctx context.Context, ch odds.Change, m sports.Match) {
			perturbations.Inc()
			ingest.PublishChange(ctx, ch, m)
		},
	}
	go perturber.Run(ctx)

	metrics.StartMetricsServer(cfg.MetricsPort, log, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	<-ctx.Done()
	log.Info("shutdown signal received")
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
