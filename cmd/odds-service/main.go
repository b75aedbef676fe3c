package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/internal/odds-service/cache"
	httpapi "github.com/radieske/live-betting-platform/internal/odds-service/http"
	"github.com/radieske/live-betting-platform/internal/odds-service/listener"
	"github.com/radieske/live-betting-platform/internal/odds-service/repo"
	"github.com/radieske/live-betting-platform/internal/odds-service/ws"
	sharedcache "github.com/radieske/live-betting-platform/internal/shared/cache"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "odds_ws_connections",
		Help: "conexões websocket abertas",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odds_ws_messages_sent_total",
		Help: "mensagens enviadas aos clientes websocket",
	})
	feedUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odds_feed_updates_total",
		Help: "atualizações aplicadas no feed por origem",
	}, []string{"source"})
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	prometheus.MustRegister(wsConnections, wsMessagesSent, feedUpdates)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	readRepo := &repo.ReadRepo{DB: pg}
	feed := odds.NewFeed(nil, cfg.OddsFlashDuration)
	resync(ctx, feed, readRepo, log)

	hub := ws.NewHub(func(*http.Request) bool { return true }, log)
	hub.OnConnect = wsConnections.Inc
	hub.OnDisconnect = wsConnections.Dec
	hub.OnSent = wsMessagesSent.Inc

	// Subscription e resync disputam o mesmo feed: vale a última escrita
	apply := func(source string, m sports.Match) {
		feed.Apply(m)
		feedUpdates.WithLabelValues(source).Inc()
		hub.Broadcast(ws.OddsUpdate{MatchID: m.ID, Payload: m})
	}

	switch cfg.FeedSubscription {
	case "postgres":
		l := &listener.Listener{
			DSN:     cfg.PostgresDSN,
			Loader:  readRepo,
			Log:     log,
			OnMatch: func(m sports.Match) { apply("postgres", m) },
		}
		go func() {
			if err := l.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("postgres listener stopped", zap.Error(err))
			}
		}()
	default:
		ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, log, func(u events.OddsUpdate) {
			apply("redis", u.Match)
		})
	}
	log.Info("feed subscription started", zap.String("mode", cfg.FeedSubscription))

	// polling cobre mensagens perdidas enquanto a subscription reconecta
	c := cron.New()
	if _, err := c.AddFunc(cfg.OddsPollSchedule, func() { resync(ctx, feed, readRepo, log) }); err != nil {
		log.Fatal("invalid poll schedule", zap.String("schedule", cfg.OddsPollSchedule), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	api := &httpapi.API{
		Feed:     feed,
		ReadRepo: readRepo,
		Cache:    cache.New(redisClient),
		WS:       hub.HandleWS,
		Log:      log,
	}
	apiSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: api.Router()}

	metrics.StartMetricsServer(cfg.MetricsPort, log, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return redisClient.Ping(ctx).Err()
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
	}()

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api server failed", zap.Error(err))
	}
	log.Info("odds-service stopped")
}

// resync recarrega todas as partidas do banco; banco vazio mantém o que o feed já tem
// (na primeira carga, o seed estático)
func resync(ctx context.Context, feed *odds.Feed, r *repo.ReadRepo, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	matches, err := r.ListMatches(ctx)
	if err != nil {
		log.Warn("feed resync failed", zap.Error(err))
		if feed.Len() == 0 {
			feed.Replace(odds.Seed())
		}
		return
	}
	if len(matches) == 0 {
		if feed.Len() == 0 {
			feed.Replace(odds.Seed())
		}
		return
	}
	feed.Replace(matches)
	log.Debug("feed resynced", zap.Int("matches", len(matches)))
}
