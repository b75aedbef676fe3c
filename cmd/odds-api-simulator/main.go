package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	simulator "github.com/radieske/live-betting-platform/internal/odds-api-simulator"
	"github.com/radieske/live-betting-platform/internal/shared/config"
	"github.com/radieske/live-betting-platform/internal/shared/logger"
	"github.com/radieske/live-betting-platform/internal/shared/metrics"
)

var requests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "odds_api_simulator_requests_total",
	Help: "requisições atendidas por status",
}, []string{"status"})

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(requests)

	// SIMULATOR_API_KEY vazio aceita qualquer chave não vazia
	srv := simulator.NewServer(log, nil, os.Getenv("SIMULATOR_API_KEY"), nil)
	srv.OnRequest = func(status int) { requests.WithLabelValues(strconv.Itoa(status)).Inc() }

	metrics.StartMetricsServer(cfg.MetricsPort, log, nil)

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("odds api simulator running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/v4/sports/{sport}/odds"),
	)
	if err := http.ListenAndServe(publicAddr, srv.Router()); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
