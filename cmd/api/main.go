package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"

	"wellbeing-insights-go/internal/actions"
	"wellbeing-insights-go/internal/api"
	"wellbeing-insights-go/internal/directory"
	"wellbeing-insights-go/internal/ingest"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/recommend"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/season"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/theme"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "wellbeing-insights-go").Info("starting service")

	st, err := store.New(store.Config{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       cast.ToInt(os.Getenv("REDIS_DB")),
		PoolSize: cast.ToInt(os.Getenv("REDIS_POOL_SIZE")),
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}

	engine := risk.NewEngine(st, log)
	server := api.NewServer(api.Deps{
		Engine:    engine,
		Seasons:   season.NewAnalyzer(st, log),
		Themes:    theme.NewAnalyzer(st, log),
		Actions:   actions.NewLog(st, engine, log),
		Recommend: recommend.NewGenerator(st, log),
		Ingest:    ingest.NewService(st, log),
		Directory: directory.NewDirectory(st, log),
	}, log)

	mux := server.Router()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
