package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowradar/flowradar/internal/app"
	"github.com/flowradar/flowradar/internal/configs"
	"github.com/flowradar/flowradar/internal/domain/repository"
	"github.com/flowradar/flowradar/internal/infra/metrics"
	"github.com/flowradar/flowradar/internal/infra/storage/memory"
	"github.com/flowradar/flowradar/internal/infra/storage/pg"
	"github.com/flowradar/flowradar/internal/infra/storage/redis"
	"github.com/flowradar/flowradar/internal/infra/transport/rest"
)

func main() {
	cfg := configs.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		log.Error("failed to build history store", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	svc := app.NewService(store, m, log)
	router := rest.NewRouter(svc, m, registry, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "history_backend", cfg.HistoryBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
		os.Exit(1)
	}

	log.Info("server exited")
}

func buildStore(cfg *configs.Config) (repository.HistoryStore, func(), error) {
	switch cfg.HistoryBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close db", "err", err)
			}
		}
		return pg.NewHistoryStore(db, cfg.HistoryCapacity, cfg.SnapshotCapacity), cleanup, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				slog.Error("failed to close redis client", "err", err)
			}
		}
		return redis.NewHistoryStore(client, cfg.HistoryCapacity, cfg.SnapshotCapacity), cleanup, nil

	default:
		return memory.NewHistoryStore(cfg.HistoryCapacity, cfg.SnapshotCapacity), func() {}, nil
	}
}
