package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/crm-records/internal/httpx"
	"github.com/jcmexdev/crm-records/internal/pkg/cache"
	"github.com/jcmexdev/crm-records/internal/pkg/telemetry"
	"github.com/jcmexdev/crm-records/internal/service"
	"github.com/jcmexdev/crm-records/internal/store/sqlite"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "crm-server"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	dbPath := getEnv("CRM_DB_PATH", "./data/crm.db")
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		slog.Error("failed to open record store", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// The read cache is optional; without CRM_REDIS_ADDR every lookup hits
	// the store directly.
	var readCache cache.Cache
	if addr := os.Getenv("CRM_REDIS_ADDR"); addr != "" {
		readCache = cache.NewRedisCache(addr, "crm")
	}

	mutations := service.NewMutationService(repo)
	queries := service.NewQueryService(repo, readCache)

	handler := httpx.NewHandler(mutations, queries)
	router := httpx.NewRouter(handler)

	addr := ":" + getEnv("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("CRM API server running", "addr", addr, "db", dbPath)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
