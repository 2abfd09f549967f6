package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/morozovaek/harvest-service/internal/config"
	logctx "github.com/morozovaek/harvest-service/internal/pkg/log"
	"github.com/morozovaek/harvest-service/internal/service"
	"github.com/morozovaek/harvest-service/internal/source"
	"github.com/morozovaek/harvest-service/internal/storage/postgres"
	"github.com/morozovaek/harvest-service/internal/storage/redismirror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting harvest-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := postgres.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	var opts []service.Option
	if cfg.Redis.URL != "" {
		mirror, err := redismirror.New(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			store.Close()
			os.Exit(1)
		}
		defer func() { _ = mirror.Close() }()

		opts = append(opts, service.WithMirror(mirror))
		log.Info("checkpoint_mirror_enabled")
	}

	// Тротлинг поверх источника: даже при большом бюджете вызовов прогон
	// не выжигает внешнюю квоту залпом. NoopSource — заглушка автономного
	// запуска, боевой транспорт подставляется здесь.
	src := source.NewThrottled(
		source.NoopSource{},
		rate.NewLimiter(rate.Limit(cfg.Harvest.RatePerSecond), 1),
	)

	svc := service.New(store, src, *cfg, opts...)
	log.Info("service_initialized")

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()
	log.Info("http_listen_start", slog.String("addr", cfg.HTTP.Addr()))

	go harvestLoop(rootCtx, log, svc, cfg)
	go cleanupLoop(rootCtx, log, svc, cfg)

	ready.Store(true)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpServer.Close()
	}
	shutdownCancel()

	rootCancel()
	store.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// harvestLoop запускает прогон fetcher-а сразу и далее по интервалу из
// конфига до отмены контекста.
func harvestLoop(ctx context.Context, log *slog.Logger, svc *service.Service, cfg *config.Config) {
	lctx := logctx.Into(ctx, log)
	keywords := cfg.ParsedKeywords()

	run := func() {
		opCtx, cancel := context.WithTimeout(lctx, cfg.Harvest.Interval)
		defer cancel()

		_, stats, err := svc.FetchFresh(opCtx, keywords, cfg.Harvest.TargetCount)
		if err != nil {
			log.Error("harvest_run_failed", slog.String("err", err.Error()))
			return
		}

		log.Info("harvest_run_ok",
			slog.Int("fresh", stats.FreshItems),
			slog.Int("api_calls", stats.APICalls),
			slog.Int("cache_hits", stats.CacheHits),
			slog.String("strategy", stats.Strategy),
		)
	}

	run()

	ticker := time.NewTicker(cfg.Harvest.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// cleanupLoop периодически чистит просроченный кэш и устаревшие чекпоинты.
func cleanupLoop(ctx context.Context, log *slog.Logger, svc *service.Service, cfg *config.Config) {
	lctx := logctx.Into(ctx, log)

	run := func() {
		opCtx, cancel := context.WithTimeout(lctx, cfg.Timeouts.Service)
		defer cancel()

		if _, err := svc.CleanupCache(opCtx); err != nil {
			log.Error("cache_cleanup_failed", slog.String("err", err.Error()))
		}
		if _, err := svc.CleanupStaleCheckpoints(opCtx); err != nil {
			log.Error("checkpoint_cleanup_failed", slog.String("err", err.Error()))
		}
	}

	ticker := time.NewTicker(cfg.Harvest.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
