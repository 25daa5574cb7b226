package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/riftscope/riftscope/internal/adapters/http/api"
	"github.com/riftscope/riftscope/internal/adapters/repository"
	"github.com/riftscope/riftscope/internal/adapters/riot"
	service "github.com/riftscope/riftscope/internal/app"
	"github.com/riftscope/riftscope/internal/config"
	"github.com/riftscope/riftscope/pkg/logger"
	"github.com/riftscope/riftscope/pkg/metrics"
)

// HTTP server timeout constants. WriteTimeout stays generous because the
// analyze endpoint holds one response open for the whole pipeline.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the system updater below feeds the custom registry instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	var cache riot.Cache
	if cfg.CacheBackend == "redis" {
		cache = riot.NewRedisCache(cfg.RedisAddr)
	} else {
		cache = riot.NewMemoryCache(cfg.CacheSize)
	}

	gateway := riot.New(
		riot.WithAPIKey(cfg.RiotAPIKey),
		riot.WithLimits(cfg.RiotMaxConcurrent, cfg.RiotRequestsPerSec),
		riot.WithCache(cache),
	)

	store := repository.NewMemStore()

	svc := service.New(
		service.WithLogger(loggerInstance),
		service.WithGateway(gateway),
		service.WithStore(store),
		service.WithMaxConcurrentAnalyses(cfg.MaxConcurrentAnalyses),
		service.WithMatchHistoryCount(cfg.MatchHistoryCount),
		service.WithLaneLeadWindow(float64(cfg.LaneLeadTargetMinute), cfg.LaneLeadMatchLimit),
		service.WithQueuePollInterval(time.Duration(cfg.QueuePollIntervalMS)*time.Millisecond),
		service.WithPinnedStaticVersion(cfg.DDragonVersion),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater feeds process health gauges on a fixed interval.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
