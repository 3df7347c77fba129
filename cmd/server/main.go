package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/cron"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("FlashDeck Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("max_update_retries=%d", cfg.MaxUpdateRetries)
	log.Debug("streak_sweep_at=%s", cfg.StreakSweepAt)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	store := sqlite.NewStore(database.DB)
	srv := api.NewServer(store, services.SettingsFromConfig(cfg))

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	queue := jobs.NewWorkerQueue(pool, srv.StatsService)
	scheduler, err := cron.New(queue, cfg.Location(), cfg.StreakSweepAt)
	if err != nil {
		log.Error("failed to create scheduler: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	scheduler.Start()

	// Catch up on streaks that lapsed while the server was down.
	if err := queue.EnqueueStreakSweep(); err != nil {
		log.Warn("failed to enqueue startup streak sweep: %v", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("draining worker pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("FlashDeck Server Stopped")
	log.Info("===========================================")
}
