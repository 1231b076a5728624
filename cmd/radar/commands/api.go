package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hfcipriano/stock-radar-br/internal/api"
	"github.com/hfcipriano/stock-radar-br/internal/api/handlers"
	"github.com/hfcipriano/stock-radar-br/internal/brapi"
	"github.com/hfcipriano/stock-radar-br/internal/scheduler"
	"github.com/hfcipriano/stock-radar-br/internal/scheduler/jobs"
	"github.com/hfcipriano/stock-radar-br/internal/screener"
	"github.com/hfcipriano/stock-radar-br/pkg/config"
	"github.com/hfcipriano/stock-radar-br/pkg/httputil"
	"github.com/hfcipriano/stock-radar-br/pkg/logger"
	"github.com/hfcipriano/stock-radar-br/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the screener API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health
  GET  /api/screener          - ranked screener (method, peTarget, evEbitdaTarget, limit)
  GET  /api/screener/top      - Graham top-discounted variant (limit)

Example:
  radar api
  radar api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to Redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 4. Build the fetcher: HTTP client -> brapi client -> cache decorator
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Brapi.Timeout)
	if redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "radar")
		httpClient.WithRateLimiter(limiter, redis.BrapiRateLimit)
	}

	brapiClient := brapi.NewClient(cfg, httpClient, log)

	var fetcher screener.Fetcher = brapiClient
	if redisClient.Enabled() {
		cache := redis.NewCache(redisClient, "radar")
		fetcher = screener.NewCachedFetcher(brapiClient, cache, log)
	}

	// 5. Create the screener
	scr := screener.New(fetcher, screener.Config{
		UniverseLimit: cfg.Screener.UniverseLimit,
		BatchSize:     cfg.Screener.BatchSize,
		Workers:       cfg.Screener.Workers,
		TopFloor:      cfg.Screener.TopFloor,
	}, log)

	// 6. Handlers, router, server
	screenerHandler := handlers.NewScreenerHandler(scr, cfg, log)
	router := api.NewRouter(screenerHandler, log)
	server := api.New(cfg, log, router)

	// 7. Optional cache-warm scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		job := jobs.NewSnapshotRefreshJob(scr, cfg.Screener.DefaultLimit, cfg.Scheduler.Schedule, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule snapshot refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
