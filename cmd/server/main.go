package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/api"
	"github.com/user/agentlink-service/internal/config"
	"github.com/user/agentlink-service/internal/links"
	"github.com/user/agentlink-service/internal/monitoring"
	"github.com/user/agentlink-service/internal/notify"
	"github.com/user/agentlink-service/internal/qc"
	"github.com/user/agentlink-service/internal/scraper"
	"github.com/user/agentlink-service/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()
	redisStore := storage.NewRedisStore(cfg.RedisAddr, time.Duration(cfg.QCCacheTTL)*time.Second)

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Link pipeline: resolver -> normalizer -> QC engine
	resolveClient := &http.Client{Timeout: time.Duration(cfg.ResolveTimeout) * time.Second}
	resolver := links.NewResolver(resolveClient, redisStore, logger)
	normalizer := links.NewNormalizer(resolver, logger)

	qcClient := qc.NewClient(&http.Client{Timeout: 30 * time.Second}, cfg.QCProxyURL, cfg.QCAPIURL, cfg.QCAPIToken, logger)
	qcService := qc.NewService(normalizer, qcClient, redisStore, logger)

	// Collaborators: renderer and notifier
	pageScraper := scraper.NewScraper(cfg.ScrapeWorkers, time.Duration(cfg.ScrapeTimeout)*time.Second, logger, metrics)
	notifier := notify.NewTelegram(&http.Client{Timeout: 15 * time.Second}, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.CNYUSDRate, logger)

	// Initialize API Server
	server := api.NewServer(cfg, resolver, qcService, pageScraper, pgStore, redisStore, notifier, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
