package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jlin/opinion-data/internal/api"
	"github.com/jlin/opinion-data/internal/config"
	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/database"
	"github.com/jlin/opinion-data/internal/history"
	"github.com/jlin/opinion-data/internal/model"
	"github.com/jlin/opinion-data/internal/router"
	"github.com/jlin/opinion-data/internal/server"
	"github.com/jlin/opinion-data/internal/store"
	"github.com/jlin/opinion-data/internal/topic"
	"github.com/jlin/opinion-data/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/topicd.local.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Instance.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting topicd",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", *configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Topic store
	topicStore := store.New(cfg.Cache.MaxSize)

	// REST API client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Topic service (blocking initial load)
	topicService := topic.NewService(topic.Config{
		ReconcileInterval:  cfg.Topics.ReconcileInterval,
		PageSize:           cfg.Topics.PageSize,
		InitialLoadTimeout: cfg.Topics.InitialLoadTimeout,
		DefaultLimit:       cfg.Server.DefaultLimit,
		MaxLimit:           cfg.Server.MaxLimit,
	}, apiClient, topicStore, logger)

	logger.Info("loading topics...")
	if err := topicService.Start(ctx); err != nil {
		logger.Error("failed to start topic service", "error", err)
		os.Exit(1)
	}
	defer stopComponent(topicService.Stop, logger, "topic service")

	// Optional price history pipeline
	var historyCh chan model.PriceRecord
	if cfg.History.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		historyCh = make(chan model.PriceRecord, cfg.History.BufferSize)
		historyWriter := history.NewWriter(history.Config{
			BatchSize:     cfg.History.BatchSize,
			FlushInterval: cfg.History.FlushInterval,
			BufferSize:    cfg.History.BufferSize,
		}, historyCh, pool, logger)

		if err := historyWriter.Start(ctx); err != nil {
			logger.Error("failed to start history writer", "error", err)
			os.Exit(1)
		}
		defer stopComponent(historyWriter.Stop, logger, "history writer")
	}

	// WebSocket connection manager
	connManager := connection.NewManager(connection.ManagerConfig{
		URL:                cfg.WebSocket.URL,
		APIKey:             cfg.WebSocket.APIKey,
		HeartbeatInterval:  cfg.WebSocket.HeartbeatInterval,
		ReconnectBaseDelay: cfg.WebSocket.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.WebSocket.ReconnectMaxDelay,
		MessageBufferSize:  cfg.WebSocket.BufferSize,
	}, topicStore, logger)

	if err := connManager.Start(ctx); err != nil {
		logger.Error("failed to start connection manager", "error", err)
		os.Exit(1)
	}
	defer stopComponent(connManager.Stop, logger, "connection manager")

	// Message router
	msgRouter := router.New(connManager.Messages(), topicStore, historyCh, logger)
	if err := msgRouter.Start(ctx); err != nil {
		logger.Error("failed to start message router", "error", err)
		os.Exit(1)
	}
	defer stopComponent(msgRouter.Stop, logger, "message router")

	// HTTP server
	httpServer := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		DefaultLimit: cfg.Server.DefaultLimit,
		MaxLimit:     cfg.Server.MaxLimit,
	}, topicService, topicStore, connManager, logger)
	httpServer.Start()
	defer stopComponent(httpServer.Stop, logger, "http server")

	logger.Info("topicd running",
		"instance_id", cfg.Instance.ID,
		"topics", topicStore.Count(),
		"http_addr", cfg.Server.Host,
		"http_port", cfg.Server.Port,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
}

// stopComponent runs a component's Stop with a bounded context.
func stopComponent(stop func(context.Context) error, logger *slog.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Warn("component stop failed", "component", name, "error", err)
	}
}

// parseLogLevel maps a config string to a slog level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
