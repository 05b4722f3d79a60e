package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/manas-yu/user-transaction-visualizer/internal/config"
	"github.com/manas-yu/user-transaction-visualizer/internal/graph"
	"github.com/manas-yu/user-transaction-visualizer/internal/logging"
	"github.com/manas-yu/user-transaction-visualizer/internal/repository"
	"github.com/manas-yu/user-transaction-visualizer/internal/server"
	"github.com/manas-yu/user-transaction-visualizer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		logger.Fatal("connect to graph store", zap.Error(err))
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Error("close graph client", zap.Error(err))
		}
	}()

	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx, cfg.Schema.MaxAttempts, cfg.Schema.RetryDelay); err != nil {
		logger.Fatal("ensure graph schema", zap.Error(err))
	}

	svc := service.New(repo, logger, cfg.Graph.MaxConnections)
	handlers := server.NewHandlers(logger, svc)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         server.StoreProbe(client),
		API:            handlers,
		AllowedOrigins: splitOrigins(cfg.HTTP.AllowedOriginsCSV),
		ReleaseMode:    cfg.Logging.Env == "production",
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}

	logger.Info("server exited")
}

func splitOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(csv, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
