package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/manas-yu/user-transaction-visualizer/internal/config"
	"github.com/manas-yu/user-transaction-visualizer/internal/graph"
	"github.com/manas-yu/user-transaction-visualizer/internal/logging"
	"github.com/manas-yu/user-transaction-visualizer/internal/repository"
	"github.com/manas-yu/user-transaction-visualizer/internal/seed"
	"github.com/manas-yu/user-transaction-visualizer/internal/service"
)

func main() {
	var (
		numUsers = flag.Int("users", 0, "Number of users to generate (0 uses the default)")
		numTxs   = flag.Int("transactions", 0, "Number of transactions to generate (0 uses the default)")
		randSeed = flag.Int64("seed", 0, "Random seed (0 derives one from the clock)")
		workers  = flag.Int("workers", 4, "Number of concurrent ingestion workers")
	)
	flag.Parse()

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
	logger = logger.With(zap.String("component", "seed"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	genCfg := seed.DefaultConfig()
	genCfg.NumUsers = *numUsers
	genCfg.NumTransactions = *numTxs
	genCfg.Seed = *randSeed

	dataset, err := seed.New(genCfg).Generate(ctx)
	if err != nil {
		logger.Fatal("generate dataset", zap.Error(err))
	}

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
			logger.Warn("close graph client", zap.Error(err))
		}
	}()

	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx, cfg.Schema.MaxAttempts, cfg.Schema.RetryDelay); err != nil {
		logger.Fatal("ensure graph schema", zap.Error(err))
	}

	svc := service.New(repo, logger, cfg.Graph.MaxConnections)
	ingestor := service.NewBulkIngestor(svc, *workers)

	start := time.Now()
	logger.Info("ingesting users", zap.Int("count", len(dataset.Users)), zap.Int("workers", *workers))
	if err := ingestor.IngestUsers(ctx, dataset.Users); err != nil {
		logger.Fatal("user ingestion failed", zap.Error(err))
	}

	logger.Info("ingesting transactions", zap.Int("count", len(dataset.Transactions)))
	if err := ingestor.IngestTransactions(ctx, dataset.Transactions); err != nil {
		logger.Fatal("transaction ingestion failed", zap.Error(err))
	}

	logger.Info("seeding complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int("users", len(dataset.Users)),
		zap.Int("transactions", len(dataset.Transactions)))
}
