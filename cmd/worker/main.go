package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hexagonal/application/stereotype"
	"hexagonal/cmd"
	"hexagonal/config"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
)

func init() {
	stereotype.MustRegister[*gormdb.OutboxWorker](stereotype.Worker, "outbox-relay")
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infra, err := cmd.OpenInfrastructure(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	worker, err := gormdb.NewOutboxWorker(
		gormdb.NewOutboxRepository(infra.DB),
		&gormdb.LoggingOutboxPublisher{},
		cfg.Worker.PollInterval,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Strings("components", componentNames()),
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Outbox worker stopped")
	return nil
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}

func componentNames() []string {
	components := stereotype.Default().Components()
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.String()
	}
	return names
}
