package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"databank/internal/amqp"
	"databank/internal/config"
	"databank/internal/ingest"
	"databank/internal/log"
	"databank/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: "databank-load"})
	log.SetDefault(logger)

	cfg := config.Load()
	dataDir := flag.String("data", cfg.DataDir, "directory holding regions.csv, customer_nodes.csv and customer_transactions.csv")
	request := flag.String("request", "", "report request to publish after loading (e.g. \"all\"); requires AMQP_URL")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := ingest.LoadDir(ctx, repo, *dataDir); err != nil {
		logger.Error("Failed to load dataset", "error", err, "dir", *dataDir)
		os.Exit(1)
	}
	logger.Info("Dataset loaded", "dir", *dataDir, "duration_ms", time.Since(start).Milliseconds())

	if *request == "" {
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	if err := amqpClient.PublishReportRequest(ctx, *request); err != nil {
		logger.Error("Failed to publish report request", "error", err, "report", *request)
		os.Exit(1)
	}
	logger.Info("Report request published", "report", *request)
}
