package main

import (
	"context"
	"log"
	"syscall"
	"time"

	"os/signal"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/service"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/strategy"
	inventoryHttp "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/transport/http"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/config"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/db"
	kafka2 "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/kafka"
	outbox "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/worker"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad("./config/inventory.local.yaml")

	tp, err := utils.InitTracer(ctx, "inventory-service")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: cfg.Logger.Level,
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	strat, err := strategy.ParseStrategy(cfg.Inventory.Strategy)
	if err != nil {
		log.Fatalf("Invalid reservation strategy: %v", err)
	}

	logger.Info("inventory service started!")

	batchRepository := repository.NewBatchRepository(pool, logger)
	outboxRepository := outbox.NewOutboxRepository(pool, logger)
	inventoryService := service.NewInventoryService(batchRepository, outboxRepository, pool, strat, logger)
	inventoryHandler := inventoryHttp.NewInventoryHandler(inventoryService, logger)

	kafkaProducer, err := kafka2.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepository, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New()
	inventoryHttp.RegisterRoutes(app, inventoryHandler, strat)

	port := cfg.HTTP.Port

	go func() {
		log.Println("HTTP Inventory service listening on port: " + port)
		if err := app.Listen(port); err != nil {
			log.Fatalf("Error listening HTTP on port %v: %v", port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("Stopped HTTP server successfully")
	}

	if err := kafkaProducer.Close(); err != nil {
		log.Printf("Error closing kafka producer: %v", err)
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
