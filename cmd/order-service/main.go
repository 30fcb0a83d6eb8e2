package main

import (
	"context"
	"log"
	"syscall"
	"time"

	"os/signal"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/client"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/service"
	orderHttp "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/transport/http"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/config"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/db"
	kafka2 "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/kafka"
	outbox "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/worker"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad("./config/order.local.yaml")

	tp, err := utils.InitTracer(ctx, "order-service")
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

	logger.Info("order service started!")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	orderRepository := repository.NewOrderRepository(pool, logger)
	outboxRepository := outbox.NewOutboxRepository(pool, logger)
	inventoryClient := client.NewInventoryClient(cfg.Services.InventoryURL, logger)

	orderService := service.NewOrderService(pool, orderRepository, outboxRepository, inventoryClient, logger)
	cachedOrderService := service.NewCachedOrderService(orderService, redisClient)
	orderHandler := orderHttp.NewOrderHandler(cachedOrderService, logger)

	kafkaProducer, err := kafka2.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepository, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New()
	orderHttp.RegisterRoutes(app, orderHandler)

	port := cfg.HTTP.Port

	go func() {
		log.Println("HTTP Order service listening on port: " + port)
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

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis client: %v", err)
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
