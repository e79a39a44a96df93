package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/api"
	"petstore-service/internal/config"
	"petstore-service/internal/kafka"
	redisCache "petstore-service/internal/redis"
	"petstore-service/internal/repository"
	"petstore-service/internal/service"
	"petstore-service/internal/storeclient"
)

// setupLogging configures structured logging
func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// initializeDatabase sets up and tests the database connection
func initializeDatabase(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	log.Info().Msg("Database connection established")
	return db
}

// initializeCache sets up the Redis pet-type lookup cache
func initializeCache(cfg *config.Config) *redisCache.CacheClient {
	cache := redisCache.NewCacheClient(
		cfg.RedisAddrs,
		cfg.RedisPassword,
		cfg.RedisClusterMode,
		cfg.RedisTTL,
		cfg.RedisKeyPrefix,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	return cache
}

// initializeKafka sets up the purchase-event publisher
func initializeKafka(cfg *config.Config) *kafka.Publisher {
	log.Info().Strs("kafka_brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaPurchasesTopic).Msg("Initializing Kafka publisher")
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaPurchasesTopic)
}

// createOrderService wires the order service and its collaborators
func createOrderService(cfg *config.Config, db *sqlx.DB, cache *redisCache.CacheClient) *service.OrderService {
	client := storeclient.New(cfg.HTTPTimeout)
	ledger := repository.NewTransactionRepository(db)

	orderService, err := service.NewOrderService(cfg.StoreURLs, client, cache, ledger, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create order service")
	}

	log.Info().
		Ints("stores", cfg.StoreIDs()).
		Dur("http_timeout", cfg.HTTPTimeout).
		Msg("Order service configuration loaded")

	return orderService
}

// startHTTPServer starts the HTTP server
func startHTTPServer(cfg *config.Config, orderService *service.OrderService) *http.Server {
	handler := api.NewOrderHandler(orderService, api.StaticSecret(cfg.OwnerSecret))
	router := handler.SetupOrderRoutes()

	serverAddr := fmt.Sprintf("%s:%s", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddr).Msg("Pet Order HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	return server
}

// startOutboxWorker drains committed purchase events into Kafka
func startOutboxWorker(cfg *config.Config, db *sqlx.DB, publisher *kafka.Publisher) context.CancelFunc {
	worker := kafka.NewOutboxWorker(publisher, repository.NewOutboxRepository(db), kafka.OutboxConfig{
		LockKey:      cfg.OutboxLockKey,
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: cfg.OutboxPollInterval,
	})
	outboxCtx, cancel := context.WithCancel(context.Background())

	go worker.Run(outboxCtx)

	return cancel
}

// gracefulShutdown handles graceful shutdown of the service
func gracefulShutdown(server *http.Server, stopOutbox context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down Pet Order service...")

	stopOutbox()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Pet Order service stopped")
}

func main() {
	setupLogging()
	log.Info().Msg("Starting Pet Order service...")

	cfg := config.LoadConfig()

	db := initializeDatabase(cfg)
	defer db.Close()

	cache := initializeCache(cfg)
	defer cache.Close()

	publisher := initializeKafka(cfg)
	defer publisher.Close()

	orderService := createOrderService(cfg, db, cache)

	server := startHTTPServer(cfg, orderService)

	stopOutbox := startOutboxWorker(cfg, db, publisher)

	gracefulShutdown(server, stopOutbox)
}
