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

	"petstore-service/internal/animalfacts"
	"petstore-service/internal/api"
	"petstore-service/internal/config"
	"petstore-service/internal/repository"
	"petstore-service/internal/service"
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

// createStoreService wires the store service and its collaborators
func createStoreService(cfg *config.Config, db *sqlx.DB, images *service.DiskImageStore) *service.StoreService {
	petTypeRepo := repository.NewPetTypeRepository(db)
	petRepo := repository.NewPetRepository(db)
	facts := animalfacts.New(cfg.AnimalFactsURL, cfg.AnimalFactsAPIKey, cfg.HTTPTimeout)

	storeService, err := service.NewStoreService(cfg.StoreID, petTypeRepo, petRepo, facts, images)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store service")
	}

	return storeService
}

// startHTTPServer starts the HTTP server
func startHTTPServer(cfg *config.Config, storeService *service.StoreService, images *service.DiskImageStore) *http.Server {
	handler := api.NewStoreHandler(storeService, images)
	router := handler.SetupStoreRoutes()

	serverAddr := fmt.Sprintf("%s:%s", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddr).Str("store_id", cfg.StoreID).Msg("Pet Store HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	return server
}

// gracefulShutdown handles graceful shutdown of the service
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down Pet Store service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Pet Store service stopped")
}

func main() {
	setupLogging()
	log.Info().Msg("Starting Pet Store service...")

	cfg := config.LoadConfig()

	db := initializeDatabase(cfg)
	defer db.Close()

	images, err := service.NewDiskImageStore(cfg.ImageDir, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image store")
	}

	storeService := createStoreService(cfg, db, images)

	server := startHTTPServer(cfg, storeService, images)

	gracefulShutdown(server)
}
