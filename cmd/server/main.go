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

	"github.com/techblueera/be-health-service-sub001/internal/api"
	"github.com/techblueera/be-health-service-sub001/internal/clients"
	"github.com/techblueera/be-health-service-sub001/internal/config"
	"github.com/techblueera/be-health-service-sub001/internal/kafka"
	redisCache "github.com/techblueera/be-health-service-sub001/internal/redis"
	"github.com/techblueera/be-health-service-sub001/internal/remote"
	"github.com/techblueera/be-health-service-sub001/internal/repository"
	"github.com/techblueera/be-health-service-sub001/internal/service"
)

// setupLogging configures structured logging
func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
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

// initializeCache sets up the Redis availability cache
func initializeCache(cfg *config.Config) *redisCache.CacheClient {
	cache := redisCache.NewCacheClient(cfg.RedisAddrs, cfg.RedisPassword, cfg.RedisTTL, cfg.RedisKeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	return cache
}

// initializeClients wires the remote service facades with shared
// breaker tuning
func initializeClients(cfg *config.Config) *clients.Registry {
	return clients.NewRegistry(clients.RegistryConfig{
		UsersServiceURL:      cfg.UsersServiceURL,
		BusinessesServiceURL: cfg.BusinessesServiceURL,
		RidersServiceURL:     cfg.RidersServiceURL,
		Breaker: remote.BreakerConfig{
			Timeout:        cfg.RemoteTimeout,
			ErrorThreshold: cfg.BreakerErrorThreshold,
			MinRequests:    uint32(cfg.BreakerMinRequests),
			Window:         cfg.BreakerWindow,
			Cooldown:       cfg.BreakerCooldown,
		},
		SessionCacheTTL: cfg.SessionCacheTTL,
	})
}

func main() {
	cfg := config.LoadConfig()
	setupLogging(cfg)

	log.Info().
		Str("service", cfg.ServiceName).
		Str("instance_id", cfg.InstanceID).
		Str("environment", cfg.Environment).
		Msg("Starting order service")

	db := initializeDatabase(cfg)
	defer db.Close()

	cache := initializeCache(cfg)
	defer cache.Close()

	registry := initializeClients(cfg)

	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	orderService := service.NewOrderService(orderRepo, inventoryRepo, cache, registry.Businesses, registry.Users, registry.Riders)
	alternativesService := service.NewAlternativesService(orderRepo, inventoryRepo, registry.Businesses, cfg.ResolveConcurrency)
	inventoryService := service.NewInventoryService(inventoryRepo, cache)

	publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	defer publisher.Close()

	outboxCtx, outboxCancel := context.WithCancel(context.Background())
	defer outboxCancel()
	go publisher.RunOutboxPublisher(outboxCtx, outboxRepo, kafka.OutboxConfig{
		LockKey:      cfg.OutboxLockKey,
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: cfg.OutboxPollInterval,
	})

	server := api.NewServer(
		api.NewOrderHandler(orderService, alternativesService),
		api.NewInventoryHandler(inventoryService),
		registry.Users,
		db,
		cfg.ServiceName,
		!cfg.IsProduction(),
	)

	serverAddr := fmt.Sprintf("%s:%s", cfg.ServerAddr, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddr).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	gracefulShutdown(httpServer, outboxCancel)
}

// gracefulShutdown waits for a termination signal, stops the outbox
// worker and drains in-flight HTTP requests
func gracefulShutdown(httpServer *http.Server, stopOutbox context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	stopOutbox()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced HTTP server shutdown")
	}

	log.Info().Msg("Shutdown complete")
}
