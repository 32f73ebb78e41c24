package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/config"
	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/kafka"
	redisCache "github.com/techblueera/be-health-service-sub001/internal/redis"
	"github.com/techblueera/be-health-service-sub001/internal/service"
)

// The worker consumes order lifecycle events and keeps the
// availability cache coherent across service replicas.
func main() {
	cfg := config.LoadConfig()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().
		Str("service", cfg.ServiceName).
		Str("instance_id", cfg.InstanceID).
		Str("consumer_group", cfg.KafkaConsumerGroup).
		Msg("Starting order event worker")

	cache := redisCache.NewCacheClient(cfg.RedisAddrs, cfg.RedisPassword, cfg.RedisTTL, cfg.RedisKeyPrefix)
	defer cache.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	pingCancel()

	var consumer interfaces.MessageConsumer = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaOrdersTopic, cfg.KafkaConsumerGroup)
	defer consumer.Close()

	var handler interfaces.OrderEventHandler = service.NewCacheInvalidationHandler(cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("Shutting down worker")
		cancel()
	}()

	if err := consumer.ConsumeOrderEvents(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Consumer stopped with error")
	}

	log.Info().Msg("Worker shutdown complete")
}
