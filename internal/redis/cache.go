package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// CacheClient wraps Redis for availability caching. Availability reads
// are served from here when fresh; order commits invalidate the
// touched records.
type CacheClient struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

// NewCacheClient creates a new Redis cache client
func NewCacheClient(addrs []string, password string, ttl time.Duration, keyPrefix string) *CacheClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: password,
		PoolSize: 10,
	})

	return &CacheClient{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// GetAvailability retrieves a cached inventory record
func (c *CacheClient) GetAvailability(ctx context.Context, inventoryID uuid.UUID) (*models.InventoryRecord, error) {
	key := c.availabilityKey(inventoryID)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			// Cache miss
			return nil, nil
		}
		log.Error().Err(err).Str("inventory_id", inventoryID.String()).Msg("Failed to get availability from cache")
		return nil, fmt.Errorf("failed to get availability from cache: %w", err)
	}

	var inventory models.InventoryRecord
	if err := json.Unmarshal([]byte(val), &inventory); err != nil {
		log.Error().Err(err).Str("inventory_id", inventoryID.String()).Msg("Failed to unmarshal cached availability")
		return nil, fmt.Errorf("failed to unmarshal cached availability: %w", err)
	}

	log.Debug().Str("inventory_id", inventoryID.String()).Msg("Cache hit for availability")
	return &inventory, nil
}

// SetAvailability stores an inventory record in cache
func (c *CacheClient) SetAvailability(ctx context.Context, inventory *models.InventoryRecord) error {
	key := c.availabilityKey(inventory.ID)

	data, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Error().Err(err).Str("inventory_id", inventory.ID.String()).Msg("Failed to set availability in cache")
		return fmt.Errorf("failed to set availability in cache: %w", err)
	}

	return nil
}

// DeleteAvailability removes an inventory record from cache
func (c *CacheClient) DeleteAvailability(ctx context.Context, inventoryID uuid.UUID) error {
	key := c.availabilityKey(inventoryID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("inventory_id", inventoryID.String()).Msg("Failed to delete availability from cache")
		return fmt.Errorf("failed to delete availability from cache: %w", err)
	}

	log.Debug().Str("inventory_id", inventoryID.String()).Msg("Deleted availability from cache")
	return nil
}

// Ping checks if Redis is available
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.client.Close()
}

func (c *CacheClient) availabilityKey(inventoryID uuid.UUID) string {
	return fmt.Sprintf("%savailability:%s", c.keyPrefix, inventoryID)
}
