package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

// RedisListingInfoCache stores dataset info projections as JSON values.
// A miss comes back as a nil projection so callers fall through to the
// primary store without special-casing cache state.
type RedisListingInfoCache struct {
	client *redis.Client
}

func NewRedisListingInfoCache(client *redis.Client) *RedisListingInfoCache {
	return &RedisListingInfoCache{client: client}
}

func infoKey(datasetID string) string {
	return "marketplace:dataset_info:" + datasetID
}

func (c *RedisListingInfoCache) Get(ctx context.Context, datasetID string) (*ports.ListingInfo, error) {
	raw, err := c.client.Get(ctx, infoKey(datasetID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var info ports.ListingInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		// treat a corrupt entry as a miss; it gets overwritten on the next Set
		return nil, nil
	}
	return &info, nil
}

func (c *RedisListingInfoCache) Set(ctx context.Context, datasetID string, info ports.ListingInfo, ttl time.Duration) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, infoKey(datasetID), raw, ttl).Err()
}
