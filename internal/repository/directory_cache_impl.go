package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pacs-study-browser/internal/domain/entity"
	domainRepo "pacs-study-browser/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisDirectoryKey holds the JSON encoded AE directory listing.
const RedisDirectoryKey = "archive:directory"

type directoryCache struct {
	redisClient *redis.Client
}

func NewDirectoryCache(redisClient *redis.Client) domainRepo.DirectoryCache {
	return &directoryCache{redisClient: redisClient}
}

func (c *directoryCache) Get(ctx context.Context) (*entity.DirectoryListing, error) {
	data, err := c.redisClient.Get(ctx, RedisDirectoryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached directory: %w", err)
	}

	var listing entity.DirectoryListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode cached directory: %w", err)
	}
	return &listing, nil
}

func (c *directoryCache) Set(ctx context.Context, listing *entity.DirectoryListing, ttl time.Duration) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	if err := c.redisClient.Set(ctx, RedisDirectoryKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache directory: %w", err)
	}
	return nil
}
