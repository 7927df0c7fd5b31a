package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartinventory/internal/models"
	"smartinventory/pkg/logger"
)

const keyPrefix = "smartinventory:"

type CacheService interface {
	// Category caching. A miss returns nil, nil.
	GetCategory(ctx context.Context, categoryID int64) (*models.Category, error)
	SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error
	DeleteCategory(ctx context.Context, categoryID int64) error
	InvalidateCategories(ctx context.Context) error

	// Rate limiting over a fixed window.
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService accepts host:port or a redis:// / rediss:// URL.
func NewRedisCacheService(addr, password string, db int) CacheService {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			logger.L().Warn("invalid redis url, using it as address", logger.ErrorF(err))
		} else {
			opts = parsed
			if password != "" {
				opts.Password = password
			}
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis ping failed on initialization", logger.String("addr", opts.Addr), logger.ErrorF(err))
	} else {
		logger.L().Debug("redis connection established", logger.String("addr", opts.Addr))
	}

	return NewCacheService(client)
}

func NewCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func categoryKey(categoryID int64) string {
	return fmt.Sprintf("%scategory:%d", keyPrefix, categoryID)
}

func (r *redisCacheService) GetCategory(ctx context.Context, categoryID int64) (*models.Category, error) {
	data, err := r.client.Get(ctx, categoryKey(categoryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var category models.Category
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *redisCacheService) SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error {
	data, err := json.Marshal(category)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, categoryKey(category.CategoryID), data, ttl).Err()
}

func (r *redisCacheService) DeleteCategory(ctx context.Context, categoryID int64) error {
	return r.client.Del(ctx, categoryKey(categoryID)).Err()
}

func (r *redisCacheService) InvalidateCategories(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"category:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := keyPrefix + "ratelimit:" + key

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, cacheKey)
		pipe.ExpireNX(ctx, cacheKey, window)
		return nil
	})
	if err != nil {
		return false, err
	}

	return incr.Val() > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
