// Package cache puts a redis read-through cache in front of catalog lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/catalog"
)

const (
	defaultKeyPrefix = "fitting-room:catalog:"
	DefaultTTL       = 10 * time.Minute
	pingTimeout      = 5 * time.Second
)

type Config struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a redis address is configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Connect creates a redis client and checks that the server answers.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// CatalogStore is the catalog lookup being cached.
type CatalogStore interface {
	FindItem(ctx context.Context, id string) (*catalog.Item, error)
	FindItems(ctx context.Context, ids []string) ([]*catalog.Item, error)
	SaveItem(ctx context.Context, item *catalog.Item) error
}

// CatalogCache serves catalog items from redis and falls back to the
// underlying store on a miss. Redis failures never fail a lookup.
type CatalogCache struct {
	next      CatalogStore
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

func NewCatalogCache(next CatalogStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{
		next:      next,
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultKeyPrefix,
		logger:    logger,
	}
}

func (c *CatalogCache) itemKey(id string) string {
	return c.keyPrefix + id
}

func (c *CatalogCache) FindItem(ctx context.Context, id string) (*catalog.Item, error) {
	data, err := c.client.Get(ctx, c.itemKey(id)).Bytes()
	switch {
	case err == nil:
		if item, ok := c.decode(ctx, id, data); ok {
			c.logger.Debug("catalog cache hit", zap.String("clothing_id", id))
			return item, nil
		}
	case errors.Is(err, redis.Nil):
		c.logger.Debug("catalog cache miss", zap.String("clothing_id", id))
	default:
		c.logger.Warn("reading catalog cache", zap.String("clothing_id", id), zap.Error(err))
	}

	item, err := c.next.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, item)
	return item, nil
}

// FindItems returns the existing items among ids in the order of ids.
// Only the ids missing from redis are fetched from the underlying store.
func (c *CatalogCache) FindItems(ctx context.Context, ids []string) ([]*catalog.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[string]*catalog.Item, len(ids))
	missing := ids

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.itemKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("reading catalog cache", zap.Int("count", len(ids)), zap.Error(err))
	} else {
		missing = make([]string, 0, len(ids))
		for i, value := range values {
			raw, ok := value.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			item, ok := c.decode(ctx, ids[i], []byte(raw))
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			found[ids[i]] = item
		}
	}

	if len(missing) > 0 {
		fetched, err := c.next.FindItems(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, item := range fetched {
			found[item.ID] = item
			c.store(ctx, item)
		}
	}

	items := make([]*catalog.Item, 0, len(found))
	for _, id := range ids {
		if item, ok := found[id]; ok {
			items = append(items, item)
			delete(found, id)
		}
	}
	return items, nil
}

// SaveItem writes through to the underlying store and drops the cached copy.
func (c *CatalogCache) SaveItem(ctx context.Context, item *catalog.Item) error {
	if err := c.next.SaveItem(ctx, item); err != nil {
		return err
	}
	c.Invalidate(ctx, item.ID)
	return nil
}

// Invalidate removes the cached copies of the given items.
func (c *CatalogCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.itemKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("invalidating catalog cache", zap.Strings("clothing_ids", ids), zap.Error(err))
	}
}

func (c *CatalogCache) decode(ctx context.Context, id string, data []byte) (*catalog.Item, bool) {
	var item catalog.Item
	if err := json.Unmarshal(data, &item); err != nil {
		c.logger.Warn("dropping corrupted catalog cache entry", zap.String("clothing_id", id), zap.Error(err))
		_ = c.client.Del(ctx, c.itemKey(id)).Err()
		return nil, false
	}
	return &item, true
}

func (c *CatalogCache) store(ctx context.Context, item *catalog.Item) {
	data, err := json.Marshal(item)
	if err != nil {
		c.logger.Warn("encoding catalog item for cache", zap.String("clothing_id", item.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.itemKey(item.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("writing catalog cache", zap.String("clothing_id", item.ID), zap.Error(err))
	}
}
