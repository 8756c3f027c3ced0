package catalogRepo

import (
	"context"
	"errors"
	"time"

	"toltimed/models"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	servicesCacheKey      = "catalog:services"
	practitionersCacheKey = "catalog:practitioners"
	DefaultCatalogTTL     = 5 * time.Minute
)

// Source is the read side of the catalog.
type Source interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	ListPractitioners(ctx context.Context) ([]models.Practitioner, error)
}

// CachedCatalog reads through Redis in front of Source. Cache failures fall
// back to Source and are only logged.
type CachedCatalog struct {
	Source Source
	Client redis.Cmdable
	TTL    time.Duration
	Logger *zap.Logger
}

func NewCachedCatalog(source Source, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{Source: source, Client: client, TTL: ttl, Logger: logger}
}

func (c *CachedCatalog) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if c.get(ctx, servicesCacheKey, &services) {
		return services, nil
	}
	services, err := c.Source.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, servicesCacheKey, services)
	return services, nil
}

func (c *CachedCatalog) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	var practitioners []models.Practitioner
	if c.get(ctx, practitionersCacheKey, &practitioners) {
		return practitioners, nil
	}
	practitioners, err := c.Source.ListPractitioners(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, practitionersCacheKey, practitioners)
	return practitioners, nil
}

// Invalidate drops both cached lists.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, servicesCacheKey, practitionersCacheKey).Err()
}

func (c *CachedCatalog) get(ctx context.Context, key string, dst any) bool {
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.Logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.Logger.Warn("catalog cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalog) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.Logger.Warn("failed to encode catalog cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
		c.Logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
