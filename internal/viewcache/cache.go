package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/heartlink/heartlink-backend/internal/memberships"
	"github.com/heartlink/heartlink-backend/pkg/logger"
)

const defaultViewTTL = 5 * time.Minute

type viewStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CircleViewKey(circleID string) string
}

// Cache holds rendered circle member views in Redis. Entries are
// short-lived; domain events invalidate them eagerly so readers rarely
// observe a stale roster.
type Cache struct {
	store viewStore
	logg  *logger.Logger
	ttl   time.Duration
}

// CacheParams bundles the cache dependencies.
type CacheParams struct {
	Store  viewStore
	Logger *logger.Logger
	TTL    time.Duration
}

// NewCache builds a member-view cache.
func NewCache(params CacheParams) (*Cache, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &Cache{
		store: params.Store,
		logg:  params.Logger,
		ttl:   ttl,
	}, nil
}

// GetMembers returns the cached member view for the circle, if present.
// Cache failures degrade to a miss.
func (c *Cache) GetMembers(ctx context.Context, circleID string) ([]memberships.MemberDTO, bool) {
	raw, err := c.store.Get(ctx, c.store.CircleViewKey(circleID))
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			c.logg.Error(ctx, "member view cache read failed", err)
		}
		return nil, false
	}

	var members []memberships.MemberDTO
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		c.logg.Error(ctx, "member view cache entry corrupt", err)
		_ = c.store.Del(ctx, c.store.CircleViewKey(circleID))
		return nil, false
	}
	return members, true
}

// StoreMembers caches the rendered member view for the circle.
func (c *Cache) StoreMembers(ctx context.Context, circleID string, members []memberships.MemberDTO) {
	payload, err := json.Marshal(members)
	if err != nil {
		c.logg.Error(ctx, "member view cache encode failed", err)
		return
	}
	if err := c.store.Set(ctx, c.store.CircleViewKey(circleID), payload, c.ttl); err != nil {
		c.logg.Error(ctx, "member view cache write failed", err)
	}
}

// Invalidate drops the cached views for the given circles.
func (c *Cache) Invalidate(ctx context.Context, circleIDs ...string) error {
	if len(circleIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(circleIDs))
	for _, id := range circleIDs {
		if id == "" {
			continue
		}
		keys = append(keys, c.store.CircleViewKey(id))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate member views: %w", err)
	}
	return nil
}
