package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/agrobill/pkg/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store is the key-value surface the guard needs.
type Store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type clientStore struct {
	rdb *goredis.Client
}

func (s *clientStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *clientStore) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// EventGuard remembers processed webhook event ids for a TTL.
// A guard without a store is disabled and lets every event through.
type EventGuard struct {
	store Store
	ttl   time.Duration
	scope string
}

func NewEventGuard(store Store, ttl time.Duration, scope string) *EventGuard {
	return &EventGuard{store: store, ttl: ttl, scope: scope}
}

func (g *EventGuard) Enabled() bool {
	return g != nil && g.store != nil
}

func (g *EventGuard) key(eventID string) string {
	return fmt.Sprintf("agrobill:webhook:%s:%s", g.scope, eventID)
}

// CheckAndMark marks eventID as seen and reports whether it had been seen before.
func (g *EventGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if !g.Enabled() {
		return false, nil
	}
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	set, err := g.store.SetNX(ctx, g.key(eventID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set event key: %w", err)
	}
	return !set, nil
}

// Release forgets eventID so a redelivery is processed again.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	if !g.Enabled() || eventID == "" {
		return nil
	}
	return g.store.Del(ctx, g.key(eventID))
}

// New builds the guard from config. An empty redis address yields a disabled guard.
func New(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) *EventGuard {
	if cfg.Redis.Addr == "" {
		log.Infow("redis not configured, webhook event guard disabled")
		return NewEventGuard(nil, 0, "razorpay")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				// webhook handling does not depend on the guard
				log.Warnw("redis ping failed", "addr", cfg.Redis.Addr, "err", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})
	return NewEventGuard(&clientStore{rdb: rdb}, cfg.Redis.EventTTL, "razorpay")
}

var Module = fx.Options(
	fx.Provide(New),
)
