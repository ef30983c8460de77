// Package publisher pushes each published bundle to Redis so
// external dashboards can read the latest state without touching the
// engine process.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/sawpanic/gridpulse/internal/market"
)

// Redis writes the latest bundle JSON under a fixed key with a TTL.
// A circuit breaker keeps a dead Redis from stalling the refresh
// loop's fan-out; trips are logged and the cycle is unaffected.
type Redis struct {
	client  redis.Cmdable
	key     string
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewRedis(client redis.Cmdable, key string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    key,
		ttl:    ttl,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "redis-publisher",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("Publisher breaker state changed")
			},
		}),
	}
}

func (r *Redis) Name() string { return "redis" }

// Publish marshals the bundle and SETs it under the configured key.
func (r *Redis) Publish(ctx context.Context, b *market.Bundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	_, err = r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, r.key, payload, r.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
