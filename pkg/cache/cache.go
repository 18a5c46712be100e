// Package cache implements the read-path cache-aside controller. Lookups are
// keyed by a fingerprint of (operation, parameters, store generation); writes
// to the item store bump the generation counter, which orphans every prior
// fingerprint without tracking them individually. The cache backend is an
// optimization only: any backend failure downgrades the read to a plain
// compute. The one failure that costs consistency rather than speed is a
// failed generation bump, which leaves pre-write entries reachable until
// their TTL expires; the TTL is that staleness bound.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/logger"
	"github.com/mediafolio/catalog-backend/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// generationUnavailable marks a failed generation read. Fingerprints built
// with it never match a stored entry, so the read degrades to a miss.
const generationUnavailable = int64(-1)

// Backend is the key-value surface the controller needs; pkg/redis satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	CacheKey(fingerprint string) string
	GenerationKey(scope string) string
}

// ControllerParams configure a Controller.
type ControllerParams struct {
	Backend Backend
	Config  config.CacheConfig
	Logger  *logger.Logger
	Metrics *metrics.CacheMetrics
	// Scope names the generation counter; all reads and writes of one item
	// collection share a scope.
	Scope string
}

// Controller coordinates cache-aside reads and write-path invalidation.
type Controller struct {
	backend Backend
	secret  []byte
	ttl     time.Duration
	scope   string
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
}

// NewController validates the wiring and returns a Controller.
func NewController(params ControllerParams) (*Controller, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("cache backend required")
	}
	if params.Config.Secret == "" {
		return nil, fmt.Errorf("cache secret required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	scope := params.Scope
	if scope == "" {
		scope = "items"
	}
	ttl := params.Config.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Controller{
		backend: params.Backend,
		secret:  []byte(params.Config.Secret),
		ttl:     ttl,
		scope:   scope,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Cached runs compute through the controller. A hit within TTL returns the
// stored value without invoking compute; a miss computes synchronously and
// stores the result best-effort. Concurrent misses on one fingerprint may
// each invoke compute; that redundancy is accepted instead of single-flight
// coordination.
func Cached[T any](ctx context.Context, c *Controller, operation string, params any, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return compute(ctx)
	}

	opCtx := c.logg.WithOperation(ctx, operation)
	fingerprint, usable := c.fingerprint(opCtx, operation, params)

	if usable {
		raw, err := c.backend.Get(opCtx, c.backend.CacheKey(fingerprint))
		switch {
		case err == nil:
			var value T
			if unmarshalErr := json.Unmarshal([]byte(raw), &value); unmarshalErr == nil {
				c.metrics.IncHit(operation)
				return value, nil
			}
			// Undecodable entry: treat as a miss and overwrite below.
			c.logg.Warn(opCtx, "cache entry undecodable, recomputing")
		case errors.Is(err, redis.Nil):
			// plain miss
		default:
			c.metrics.IncError(operation)
			c.logg.Warn(opCtx, "cache lookup failed, computing directly")
			usable = false
		}
	}

	c.metrics.IncMiss(operation)
	value, err := compute(opCtx)
	if err != nil {
		return zero, err
	}

	if usable {
		c.store(opCtx, operation, fingerprint, value)
	}
	return value, nil
}

// Invalidate bumps the store-generation counter. Every fingerprint issued
// before the bump becomes unreachable; TTL bounds how long the orphaned
// entries occupy the backend.
func (c *Controller) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if _, err := c.backend.Incr(ctx, c.backend.GenerationKey(c.scope)); err != nil {
		// A transient bump failure can leave pre-write entries reachable:
		// later generation reads may still succeed against the old counter.
		// The entry TTL bounds how long such stale pages survive.
		c.logg.Error(c.logg.WithField(ctx, "scope", c.scope), "generation bump failed; stale entries may be served until TTL", err)
	}
}

func (c *Controller) fingerprint(ctx context.Context, operation string, params any) (string, bool) {
	generation := c.generation(ctx)
	if generation == generationUnavailable {
		return "", false
	}
	fingerprint, err := Fingerprint(c.secret, operation, generation, params)
	if err != nil {
		c.logg.Warn(ctx, "fingerprint derivation failed, bypassing cache")
		return "", false
	}
	return fingerprint, true
}

func (c *Controller) generation(ctx context.Context) int64 {
	raw, err := c.backend.Get(ctx, c.backend.GenerationKey(c.scope))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0
		}
		return generationUnavailable
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return generationUnavailable
	}
	return generation
}

// store persists a computed value best-effort: failures are logged, never
// surfaced to the read path.
func (c *Controller) store(ctx context.Context, operation string, fingerprint string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logg.Warn(ctx, "cache store skipped: result not serializable")
		return
	}
	if err := c.backend.Set(ctx, c.backend.CacheKey(fingerprint), string(raw), c.ttl); err != nil {
		c.metrics.IncError(operation)
		c.logg.Warn(ctx, "cache store failed")
	}
}
