// Package service resolves rate limit buckets for requests.
package service

import (
	"context"
	"fmt"

	"credverify/internal/ratelimit/models"
)

// Store is a sliding-window counter keyed by bucket.
type Store interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, error)
}

// Limiter applies the class presets. Authenticated callers are bucketed by
// subject, anonymous callers by client IP.
type Limiter struct {
	store  Store
	limits map[models.EndpointClass]models.Limit
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLimit overrides the preset for one class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(l *Limiter) {
		l.limits[class] = limit
	}
}

func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, limits: models.DefaultLimits()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check consumes one request from the bucket of (subject or ip, class).
func (l *Limiter) Check(ctx context.Context, class models.EndpointClass, subject, ip string) (*models.RateLimitResult, error) {
	limit, ok := l.limits[class]
	if !ok {
		return nil, fmt.Errorf("unknown rate limit class %q", class)
	}

	key := models.NewRateLimitKey(models.KeyPrefixIP, ip, class)
	if subject != "" {
		key = models.NewRateLimitKey(models.KeyPrefixSubject, subject, class)
	}
	return l.store.Allow(ctx, key.String(), limit)
}
