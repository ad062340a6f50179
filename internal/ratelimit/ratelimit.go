// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package ratelimit provides a sliding window rate limiter backed by Redis sorted sets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/twinj/uuid"
)

// KeyPrefix namespaces rate limit keys in Redis.
const KeyPrefix = "ratelimit:"

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow reports whether a request for key fits in limit requests per window. When it
	// does not, the returned duration tells the caller when to retry.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RedisRateLimiter implements RateLimiter on a Redis sorted set per key, scored by the
// request time in nanoseconds.
type RedisRateLimiter struct {
	client redis.Cmdable
	now    func() time.Time
}

// Option configures a RedisRateLimiter.
type Option func(*RedisRateLimiter)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *RedisRateLimiter) {
		r.now = now
	}
}

// NewRedisRateLimiter creates a new Redis-based rate limiter
func NewRedisRateLimiter(client redis.Cmdable, opts ...Option) *RedisRateLimiter {
	r := &RedisRateLimiter{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allow implements the RateLimiter interface using a sliding window algorithm
func (r *RedisRateLimiter) Allow(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (bool, time.Duration, error) {
	now := r.now()
	windowStart := now.Add(-window)
	windowKey := KeyPrefix + key
	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewV4().String())

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, windowKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	count := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	pipe.Expire(ctx, windowKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limiter pipeline error: %w", err)
	}

	if count.Val() >= int64(limit) {
		// rejected requests do not occupy the window
		r.client.ZRem(ctx, windowKey, member)
		return false, r.calculateRetryAfter(ctx, windowKey, window, now), nil
	}

	return true, 0, nil
}

// calculateRetryAfter returns the time until the oldest request in the window expires,
// at least one second.
func (r *RedisRateLimiter) calculateRetryAfter(
	ctx context.Context,
	windowKey string,
	window time.Duration,
	now time.Time,
) time.Duration {
	oldest, err := r.client.ZRangeWithScores(ctx, windowKey, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return window
	}

	retryAfter := time.Unix(0, int64(oldest[0].Score)).Add(window).Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	if retryAfter > window {
		retryAfter = window
	}
	return retryAfter
}
