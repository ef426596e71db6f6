package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter is a single-process Limiter built on token buckets.
type MemoryLimiter struct {
	mu         sync.Mutex
	opts       Options
	buckets    map[string]*bucket
	cooldowns  map[string]time.Time
	lastPruned time.Time
	now        func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(opts Options) *MemoryLimiter {
	return &MemoryLimiter{
		opts:      opts.withDefaults(),
		buckets:   make(map[string]*bucket),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (l *MemoryLimiter) AllowIP(ctx context.Context, ip, purpose string) (bool, error) {
	l.mu.Lock()
	now := l.now()
	l.pruneBuckets(now)

	key := ipKey(purpose, ip)
	b, ok := l.buckets[key]
	if !ok {
		every := l.opts.Window / time.Duration(l.opts.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), l.opts.Limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1), nil
}

// pruneBuckets drops buckets idle for a whole window, at most once per
// window. An idle bucket has refilled completely, so dropping it changes
// nothing for the next request. Callers hold l.mu.
func (l *MemoryLimiter) pruneBuckets(now time.Time) {
	if now.Sub(l.lastPruned) < l.opts.Window {
		return
	}
	l.lastPruned = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.opts.Window {
			delete(l.buckets, k)
		}
	}
}

func (l *MemoryLimiter) AcquireEmailCooldown(ctx context.Context, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := emailKey(email)
	if until, ok := l.cooldowns[key]; ok && now.Before(until) {
		return false, nil
	}
	l.cooldowns[key] = now.Add(l.opts.EmailCooldown)

	// drop stale entries so the map does not grow without bound
	for k, until := range l.cooldowns {
		if !now.Before(until) {
			delete(l.cooldowns, k)
		}
	}
	return true, nil
}
