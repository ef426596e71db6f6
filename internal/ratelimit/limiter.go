// Package ratelimit throttles the public auth endpoints per client IP and
// spaces out password reset mails per address.
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Limiter is implemented by RedisLimiter and MemoryLimiter.
type Limiter interface {
	// AllowIP counts one request from ip for purpose and reports whether it
	// is still within the limit.
	AllowIP(ctx context.Context, ip, purpose string) (bool, error)
	// AcquireEmailCooldown starts the cooldown for email. It returns false
	// when a cooldown is already running.
	AcquireEmailCooldown(ctx context.Context, email string) (bool, error)
}

// Options configure both limiter implementations.
type Options struct {
	// Requests allowed per IP and purpose within Window.
	Limit         int
	Window        time.Duration
	EmailCooldown time.Duration
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Window <= 0 {
		o.Window = time.Minute
	}
	if o.EmailCooldown <= 0 {
		o.EmailCooldown = time.Minute
	}
	return o
}

func ipKey(purpose, ip string) string {
	return "ratelimit:ip:" + purpose + ":" + ip
}

func emailKey(email string) string {
	return "ratelimit:email:" + strings.ToLower(strings.TrimSpace(email))
}
