package identity

import (
	"context"
	"fmt"
	"time"

	"suryawash/internal/pkg/cache"
)

const rateNamespace = "otp_rate"

// Limiter throttles phone codes per number: a cooldown between sends, a cap per
// window, and a block of three windows once the cap is exceeded.
type Limiter struct {
	cache       cache.Cache
	window      time.Duration
	maxInWindow int
	cooldown    time.Duration
}

func NewLimiter(c cache.Cache, window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{cache: c, window: window, maxInWindow: max, cooldown: cooldown}
}

// Allow records a send for phone or returns an auth/too-many-requests error.
func (l *Limiter) Allow(ctx context.Context, phone string) error {
	blockKey := "block:" + phone
	lastKey := "last:" + phone
	countKey := "count:" + phone

	if ttl, _ := l.cache.GetTTL(ctx, rateNamespace, blockKey); ttl > 0 {
		return newError(CodeTooManyRequests, fmt.Sprintf("too many code requests; try again after %d seconds", int(ttl.Seconds())))
	}
	if ttl, _ := l.cache.GetTTL(ctx, rateNamespace, lastKey); ttl > 0 {
		return newError(CodeTooManyRequests, fmt.Sprintf("please wait %d seconds before requesting another code", int(ttl.Seconds())))
	}

	cnt, err := l.cache.IncrWithExpire(ctx, rateNamespace, countKey, l.window)
	if err != nil {
		return err
	}
	if int(cnt) > l.maxInWindow {
		block := l.window * 3
		_ = l.cache.Set(ctx, rateNamespace, blockKey, "1", block)
		return newError(CodeTooManyRequests, fmt.Sprintf("too many code requests; try again after %d seconds", int(block.Seconds())))
	}

	if l.cooldown > 0 {
		_ = l.cache.Set(ctx, rateNamespace, lastKey, "1", l.cooldown)
	}
	return nil
}
