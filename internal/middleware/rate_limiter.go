package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"kecdesk/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a per-IP fixed-window limiter. Each instance keeps its own
// table, so routes can carry different limits.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now, entries: map[string]*rateEntry{}}
}

// allow records a hit for key and reports whether it is within the limit,
// plus the seconds until the window resets.
func (l *RateLimiter) allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	retry := int(e.windowEnd.Sub(now).Seconds()) + 1
	return e.count <= l.limit, retry
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// purge drops expired entries so IPs that never return do not accumulate.
func (l *RateLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// StartPurge runs purge every few minutes until ctx is done.
func (l *RateLimiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purge(); n > 0 {
					log.Debug().Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}
