package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"jewelshop/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowLimiter counts requests per client IP in fixed windows.
type windowLimiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*windowEntry
	nextPurge time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newWindowLimiter(name string, limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*windowEntry),
	}
}

// allow registers one request from ip and reports whether it is within the
// limit, plus the end of the current window.
func (l *windowLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		if n := l.purgeLocked(now); n > 0 {
			log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
		}
		l.nextPurge = now.Add(purgeInterval)
	}
	e, ok := l.clients[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.clients[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// purge drops entries whose window has ended.
func (l *windowLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.purgeLocked(l.now())
}

func (l *windowLimiter) purgeLocked(now time.Time) int {
	purged := 0
	for ip, e := range l.clients {
		if now.After(e.windowEnd) {
			delete(l.clients, ip)
			purged++
		}
	}
	return purged
}

// purgeInterval is how often allow sweeps expired entries.
const purgeInterval = 5 * time.Minute

func (l *windowLimiter) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(windowEnd.Sub(l.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newWindowLimiter("login", 20, time.Minute)
	return l.handler("Too many login attempts. Try again in a minute.")
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newWindowLimiter("api", limit, window)
	return l.handler("Too many requests. Try again shortly.")
}
