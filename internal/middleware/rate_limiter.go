package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"lubripos/internal/apierror"

	"github.com/gin-gonic/gin"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per client IP. Expired windows are dropped lazily whenever the
// map grows past purgeThreshold entries.

const purgeThreshold = 1024

type ventana struct {
	count int
	fin   time.Time
}

type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	ventana map[string]*ventana
	now     func() time.Time
}

func newLimiter(limit int, window time.Duration) *limiter {
	return &limiter{limit: limit, window: window, ventana: make(map[string]*ventana), now: time.Now}
}

// allow records a hit and reports whether it is within the limit. The second
// value is when the current window ends.
func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.ventana) > purgeThreshold {
		for k, v := range l.ventana {
			if now.After(v.fin) {
				delete(l.ventana, k)
			}
		}
	}

	v, ok := l.ventana[key]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.ventana[key] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

// RateLimiter allows limit requests per window per client IP. Rejected
// requests get 429 with Retry-After in seconds until the window ends.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return limitar(newLimiter(limit, window))
}

func limitar(l *limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(segundosHasta(l.now(), fin)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("RATE_LIMITED", "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// segundosHasta rounds up and never returns less than 1.
func segundosHasta(now, fin time.Time) int {
	s := int(math.Ceil(fin.Sub(now).Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
