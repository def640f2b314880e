package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit gives each client a token bucket holding limit requests that
// refills at limit per window. A non-positive limit disables limiting.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 || per <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	clients := &clientLimiters{
		every: rate.Every(per / time.Duration(limit)),
		burst: limit,
		idle:  per,
		byIP:  make(map[string]*clientLimiter),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			res := clients.get(ClientIP(r), now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","message":"too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	idle      time.Duration
	byIP      map[string]*clientLimiter
	lastSweep time.Time
}

// get returns the limiter for ip. Limiters idle for a full window are full
// again, so dropping them loses nothing.
func (c *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Sub(c.lastSweep) > c.idle {
		for key, cl := range c.byIP {
			if now.Sub(cl.lastSeen) > c.idle {
				delete(c.byIP, key)
			}
		}
		c.lastSweep = now
	}
	cl, ok := c.byIP[ip]
	if !ok {
		cl = &clientLimiter{Limiter: rate.NewLimiter(c.every, c.burst)}
		c.byIP[ip] = cl
	}
	cl.lastSeen = now
	return cl.Limiter
}

// ClientIP returns the best-effort client address. Behind chi's RealIP the
// remote address is already rewritten; the headers cover stacks without it.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ip := firstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := firstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func firstIP(list string) string {
	for _, part := range strings.Split(list, ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
