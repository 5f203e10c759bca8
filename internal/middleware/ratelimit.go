package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorIdleTTL is how long an idle client's bucket is kept before it is swept.
const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. A nil *IPRateLimiter
// is valid and limits nothing.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// AuthRateLimiter allows perMinute register/token calls per IP with a burst of
// half that (at least 1). perMinute <= 0 returns nil.
func AuthRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    max(perMinute/2, 1),
		now:      time.Now,
	}
}

// reserve takes a token for ip and reports how long the caller would have to
// wait for it. A positive wait means the request is refused and the token is
// handed back.
func (l *IPRateLimiter) reserve(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	res := v.lim.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	if wait > 0 {
		res.CancelAt(now)
	}
	return wait
}

// clientIP is the host part of RemoteAddr. Forwarding headers are ignored so
// a client cannot pick its own bucket.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Handler answers 429 with Retry-After once the client's bucket is empty.
func (l *IPRateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait := l.reserve(clientIP(r)); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
