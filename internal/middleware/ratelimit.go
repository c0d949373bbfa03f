package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// attemptLog holds the recent attempt timestamps for one client IP.
type attemptLog struct {
	mu       sync.Mutex
	attempts []time.Time
}

// LoginLimiter throttles login attempts per client IP over a sliding
// window. It guards exactly one thing: the credential form. Everything
// else on the site is unthrottled, so the limits can be tight enough to
// make online password guessing useless without ever touching a real
// operator who fat-fingers a password a few times.
type LoginLimiter struct {
	mu       sync.RWMutex
	perIP    map[string]*attemptLog
	attempts int           // allowed attempts per window per IP
	window   time.Duration // sliding window length
	stopCh   chan struct{}
}

// sweepInterval is how often stale per-IP logs are dropped. Far longer
// than the window; the map only grows with distinct attacking IPs.
const sweepInterval = 5 * time.Minute

// NewLoginLimiter creates a limiter allowing attempts per window for
// each client IP, with a background sweeper for stale entries.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		perIP:    make(map[string]*attemptLog),
		attempts: attempts,
		window:   window,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Stop terminates the background sweeper.
func (l *LoginLimiter) Stop() {
	close(l.stopCh)
}

// allow records an attempt for the key and reports whether it is still
// inside the limit.
func (l *LoginLimiter) allow(key string) bool {
	l.mu.RLock()
	log, ok := l.perIP[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		log, ok = l.perIP[key]
		if !ok {
			log = &attemptLog{}
			l.perIP[key] = log
		}
		l.mu.Unlock()
	}

	now := time.Now()
	cutoff := now.Add(-l.window)

	log.mu.Lock()
	defer log.mu.Unlock()

	recent := log.attempts[:0]
	for _, ts := range log.attempts {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	log.attempts = recent

	if len(log.attempts) >= l.attempts {
		return false
	}

	log.attempts = append(log.attempts, now)
	return true
}

// sweep drops per-IP logs with no attempt inside the window.
func (l *LoginLimiter) sweep() {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, log := range l.perIP {
		log.mu.Lock()
		stale := true
		for _, ts := range log.attempts {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		log.mu.Unlock()

		if stale {
			delete(l.perIP, key)
		}
	}
}

// Middleware rejects requests over the limit with 429. Mounted on the
// login POST route only.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			http.Error(w, "Too many login attempts, try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address for limiter keying. The site
// runs behind a reverse proxy in production, so the forwarding headers
// are checked before RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Leftmost entry is the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
