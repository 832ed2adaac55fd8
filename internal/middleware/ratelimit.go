package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"promovideo/internal/infra"
)

type visitor struct {
	count   int
	resetAt time.Time
}

// RateLimit applies a fixed-window per-IP request limit. A rejected request
// gets the API's JSON error shape and a Retry-After hint so the wizard UI can
// back off instead of hammering the window.
func RateLimit(limit int, per time.Duration, logger infra.Logger) func(http.Handler) http.Handler {
	var mu sync.Mutex
	visitors := make(map[string]*visitor)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			mu.Lock()
			v, ok := visitors[ip]
			if !ok || now.After(v.resetAt) {
				v = &visitor{resetAt: now.Add(per)}
				visitors[ip] = v
			}
			v.count++
			blocked := v.count > limit
			retryAfter := time.Until(v.resetAt)
			mu.Unlock()

			if blocked {
				logger.Warn().
					Str("ip", ip).
					Str("path", r.URL.Path).
					Msg("ratelimit: request rejected")
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "rate_limited", "message": "too many requests"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first valid X-Forwarded-For hop so deployments behind
// a proxy limit end clients, not the proxy.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
