package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/response"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

// NewRateLimitMiddleware enforces a fixed-window per-client request cap
// backed by the cache. Counter failures fail open: quoting must not go
// down because the limiter store did.
func NewRateLimitMiddleware(cache ports.Cache, cfg config.RateLimitConfig, log *logger.Logger) func(http.Handler) http.Handler {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cache == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientAddr(r)

			count, err := cache.IncrementRequestCount(r.Context(), clientID, window)
			if err != nil {
				log.Warn("Rate limit counter failed", "client", clientID, "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			if count > cfg.MaxRequests {
				monitoring.RateLimitRejectedTotal.Inc()
				response.WriteError(w, http.StatusTooManyRequests, response.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
