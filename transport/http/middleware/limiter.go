package middleware

import (
	"context"
	"hostel/config"
	"hostel/shared"
	"hostel/shared/constant"
	"hostel/shared/failure"
	"hostel/transport/http/response"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit    = "limiter"
	cacheKeyCodeAttempts = "limiter:code"

	defaultCodeAttempts = 5
	defaultCodeWindow   = 60
)

// RateLimit counts requests per client in a fixed redis window.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.config.App.RateLimiter.Enable {
			return next
		}

		maxReqs := a.config.App.RateLimiter.MaxRequests
		windowSecs := a.config.App.RateLimiter.WindowSeconds

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, clientIP(r), userAgent(r))

			count, err := a.cache.Incr(r.Context(), cacheKey, windowSecs)
			if err != nil {
				// If cache fails, allow the request to continue
				next.ServeHTTP(w, r)

				return
			}

			if count > int64(maxReqs) {
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, int64(maxReqs)-count), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}

// CodeThrottle limits how many admin codes one client may submit per window.
// Attempts are counted in redis so the counters expire with the window; while
// redis is unreachable every client draws from one shared in-process bucket.
func (a *appMiddleware) CodeThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !a.allowCodeAttempt(r.Context(), ip) {
			log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("admin code attempts throttled")
			response.WithError(w, failure.TooManyAttempts)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *appMiddleware) allowCodeAttempt(ctx context.Context, ip string) bool {
	if a.cache != nil {
		count, err := a.cache.Incr(ctx, shared.BuildCacheKey(cacheKeyCodeAttempts, ip), a.codeWindow)
		if err == nil {
			return count <= int64(a.codeAttempts)
		}

		log.Warn().Err(err).Str("ip", ip).Msg("attempt counter unavailable, using shared bucket")
	}

	return a.codeFallback.Allow()
}

func codeBudget(cfg *config.Config) (attempts, window int) {
	attempts, window = cfg.App.CodeAttempts.MaxAttempts, cfg.App.CodeAttempts.WindowSeconds

	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}

	if window <= 0 {
		window = defaultCodeWindow
	}

	return attempts, window
}

func userAgent(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == constant.Empty {
		ua = "unknown"
	}

	return ua
}

// clientIP is the connection address without port. RealIP has already
// replaced it when a trusted proxy forwarded the request.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
