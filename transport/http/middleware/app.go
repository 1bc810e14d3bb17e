package middleware

import (
	"fmt"
	"hostel/config"
	"hostel/infras/otel"
	"hostel/shared/cache"
	"hostel/shared/constant"
	"hostel/shared/metrics"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	otelHTTPScopeName = "http"
	unmatchedRoute    = "unmatched"
)

type AppMiddleware interface {
	Tracing(next http.Handler) http.Handler
	AccessLog(next http.Handler) http.Handler
	Metrics(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
	CodeThrottle(next http.Handler) http.Handler
	RealIP(next http.Handler) http.Handler
}

type appMiddleware struct {
	otel   otel.Otel
	config *config.Config
	cache  cache.RedisCache

	proxies      []netip.Prefix
	codeAttempts int
	codeWindow   int
	codeFallback *rate.Limiter
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache) AppMiddleware {
	proxies, err := config.TrustedProxyPrefixes()
	if err != nil {
		log.Error().Err(err).Msg("ignoring trusted proxies")
	}

	attempts, window := codeBudget(config)

	return &appMiddleware{
		otel:         otel,
		config:       config,
		cache:        cache,
		proxies:      proxies,
		codeAttempts: attempts,
		codeWindow:   window,
		codeFallback: rate.NewLimiter(rate.Limit(float64(attempts)/float64(window)), attempts),
	}
}

// routePattern is the matched chi pattern, known only once the router ran.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != constant.Empty {
			return pattern
		}
	}

	return unmatchedRoute
}

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer scope.End()

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		scope.SetAttributes(map[string]any{
			"app.name":         a.config.App.Name,
			"http.path":        r.URL.Path,
			"http.route":       routePattern(r),
			"http.method":      r.Method,
			"http.user_agent":  r.Header.Get(constant.RequestHeaderUserAgent),
			"http.host":        r.Host,
			"http.source":      r.RemoteAddr,
			"http.status_code": ww.Status(),
		})
	})
}

func (a *appMiddleware) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		event := log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("requestId", chiMiddleware.GetReqID(r.Context())).
			Str("remoteAddr", r.RemoteAddr).
			Msg("request served")
	})
}

func (a *appMiddleware) Metrics(next http.Handler) http.Handler {
	if !a.config.Metrics.Enable {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		metrics.ObserveHTTP(r.Method, routePattern(r), ww.Status(), time.Since(start))
	})
}
