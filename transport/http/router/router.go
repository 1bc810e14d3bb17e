package router

import (
	"hostel/config"
	_ "hostel/docs" //nolint:revive
	"hostel/internal/handlers/auth"
	"hostel/internal/handlers/booking"
	"hostel/internal/handlers/health"
	"hostel/internal/handlers/inventory"
	"hostel/internal/handlers/payment"
	"hostel/internal/handlers/user"
	"hostel/shared/constant"
	"hostel/shared/metrics"
	"hostel/transport/http/middleware"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Health    health.Handler
	Inventory inventory.Handler
	Auth      auth.Handler
	User      user.Handler
	Booking   booking.Handler
	Payment   payment.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	config         *config.Config
	app            middleware.AppMiddleware
	authRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		chiMiddleware.RequestID,
		r.app.RealIP,
		r.app.AccessLog,
		chiMiddleware.Recoverer,
		r.app.Tracing,
		r.app.Metrics,
	)

	if r.config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   r.config.App.CORS.AllowedOrigins,
			AllowedMethods:   r.config.App.CORS.AllowedMethods,
			AllowedHeaders:   r.config.App.CORS.AllowedHeaders,
			AllowCredentials: r.config.App.CORS.AllowCredentials,
			MaxAge:           r.config.App.CORS.MaxAgeSeconds,
		}))
	}

	r.DomainHandlers.Health.Router(router)

	if r.config.Metrics.Enable {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	if r.config.App.Upload.Driver == constant.StorageDriverLocal {
		publicPath := "/" + strings.Trim(r.config.App.Upload.PublicPath, "/")
		files := http.StripPrefix(publicPath, http.FileServer(http.Dir(r.config.App.Upload.Dir)))

		router.Handle(publicPath+"/*", files)
	}

	router.Group(func(api chi.Router) {
		if r.config.Server.RequestTimeoutSeconds > 0 {
			api.Use(chiMiddleware.Timeout(time.Duration(r.config.Server.RequestTimeoutSeconds) * time.Second))
		}

		api.Use(r.app.RateLimit(), r.authRole.Auth, r.authRole.RBAC)

		r.DomainHandlers.Inventory.Router(api)
		r.DomainHandlers.Auth.Router(api)
		r.DomainHandlers.User.Router(api)
		r.DomainHandlers.Booking.Router(api)
		r.DomainHandlers.Payment.Router(api)
	})
}

func New(domainHandlers DomainHandlers, config *config.Config, app middleware.AppMiddleware, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		config:         config,
		app:            app,
		authRole:       authRole,
	}
}
