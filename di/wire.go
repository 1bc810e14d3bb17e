//go:build wireinject
// +build wireinject

package di

import (
	"hostel/config"
	"hostel/infras/jwt"
	"hostel/infras/kafka"
	"hostel/infras/otel"
	"hostel/infras/redis"
	"hostel/infras/storage"
	"hostel/permissions"
	"hostel/shared/cache"
	"hostel/transport/http"
	"hostel/transport/http/middleware"
	"hostel/transport/http/router"

	authService "hostel/internal/domains/auth/service"
	bookingRepository "hostel/internal/domains/booking/repository"
	bookingService "hostel/internal/domains/booking/service"
	paymentRepository "hostel/internal/domains/payment/repository"
	paymentService "hostel/internal/domains/payment/service"
	userRepository "hostel/internal/domains/user/repository"
	userService "hostel/internal/domains/user/service"

	"github.com/google/wire"

	authHandler "hostel/internal/handlers/auth"
	bookingHandler "hostel/internal/handlers/booking"
	healthHandler "hostel/internal/handlers/health"
	inventoryHandler "hostel/internal/handlers/inventory"
	paymentHandler "hostel/internal/handlers/payment"
	userHandler "hostel/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
	provideTopology,
)

var infrastructures = wire.NewSet(
	providePostgres,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	storage.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
	provideCodeThrottle,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var paymentDomain = wire.NewSet(
	paymentRepository.New,
	paymentService.New,
)

var domains = wire.NewSet(
	userDomain,
	bookingDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	inventoryHandler.New,
	authHandler.New,
	userHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
