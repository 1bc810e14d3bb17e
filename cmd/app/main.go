package main

import (
	"hostel/config"
	"hostel/di"
	"hostel/shared/logger"
	"hostel/shared/metrics"
	"hostel/shared/timezone"

	"github.com/rs/zerolog/log"
)

// @title Hostel API
// @version 1.0
// @description Bed inventory, bookings and manual payments of a hostel.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLoggerFor(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	timezone.Init(cfg.App.Timezone)

	if cfg.Metrics.Enable {
		metrics.Register()
	}

	http := di.InitializeService()
	http.Serve()
}
