package handler

import (
	"hostel/config"
	"hostel/di"
	"hostel/shared/logger"
	"hostel/shared/metrics"
	"hostel/shared/timezone"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	service http.Handler
)

// Handler serves the application from a serverless function. The service is
// built on the first request and reused afterwards.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLoggerFor(cfg)

		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}

		timezone.Init(cfg.App.Timezone)

		if cfg.Metrics.Enable {
			metrics.Register()
		}

		service = di.InitializeService()
	})

	service.ServeHTTP(w, r)
}
