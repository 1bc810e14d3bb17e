package timezone

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var appLocation atomic.Pointer[time.Location]

// Init loads the named IANA location. An empty or unknown name falls back to UTC.
func Init(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		appLocation.Store(time.UTC)

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Kolkata', 'UTC'")
		appLocation.Store(time.UTC)

		return time.UTC
	}

	appLocation.Store(loc)
	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// GetLocation returns the application location, UTC before Init.
func GetLocation() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now returns the current time in the application timezone
func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse parses a time string in the application timezone
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
