package di

import (
	"context"
	"database/sql"
	"hostel/config"
	"hostel/helper"
	"hostel/infras/postgres"
	"hostel/internal/domains/inventory"
	paymentHandler "hostel/internal/handlers/payment"
	"hostel/transport/http/middleware"

	"github.com/rs/zerolog/log"
)

// provideTopology loads APP_TOPOLOGY_FILE, or the built-in layout when unset.
// A broken file stops the service.
func provideTopology(cfg *config.Config) inventory.Topology {
	if cfg.App.TopologyFile == "" {
		log.Info().Msg("No topology file configured, using the default layout")

		return inventory.Default()
	}

	topology, err := inventory.Load(cfg.App.TopologyFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.App.TopologyFile).Msg("Failed to load topology")
	}

	log.Info().Ints("floors", topology.Floors()).Msg("Topology loaded")

	return topology
}

func provideCodeThrottle(app middleware.AppMiddleware) paymentHandler.Throttle {
	return app.CodeThrottle
}

type migrator func(ctx context.Context, db *sql.DB, cfg *config.Config) error

// providePostgres connects (retrying per DB_POSTGRES_*) and only then applies
// pending migrations when DB_POSTGRES_AUTO_MIGRATE is set.
func providePostgres(cfg *config.Config) *postgres.Connection {
	connection, err := connectAndMigrate(cfg, postgres.New, helper.UpWithDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	return connection
}

func connectAndMigrate(
	cfg *config.Config,
	connect func(*config.Config) *postgres.Connection,
	migrate migrator,
) (*postgres.Connection, error) {
	connection := connect(cfg)

	if !cfg.DB.Postgres.AutoMigrate {
		return connection, nil
	}

	if err := migrate(context.Background(), connection.Write.DB, cfg); err != nil {
		return connection, err
	}

	return connection, nil
}
