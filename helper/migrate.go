package helper

//nolint:revive
import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/postgres"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"

	postgresDriverName = "postgres"
)

// MigrationsSource is where the SQL files are read from.
var MigrationsSource = "file://migrations/postgres"

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	connectionString := postgres.WriteTarget(*config).DSN() +
		"&x-migrations-table=" + url.QueryEscape(config.DB.Postgres.MigrationTable)

	mig, err := migrate.New(MigrationsSource, connectionString)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	return run(mig, action)
}

// UpWithDB applies pending migrations over a pool that is already connected,
// so startup shares the connection's retry loop instead of failing fast.
func UpWithDB(ctx context.Context, db *sql.DB, config *config.Config) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("error acquiring migration connection: %w", err)
	}

	driver, err := migratePostgres.WithConnection(ctx, conn, &migratePostgres.Config{
		MigrationsTable: config.DB.Postgres.MigrationTable,
	})
	if err != nil {
		_ = conn.Close()

		return fmt.Errorf("error creating migration driver: %w", err)
	}

	mig, err := migrate.NewWithDatabaseInstance(MigrationsSource, postgresDriverName, driver)
	if err != nil {
		_ = driver.Close()

		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	return run(mig, ActionUp)
}

func run(mig *migrate.Migrate, action string) (err error) {
	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("unknown migration action %q", action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migrations: %w", action, err)
	}

	log.Info().Str("action", action).Msg("Database migrations completed successfully")

	return nil
}

// Version reports the applied schema version and whether the last run failed halfway.
func Version(config *config.Config) (uint, bool, error) {
	mig, err := getConnection(config)
	if err != nil {
		return 0, false, err
	}

	defer mig.Close()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("error reading migration version: %w", err)
	}

	return version, dirty, nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}
