package postgres

//nolint:revive
import (
	"fmt"
	"hostel/config"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Target describes one postgres endpoint.
type Target struct {
	Name     string
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
	Timezone string
}

// DSN renders the target as a postgres URL.
func (t Target) DSN() string {
	query := url.Values{}

	sslMode := t.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	query.Set("sslmode", sslMode)

	if t.Timezone != "" {
		query.Set("timezone", t.Timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(t.Username, t.Password),
		Host:     net.JoinHostPort(t.Host, t.Port),
		Path:     t.DBName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// New opens the write connection and, when configured separately, the read
// replica. The read side falls back to the write pool.
func New(config *config.Config) *Connection {
	write := CreatePostgresConnection(WriteTarget(*config), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
	if write == nil {
		log.Fatal().Msg("Could not connect to the write database")
	}

	read := write

	if config.DB.Postgres.Read.Host != "" {
		read = CreatePostgresConnection(ReadTarget(*config), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
		if read == nil {
			log.Fatal().Msg("Could not connect to the read database")
		}
	}

	return &Connection{
		Read:  read,
		Write: write,
	}
}

// getDBName returns the database name with prefix if configured
func getDBName(config config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func WriteTarget(config config.Config) Target {
	write := config.DB.Postgres.Write

	return Target{
		Name:     "write",
		Username: write.Username,
		Password: write.Password,
		Host:     write.Host,
		Port:     write.Port,
		DBName:   getDBName(config, write.Name),
		SSLMode:  write.SSLMode,
		Timezone: write.Timezone,
	}
}

func ReadTarget(config config.Config) Target {
	read := config.DB.Postgres.Read

	return Target{
		Name:     "read",
		Username: read.Username,
		Password: read.Password,
		Host:     read.Host,
		Port:     read.Port,
		DBName:   getDBName(config, read.Name),
		SSLMode:  read.SSLMode,
		Timezone: read.Timezone,
	}
}

// CreatePostgresConnection connects to target, waiting waitTime seconds
// between attempts. maxRetry 0 keeps retrying until the database answers.
func CreatePostgresConnection(target Target, maxRetry, waitTime int) *sqlx.DB {
	descriptor := target.DSN()

	for attempt := 1; maxRetry <= 0 || attempt <= maxRetry; attempt++ {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			log.
				Info().
				Str("name", target.Name).
				Str("host", target.Host).
				Str("port", target.Port).
				Str("dbName", target.DBName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", target.Name).
			Str("host", target.Host).
			Str("port", target.Port).
			Str("dbName", target.DBName).
			Int("attempt", attempt).
			Msg(fmt.Sprintf("Failed connecting to database, retrying in %ds", waitTime))

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}
