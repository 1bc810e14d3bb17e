package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDefaults(t *testing.T) {
	t.Setenv("APP_PAYMENT_CODE", "secret")
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, "local", cfg.App.Upload.Driver)
	assert.Equal(t, "/uploads", cfg.App.Upload.PublicPath)
	assert.Equal(t, 5, cfg.App.Upload.MaxSizeMB)
	assert.Equal(t, 5, cfg.App.CodeAttempts.MaxAttempts)
	assert.Equal(t, 60, cfg.App.CodeAttempts.WindowSeconds)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, "schema_migrations", cfg.DB.Postgres.MigrationTable)
	assert.Equal(t, 3, cfg.DB.Postgres.RetryWaitTime)
	assert.Equal(t, 300, cfg.Cache.TTL)
	assert.Equal(t, "hostel.events", cfg.Kafka.Topic)
	assert.True(t, cfg.Metrics.Enable)

	assert.Equal(t, "secret", cfg.App.PaymentCode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORS.AllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.DB.Postgres.Write.Host = "localhost"
		cfg.DB.Postgres.Write.Name = "hostel"
		cfg.App.PaymentCode = "secret"

		return cfg
	}

	require.NoError(t, valid().Validate())

	noHost := valid()
	noHost.DB.Postgres.Write.Host = ""
	require.ErrorContains(t, noHost.Validate(), "DB_POSTGRES_WRITE_HOST")

	noName := valid()
	noName.DB.Postgres.Write.Name = ""
	require.Error(t, noName.Validate())

	noCode := valid()
	noCode.App.PaymentCode = ""
	require.ErrorContains(t, noCode.Validate(), "APP_PAYMENT_CODE")

	badProxy := valid()
	badProxy.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"}
	require.ErrorContains(t, badProxy.Validate(), "SERVER_TRUSTED_PROXIES")
}

func TestTrustedProxyPrefixes(t *testing.T) {
	cfg := &Config{}
	cfg.Server.TrustedProxies = []string{"10.1.2.3/8", " 192.168.1.10 ", "", "::1"}

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)

	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.1.10/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())
}
