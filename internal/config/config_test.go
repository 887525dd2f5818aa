package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs Load from an empty directory so no local config or .env leaks in
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("SMARTBUS_AUTH__IOT_API_KEY", "device-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "device-secret", cfg.Auth.IoTAPIKey)
	assert.Equal(t, "X-API-Key", cfg.Auth.Header)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.Mongo.URI)
	assert.Equal(t, "sensor_readings", cfg.Database.Mongo.Collection)
	assert.Equal(t, "https://api.thingspeak.com", cfg.ThingSpeak.URL)
	assert.Equal(t, "field1", cfg.ThingSpeak.TemperatureField)
	assert.Equal(t, "field2", cfg.ThingSpeak.HumidityField)
	assert.Equal(t, 10*time.Second, cfg.ThingSpeak.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("SMARTBUS_AUTH__IOT_API_KEY", "device-secret")
	t.Setenv("SMARTBUS_STORE__DRIVER", "sqlite")
	t.Setenv("SMARTBUS_DATABASE__SQLITE__PATH", "/tmp/readings.db")
	t.Setenv("SMARTBUS_THINGSPEAK__TIMEOUT", "3s")
	t.Setenv("SMARTBUS_THINGSPEAK__WRITE_API_KEY", "TSKEY")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/readings.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 3*time.Second, cfg.ThingSpeak.Timeout)
	assert.Equal(t, "TSKEY", cfg.ThingSpeak.WriteAPIKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	yaml := []byte("auth:\n  iot_api_key: from-file\n  header: X-Device-Key\nstore:\n  driver: memory\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.IoTAPIKey)
	assert.Equal(t, "X-Device-Key", cfg.Auth.Header)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	inTempDir(t)
	t.Setenv("SMARTBUS_AUTH__IOT_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "iot_api_key is required")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	inTempDir(t)
	t.Setenv("SMARTBUS_AUTH__IOT_API_KEY", "device-secret")
	t.Setenv("SMARTBUS_STORE__DRIVER", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, `unknown store driver "cassandra"`)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:       AuthConfig{IoTAPIKey: "k", Header: "X-API-Key"},
			Store:      StoreConfig{Driver: DriverPostgres},
			Database:   DatabaseConfig{Postgres: PostgresConfig{Host: "db"}},
			ThingSpeak: ThingSpeakConfig{URL: "http://ts", Timeout: time.Second},
		}
	}
	require.NoError(t, validateConfig(valid()))

	cfg := valid()
	cfg.Database.Postgres.Host = ""
	assert.ErrorContains(t, validateConfig(cfg), "postgres host is required")

	cfg = valid()
	cfg.Auth.Header = ""
	assert.ErrorContains(t, validateConfig(cfg), "header name is required")

	cfg = valid()
	cfg.ThingSpeak.Timeout = 0
	assert.ErrorContains(t, validateConfig(cfg), "timeout must be positive")

	cfg = valid()
	cfg.Store.Driver = DriverRedis
	assert.ErrorContains(t, validateConfig(cfg), "redis host is required")
}
