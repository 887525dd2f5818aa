// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported reading store drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Store      StoreConfig      `mapstructure:"store"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	ThingSpeak ThingSpeakConfig `mapstructure:"thingspeak"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds the shared secret devices send with every ingestion
type AuthConfig struct {
	IoTAPIKey string `mapstructure:"iot_api_key"`
	Header    string `mapstructure:"header"`
}

type StoreConfig struct {
	Driver         string        `mapstructure:"driver"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type DatabaseConfig struct {
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

// ThingSpeakConfig describes the channel readings are relayed to
type ThingSpeakConfig struct {
	URL              string        `mapstructure:"url"`
	WriteAPIKey      string        `mapstructure:"write_api_key"`
	TemperatureField string        `mapstructure:"temperature_field"`
	HumidityField    string        `mapstructure:"humidity_field"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load initializes configuration from a .env file, environment variables and config file
func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMARTBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Auth defaults; the key itself has no default
	v.SetDefault("auth.iot_api_key", "")
	v.SetDefault("auth.header", "X-API-Key")

	// Store defaults
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.connect_timeout", "10s")

	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo.database", "smartbus")
	v.SetDefault("database.mongo.collection", "sensor_readings")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "smartbus")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "smartbus")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("database.sqlite.path", "smartbus.db")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "sensor_readings")

	// ThingSpeak defaults
	v.SetDefault("thingspeak.url", "https://api.thingspeak.com")
	v.SetDefault("thingspeak.write_api_key", "")
	v.SetDefault("thingspeak.temperature_field", "field1")
	v.SetDefault("thingspeak.humidity_field", "field2")
	v.SetDefault("thingspeak.timeout", "10s")

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func validateConfig(config *Config) error {
	if config.Auth.IoTAPIKey == "" {
		return fmt.Errorf("auth iot_api_key is required")
	}
	if config.Auth.Header == "" {
		return fmt.Errorf("auth header name is required")
	}
	switch config.Store.Driver {
	case DriverMongo:
		if config.Database.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
	case DriverPostgres:
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
	case DriverSQLite:
		if config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DriverRedis:
		if config.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}
	if config.ThingSpeak.URL == "" {
		return fmt.Errorf("thingspeak url is required")
	}
	if config.ThingSpeak.Timeout <= 0 {
		return fmt.Errorf("thingspeak timeout must be positive")
	}
	return nil
}
