// FilePath: internal/database/database.go
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/smartbus-iot/sensor-hub/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

// Dialect names the SQL flavour behind a DB handle
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DB is an interface that both PostgreSQL and SQLite handles implement
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
	Dialect() Dialect
}

type sqlDB struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	nuts.L.Infof("[PostgresDB] Connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &sqlDB{db: db, dialect: DialectPostgres}, nil
}

// NewSQLiteDB opens (or creates) a SQLite database file. ":memory:" is accepted.
func NewSQLiteDB(ctx context.Context, cfg config.SQLiteConfig) (DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening SQLite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	nuts.L.Infof("[SQLiteDB] Opened %s", cfg.Path)
	return &sqlDB{db: db, dialect: DialectSQLite}, nil
}

func (s *sqlDB) Close() error {
	return s.db.Close()
}

func (s *sqlDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlDB) GetDB() *sqlx.DB {
	return s.db
}

func (s *sqlDB) Dialect() Dialect {
	return s.dialect
}
