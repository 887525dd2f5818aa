// FilePath: internal/repository/sqldb/sqldb.readings.go
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartbus-iot/sensor-hub/internal/database"
	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

var schemas = map[database.Dialect]string{
	database.DialectPostgres: `CREATE TABLE IF NOT EXISTS sensor_readings (
			id BIGSERIAL PRIMARY KEY,
			document JSONB NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)`,
	database.DialectSQLite: `CREATE TABLE IF NOT EXISTS sensor_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL
		)`,
}

// ReadingRepo keeps each reading as a JSON document row; the autoincrement
// id is the insertion order.
type ReadingRepo struct {
	SQLBaseRepo
}

type readingRow struct {
	ID       int64  `db:"id"`
	Document string `db:"document"`
}

func NewReadingRepository(ctx context.Context, db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{SQLBaseRepo{db: db}}
	if err := repo.initializeSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema(ctx context.Context) error {
	schema, ok := schemas[r.db.Dialect()]
	if !ok {
		return fmt.Errorf("unsupported SQL dialect %q", r.db.Dialect())
	}
	if _, err := r.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	nuts.L.Debugf("[SQLStore] sensor_readings schema ready (%s)", r.db.Dialect())
	return nil
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.SensorReading) (string, error) {
	doc, err := json.Marshal(reading)
	if err != nil {
		return "", fmt.Errorf("failed to encode sensor reading: %w", err)
	}

	db := r.db.GetDB()
	query := db.Rebind(`INSERT INTO sensor_readings (document, received_at) VALUES (?, ?) RETURNING id`)

	var id int64
	if err := db.GetContext(ctx, &id, query, string(doc), reading.ReceivedAt); err != nil {
		return "", fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.StoredReading, error) {
	query := `
		SELECT id, document
		FROM sensor_readings
		ORDER BY id DESC
		LIMIT 1`

	var row readingRow
	err := r.db.GetDB().GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sensor reading: %w", err)
	}

	doc, err := decodeDocument(row.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode reading %d: %w", row.ID, err)
	}
	return &models.StoredReading{ID: strconv.FormatInt(row.ID, 10), Document: doc}, nil
}

func decodeDocument(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	doc := map[string]any{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
