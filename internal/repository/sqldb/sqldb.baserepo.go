// FilePath: internal/repository/sqldb/sqldb.baserepo.go
package sqldb

import (
	"context"
	"database/sql"

	"github.com/smartbus-iot/sensor-hub/internal/database"
	"github.com/smartbus-iot/sensor-hub/internal/errors"
)

type SQLBaseRepo struct {
	db database.DB
}

func (r *SQLBaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.GetDB().ExecContext(ctx, r.db.GetDB().Rebind(query), args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to execute query", err)
	}
	return result, nil
}
func (r *SQLBaseRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}
func (r *SQLBaseRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.NewDatabaseError("failed to close database", err)
	}
	return nil
}
