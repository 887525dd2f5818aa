// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/smartbus-iot/sensor-hub/internal/models"
)

var (
	// ErrNotFound indicates that the store holds no readings
	ErrNotFound = errors.New("resource not found")
)

// ReadingRepository is the insert-only collection of sensor readings.
// Insertion order is the recency order used by Latest.
type ReadingRepository interface {
	// Insert stores a reading and returns the store-assigned id
	Insert(ctx context.Context, reading models.SensorReading) (string, error)
	// Latest returns the most recently inserted document or ErrNotFound
	Latest(ctx context.Context) (*models.StoredReading, error)
	Ping(ctx context.Context) error
	Close() error
}
