// FilePath: internal/repository/mongodb/mongodb.readings.go
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartbus-iot/sensor-hub/internal/database"
	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReadingRepo stores readings as documents; ObjectIDs give insertion order
type ReadingRepo struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

func NewReadingRepository(db *database.MongoDB, collection string) *ReadingRepo {
	return &ReadingRepo{
		db:         db,
		collection: db.Collection(collection),
	}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.SensorReading) (string, error) {
	result, err := r.collection.InsertOne(ctx, reading)
	if err != nil {
		return "", fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return idString(result.InsertedID), nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.StoredReading, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var doc bson.M
	err := r.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sensor reading: %w", err)
	}

	stored := &models.StoredReading{ID: idString(doc["_id"]), Document: map[string]any(doc)}
	delete(stored.Document, "_id")
	return stored, nil
}

func (r *ReadingRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *ReadingRepo) Close() error {
	return r.db.Close()
}

func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
