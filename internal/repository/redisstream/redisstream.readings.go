// FilePath: internal/repository/redisstream/redisstream.readings.go
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
)

const documentField = "document"

// ReadingRepo appends readings to a Redis stream. Stream entry ids are
// monotonic, so the last entry is the newest reading.
type ReadingRepo struct {
	client *redis.Client
	stream string
}

func NewReadingRepository(client *redis.Client, stream string) *ReadingRepo {
	return &ReadingRepo{client: client, stream: stream}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.SensorReading) (string, error) {
	doc, err := json.Marshal(reading)
	if err != nil {
		return "", fmt.Errorf("failed to encode sensor reading: %w", err)
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{documentField: string(doc)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append sensor reading: %w", err)
	}
	return id, nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.StoredReading, error) {
	entries, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", 1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read latest sensor reading: %w", err)
	}
	if len(entries) == 0 {
		return nil, repository.ErrNotFound
	}

	entry := entries[0]
	raw, _ := entry.Values[documentField].(string)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	doc := map[string]any{}
	if raw != "" {
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode stream entry %s: %w", entry.ID, err)
		}
	}
	return &models.StoredReading{ID: entry.ID, Document: doc}, nil
}

func (r *ReadingRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *ReadingRepo) Close() error {
	return r.client.Close()
}
