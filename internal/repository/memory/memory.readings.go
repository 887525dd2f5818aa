// FilePath: internal/repository/memory/memory.readings.go

// Package memory is a process-local reading store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
)

// ReadingRepo keeps documents in insertion order
type ReadingRepo struct {
	mu      sync.RWMutex
	docs    []map[string]any
	failErr error
}

func NewReadingRepository() *ReadingRepo {
	return &ReadingRepo{}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.SensorReading) (string, error) {
	raw, err := json.Marshal(reading)
	if err != nil {
		return "", fmt.Errorf("failed to encode sensor reading: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to encode sensor reading: %w", err)
	}
	return r.InsertDocument(ctx, doc)
}

// InsertDocument stores an arbitrary document. Development hook for seeding
// readings with missing fields; the HTTP API only inserts full readings.
func (r *ReadingRepo) InsertDocument(ctx context.Context, doc map[string]any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return "", r.failErr
	}
	r.docs = append(r.docs, doc)
	return strconv.Itoa(len(r.docs)), nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.StoredReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	if len(r.docs) == 0 {
		return nil, repository.ErrNotFound
	}

	last := r.docs[len(r.docs)-1]
	doc := make(map[string]any, len(last))
	for k, v := range last {
		doc[k] = v
	}
	return &models.StoredReading{ID: strconv.Itoa(len(r.docs)), Document: doc}, nil
}

// Count returns the number of stored documents
func (r *ReadingRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// FailWith makes every following call return err; nil restores normal
// operation. Development hook for exercising store failure paths.
func (r *ReadingRepo) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *ReadingRepo) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failErr
}

func (r *ReadingRepo) Close() error {
	return nil
}
