// FilePath: internal/models/models.reading.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SensorReading represents a single temperature/humidity measurement as sent by a device
type SensorReading struct {
	DeviceID    string    `json:"device_id,omitempty" bson:"device_id,omitempty"`
	Temperature float64   `json:"temperature" bson:"temperature"`
	Humidity    float64   `json:"humidity" bson:"humidity"`
	ReceivedAt  time.Time `json:"received_at" bson:"received_at"`
}

// IngestRequest is the wire shape of an ingestion body. Pointers tell a
// missing value apart from a zero reading.
type IngestRequest struct {
	DeviceID    string   `json:"device_id,omitempty"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Validate checks the request carries both measurements
func (r IngestRequest) Validate() error {
	if r.Temperature == nil {
		return fmt.Errorf("temperature is required")
	}
	if r.Humidity == nil {
		return fmt.Errorf("humidity is required")
	}
	return nil
}

// Reading converts a validated request into the stored entity
func (r IngestRequest) Reading() SensorReading {
	return SensorReading{
		DeviceID:    r.DeviceID,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
	}
}

// StoredReading is a persisted document together with its store-assigned id.
// Document keeps the raw stored fields so readers can tolerate missing ones.
type StoredReading struct {
	ID       string
	Document map[string]any
}

// Float returns the numeric value stored under key, or 0 when the field is
// absent or not a number.
func (s StoredReading) Float(key string) float64 {
	switch v := s.Document[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// IngestResponse acknowledges a stored reading
type IngestResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// RelayTestResponse is returned by the manual relay check
type RelayTestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LatestReading is the dashboard view of the newest reading
type LatestReading struct {
	Temperature float64  `json:"temperatura"`
	Humidity    float64  `json:"umidade"`
	Buses       []string `json:"onibus"`
}
