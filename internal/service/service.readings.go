// FilePath: internal/service/service.readings.go
package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/smartbus-iot/sensor-hub/internal/errors"
	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/relay"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// busPlaceholder is served with every latest reading. It is not backed by
// any data source yet.
var busPlaceholder = []string{"Bus 101", "Bus 202"}

// IngestReading stores a reading and then relays it to the telemetry
// dashboard. The relay outcome is logged and never fails the ingestion.
func (s *Service) IngestReading(ctx context.Context, reading models.SensorReading) (string, error) {
	if reading.ReceivedAt.IsZero() {
		reading.ReceivedAt = s.now()
	}

	id, err := s.readings.Insert(ctx, reading)
	if err != nil {
		return "", fmt.Errorf("failed to store reading: %w", err)
	}
	nuts.L.Infof("[SensorService] Sensor data saved: %s", id)
	s.emit(EventReadingStored, map[string]string{"id": id, "device_id": reading.DeviceID})

	s.relayReading(ctx, id, reading)
	return id, nil
}

func (s *Service) relayReading(ctx context.Context, id string, reading models.SensorReading) {
	ok, err := s.relay.Send(ctx, reading.Temperature, reading.Humidity)
	switch {
	case err != nil:
		nuts.L.Errorf("[SensorService] Relay of reading %s failed: %v", id, err)
		s.emit(EventRelayFailed, map[string]string{"id": id, "error": err.Error()})
	case !ok:
		nuts.L.Warnf("[SensorService] Relay of reading %s was not acknowledged", id)
		s.emit(EventRelayRejected, map[string]string{"id": id})
	default:
		nuts.L.Infof("[SensorService] Reading %s relayed to ThingSpeak", id)
		s.emit(EventRelaySent, map[string]string{"id": id})
	}
}

// SendTestReading relays caller supplied values without storing them
func (s *Service) SendTestReading(ctx context.Context, temperature, humidity float64) (bool, error) {
	ok, err := s.relay.Send(ctx, temperature, humidity)
	if err != nil {
		return false, fmt.Errorf("relay test failed: %w", err)
	}
	if !ok {
		nuts.L.Warnf("[SensorService] Relay test with %s/%s was not acknowledged",
			relay.FormatValue(temperature), relay.FormatValue(humidity))
	}
	return ok, nil
}

// LatestReading returns the newest stored reading in dashboard form.
// Missing measurements read as zero.
func (s *Service) LatestReading(ctx context.Context) (*models.LatestReading, error) {
	doc, err := s.readings.Latest(ctx)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError("no sensor readings found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest reading: %w", err)
	}

	buses := make([]string, len(busPlaceholder))
	copy(buses, busPlaceholder)

	return &models.LatestReading{
		Temperature: doc.Float("temperature"),
		Humidity:    doc.Float("humidity"),
		Buses:       buses,
	}, nil
}
