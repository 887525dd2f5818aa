// FilePath: internal/service/service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smartbus-iot/sensor-hub/internal/errors"
	"github.com/smartbus-iot/sensor-hub/internal/relay"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Events emitted while handling readings
const (
	EventReadingStored = "reading.stored"
	EventRelaySent     = "relay.sent"
	EventRelayRejected = "relay.rejected"
	EventRelayFailed   = "relay.failed"
)

// Service contains the reading store, the telemetry relay and service-wide dependencies
type Service struct {
	readings repository.ReadingRepository
	relay    relay.Relay
	events   *nuts.EventEmitter
	now      func() time.Time
}

// New creates a new service instance
func New(readings repository.ReadingRepository, telemetry relay.Relay) *Service {
	return &Service{
		readings: readings,
		relay:    telemetry,
		events:   nuts.NewEventEmitter(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks if all required dependencies are initialized
func (s *Service) Validate() error {
	if s.readings == nil {
		return ErrMissingDependency("readings")
	}
	if s.relay == nil {
		return ErrMissingDependency("relay")
	}
	return nil
}

// OnEvent registers a callback for one of the Event* names. Callbacks run
// synchronously on the emitting goroutine.
func (s *Service) OnEvent(event string, handler func(labels map[string]string)) error {
	if _, err := s.events.On(event, "", handler); err != nil {
		return fmt.Errorf("failed to register %s handler: %w", event, err)
	}
	return nil
}

func (s *Service) emit(event string, labels map[string]string) {
	if err := s.events.Emit(event, labels); err != nil {
		nuts.L.Errorf("[SensorService] Failed to emit %s: %v", event, err)
	}
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}

// Ping checks the reading store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.readings.Ping(ctx)
}
