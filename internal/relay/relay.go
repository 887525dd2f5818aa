// FilePath: internal/relay/relay.go

// Package relay forwards readings to the external telemetry dashboard.
package relay

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the relay has no credentials to send with
var ErrNotConfigured = errors.New("telemetry relay is not configured")

// Relay sends one (temperature, humidity) pair to the dashboard service.
// It returns true when the service acknowledged the values and false when it
// rejected them or could not be reached. An error means the call could not
// be attempted at all.
type Relay interface {
	Send(ctx context.Context, temperature, humidity float64) (bool, error)
}
