package mqtt

import (
	"errors"
	"time"
)

var (
	// ErrAckTimeout is returned when a plant does not acknowledge its
	// setpoint in time.
	ErrAckTimeout = errors.New("timeout waiting for setpoint ack")
	// ErrUnknownCommand is returned when waiting on a command that was
	// never sent.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidPlantName is returned when a plant name cannot be used as
	// a single topic level.
	ErrInvalidPlantName = errors.New("invalid plant name for topic")
)

// Setpoint is the output a plan orders from one plant.
type Setpoint struct {
	PlanID  string
	Plant   string
	PowerMW float64
}

// SetpointPublisher sends setpoints to plant controllers and waits for
// their acknowledgments.
type SetpointPublisher interface {
	// SendSetpoint publishes sp and returns the command identifier used to
	// track the acknowledgment.
	SendSetpoint(sp Setpoint) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
