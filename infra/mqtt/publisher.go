package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
)

// Publisher mirrors the core mqtt.SetpointPublisher interface.
type Publisher = coremqtt.SetpointPublisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Setpoints  map[string]coremqtt.Setpoint
	FailPlants map[string]bool
	NoAck      map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Setpoints:  make(map[string]coremqtt.Setpoint),
		FailPlants: make(map[string]bool),
		NoAck:      make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// SendSetpoint records the setpoint or returns an error if configured to fail.
func (m *MockPublisher) SendSetpoint(sp coremqtt.Setpoint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPlants[sp.Plant] {
		return "", fmt.Errorf("publish failed")
	}
	m.Setpoints[sp.Plant] = sp
	commandID := fmt.Sprintf("cmd-%s-%s", sp.PlanID, sp.Plant)
	m.AckResults[commandID] = !m.NoAck[sp.Plant]
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, coremqtt.ErrUnknownCommand
	}
	if !ok {
		return false, coremqtt.ErrAckTimeout
	}
	return true, nil
}

// Sent returns a copy of the recorded setpoints keyed by plant.
func (m *MockPublisher) Sent() map[string]coremqtt.Setpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]coremqtt.Setpoint, len(m.Setpoints))
	for k, v := range m.Setpoints {
		out[k] = v
	}
	return out
}
