package hardware

import (
	"context"
	"sync"

	"github.com/ayusman/desksentry/internal/kinematics"
)

// MockRig is a test implementation of the Rig interface. It records every
// call and lets tests inject failures or hangs per step.
type MockRig struct {
	mu sync.Mutex

	angles       kinematics.Angles
	history      []kinematics.Angles
	dispenserOn  bool
	calls        []string
	anglesErr    error
	dispenserErr error
	// failOnlyOn restricts dispenserErr to one switch direction so tests
	// can fail "on" while letting the release "off" succeed.
	failOnlyOn bool
	blockCh    chan struct{}
}

// NewMockRig creates a MockRig parked at the zero angles.
func NewMockRig() *MockRig {
	return &MockRig{}
}

// FailAngles makes SetAngles return err.
func (m *MockRig) FailAngles(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anglesErr = err
}

// FailDispenserOn makes only SetDispenser(true) return err; switching the
// dispenser off still succeeds.
func (m *MockRig) FailDispenserOn(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispenserErr = err
	m.failOnlyOn = true
}

// BlockAngles makes SetAngles block until the context is done, simulating
// a hung servo driver.
func (m *MockRig) BlockAngles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockCh = make(chan struct{})
}

// SetAngles implements Rig.
func (m *MockRig) SetAngles(ctx context.Context, angles kinematics.Angles) error {
	m.mu.Lock()
	block := m.blockCh
	err := m.anglesErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.angles = angles
	m.history = append(m.history, angles)
	m.calls = append(m.calls, "angles")
	return nil
}

// SetDispenser implements Rig.
func (m *MockRig) SetDispenser(ctx context.Context, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dispenserErr != nil && (!m.failOnlyOn || on) {
		return m.dispenserErr
	}

	m.dispenserOn = on
	if on {
		m.calls = append(m.calls, "dispense on")
	} else {
		m.calls = append(m.calls, "dispense off")
	}
	return nil
}

// AngleHistory returns every commanded angle pair in order.
func (m *MockRig) AngleHistory() []kinematics.Angles {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]kinematics.Angles, len(m.history))
	copy(out, m.history)
	return out
}

// Angles returns the arm's last commanded angles.
func (m *MockRig) Angles() kinematics.Angles {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.angles
}

// DispenserOn reports whether the dispenser is currently on.
func (m *MockRig) DispenserOn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispenserOn
}

// Calls returns the recorded call sequence.
func (m *MockRig) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
