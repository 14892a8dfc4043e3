// Package trigger implements the debounce and cooldown state machine that
// decides when an observation stream warrants a spray.
package trigger

import (
	"time"

	"github.com/ayusman/desksentry/internal/vision"
)

// State identifies the machine's current position in the trigger cycle.
type State int

const (
	// StateIdle means no qualifying observation streak is in progress.
	StateIdle State = iota
	// StateArmed marks the instant the debounce requirement is met. The
	// machine never rests here: the same Step call that arms also fires.
	StateArmed
	// StateTriggered means a trigger decision was emitted and actuation
	// dispatch is pending.
	StateTriggered
	// StateCooldown is the hard mute after a dispatch. Observations are
	// still consumed but can never re-trigger until the timer elapses.
	StateCooldown
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateTriggered:
		return "triggered"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

// Decision is the per-tick output. ShouldTrigger is true only on the
// single tick the machine fires; Target is the aim point for that tick.
type Decision struct {
	ShouldTrigger bool
	Target        *vision.Point2D
}

// Machine is the trigger state machine. It is not safe for concurrent
// use; exactly one instance is owned and stepped by the orchestrator.
type Machine struct {
	state       State
	minFrames   int
	cooldown    time.Duration
	consecutive int
	cooldownEnd time.Time
}

// NewMachine creates a Machine requiring minFrames consecutive qualifying
// observations before firing, then muting for the cooldown duration.
func NewMachine(minFrames int, cooldown time.Duration) *Machine {
	if minFrames < 1 {
		minFrames = 1
	}
	return &Machine{
		state:     StateIdle,
		minFrames: minFrames,
		cooldown:  cooldown,
	}
}

// Step consumes one observation and returns the tick's decision.
//
// A qualifying observation is one where the hand overlaps the object, the
// do-not-disturb flag is active, and a target exists. Anything else resets
// the streak. Cooldown consumes observations without ever re-arming.
func (m *Machine) Step(obs vision.Observation, dndActive bool, now time.Time) Decision {
	if m.state == StateCooldown && !now.Before(m.cooldownEnd) {
		m.state = StateIdle
	}

	if !dndActive || !obs.Overlapping || obs.Target == nil {
		m.consecutive = 0
		if m.state == StateArmed {
			m.state = StateIdle
		}
		return Decision{}
	}
	m.consecutive++

	// Cooldown is a hard mute: the streak keeps counting but nothing can
	// arm until the window elapses.
	if m.state == StateCooldown {
		return Decision{}
	}
	if m.consecutive < m.minFrames {
		return Decision{}
	}

	// Debounce satisfied: the armed instant collapses into triggered
	// within the same step, so the machine never rests in StateArmed.
	m.state = StateTriggered
	return Decision{ShouldTrigger: true, Target: obs.Target}
}

// MarkDispatched records that the triggered actuation was handed to the
// sequencer. The machine enters cooldown regardless of whether the
// sequence ultimately succeeds; a failed spray still burns its window.
func (m *Machine) MarkDispatched(now time.Time) {
	if m.state != StateTriggered {
		return
	}
	m.state = StateCooldown
	m.consecutive = 0
	m.cooldownEnd = now.Add(m.cooldown)
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// CooldownRemaining returns how long the mute lasts from now, or zero when
// the machine is not cooling down.
func (m *Machine) CooldownRemaining(now time.Time) time.Duration {
	if m.state != StateCooldown {
		return 0
	}
	remaining := m.cooldownEnd.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
