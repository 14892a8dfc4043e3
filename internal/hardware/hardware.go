// Package hardware drives the aiming arm and liquid dispenser through the
// spray sequence, with per-step timeouts and guaranteed release.
package hardware

import (
	"context"
	"time"

	"github.com/ayusman/desksentry/internal/kinematics"
)

// Rig is the hardware collaborator: a 2-axis arm plus a dispenser. Both
// calls must tolerate redundant invocation (setting the current state
// again is a no-op, not an error). Implementations sit on GPIO/PWM
// drivers and are supplied by the caller.
type Rig interface {
	// SetAngles moves the arm to the given angles, blocking until the
	// move completes or the context is done.
	SetAngles(ctx context.Context, angles kinematics.Angles) error

	// SetDispenser switches the dispenser on or off.
	SetDispenser(ctx context.Context, on bool) error
}

// SprayCommand is one shot: where to aim and how long to dispense.
type SprayCommand struct {
	Target   kinematics.Angles
	Duration time.Duration
}
