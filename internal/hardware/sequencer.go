package hardware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/desksentry/internal/kinematics"
)

// SequencerConfig bounds the spray sequence.
type SequencerConfig struct {
	// Rest is where the arm parks between sprays.
	Rest kinematics.Angles
	// SettleDelay is the pause between aiming and dispensing, letting
	// the arm stop oscillating.
	SettleDelay time.Duration
	// StepTimeout caps every individual hardware call so a hung driver
	// cannot block the sequence forever.
	StepTimeout time.Duration
}

// Sequencer executes spray commands against a Rig. The orchestrator never
// runs two sequences concurrently; the trigger cooldown outlasts the
// sequence by a wide margin.
type Sequencer struct {
	rig Rig
	cfg SequencerConfig
}

// NewSequencer creates a Sequencer for the given rig.
func NewSequencer(rig Rig, cfg SequencerConfig) *Sequencer {
	return &Sequencer{rig: rig, cfg: cfg}
}

// Execute runs the full sequence: aim, settle, dispense, release, return
// to rest. Whatever happens in the first three steps, the dispenser is
// switched off and the arm returned to rest before Execute returns; those
// release steps run on a detached context so that cancellation of ctx
// (shutdown included) cannot leave the dispenser running or the arm
// parked off-rest.
func (s *Sequencer) Execute(ctx context.Context, cmd SprayCommand) error {
	id := uuid.NewString()
	log.Printf("spray %s: aiming at (%.1f, %.1f)", id, cmd.Target.A1, cmd.Target.A2)

	err := s.run(ctx, cmd)

	// Guaranteed release, even after a failure or cancellation above.
	release := s.release()
	if err == nil {
		err = release
	}

	if err != nil {
		log.Printf("spray %s: failed: %v", id, err)
		return fmt.Errorf("spray sequence: %w", err)
	}
	log.Printf("spray %s: completed", id)
	return nil
}

// run performs the aim, settle and dispense steps.
func (s *Sequencer) run(ctx context.Context, cmd SprayCommand) error {
	if err := s.step(ctx, "aim", func(stepCtx context.Context) error {
		return s.rig.SetAngles(stepCtx, cmd.Target)
	}); err != nil {
		return err
	}

	if err := sleep(ctx, s.cfg.SettleDelay); err != nil {
		return err
	}

	if err := s.step(ctx, "dispense on", func(stepCtx context.Context) error {
		return s.rig.SetDispenser(stepCtx, true)
	}); err != nil {
		return err
	}

	return sleep(ctx, cmd.Duration)
}

// release switches the dispenser off and returns the arm to rest. It uses
// a background-derived context so it still runs after ctx cancellation.
func (s *Sequencer) release() error {
	var first error

	if err := s.step(context.Background(), "dispense off", func(stepCtx context.Context) error {
		return s.rig.SetDispenser(stepCtx, false)
	}); err != nil {
		first = err
	}

	if err := s.step(context.Background(), "return to rest", func(stepCtx context.Context) error {
		return s.rig.SetAngles(stepCtx, s.cfg.Rest)
	}); err != nil && first == nil {
		first = err
	}

	return first
}

// step runs one hardware call under the per-step timeout.
func (s *Sequencer) step(ctx context.Context, name string, fn func(context.Context) error) error {
	stepCtx := ctx
	if s.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, s.cfg.StepTimeout)
		defer cancel()
	}
	if err := fn(stepCtx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
