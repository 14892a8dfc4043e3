// Package orchestrator drives the fixed-rate sense-decide-act loop.
package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/desksentry/internal/detector"
	"github.com/ayusman/desksentry/internal/dnd"
	"github.com/ayusman/desksentry/internal/hardware"
	"github.com/ayusman/desksentry/internal/kinematics"
	"github.com/ayusman/desksentry/internal/metrics"
	"github.com/ayusman/desksentry/internal/trigger"
	"github.com/ayusman/desksentry/internal/vision"
)

// Config holds the loop settings.
type Config struct {
	// TickInterval is the loop period. Actuation runs synchronously
	// inside its tick and may overrun the period; the following ticks
	// are cooldown no-ops anyway.
	TickInterval time.Duration

	// SprayDuration is how long the dispenser runs per trigger.
	SprayDuration time.Duration
}

// Orchestrator wires detector, fusion, trigger machine, kinematics and
// the spray sequencer into one single-threaded loop. Nothing inside the
// loop runs concurrently; the only cross-goroutine value it touches is
// the do-not-disturb cell.
type Orchestrator struct {
	cfg       Config
	det       detector.Detector
	fuser     *vision.Fuser
	machine   *trigger.Machine
	mapper    *kinematics.Mapper
	sequencer *hardware.Sequencer
	flag      *dnd.Cell
	met       *metrics.Metrics
}

// New creates an Orchestrator over the given collaborators.
func New(cfg Config, det detector.Detector, fuser *vision.Fuser, machine *trigger.Machine,
	mapper *kinematics.Mapper, sequencer *hardware.Sequencer, flag *dnd.Cell, met *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		det:       det,
		fuser:     fuser,
		machine:   machine,
		mapper:    mapper,
		sequencer: sequencer,
		flag:      flag,
		met:       met,
	}
}

// Machine exposes the trigger state machine for status reporting. Readers
// only call its accessor methods; stepping stays exclusive to the loop.
func (o *Orchestrator) Machine() *trigger.Machine {
	return o.machine
}

// Run executes the loop until ctx is cancelled. The loop itself exits
// between ticks; an in-flight spray sequence still performs its release
// steps before Run returns.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	log.Printf("orchestrator started (tick %s)", o.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			log.Println("orchestrator stopped")
			return
		case <-ticker.C:
			o.tick(ctx, time.Now())
		}
	}
}

// tick runs one pass: poll, fuse, step the machine, and on a trigger aim
// and spray synchronously before the next tick is considered.
func (o *Orchestrator) tick(ctx context.Context, now time.Time) {
	o.met.Ticks.Inc()

	dndActive := o.flag.Active(now)
	if dndActive {
		o.met.DNDActive.Set(1)
	} else {
		o.met.DNDActive.Set(0)
	}

	detections, err := o.det.Poll()
	if err != nil {
		// A sensing gap is a normal "nothing observed" tick; the streak
		// counter resets through the empty observation below.
		o.met.DetectorGaps.Inc()
		log.Printf("detector poll failed, treating as empty frame: %v", err)
		detections = nil
	}

	obs := o.fuser.Fuse(detections)
	decision := o.machine.Step(obs, dndActive, now)
	if !decision.ShouldTrigger {
		return
	}

	o.met.Triggers.Inc()
	angles, clamped := o.mapper.Map(*decision.Target)
	if clamped {
		log.Printf("target (%.3f, %.3f) clamped to safe angles (%.1f, %.1f)",
			decision.Target.U, decision.Target.V, angles.A1, angles.A2)
	}

	start := time.Now()
	err = o.sequencer.Execute(ctx, hardware.SprayCommand{
		Target:   angles,
		Duration: o.cfg.SprayDuration,
	})
	o.met.SprayDuration.Observe(time.Since(start).Seconds())

	// A failed spray still burns its cooldown window; retry storms
	// against faulty hardware help nobody.
	o.machine.MarkDispatched(time.Now())

	if err != nil {
		o.met.SprayFailures.Inc()
		log.Printf("spray sequence failed: %v", err)
		return
	}
	o.met.Sprays.Inc()
}
