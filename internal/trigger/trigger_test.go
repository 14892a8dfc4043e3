package trigger

import (
	"testing"
	"time"

	"github.com/ayusman/desksentry/internal/vision"
)

func overlapObs() vision.Observation {
	return vision.Observation{
		Overlapping: true,
		Target:      &vision.Point2D{U: 0.5, V: 0.5},
	}
}

func TestStep_RequiresConsecutiveFrames(t *testing.T) {
	m := NewMachine(3, 10*time.Second)
	now := time.Now()

	for i := 0; i < 2; i++ {
		d := m.Step(overlapObs(), true, now)
		if d.ShouldTrigger {
			t.Fatalf("frame %d: must not trigger before the debounce count", i+1)
		}
		now = now.Add(100 * time.Millisecond)
	}

	d := m.Step(overlapObs(), true, now)
	if !d.ShouldTrigger {
		t.Fatal("expected trigger on the 3rd consecutive overlapping frame")
	}
	if d.Target == nil {
		t.Fatal("trigger decision must carry the target")
	}
	if m.State() != StateTriggered {
		t.Errorf("expected state triggered, got %s", m.State())
	}
}

func TestStep_NonConsecutiveResetsCounter(t *testing.T) {
	m := NewMachine(3, 10*time.Second)
	now := time.Now()

	// Two overlaps, a gap, then two more overlaps: never enough in a row.
	m.Step(overlapObs(), true, now)
	m.Step(overlapObs(), true, now)
	m.Step(vision.Observation{}, true, now)
	if d := m.Step(overlapObs(), true, now); d.ShouldTrigger {
		t.Fatal("counter must reset after a non-overlapping frame")
	}
	if d := m.Step(overlapObs(), true, now); d.ShouldTrigger {
		t.Fatal("only two consecutive overlaps since the reset")
	}
	if d := m.Step(overlapObs(), true, now); !d.ShouldTrigger {
		t.Fatal("expected trigger once three consecutive overlaps accumulate again")
	}
}

func TestStep_DNDInactiveResetsCounter(t *testing.T) {
	m := NewMachine(3, 10*time.Second)
	now := time.Now()

	m.Step(overlapObs(), true, now)
	m.Step(overlapObs(), true, now)
	// Overlap continues but do-not-disturb drops out.
	if d := m.Step(overlapObs(), false, now); d.ShouldTrigger {
		t.Fatal("must never trigger while do-not-disturb is inactive")
	}
	m.Step(overlapObs(), true, now)
	if d := m.Step(overlapObs(), true, now); d.ShouldTrigger {
		t.Fatal("counter must restart after a do-not-disturb gap")
	}
}

func TestStep_TriggersExactlyOnce(t *testing.T) {
	m := NewMachine(3, 10*time.Second)
	now := time.Now()

	triggers := 0
	for i := 0; i < 10; i++ {
		d := m.Step(overlapObs(), true, now)
		if d.ShouldTrigger {
			triggers++
			m.MarkDispatched(now)
		}
		now = now.Add(100 * time.Millisecond)
	}

	if triggers != 1 {
		t.Fatalf("expected exactly one trigger in a sustained overlap, got %d", triggers)
	}
	if m.State() != StateCooldown {
		t.Errorf("expected cooldown after dispatch, got %s", m.State())
	}
}

func TestStep_CooldownIsHardMute(t *testing.T) {
	m := NewMachine(3, 10*time.Second)
	start := time.Now()

	now := start
	for i := 0; i < 3; i++ {
		if d := m.Step(overlapObs(), true, now); d.ShouldTrigger {
			m.MarkDispatched(now)
		}
		now = now.Add(100 * time.Millisecond)
	}

	// Sustained overlap through the whole cooldown window stays muted.
	for now.Before(start.Add(9 * time.Second)) {
		if d := m.Step(overlapObs(), true, now); d.ShouldTrigger {
			t.Fatal("cooldown must mute all triggers")
		}
		now = now.Add(500 * time.Millisecond)
	}

	// The streak kept counting during cooldown, so a still-held overlap
	// fires on the first tick past the window.
	now = start.Add(11 * time.Second)
	if d := m.Step(overlapObs(), true, now); !d.ShouldTrigger {
		t.Fatal("expected re-trigger on the first overlapping tick after cooldown")
	}
}

func TestStep_CooldownIgnoresDNDChanges(t *testing.T) {
	m := NewMachine(1, 10*time.Second)
	now := time.Now()

	if d := m.Step(overlapObs(), true, now); !d.ShouldTrigger {
		t.Fatal("expected immediate trigger with minFrames=1")
	}
	m.MarkDispatched(now)

	// Toggling the flag while cooling down neither aborts nor extends it.
	m.Step(overlapObs(), false, now.Add(time.Second))
	if m.State() != StateCooldown {
		t.Errorf("cooldown must be unaffected by the flag, got %s", m.State())
	}

	remaining := m.CooldownRemaining(now.Add(4 * time.Second))
	if remaining <= 0 || remaining > 6*time.Second {
		t.Errorf("unexpected cooldown remaining %s", remaining)
	}
}

func TestStep_NoTargetDoesNotArm(t *testing.T) {
	m := NewMachine(1, time.Second)
	obs := vision.Observation{Overlapping: true} // no target to aim at

	if d := m.Step(obs, true, time.Now()); d.ShouldTrigger {
		t.Fatal("must not trigger without an aim target")
	}
}

func TestMarkDispatched_OnlyFromTriggered(t *testing.T) {
	m := NewMachine(3, time.Second)
	m.MarkDispatched(time.Now())
	if m.State() != StateIdle {
		t.Errorf("dispatch outside the triggered state must be ignored, got %s", m.State())
	}
}
