package dnd

import (
	"testing"
	"time"
)

func TestCell_DefaultsInactive(t *testing.T) {
	c := NewCell(0)
	if c.Active(time.Now()) {
		t.Fatal("a fresh cell must read inactive")
	}
	active, updated := c.Get()
	if active || !updated.IsZero() {
		t.Fatalf("expected zero state, got active=%v updated=%v", active, updated)
	}
}

func TestCell_SetAndRead(t *testing.T) {
	c := NewCell(0)

	c.Set(true)
	if !c.Active(time.Now()) {
		t.Fatal("expected active after Set(true)")
	}

	active, updated := c.Get()
	if !active {
		t.Error("Get must report the set value")
	}
	if updated.IsZero() {
		t.Error("Set must record the update time")
	}

	c.Set(false)
	if c.Active(time.Now()) {
		t.Fatal("expected inactive after Set(false)")
	}
}

func TestCell_StaleConfirmationReadsInactive(t *testing.T) {
	c := NewCell(time.Minute)
	c.Set(true)

	if !c.Active(time.Now()) {
		t.Fatal("fresh confirmation must read active")
	}
	if c.Active(time.Now().Add(2 * time.Minute)) {
		t.Fatal("confirmation older than the staleness bound must read inactive")
	}

	// Raw value is still the last known one; only Active applies the bound.
	if active, _ := c.Get(); !active {
		t.Error("Get must keep reporting the last known value")
	}

	// An idempotent re-set refreshes the confirmation.
	c.Set(true)
	if !c.Active(time.Now()) {
		t.Fatal("re-set must refresh the staleness window")
	}
}

func TestCell_ZeroBoundNeverGoesStale(t *testing.T) {
	c := NewCell(0)
	c.Set(true)
	if !c.Active(time.Now().Add(24 * time.Hour)) {
		t.Fatal("zero staleness bound must trust the last known value forever")
	}
}
