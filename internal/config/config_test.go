package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_DefaultsValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"zero debounce", func(c *Config) { c.MinDetectionFrames = 0 }},
		{"zero cooldown", func(c *Config) { c.CooldownPeriod = 0 }},
		{"zero spray", func(c *Config) { c.SprayDuration = 0 }},
		{"empty angle range", func(c *Config) { c.AngleMin, c.AngleMax = 90, 90 }},
		{"threshold above one", func(c *Config) { c.HandThreshold = 1.5 }},
		{"rest outside range", func(c *Config) { c.RestAngle1 = 200 }},
	}

	for _, tc := range cases {
		c := New()
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DESKSENTRY_ADDR", ":9999")
	t.Setenv("DESKSENTRY_MIN_DETECTION_FRAMES", "5")
	t.Setenv("DESKSENTRY_COOLDOWN_PERIOD", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("expected addr :9999, got %q", cfg.Addr)
	}
	if cfg.MinDetectionFrames != 5 {
		t.Errorf("expected 5 detection frames, got %d", cfg.MinDetectionFrames)
	}
	if cfg.CooldownPeriod != 30*time.Second {
		t.Errorf("expected 30s cooldown, got %s", cfg.CooldownPeriod)
	}
	// Untouched fields keep their defaults.
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("expected default tick interval, got %s", cfg.TickInterval)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":7070\"\nspray_duration: 1s\nobject_label: \"tablet\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DESKSENTRY_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected addr :7070, got %q", cfg.Addr)
	}
	if cfg.SprayDuration != time.Second {
		t.Errorf("expected 1s spray duration, got %s", cfg.SprayDuration)
	}
	if cfg.ObjectLabel != "tablet" {
		t.Errorf("expected object label tablet, got %q", cfg.ObjectLabel)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DESKSENTRY_CONFIG", path)
	t.Setenv("DESKSENTRY_ADDR", ":6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":6060" {
		t.Errorf("env must take precedence over file, got %q", cfg.Addr)
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	t.Setenv("DESKSENTRY_ADDR", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an invalid resolved config to be rejected")
	}
}
