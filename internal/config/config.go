// Package config defines the runtime configuration and its loading.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds every tunable the process consumes. Values arrive from
// defaults, an optional YAML file and environment overrides; the core
// components only ever see the resolved struct.
type Config struct {
	// Addr is the control-plane HTTP listen address.
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding the calibration map.
	DBPath string `koanf:"db_path"`

	// CameraID selects the video device for the DNN detector.
	CameraID int `koanf:"camera_id"`

	// ModelPath, ModelConfigPath and LabelsPath configure the detection
	// network. Empty ModelPath selects the mock detector.
	ModelPath       string `koanf:"model_path"`
	ModelConfigPath string `koanf:"model_config_path"`
	LabelsPath      string `koanf:"labels_path"`

	// ObjectLabel is the model label of the monitored object.
	ObjectLabel string `koanf:"object_label"`

	// Confidence thresholds per detection class.
	ObjectThreshold float64 `koanf:"object_threshold"`
	HandThreshold   float64 `koanf:"hand_threshold"`
	FaceThreshold   float64 `koanf:"face_threshold"`

	// MinDetectionFrames is the number of consecutive overlapping frames
	// required before triggering.
	MinDetectionFrames int `koanf:"min_detection_frames"`

	// TickInterval is the orchestrator loop period.
	TickInterval time.Duration `koanf:"tick_interval"`

	// CooldownPeriod mutes triggering after a spray.
	CooldownPeriod time.Duration `koanf:"cooldown_period"`

	// SprayDuration is how long the dispenser runs.
	SprayDuration time.Duration `koanf:"spray_duration"`

	// SettleDelay is the pause between aiming and dispensing.
	SettleDelay time.Duration `koanf:"settle_delay"`

	// StepTimeout bounds each individual hardware call.
	StepTimeout time.Duration `koanf:"step_timeout"`

	// DNDMaxAge treats a do-not-disturb confirmation older than this as
	// inactive. Zero disables the staleness check.
	DNDMaxAge time.Duration `koanf:"dnd_max_age"`

	// Actuator geometry.
	AngleMin   float64 `koanf:"angle_min"`
	AngleMax   float64 `koanf:"angle_max"`
	RestAngle1 float64 `koanf:"rest_angle_1"`
	RestAngle2 float64 `koanf:"rest_angle_2"`

	// Tray enables the desktop tray toggle.
	Tray bool `koanf:"tray"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		DBPath:             "desksentry.db",
		CameraID:           0,
		ObjectLabel:        "cell phone",
		ObjectThreshold:    0.6,
		HandThreshold:      0.6,
		FaceThreshold:      0.5,
		MinDetectionFrames: 3,
		TickInterval:       100 * time.Millisecond,
		CooldownPeriod:     10 * time.Second,
		SprayDuration:      800 * time.Millisecond,
		SettleDelay:        300 * time.Millisecond,
		StepTimeout:        2 * time.Second,
		DNDMaxAge:          0,
		AngleMin:           0,
		AngleMax:           180,
		RestAngle1:         90,
		RestAngle2:         90,
	}
}

// Validate checks the resolved configuration for values the loop cannot
// run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick_interval must be positive")
	}
	if c.MinDetectionFrames < 1 {
		return errors.New("min_detection_frames must be at least 1")
	}
	if c.CooldownPeriod <= 0 {
		return errors.New("cooldown_period must be positive")
	}
	if c.SprayDuration <= 0 {
		return errors.New("spray_duration must be positive")
	}
	if c.AngleMin >= c.AngleMax {
		return fmt.Errorf("angle range [%v, %v] is empty", c.AngleMin, c.AngleMax)
	}
	for _, threshold := range []float64{c.ObjectThreshold, c.HandThreshold, c.FaceThreshold} {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("confidence threshold %v outside [0, 1]", threshold)
		}
	}
	if c.RestAngle1 < c.AngleMin || c.RestAngle1 > c.AngleMax ||
		c.RestAngle2 < c.AngleMin || c.RestAngle2 > c.AngleMax {
		return errors.New("rest angles must lie within the safe angle range")
	}
	return nil
}
