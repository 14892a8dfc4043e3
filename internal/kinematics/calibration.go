// Package kinematics maps normalized camera coordinates to servo angles
// using a four-corner calibration of the aiming mechanism.
package kinematics

import (
	"errors"
	"fmt"

	"github.com/ayusman/desksentry/internal/vision"
)

// CornerPosition names one of the four calibration corners by where its
// camera point sits in the frame.
type CornerPosition string

const (
	TopLeft     CornerPosition = "top_left"
	TopRight    CornerPosition = "top_right"
	BottomLeft  CornerPosition = "bottom_left"
	BottomRight CornerPosition = "bottom_right"
)

// CornerPositions lists the four positions in a stable order.
var CornerPositions = []CornerPosition{TopLeft, TopRight, BottomLeft, BottomRight}

// Angles is a pair of actuator angles in degrees.
type Angles struct {
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
}

// AngleRange is the mechanism's absolute safe range, applied to both axes.
type AngleRange struct {
	Min float64
	Max float64
}

// Clamp limits a to the range and reports whether limiting was needed.
func (r AngleRange) Clamp(a float64) (float64, bool) {
	switch {
	case a < r.Min:
		return r.Min, true
	case a > r.Max:
		return r.Max, true
	}
	return a, false
}

// Corner is one sampled camera point to actuator angle correspondence.
type Corner struct {
	Camera vision.Point2D `json:"camera"`
	Angles Angles         `json:"angles"`
}

// CalibrationMap holds the four corner correspondences.
type CalibrationMap struct {
	Corners map[CornerPosition]Corner `json:"corners"`
}

// ErrNotCalibrated is returned when a calibration map is missing corners.
var ErrNotCalibrated = errors.New("calibration map incomplete")

// Validate checks that all four corners are present and that their camera
// points form a convex, non-degenerate quadrilateral. Interpolating over a
// degenerate patch would aim the mechanism at garbage, so an invalid map
// fails closed.
func (c *CalibrationMap) Validate() error {
	if c == nil || len(c.Corners) == 0 {
		return ErrNotCalibrated
	}
	for _, pos := range CornerPositions {
		if _, ok := c.Corners[pos]; !ok {
			return fmt.Errorf("%w: missing corner %q", ErrNotCalibrated, pos)
		}
	}

	// Walk the quadrilateral boundary and require every turn to bend the
	// same way, with no zero turns (three collinear points).
	ring := []vision.Point2D{
		c.Corners[TopLeft].Camera,
		c.Corners[TopRight].Camera,
		c.Corners[BottomRight].Camera,
		c.Corners[BottomLeft].Camera,
	}
	sign := 0
	for i := range ring {
		a, b, d := ring[i], ring[(i+1)%4], ring[(i+2)%4]
		cross := (b.U-a.U)*(d.V-a.V) - (b.V-a.V)*(d.U-a.U)
		switch {
		case cross == 0:
			return errors.New("calibration corners degenerate: three camera points are collinear")
		case cross > 0:
			if sign < 0 {
				return errors.New("calibration corners form a non-convex quadrilateral")
			}
			sign = 1
		default:
			if sign > 0 {
				return errors.New("calibration corners form a non-convex quadrilateral")
			}
			sign = -1
		}
	}
	return nil
}
