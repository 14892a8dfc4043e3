package kinematics

import (
	"math"
	"sync"

	"github.com/ayusman/desksentry/internal/vision"
)

// invertIterations bounds the Newton refinement of the fractional
// position. The patch is mildly non-linear at worst; convergence is
// quadratic and a handful of steps reaches float64 precision.
const invertIterations = 12

// hullTolerance absorbs Newton round-off when deciding whether a target
// lies outside the corner patch. A converged iterate for an on-hull point
// can land a few ulps past the unit square; that is not extrapolation.
const hullTolerance = 1e-9

// Mapper converts camera-space targets into actuator angles by bilinear
// interpolation over the calibration corners. Safe to use from multiple
// goroutines; SetCalibration may swap the map while the loop runs.
type Mapper struct {
	mu    sync.RWMutex
	calib *CalibrationMap
	valid bool

	safe AngleRange
	rest Angles
}

// NewMapper creates a Mapper. The calibration map may be nil; mapping then
// falls back to the rest angles until a valid map is installed.
func NewMapper(calib *CalibrationMap, safe AngleRange, rest Angles) *Mapper {
	m := &Mapper{safe: safe, rest: rest}
	m.SetCalibration(calib)
	return m
}

// SetCalibration installs a new calibration map. An invalid map is kept
// for inspection but mapping fails closed to the rest angles.
func (m *Mapper) SetCalibration(calib *CalibrationMap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calib = calib
	m.valid = calib.Validate() == nil
}

// Calibration returns the current map (possibly nil) and whether it is
// valid.
func (m *Mapper) Calibration() (*CalibrationMap, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calib, m.valid
}

// Rest returns the configured rest angles.
func (m *Mapper) Rest() Angles {
	return m.rest
}

// Map converts a normalized camera target into actuator angles. The
// returned flag is true when any clamping occurred, including the
// fail-closed fallback to rest angles on a missing or degenerate map.
func (m *Mapper) Map(target vision.Point2D) (Angles, bool) {
	m.mu.RLock()
	calib, valid := m.calib, m.valid
	m.mu.RUnlock()

	if !valid {
		return m.rest, true
	}

	fx, fy, outside := calib.fractional(target)

	tl := calib.Corners[TopLeft].Angles
	tr := calib.Corners[TopRight].Angles
	bl := calib.Corners[BottomLeft].Angles
	br := calib.Corners[BottomRight].Angles

	angles := Angles{
		A1: bilinear(tl.A1, tr.A1, bl.A1, br.A1, fx, fy),
		A2: bilinear(tl.A2, tr.A2, bl.A2, br.A2, fx, fy),
	}

	var c1, c2 bool
	angles.A1, c1 = m.safe.Clamp(angles.A1)
	angles.A2, c2 = m.safe.Clamp(angles.A2)

	return angles, outside || c1 || c2
}

// bilinear interpolates a corner quantity at fractional position (fx, fy),
// fx running left to right and fy top to bottom.
func bilinear(tl, tr, bl, br, fx, fy float64) float64 {
	top := tl + fx*(tr-tl)
	bottom := bl + fx*(br-bl)
	return top + fy*(bottom-top)
}

// fractional computes the target's normalized position within the corner
// quadrilateral by inverting the bilinear patch with Newton's method, then
// clamps to the unit square. Extrapolation outside the patch is disallowed;
// the reported flag notes that clamping happened.
func (c *CalibrationMap) fractional(p vision.Point2D) (fx, fy float64, clamped bool) {
	tl := c.Corners[TopLeft].Camera
	tr := c.Corners[TopRight].Camera
	bl := c.Corners[BottomLeft].Camera
	br := c.Corners[BottomRight].Camera

	fx, fy = 0.5, 0.5
	for i := 0; i < invertIterations; i++ {
		// Residual of the forward patch at (fx, fy).
		u := bilinear(tl.U, tr.U, bl.U, br.U, fx, fy) - p.U
		v := bilinear(tl.V, tr.V, bl.V, br.V, fx, fy) - p.V

		// Jacobian of the forward patch.
		dudx := (tr.U-tl.U)*(1-fy) + (br.U-bl.U)*fy
		dudy := (bl.U-tl.U)*(1-fx) + (br.U-tr.U)*fx
		dvdx := (tr.V-tl.V)*(1-fy) + (br.V-bl.V)*fy
		dvdy := (bl.V-tl.V)*(1-fx) + (br.V-tr.V)*fx

		det := dudx*dvdy - dudy*dvdx
		if math.Abs(det) < 1e-12 {
			break
		}
		fx -= (u*dvdy - v*dudy) / det
		fy -= (v*dudx - u*dvdx) / det
	}

	if fx < -hullTolerance || fx > 1+hullTolerance ||
		fy < -hullTolerance || fy > 1+hullTolerance {
		clamped = true
	}
	fx = math.Min(1, math.Max(0, fx))
	fy = math.Min(1, math.Max(0, fy))
	return fx, fy, clamped
}
