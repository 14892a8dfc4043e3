// Package vision defines the frame-level detection model and the fusion
// step that turns one frame's detections into a single observation.
package vision

// Class identifies what a detection is.
type Class int

const (
	// ClassObject is the monitored object on the desk.
	ClassObject Class = iota
	// ClassHand is a detected hand.
	ClassHand
	// ClassFace is a detected face.
	ClassFace
)

// String returns the lowercase name of the class.
func (c Class) String() string {
	switch c {
	case ClassObject:
		return "object"
	case ClassHand:
		return "hand"
	case ClassFace:
		return "face"
	}
	return "unknown"
}

// Point2D is a normalized camera-space coordinate. U runs left to right,
// V runs top to bottom, both in [0,1].
type Point2D struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// BoundingBox is an axis-aligned box in normalized frame coordinates.
// XMin < XMax and YMin < YMax.
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Valid reports whether the box has positive extent on both axes.
func (b BoundingBox) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Point2D {
	return Point2D{
		U: (b.XMin + b.XMax) / 2,
		V: (b.YMin + b.YMax) / 2,
	}
}

// Intersects reports whether two boxes share a region of non-zero area.
// Boxes that only touch along an edge or at a corner do not intersect.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.XMin < o.XMax && o.XMin < b.XMax &&
		b.YMin < o.YMax && o.YMin < b.YMax
}

// Detection is a single classified box produced for one frame.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
	Class      Class       `json:"class"`
}

// Observation is the fused view of one frame: at most one detection per
// class, whether a hand is on the object, and where to aim if triggered.
// It is built fresh every tick and never retained across ticks.
type Observation struct {
	Object *Detection
	Hand   *Detection
	Face   *Detection

	// Overlapping is true when the hand and object boxes share area.
	Overlapping bool

	// Target is the aim point, or nil when there is nothing to aim at.
	Target *Point2D
}
