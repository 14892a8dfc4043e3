package vision

// faceFallbackRatio places the fallback aim point this far down from the
// top edge of the object box when no face is visible. The handler's head
// is usually above the object, so aim high on the box.
const faceFallbackRatio = 0.2

// Thresholds holds the per-class minimum confidence for a detection to be
// considered at all.
type Thresholds struct {
	Object float64
	Hand   float64
	Face   float64
}

// Fuser combines one frame's detections into an Observation.
type Fuser struct {
	thresholds Thresholds
}

// NewFuser creates a Fuser with the given per-class confidence thresholds.
func NewFuser(t Thresholds) *Fuser {
	return &Fuser{thresholds: t}
}

// Fuse selects the best detection of each class and derives the overlap
// flag and aim point. It is a pure function of its input: same detections,
// same observation.
func (f *Fuser) Fuse(detections []Detection) Observation {
	obs := Observation{
		Object: bestOf(detections, ClassObject, f.thresholds.Object),
		Hand:   bestOf(detections, ClassHand, f.thresholds.Hand),
		Face:   bestOf(detections, ClassFace, f.thresholds.Face),
	}

	if obs.Hand != nil && obs.Object != nil {
		obs.Overlapping = obs.Hand.Box.Intersects(obs.Object.Box)
	}

	switch {
	case obs.Face != nil:
		c := obs.Face.Box.Center()
		obs.Target = &c
	case obs.Object != nil:
		// No face visible: aim at the head region above the object.
		box := obs.Object.Box
		obs.Target = &Point2D{
			U: (box.XMin + box.XMax) / 2,
			V: box.YMin + faceFallbackRatio*(box.YMax-box.YMin),
		}
	}

	return obs
}

// bestOf returns the highest-confidence detection of the given class whose
// confidence strictly exceeds the threshold, or nil. Detections with
// invalid boxes are skipped.
func bestOf(detections []Detection, class Class, threshold float64) *Detection {
	var best *Detection
	for i := range detections {
		d := &detections[i]
		if d.Class != class || !d.Box.Valid() {
			continue
		}
		if d.Confidence <= threshold {
			continue
		}
		if best == nil || d.Confidence > best.Confidence {
			best = d
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
