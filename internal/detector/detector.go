// Package detector produces per-frame object, hand and face detections.
// The orchestrator only sees the Detector interface; whatever model runs
// behind it is its own concern.
package detector

import "github.com/ayusman/desksentry/internal/vision"

// Detector is the sensing collaborator polled once per tick.
type Detector interface {
	// Poll returns the detections for the latest frame. An empty slice is
	// a legitimate "nothing observed" result, not an error; errors mean a
	// hard sensing failure (device lost), which the caller treats as an
	// empty frame.
	Poll() ([]vision.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds detection model settings.
type Config struct {
	// ModelPath points at the detection network weights (ONNX or Caffe).
	ModelPath string

	// ConfigPath points at the network's config/prototxt, if the format
	// needs one.
	ConfigPath string

	// LabelsPath points at the class label list, one label per line in
	// network class-ID order.
	LabelsPath string

	// ClassNames maps a vision class to the model label that represents
	// it, e.g. ClassObject -> "cell phone".
	ClassNames map[vision.Class]string
}

// DefaultConfig returns a Config with the label mapping for a COCO-style
// model watching a phone.
func DefaultConfig() Config {
	return Config{
		ClassNames: map[vision.Class]string{
			vision.ClassObject: "cell phone",
			vision.ClassHand:   "hand",
			vision.ClassFace:   "face",
		},
	}
}
