package detector

import (
	"sync"

	"github.com/ayusman/desksentry/internal/vision"
)

// Mock is a test implementation of the Detector interface. It returns a
// scripted sequence of frames, repeating the last one when the script
// runs out, which makes "hold the scene for N ticks" tests trivial.
type Mock struct {
	mu     sync.Mutex
	frames [][]vision.Detection
	index  int
	err    error
}

// NewMock creates a Mock with no frames: every poll is an empty scene.
func NewMock() *Mock {
	return &Mock{}
}

// SetFrames installs the frame script and rewinds to its start.
func (m *Mock) SetFrames(frames ...[]vision.Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.index = 0
}

// SetError makes Poll fail until cleared with SetError(nil).
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Poll returns the next scripted frame.
func (m *Mock) Poll() ([]vision.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}
	if m.index >= len(m.frames) {
		return m.frames[len(m.frames)-1], nil
	}
	frame := m.frames[m.index]
	m.index++
	return frame, nil
}

// Close is a no-op for the mock detector.
func (m *Mock) Close() error {
	return nil
}

// HandOnObjectScene returns a frame where a hand rests on the monitored
// object with the handler's face visible above it.
func HandOnObjectScene() []vision.Detection {
	return []vision.Detection{
		{
			Box:        vision.BoundingBox{XMin: 0.40, YMin: 0.55, XMax: 0.60, YMax: 0.80},
			Confidence: 0.92,
			Class:      vision.ClassObject,
		},
		{
			Box:        vision.BoundingBox{XMin: 0.50, YMin: 0.45, XMax: 0.75, YMax: 0.70},
			Confidence: 0.88,
			Class:      vision.ClassHand,
		},
		{
			Box:        vision.BoundingBox{XMin: 0.45, YMin: 0.05, XMax: 0.65, YMax: 0.30},
			Confidence: 0.85,
			Class:      vision.ClassFace,
		},
	}
}

// IdleDeskScene returns a frame where the object sits untouched.
func IdleDeskScene() []vision.Detection {
	return []vision.Detection{
		{
			Box:        vision.BoundingBox{XMin: 0.40, YMin: 0.55, XMax: 0.60, YMax: 0.80},
			Confidence: 0.92,
			Class:      vision.ClassObject,
		},
	}
}

// HandNearObjectScene returns a frame where a hand hovers next to the
// object without touching it.
func HandNearObjectScene() []vision.Detection {
	return []vision.Detection{
		{
			Box:        vision.BoundingBox{XMin: 0.40, YMin: 0.55, XMax: 0.60, YMax: 0.80},
			Confidence: 0.92,
			Class:      vision.ClassObject,
		},
		{
			Box:        vision.BoundingBox{XMin: 0.70, YMin: 0.40, XMax: 0.90, YMax: 0.65},
			Confidence: 0.86,
			Class:      vision.ClassHand,
		},
	}
}
