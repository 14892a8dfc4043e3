package detector

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/desksentry/internal/capture"
	"github.com/ayusman/desksentry/internal/vision"
)

// Input geometry for SSD-style detection networks.
const (
	dnnInputSize = 300
	dnnScale     = 1.0 / 127.5
	dnnMean      = 127.5
)

// minRawConfidence drops detector noise before fusion sees it. Class
// thresholds proper are applied by the fusion step.
const minRawConfidence = 0.2

// DNNDetector implements Detector with a GoCV DNN over a camera device.
type DNNDetector struct {
	mu     sync.Mutex
	camera capture.Camera
	net    gocv.Net
	labels []string
	// classByLabel maps a model label to the vision class we track.
	classByLabel map[string]vision.Class
	closed       bool
}

// NewDNNDetector loads the detection network and opens the camera.
func NewDNNDetector(camera capture.Camera, config Config) (*DNNDetector, error) {
	if config.ModelPath == "" {
		return nil, fmt.Errorf("detection model path not configured")
	}

	labels, err := readLabels(config.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	classByLabel := make(map[string]vision.Class, len(config.ClassNames))
	for class, label := range config.ClassNames {
		classByLabel[label] = class
	}

	net := gocv.ReadNet(config.ModelPath, config.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load detection model from %q", config.ModelPath)
	}

	if err := camera.Open(); err != nil {
		net.Close()
		return nil, fmt.Errorf("open camera: %w", err)
	}

	return &DNNDetector{
		camera:       camera,
		net:          net,
		labels:       labels,
		classByLabel: classByLabel,
	}, nil
}

// Poll grabs a frame and runs the detection network over it.
func (d *DNNDetector) Poll() ([]vision.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("detector is closed")
	}

	frame, err := d.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	blob := gocv.BlobFromImage(*frame, dnnScale,
		image.Pt(dnnInputSize, dnnInputSize),
		gocv.NewScalar(dnnMean, dnnMean, dnnMean, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	return d.parse(output), nil
}

// parse converts the SSD output tensor (rows of
// [imageID, classID, confidence, left, top, right, bottom], coordinates
// already normalized) into detections for the classes we track.
func (d *DNNDetector) parse(output gocv.Mat) []vision.Detection {
	var detections []vision.Detection

	results := output.Reshape(1, output.Total()/7)
	defer results.Close()

	for row := 0; row < results.Rows(); row++ {
		confidence := float64(results.GetFloatAt(row, 2))
		if confidence < minRawConfidence {
			continue
		}

		classID := int(results.GetFloatAt(row, 1))
		class, ok := d.classForID(classID)
		if !ok {
			continue
		}

		box := vision.BoundingBox{
			XMin: clamp01(float64(results.GetFloatAt(row, 3))),
			YMin: clamp01(float64(results.GetFloatAt(row, 4))),
			XMax: clamp01(float64(results.GetFloatAt(row, 5))),
			YMax: clamp01(float64(results.GetFloatAt(row, 6))),
		}
		if !box.Valid() {
			continue
		}

		detections = append(detections, vision.Detection{
			Box:        box,
			Confidence: confidence,
			Class:      class,
		})
	}

	return detections
}

// classForID resolves a network class ID to a tracked vision class via the
// label list.
func (d *DNNDetector) classForID(id int) (vision.Class, bool) {
	if id < 0 || id >= len(d.labels) {
		return 0, false
	}
	class, ok := d.classByLabel[d.labels[id]]
	return class, ok
}

// Close releases the network and the camera.
func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	err := d.net.Close()
	if cerr := d.camera.Close(); err == nil {
		err = cerr
	}
	return err
}

// readLabels loads one label per line.
func readLabels(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("labels path not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, scanner.Text())
	}
	return labels, scanner.Err()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
