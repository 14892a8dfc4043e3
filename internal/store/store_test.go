package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/desksentry/internal/kinematics"
	"github.com/ayusman/desksentry/internal/vision"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCalibration() *kinematics.CalibrationMap {
	return &kinematics.CalibrationMap{Corners: map[kinematics.CornerPosition]kinematics.Corner{
		kinematics.TopLeft:     {Camera: vision.Point2D{U: 0.0, V: 0.0}, Angles: kinematics.Angles{A1: 60, A2: 120}},
		kinematics.TopRight:    {Camera: vision.Point2D{U: 1.0, V: 0.0}, Angles: kinematics.Angles{A1: 120, A2: 120}},
		kinematics.BottomLeft:  {Camera: vision.Point2D{U: 0.0, V: 1.0}, Angles: kinematics.Angles{A1: 60, A2: 80}},
		kinematics.BottomRight: {Camera: vision.Point2D{U: 1.0, V: 1.0}, Angles: kinematics.Angles{A1: 120, A2: 80}},
	}}
}

func TestNew_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}

	// The calibration table exists.
	var name string
	err = s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='calibration_corners'").Scan(&name)
	if err != nil {
		t.Fatalf("calibration_corners table missing: %v", err)
	}
}

func TestLoadCalibration_EmptyStore(t *testing.T) {
	s := testStore(t)

	_, err := s.LoadCalibration()
	if !errors.Is(err, ErrNoCalibration) {
		t.Fatalf("expected ErrNoCalibration, got %v", err)
	}
}

func TestSaveAndLoadCalibration(t *testing.T) {
	s := testStore(t)
	want := testCalibration()

	if err := s.SaveCalibration(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.LoadCalibration()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("loaded calibration should validate: %v", err)
	}

	for _, position := range kinematics.CornerPositions {
		if got.Corners[position] != want.Corners[position] {
			t.Errorf("%s: expected %+v, got %+v", position, want.Corners[position], got.Corners[position])
		}
	}
}

func TestSaveCalibration_Overwrites(t *testing.T) {
	s := testStore(t)

	if err := s.SaveCalibration(testCalibration()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	updated := testCalibration()
	updated.Corners[kinematics.TopLeft] = kinematics.Corner{
		Camera: vision.Point2D{U: 0.05, V: 0.03},
		Angles: kinematics.Angles{A1: 58, A2: 122},
	}
	if err := s.SaveCalibration(updated); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := s.LoadCalibration()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Corners[kinematics.TopLeft] != updated.Corners[kinematics.TopLeft] {
		t.Errorf("expected overwritten corner %+v, got %+v",
			updated.Corners[kinematics.TopLeft], got.Corners[kinematics.TopLeft])
	}
}

func TestSaveCalibration_RejectsInvalid(t *testing.T) {
	s := testStore(t)

	bad := testCalibration()
	delete(bad.Corners, kinematics.BottomRight)
	if err := s.SaveCalibration(bad); err == nil {
		t.Fatal("expected save of an incomplete map to fail")
	}

	// Nothing was written.
	if _, err := s.LoadCalibration(); !errors.Is(err, ErrNoCalibration) {
		t.Fatalf("store must stay empty after a rejected save, got %v", err)
	}
}

func TestUpdateCorner_SingleCorner(t *testing.T) {
	s := testStore(t)

	err := s.UpdateCorner(kinematics.TopLeft,
		vision.Point2D{U: 0.1, V: 0.1}, kinematics.Angles{A1: 65, A2: 115})
	if err != nil {
		t.Fatalf("update corner failed: %v", err)
	}

	got, err := s.LoadCalibration()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Corners) != 1 {
		t.Fatalf("expected a single saved corner, got %d", len(got.Corners))
	}
	// A partial map loads but must not validate.
	if err := got.Validate(); err == nil {
		t.Error("a partial calibration must fail validation")
	}
}
