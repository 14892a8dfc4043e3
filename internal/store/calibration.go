package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ayusman/desksentry/internal/kinematics"
	"github.com/ayusman/desksentry/internal/vision"
)

// ErrNoCalibration is returned when no corners have been saved yet.
var ErrNoCalibration = errors.New("no calibration stored")

// LoadCalibration reads the saved corner map. The caller validates it
// before use; this only reports missing rows.
func (s *Store) LoadCalibration() (*kinematics.CalibrationMap, error) {
	rows, err := s.db.Query(
		"SELECT position, cam_u, cam_v, angle_1, angle_2 FROM calibration_corners")
	if err != nil {
		return nil, fmt.Errorf("query calibration: %w", err)
	}
	defer rows.Close()

	corners := make(map[kinematics.CornerPosition]kinematics.Corner)
	for rows.Next() {
		var position string
		var corner kinematics.Corner
		if err := rows.Scan(&position, &corner.Camera.U, &corner.Camera.V,
			&corner.Angles.A1, &corner.Angles.A2); err != nil {
			return nil, fmt.Errorf("scan calibration row: %w", err)
		}
		corners[kinematics.CornerPosition(position)] = corner
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(corners) == 0 {
		return nil, ErrNoCalibration
	}
	return &kinematics.CalibrationMap{Corners: corners}, nil
}

// SaveCalibration upserts all four corners in one transaction.
func (s *Store) SaveCalibration(calib *kinematics.CalibrationMap) error {
	if err := calib.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, position := range kinematics.CornerPositions {
		corner := calib.Corners[position]
		if err := upsertCorner(tx, position, corner); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func upsertCorner(tx *sql.Tx, position kinematics.CornerPosition, corner kinematics.Corner) error {
	_, err := tx.Exec(`
		INSERT INTO calibration_corners (position, cam_u, cam_v, angle_1, angle_2, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(position) DO UPDATE SET
			cam_u = excluded.cam_u,
			cam_v = excluded.cam_v,
			angle_1 = excluded.angle_1,
			angle_2 = excluded.angle_2,
			updated_at = CURRENT_TIMESTAMP`,
		string(position), corner.Camera.U, corner.Camera.V, corner.Angles.A1, corner.Angles.A2)
	if err != nil {
		return fmt.Errorf("upsert corner %q: %w", position, err)
	}
	return nil
}

// UpdateCorner saves a single corner, as the calibration procedure does
// while walking the four extremes.
func (s *Store) UpdateCorner(position kinematics.CornerPosition, camera vision.Point2D, angles kinematics.Angles) error {
	_, err := s.db.Exec(`
		INSERT INTO calibration_corners (position, cam_u, cam_v, angle_1, angle_2, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(position) DO UPDATE SET
			cam_u = excluded.cam_u,
			cam_v = excluded.cam_v,
			angle_1 = excluded.angle_1,
			angle_2 = excluded.angle_2,
			updated_at = CURRENT_TIMESTAMP`,
		string(position), camera.U, camera.V, angles.A1, angles.A2)
	if err != nil {
		return fmt.Errorf("update corner %q: %w", position, err)
	}
	return nil
}
