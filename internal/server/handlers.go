package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayusman/desksentry/internal/kinematics"
)

// dndRequest is the body of POST /api/dnd. Setting the same value again
// is idempotent and just refreshes the confirmation timestamp.
type dndRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// dndResponse is the body of GET /api/dnd.
type dndResponse struct {
	Active      bool      `json:"active"`
	LastUpdated time.Time `json:"last_updated"`
}

// handleGetDND handles GET /api/dnd.
func (s *Server) handleGetDND(c *gin.Context) {
	active, updated := s.config.Flag.Get()
	c.JSON(http.StatusOK, dndResponse{Active: active, LastUpdated: updated})
}

// handleSetDND handles POST /api/dnd.
func (s *Server) handleSetDND(c *gin.Context) {
	var req dndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a boolean 'active' field"})
		return
	}

	s.config.Flag.Set(*req.Active)
	log.Printf("do-not-disturb set to %v", *req.Active)
	c.JSON(http.StatusOK, gin.H{"active": *req.Active})
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(c *gin.Context) {
	now := time.Now()
	status := gin.H{
		"state":              s.config.Machine.State().String(),
		"cooldown_remaining": s.config.Machine.CooldownRemaining(now).Seconds(),
	}
	if s.config.Flag != nil {
		active, updated := s.config.Flag.Get()
		status["dnd_active"] = active
		status["dnd_last_updated"] = updated
	}
	c.JSON(http.StatusOK, status)
}

// handleGetCalibration handles GET /api/calibration.
func (s *Server) handleGetCalibration(c *gin.Context) {
	calib, valid := s.config.Mapper.Calibration()
	if calib == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no calibration installed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"corners": calib.Corners, "valid": valid})
}

// calibrationRequest is the body of PUT /api/calibration.
type calibrationRequest struct {
	Corners map[kinematics.CornerPosition]kinematics.Corner `json:"corners" binding:"required"`
}

// handlePutCalibration handles PUT /api/calibration. The map must pass
// convexity validation before it is persisted and swapped into the live
// mapper.
func (s *Server) handlePutCalibration(c *gin.Context) {
	var req calibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a 'corners' map"})
		return
	}

	calib := &kinematics.CalibrationMap{Corners: req.Corners}
	if err := calib.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if s.config.Store != nil {
		if err := s.config.Store.SaveCalibration(calib); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist calibration"})
			return
		}
	}

	s.config.Mapper.SetCalibration(calib)
	log.Println("calibration updated")
	c.JSON(http.StatusOK, gin.H{"corners": calib.Corners, "valid": true})
}

// handlePutCorner handles PUT /api/calibration/:position, the single-corner
// update the calibration walk performs while sampling the four extremes.
// The partial map is installed as it grows; the mapper fails closed to rest
// angles until all four corners are present and convex.
func (s *Server) handlePutCorner(c *gin.Context) {
	position := kinematics.CornerPosition(c.Param("position"))
	if !validCornerPosition(position) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown corner position"})
		return
	}

	var corner kinematics.Corner
	if err := c.ShouldBindJSON(&corner); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain 'camera' and 'angles'"})
		return
	}

	if s.config.Store != nil {
		if err := s.config.Store.UpdateCorner(position, corner.Camera, corner.Angles); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist corner"})
			return
		}
	}

	corners := make(map[kinematics.CornerPosition]kinematics.Corner)
	if current, _ := s.config.Mapper.Calibration(); current != nil {
		for pos, existing := range current.Corners {
			corners[pos] = existing
		}
	}
	corners[position] = corner

	calib := &kinematics.CalibrationMap{Corners: corners}
	s.config.Mapper.SetCalibration(calib)
	log.Printf("calibration corner %q updated", position)
	c.JSON(http.StatusOK, gin.H{
		"position": position,
		"corner":   corner,
		"valid":    calib.Validate() == nil,
	})
}

// validCornerPosition reports whether position names one of the four
// calibration corners.
func validCornerPosition(position kinematics.CornerPosition) bool {
	for _, known := range kinematics.CornerPositions {
		if position == known {
			return true
		}
	}
	return false
}
