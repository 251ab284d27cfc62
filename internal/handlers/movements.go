package handlers

import (
	"net/http"
	"strconv"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/motion"
	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/gin-gonic/gin"
)

// ManualControlRequest is one timed movement.
type ManualControlRequest struct {
	// Allowed: HEAD, RIGHT_TILT, LEFT_TILT, LEG
	MotorType string `json:"motor_type" binding:"required" example:"HEAD"`
	// Allowed: UP, DOWN
	Direction string `json:"direction" binding:"required" example:"UP"`
	// Seconds the motor runs, 1..60
	Duration int    `json:"duration" binding:"required" example:"3"`
	Notes    string `json:"notes,omitempty"`
}

// PositionsRequest is a direct position update; at least one field must be
// present. Values are 0..100.
type PositionsRequest struct {
	HeadPosition      *float64 `json:"head_position,omitempty" example:"30"`
	RightTiltPosition *float64 `json:"right_tilt_position,omitempty"`
	LeftTiltPosition  *float64 `json:"left_tilt_position,omitempty"`
	LegPosition       *float64 `json:"leg_position,omitempty"`
}

// changes flattens the optional fields into ordered (motor, value) pairs.
func (r PositionsRequest) changes() []service.PositionChange {
	var out []service.PositionChange
	add := func(m models.MotorType, v *float64) {
		if v != nil {
			out = append(out, service.PositionChange{Motor: m, Value: *v})
		}
	}
	add(models.MotorHead, r.HeadPosition)
	add(models.MotorRightTilt, r.RightTiltPosition)
	add(models.MotorLeftTilt, r.LeftTiltPosition)
	add(models.MotorLeg, r.LegPosition)
	return out
}

// ScheduleMovementRequest defers a movement. ScheduledFor is RFC3339 or a
// bare HH:MM[:SS] resolved against today's date; it must be in the future.
type ScheduleMovementRequest struct {
	MotorType    string `json:"motor_type" binding:"required" example:"HEAD"`
	Direction    string `json:"direction" binding:"required" example:"UP"`
	Duration     int    `json:"duration" binding:"required" example:"5"`
	ScheduledFor string `json:"scheduled_for" binding:"required" example:"14:30"`
	Notes        string `json:"notes,omitempty"`
}

// @Summary      Manual motor control
// @Description  Runs one motor for the given duration (10 units/sec, clamped 0..100) and logs an executed MANUAL record.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "Bed ID"
// @Param        body  body  ManualControlRequest  true  "Movement"
// @Success      200   {object}  service.ControlResult
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "emergency stop active"
// @Router       /api/v1/beds/{id}/manual-control [post]
// @Security     BearerAuth
func (h *Handler) manualControl(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var req ManualControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	userID, _ := currentUserID(c)

	res, err := h.services.Movement.ManualControl(c.Request.Context(), id, userID, service.ManualControlParams{
		MotorType: models.MotorType(req.MotorType),
		Direction: models.MotorDirection(req.Direction),
		Duration:  req.Duration,
		Notes:     req.Notes,
	})
	if err != nil {
		h.serviceError(c, "manual_control_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Update positions directly
// @Description  Sets any subset of motor positions in one write. Bypasses the emergency-stop interlock; this is the recovery channel for stopped beds.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "Bed ID"
// @Param        body  body  PositionsRequest  true  "Target positions"
// @Success      200   {object}  service.PositionsResult
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/beds/{id}/positions [put]
// @Security     BearerAuth
func (h *Handler) updatePositions(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var req PositionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	res, err := h.services.Movement.UpdatePositions(c.Request.Context(), id, req.changes())
	if err != nil {
		h.serviceError(c, "update_positions_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Get position snapshot
// @Description  Current motor positions and their mapped controller steps. Unauthenticated.
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id}/positions [get]
func (h *Handler) getPositions(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	bed, err := h.services.Beds.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "get_positions_failed", err, "bed", id)
		return
	}

	positions := gin.H{}
	steps := gin.H{}
	for _, m := range models.MotorTypes {
		pos := bed.Position(m)
		positions[string(m)] = pos
		steps[string(m)] = motion.MapPositionToStep(pos)
	}
	c.JSON(http.StatusOK, gin.H{
		"bed_id":     bed.ID,
		"bed_number": bed.BedNumber,
		"positions":  positions,
		"steps":      steps,
	})
}

// @Summary      Engage emergency stop
// @Description  Blocks all manual and scheduled movement until reset. Works without a token; the acting user is recorded when one is present.
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  models.Bed
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id}/emergency-stop [post]
func (h *Handler) emergencyStop(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var userID *int64
	if uid, ok := currentUserID(c); ok {
		userID = &uid
	}
	bed, err := h.services.Movement.EmergencyStop(c.Request.Context(), id, userID)
	if err != nil {
		h.serviceError(c, "emergency_stop_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Reset emergency stop
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  models.Bed
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id}/emergency-stop [delete]
// @Security     BearerAuth
func (h *Handler) resetEmergencyStop(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	bed, err := h.services.Movement.ResetEmergencyStop(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "emergency_stop_reset_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Get emergency-stop status
// @Description  Unauthenticated.
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id}/emergency-stop [get]
func (h *Handler) getEmergencyStopStatus(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	bed, err := h.services.Beds.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "emergency_stop_status_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bed_id":         bed.ID,
		"bed_number":     bed.BedNumber,
		"emergency_stop": bed.EmergencyStop,
	})
}

// @Summary      Schedule movement
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "Bed ID"
// @Param        body  body  ScheduleMovementRequest  true  "Deferred movement"
// @Success      201   {object}  models.MovementRecord
// @Failure      400   {object}  map[string]string  "past time, bad duration"
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "emergency stop active"
// @Router       /api/v1/beds/{id}/schedule-movement [post]
// @Security     BearerAuth
func (h *Handler) scheduleMovement(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var req ScheduleMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	userID, _ := currentUserID(c)

	rec, err := h.services.Movement.Schedule(c.Request.Context(), id, userID, service.ScheduleParams{
		MotorType:    models.MotorType(req.MotorType),
		Direction:    models.MotorDirection(req.Direction),
		Duration:     req.Duration,
		ScheduledFor: req.ScheduledFor,
		Notes:        req.Notes,
	})
	if err != nil {
		h.serviceError(c, "schedule_movement_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary      Movement history
// @Tags         movements
// @Produce      json
// @Param        id     path   int  true   "Bed ID"
// @Param        limit  query  int  false  "Max records (default 50)"
// @Success      200  {object}  map[string]interface{}  "count, movements"
// @Router       /api/v1/beds/{id}/history [get]
// @Security     BearerAuth
func (h *Handler) movementHistory(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.services.Movement.History(c.Request.Context(), id, limit)
	if err != nil {
		h.serviceError(c, "movement_history_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(records),
		"movements": records,
	})
}

// @Summary      Scheduled movements for a bed
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  map[string]interface{}  "count, movements"
// @Router       /api/v1/beds/{id}/scheduled-movements [get]
// @Security     BearerAuth
func (h *Handler) scheduledForBed(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	records, err := h.services.Movement.ScheduledMovements(c.Request.Context(), &id)
	if err != nil {
		h.serviceError(c, "scheduled_movements_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(records),
		"movements": records,
	})
}

// @Summary      All pending scheduled movements
// @Tags         movements
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, movements"
// @Router       /api/v1/scheduled-movements [get]
// @Security     BearerAuth
func (h *Handler) scheduledMovements(c *gin.Context) {
	records, err := h.services.Movement.ScheduledMovements(c.Request.Context(), nil)
	if err != nil {
		h.serviceError(c, "scheduled_movements_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(records),
		"movements": records,
	})
}
