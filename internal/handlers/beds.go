package handlers

import (
	"net/http"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateBedRequest is the bed creation payload.
type CreateBedRequest struct {
	// Ward-unique label, e.g. "B-101"
	BedNumber string `json:"bed_number" binding:"required" example:"B-101"`
	Room      string `json:"room,omitempty" example:"12A"`
	// Allowed: AVAILABLE, OCCUPIED, MAINTENANCE. Defaults to AVAILABLE.
	Status string `json:"status,omitempty" example:"AVAILABLE"`
	Notes  string `json:"notes,omitempty"`
}

// UpdateBedRequest carries optional administrative updates; absent fields
// are left untouched.
type UpdateBedRequest struct {
	BedNumber     *string `json:"bed_number,omitempty"`
	Room          *string `json:"room,omitempty"`
	Status        *string `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	EmergencyStop *bool   `json:"emergency_stop,omitempty"`
}

// SensorsRequest is a sensor snapshot pushed by the bed hardware.
type SensorsRequest struct {
	Vibration   float64 `json:"vibration" example:"0.4"`
	Temperature float64 `json:"temperature" example:"36.6"`
	Unit        string  `json:"unit" example:"C"`
}

// AssignRequest pairs a patient with a bed number.
type AssignRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	BedNumber string `json:"bed_number" binding:"required" example:"B-101"`
}

type unassignRequest struct {
	BedNumber string `json:"bed_number" binding:"required"`
}

// CreatePatientRequest is the patient admission payload.
type CreatePatientRequest struct {
	Name      string `json:"name" binding:"required"`
	Room      string `json:"room,omitempty"`
	Condition string `json:"condition,omitempty"`
	Age       int    `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Admitted  string `json:"admitted,omitempty"`
}

// @Summary      Create bed
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        body  body   CreateBedRequest  true  "Bed payload"
// @Success      201   {object}  models.Bed
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "bed number taken"
// @Router       /api/v1/beds [post]
// @Security     BearerAuth
func (h *Handler) createBed(c *gin.Context) {
	var req CreateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	bed, err := h.services.Beds.Create(c.Request.Context(), service.CreateBedParams{
		BedNumber: req.BedNumber,
		Room:      req.Room,
		Status:    models.BedStatus(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		h.serviceError(c, "bed_create_failed", err, "bed_number", req.BedNumber)
		return
	}
	c.JSON(http.StatusCreated, bed)
}

// @Summary      List beds
// @Tags         beds
// @Produce      json
// @Success      200  {array}  models.Bed
// @Router       /api/v1/beds [get]
// @Security     BearerAuth
func (h *Handler) listBeds(c *gin.Context) {
	beds, err := h.services.Beds.List(c.Request.Context())
	if err != nil {
		h.serviceError(c, "bed_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, beds)
}

// @Summary      List available beds
// @Tags         beds
// @Produce      json
// @Success      200  {array}  models.Bed
// @Router       /api/v1/beds/available [get]
// @Security     BearerAuth
func (h *Handler) listAvailableBeds(c *gin.Context) {
	beds, err := h.services.Beds.ListAvailable(c.Request.Context())
	if err != nil {
		h.serviceError(c, "bed_list_available_failed", err)
		return
	}
	c.JSON(http.StatusOK, beds)
}

// @Summary      Get bed
// @Tags         beds
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  models.Bed
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id} [get]
// @Security     BearerAuth
func (h *Handler) getBed(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	bed, err := h.services.Beds.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "bed_get_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Get bed by number
// @Tags         beds
// @Produce      json
// @Param        bedNumber  path  string  true  "Bed number"
// @Success      200  {object}  models.Bed
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/number/{bedNumber} [get]
// @Security     BearerAuth
func (h *Handler) getBedByNumber(c *gin.Context) {
	bed, err := h.services.Beds.GetByNumber(c.Request.Context(), c.Param("bedNumber"))
	if err != nil {
		h.serviceError(c, "bed_get_by_number_failed", err, "bed_number", c.Param("bedNumber"))
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Update bed
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "Bed ID"
// @Param        body  body  UpdateBedRequest  true  "Fields to patch"
// @Success      200   {object}  models.Bed
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/beds/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateBed(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var req UpdateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	params := service.UpdateBedParams{
		BedNumber:     req.BedNumber,
		Room:          req.Room,
		Notes:         req.Notes,
		EmergencyStop: req.EmergencyStop,
	}
	if req.Status != nil {
		status := models.BedStatus(*req.Status)
		params.Status = &status
	}
	bed, err := h.services.Beds.Update(c.Request.Context(), id, params)
	if err != nil {
		h.serviceError(c, "bed_update_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Delete bed
// @Tags         beds
// @Produce      json
// @Param        id  path  int  true  "Bed ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string  "occupied"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/beds/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteBed(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Beds.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, "bed_delete_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Update bed sensors
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        id    path  int             true  "Bed ID"
// @Param        body  body  SensorsRequest  true  "Sensor snapshot"
// @Success      200   {object}  models.Bed
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/beds/{id}/sensors [put]
// @Security     BearerAuth
func (h *Handler) updateSensors(c *gin.Context) {
	id, ok := bedIDParam(c)
	if !ok {
		return
	}
	var req SensorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	bed, err := h.services.Beds.UpdateSensors(c.Request.Context(), id, service.SensorParams{
		Vibration:   req.Vibration,
		Temperature: req.Temperature,
		Unit:        req.Unit,
	})
	if err != nil {
		h.serviceError(c, "bed_sensors_failed", err, "bed", id)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Assign patient to bed
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        body  body  AssignRequest  true  "Assignment"
// @Success      200   {object}  models.Bed
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "bed occupied"
// @Router       /api/v1/beds/assign [post]
// @Security     BearerAuth
func (h *Handler) assignPatient(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	bed, err := h.services.Beds.Assign(c.Request.Context(), req.PatientID, req.BedNumber)
	if err != nil {
		h.serviceError(c, "bed_assign_failed", err, "patient", req.PatientID, "bed_number", req.BedNumber)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Unassign bed
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "bed_number"
// @Success      200   {object}  models.Bed
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/beds/unassign [post]
// @Security     BearerAuth
func (h *Handler) unassignBed(c *gin.Context) {
	var req unassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	bed, err := h.services.Beds.Unassign(c.Request.Context(), req.BedNumber)
	if err != nil {
		h.serviceError(c, "bed_unassign_failed", err, "bed_number", req.BedNumber)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary      Admit patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        body  body  CreatePatientRequest  true  "Patient"
// @Success      201   {object}  models.Patient
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/patients [post]
// @Security     BearerAuth
func (h *Handler) createPatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	patient, err := h.services.Beds.CreatePatient(c.Request.Context(), service.CreatePatientParams{
		Name:      req.Name,
		Room:      req.Room,
		Condition: req.Condition,
		Age:       req.Age,
		Gender:    req.Gender,
		Admitted:  req.Admitted,
	})
	if err != nil {
		h.serviceError(c, "patient_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// @Summary      Get patient
// @Tags         patients
// @Produce      json
// @Param        id  path  string  true  "Patient ID"
// @Success      200  {object}  models.Patient
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/patients/{id} [get]
// @Security     BearerAuth
func (h *Handler) getPatient(c *gin.Context) {
	patient, err := h.services.Beds.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, "patient_get_failed", err, "patient", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, patient)
}

// @Summary      Unassign patient's bed
// @Tags         patients
// @Produce      json
// @Param        id  path  string  true  "Patient ID"
// @Success      200  {object}  map[string]interface{}  "bed or null"
// @Router       /api/v1/patients/{id}/unassign [post]
// @Security     BearerAuth
func (h *Handler) unassignByPatient(c *gin.Context) {
	bed, err := h.services.Beds.UnassignByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, "patient_unassign_failed", err, "patient", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"bed": bed})
}
