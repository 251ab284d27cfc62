package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/gin-gonic/gin"
)

const errInvalidBodyPref = "invalid body: "

// statusFor maps service failure kinds to HTTP statuses. Anything that is
// not a recognized kind is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBedNotFound),
		errors.Is(err, service.ErrPatientNotFound),
		errors.Is(err, service.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBedNumberExists),
		errors.Is(err, service.ErrBedOccupied),
		errors.Is(err, service.ErrEmergencyStopActive):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoPositionFields),
		errors.Is(err, service.ErrScheduleInPast),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidMotor),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, service.ErrDeleteOccupied),
		errors.Is(err, service.ErrInvalidSchedule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// serviceError writes the mapped status. Internal errors get a generic body
// and a log line; domain errors echo their message.
func (h *Handler) serviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		if h.log != nil {
			fields := append([]interface{}{"err", err}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// bedIDParam parses the :id path segment; writes a 400 and returns false on
// garbage.
func bedIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bed id"})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
