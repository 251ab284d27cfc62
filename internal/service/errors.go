package service

import "errors"

// Failure kinds surfaced to callers. Handlers map these to HTTP statuses
// with errors.Is; the scheduler never surfaces errors synchronously.
var (
	// Not found
	ErrBedNotFound     = errors.New("bed not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrRecordNotFound  = errors.New("movement record not found")

	// Conflict
	ErrBedNumberExists = errors.New("bed number already exists")
	ErrBedOccupied     = errors.New("bed is already occupied")

	// Blocked state: rejected while the emergency-stop interlock is active.
	// Not retryable until the stop is explicitly reset.
	ErrEmergencyStopActive = errors.New("bed is in emergency stop mode")

	// Validation: rejected before any store mutation.
	ErrNoPositionFields = errors.New("no position fields provided")
	ErrScheduleInPast   = errors.New("cannot schedule movement in the past")
	ErrInvalidDuration  = errors.New("duration must be between 1 and 60 seconds")
	ErrInvalidMotor     = errors.New("invalid motor type")
	ErrInvalidDirection = errors.New("invalid direction: must be UP or DOWN")
	ErrInvalidPosition  = errors.New("position must be between 0 and 100")
	ErrDeleteOccupied   = errors.New("cannot delete an occupied bed")
	ErrInvalidSchedule  = errors.New("invalid scheduled_for: use RFC3339 or HH:MM[:SS]")
)
