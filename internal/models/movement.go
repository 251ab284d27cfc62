package models

import "time"

// MovementType classifies a history entry.
type MovementType string

const (
	MovementManual        MovementType = "MANUAL"
	MovementScheduled     MovementType = "SCHEDULED"
	MovementEmergencyStop MovementType = "EMERGENCY_STOP"
)

// MovementRecord is one row of the append-only bed movement history.
// Once Executed is true the record is immutable; the only allowed transition
// is SCHEDULED-unexecuted -> executed, performed by the scheduler.
type MovementRecord struct {
	ID               int64          `json:"id"`
	BedID            int64          `json:"bed_id"`
	Bed              *Bed           `json:"bed,omitempty"`
	PerformedBy      *int64         `json:"performed_by,omitempty"` // nil for unauthenticated emergency stops
	PatientID        *string        `json:"patient_id,omitempty"`   // bed occupant at the time of action
	MovementType     MovementType   `json:"movement_type"`
	MotorType        MotorType      `json:"motor_type,omitempty"` // empty for EMERGENCY_STOP
	Direction        MotorDirection `json:"direction,omitempty"`
	Duration         int            `json:"duration,omitempty"` // seconds
	PreviousPosition *float64       `json:"previous_position,omitempty"`
	NewPosition      *float64       `json:"new_position,omitempty"`
	ScheduledFor     *time.Time     `json:"scheduled_for,omitempty"`
	Executed         bool           `json:"executed"`
	Notes            string         `json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
