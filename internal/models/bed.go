package models

import "time"

// BedStatus is the occupancy/lifecycle state of a bed.
type BedStatus string

const (
	StatusAvailable   BedStatus = "AVAILABLE"
	StatusOccupied    BedStatus = "OCCUPIED"
	StatusMaintenance BedStatus = "MAINTENANCE"
	StatusReserved    BedStatus = "RESERVED"
)

// MotorType identifies one of the four independently actuated bed segments.
type MotorType string

const (
	MotorHead      MotorType = "HEAD"
	MotorRightTilt MotorType = "RIGHT_TILT"
	MotorLeftTilt  MotorType = "LEFT_TILT"
	MotorLeg       MotorType = "LEG"
)

// MotorTypes lists every motor; keep in sync with the constants above.
var MotorTypes = []MotorType{MotorHead, MotorRightTilt, MotorLeftTilt, MotorLeg}

// Valid reports whether m is one of the four known motors.
func (m MotorType) Valid() bool {
	switch m {
	case MotorHead, MotorRightTilt, MotorLeftTilt, MotorLeg:
		return true
	}
	return false
}

// MotorDirection is the motor-level direction stored in history (UP/DOWN),
// distinct from the command-level CommandDirection.
type MotorDirection string

const (
	DirectionUp   MotorDirection = "UP"
	DirectionDown MotorDirection = "DOWN"
)

// Valid reports whether d is UP or DOWN.
func (d MotorDirection) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// CommandDirection is the direction label the actuator understands.
type CommandDirection string

const (
	CommandForward  CommandDirection = "FORWARD"
	CommandBackward CommandDirection = "BACKWARD"
	CommandStop     CommandDirection = "STOP"
)

// Bed is a hospital bed with four motorized segments.
// Positions are on a 0-100 scale (0 = fully retracted, 100 = fully extended).
type Bed struct {
	ID                int64      `json:"id"`
	BedNumber         string     `json:"bed_number"`
	Room              string     `json:"room"`
	Status            BedStatus  `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	HeadPosition      float64    `json:"head_position"`
	RightTiltPosition float64    `json:"right_tilt_position"`
	LeftTiltPosition  float64    `json:"left_tilt_position"`
	LegPosition       float64    `json:"leg_position"`
	EmergencyStop     bool       `json:"emergency_stop"`
	SensorVibration   *float64   `json:"sensor_vibration,omitempty"`
	SensorTemperature *float64   `json:"sensor_temperature,omitempty"`
	SensorTempUnit    string     `json:"sensor_temperature_unit,omitempty"`
	CurrentPatientID  *string    `json:"current_patient_id,omitempty"`
	CurrentPatient    *Patient   `json:"current_patient,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Position returns the current position of the given motor.
func (b *Bed) Position(m MotorType) float64 {
	switch m {
	case MotorHead:
		return b.HeadPosition
	case MotorRightTilt:
		return b.RightTiltPosition
	case MotorLeftTilt:
		return b.LeftTiltPosition
	case MotorLeg:
		return b.LegPosition
	}
	return 0
}

// SetPosition updates the position of the given motor in place.
func (b *Bed) SetPosition(m MotorType, v float64) {
	switch m {
	case MotorHead:
		b.HeadPosition = v
	case MotorRightTilt:
		b.RightTiltPosition = v
	case MotorLeftTilt:
		b.LeftTiltPosition = v
	case MotorLeg:
		b.LegPosition = v
	}
}

// BedCommand is the ephemeral payload handed to the actuator endpoint.
// It is never persisted.
type BedCommand struct {
	MotorType        MotorType        `json:"motor_type"`
	Direction        CommandDirection `json:"direction"`
	MappedStep       *int             `json:"mapped_step"`
	PreviousPosition float64          `json:"previous_position"`
	NewPosition      float64          `json:"new_position"`
}
