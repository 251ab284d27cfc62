// Package motion holds the pure position math for bed motors: direction
// labelling, the coarse position-to-step banding the actuator hardware
// understands, and the linear position model for timed movements.
package motion

import "github.com/desta-elias/smart-bed-u/internal/models"

// PositionRatePerSec is how many position units a motor travels per second.
const PositionRatePerSec = 10.0

// Logical position bounds.
const (
	MinPosition = 0.0
	MaxPosition = 100.0
)

// DirectionLabel derives the command-level direction from a realized
// position change.
func DirectionLabel(previous, next float64) models.CommandDirection {
	if next > previous {
		return models.CommandForward
	}
	if next < previous {
		return models.CommandBackward
	}
	return models.CommandStop
}

// MapPositionToStep bands a continuous 0-100 position onto the discrete
// actuator steps the motor controller understands. Returns nil when the
// position has no mapping. Positions in (45,100] are deliberately unmapped:
// the controller only knows stops up to step 20, and exactly 45 is the last
// mapped value. Do not extend the bands without confirming against the
// hardware.
func MapPositionToStep(position float64) *int {
	var step int
	switch {
	case position < 0:
		return nil
	case position < 9:
		step = 0
	case position < 18:
		step = 4
	case position < 27:
		step = 8
	case position < 36:
		step = 12
	case position < 45:
		step = 16
	case position == 45:
		step = 20
	default:
		return nil
	}
	return &step
}

// CalculateNewPosition applies the linear model: 10 units per second in the
// given direction, clamped to [0,100]. Duration is validated upstream to
// [1,60] seconds.
func CalculateNewPosition(current float64, direction models.MotorDirection, durationSec int) float64 {
	change := float64(durationSec) * PositionRatePerSec
	next := current - change
	if direction == models.DirectionUp {
		next = current + change
	}
	if next < MinPosition {
		return MinPosition
	}
	if next > MaxPosition {
		return MaxPosition
	}
	return next
}

// BuildCommand composes a BedCommand for the actuator. An explicit direction
// override takes precedence over the label derived from the position change;
// scheduled execution passes one because the intended direction is already
// stored on the record.
func BuildCommand(motor models.MotorType, previous, next float64, override ...models.CommandDirection) models.BedCommand {
	direction := DirectionLabel(previous, next)
	if len(override) > 0 {
		direction = override[0]
	}
	return models.BedCommand{
		MotorType:        motor,
		Direction:        direction,
		MappedStep:       MapPositionToStep(next),
		PreviousPosition: previous,
		NewPosition:      next,
	}
}

// CommandDirectionFor converts the motor-level direction stored on a record
// into the command-level label used for the override path.
func CommandDirectionFor(d models.MotorDirection) models.CommandDirection {
	if d == models.DirectionDown {
		return models.CommandBackward
	}
	return models.CommandForward
}
