// Package actuator delivers bed motor commands to the physical controller.
// Emission is fire-and-forget: the engine never waits on the controller's
// response, and a delivery failure must not fail the operation that produced
// the command.
package actuator

import (
	"encoding/json"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
)

// DefaultTopic is the MQTT topic bed commands are published to.
const DefaultTopic = "hospital/beds/commands"

// Publisher publishes bed commands to the motor controller.
type Publisher interface {
	// Publish sends one command. Implementations must not block beyond a
	// short transport timeout.
	Publish(bedNumber string, cmd models.BedCommand) error

	// Close releases the underlying connection.
	Close() error
}

// Payload is the wire format the controller consumes.
type Payload struct {
	Bed       string        `json:"bed"`
	Timestamp string        `json:"timestamp"`
	Command   CommandFields `json:"command"`
}

// CommandFields mirrors models.BedCommand on the wire.
type CommandFields struct {
	MotorType        string  `json:"motor_type"`
	Direction        string  `json:"direction"`
	MappedStep       *int    `json:"mapped_step"`
	PreviousPosition float64 `json:"previous_position"`
	NewPosition      float64 `json:"new_position"`
}

// FormatPayload creates the JSON payload for one bed command.
func FormatPayload(bedNumber string, cmd models.BedCommand) ([]byte, error) {
	payload := Payload{
		Bed:       bedNumber,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command: CommandFields{
			MotorType:        string(cmd.MotorType),
			Direction:        string(cmd.Direction),
			MappedStep:       cmd.MappedStep,
			PreviousPosition: cmd.PreviousPosition,
			NewPosition:      cmd.NewPosition,
		},
	}
	return json.Marshal(payload)
}
