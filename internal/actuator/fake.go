package actuator

import "github.com/desta-elias/smart-bed-u/internal/models"

// FakePublisher records published commands for test assertions.
type FakePublisher struct {
	// Beds holds the bed number of each publish call, in order.
	Beds []string

	// Commands contains all commands that were published.
	Commands []models.BedCommand

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the command.
func (f *FakePublisher) Publish(bedNumber string, cmd models.BedCommand) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Beds = append(f.Beds, bedNumber)
	f.Commands = append(f.Commands, cmd)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// NopPublisher drops every command. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, models.BedCommand) error { return nil }
func (NopPublisher) Close() error                            { return nil }
