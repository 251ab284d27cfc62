package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/actuator"
	"github.com/desta-elias/smart-bed-u/internal/logger"
	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/motion"
	"github.com/desta-elias/smart-bed-u/internal/repository"
)

const (
	minDurationSec = 1
	maxDurationSec = 60

	defaultHistoryLimit = 50
)

// MovementService orchestrates motor movements against the bed store and
// emits the resulting commands to the actuator. All entry points share the
// per-bed lock set, so a manual control can never interleave with a
// scheduled execution on the same bed.
type MovementService struct {
	beds      repository.Beds
	history   repository.MovementHistory
	locks     *bedLocks
	publisher actuator.Publisher
	log       *logger.Logger
}

func NewMovementService(
	beds repository.Beds,
	history repository.MovementHistory,
	locks *bedLocks,
	publisher actuator.Publisher,
	log *logger.Logger,
) *MovementService {
	return &MovementService{
		beds:      beds,
		history:   history,
		locks:     locks,
		publisher: publisher,
		log:       log,
	}
}

var _ Movement = (*MovementService)(nil)

// ManualControl runs one timed movement immediately: load, interlock check,
// compute, persist position, append an executed MANUAL record, emit the
// command. Validation happens before any store mutation.
func (s *MovementService) ManualControl(ctx context.Context, bedID, userID int64, p ManualControlParams) (*ControlResult, error) {
	if err := validateMovementParams(p.MotorType, p.Direction, p.Duration); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(bedID)
	defer unlock()

	bed, err := s.loadBed(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if bed.EmergencyStop {
		return nil, ErrEmergencyStopActive
	}

	previous := bed.Position(p.MotorType)
	next := motion.CalculateNewPosition(previous, p.Direction, p.Duration)

	if err := s.beds.MutatePosition(ctx, bedID, p.MotorType, next); err != nil {
		return nil, fmt.Errorf("persist position: %w", err)
	}
	bed.SetPosition(p.MotorType, next)

	rec := &models.MovementRecord{
		BedID:            bed.ID,
		PerformedBy:      &userID,
		PatientID:        bed.CurrentPatientID,
		MovementType:     models.MovementManual,
		MotorType:        p.MotorType,
		Direction:        p.Direction,
		Duration:         p.Duration,
		PreviousPosition: &previous,
		NewPosition:      &next,
		Executed:         true,
		Notes:            p.Notes,
	}
	if _, err := s.history.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	// Command direction is derived from the realized position change, not
	// from the motor-level input direction: a clamped move that went nowhere
	// yields STOP.
	cmd := motion.BuildCommand(p.MotorType, previous, next)
	s.emit(bed.BedNumber, cmd)

	return &ControlResult{Bed: bed, History: rec, Command: cmd}, nil
}

// UpdatePositions applies a direct multi-field position update. Each change
// produces one command; all position writes land in a single persistence
// write. This path intentionally bypasses the emergency-stop interlock: it is
// the recovery channel used to reposition a stopped bed.
func (s *MovementService) UpdatePositions(ctx context.Context, bedID int64, changes []PositionChange) (*PositionsResult, error) {
	if len(changes) == 0 {
		return nil, ErrNoPositionFields
	}
	for _, c := range changes {
		if !c.Motor.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMotor, c.Motor)
		}
		if c.Value < motion.MinPosition || c.Value > motion.MaxPosition {
			return nil, fmt.Errorf("%w: got %v for %s", ErrInvalidPosition, c.Value, c.Motor)
		}
	}

	unlock := s.locks.lock(bedID)
	defer unlock()

	bed, err := s.loadBed(ctx, bedID)
	if err != nil {
		return nil, err
	}

	commands := make([]models.BedCommand, 0, len(changes))
	for _, c := range changes {
		previous := bed.Position(c.Motor)
		bed.SetPosition(c.Motor, c.Value)
		commands = append(commands, motion.BuildCommand(c.Motor, previous, c.Value))
	}

	if err := s.beds.SavePositions(ctx, bed); err != nil {
		return nil, fmt.Errorf("persist positions: %w", err)
	}
	for _, cmd := range commands {
		s.emit(bed.BedNumber, cmd)
	}

	return &PositionsResult{Bed: bed, Commands: commands}, nil
}

// EmergencyStop engages the interlock. Idempotent: engaging an already
// stopped bed re-logs but changes nothing materially. The acting user is
// optional because the stop endpoint accepts unauthenticated calls.
func (s *MovementService) EmergencyStop(ctx context.Context, bedID int64, userID *int64) (*models.Bed, error) {
	unlock := s.locks.lock(bedID)
	defer unlock()

	bed, err := s.loadBed(ctx, bedID)
	if err != nil {
		return nil, err
	}

	if err := s.beds.SetEmergencyStop(ctx, bedID, true); err != nil {
		return nil, fmt.Errorf("set emergency stop: %w", err)
	}
	bed.EmergencyStop = true

	rec := &models.MovementRecord{
		BedID:        bed.ID,
		PerformedBy:  userID,
		PatientID:    bed.CurrentPatientID,
		MovementType: models.MovementEmergencyStop,
		Executed:     true,
		Notes:        "Emergency stop activated",
	}
	if _, err := s.history.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	if s.log != nil {
		s.log.Warnw("emergency_stop_engaged", "bed", bed.BedNumber)
	}
	return bed, nil
}

// ResetEmergencyStop clears the interlock. No history record is written for
// the reset; only the stop itself is logged.
func (s *MovementService) ResetEmergencyStop(ctx context.Context, bedID int64) (*models.Bed, error) {
	unlock := s.locks.lock(bedID)
	defer unlock()

	bed, err := s.loadBed(ctx, bedID)
	if err != nil {
		return nil, err
	}

	if err := s.beds.SetEmergencyStop(ctx, bedID, false); err != nil {
		return nil, fmt.Errorf("reset emergency stop: %w", err)
	}
	bed.EmergencyStop = false

	if s.log != nil {
		s.log.Infow("emergency_stop_reset", "bed", bed.BedNumber)
	}
	return bed, nil
}

// Schedule creates a deferred SCHEDULED record. The bed position is not
// touched at creation time.
func (s *MovementService) Schedule(ctx context.Context, bedID, userID int64, p ScheduleParams) (*models.MovementRecord, error) {
	if err := validateMovementParams(p.MotorType, p.Direction, p.Duration); err != nil {
		return nil, err
	}
	scheduledFor, err := resolveScheduleTime(p.ScheduledFor, time.Now())
	if err != nil {
		return nil, err
	}

	bed, err := s.loadBed(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if bed.EmergencyStop {
		return nil, ErrEmergencyStopActive
	}

	rec := &models.MovementRecord{
		BedID:        bed.ID,
		PerformedBy:  &userID,
		PatientID:    bed.CurrentPatientID,
		MovementType: models.MovementScheduled,
		MotorType:    p.MotorType,
		Direction:    p.Direction,
		Duration:     p.Duration,
		ScheduledFor: &scheduledFor,
		Executed:     false,
		Notes:        p.Notes,
	}
	if _, err := s.history.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append scheduled record: %w", err)
	}
	return rec, nil
}

// ExecuteScheduled runs one due record. Already-executed records and beds in
// emergency stop are skipped without error: the former is a race with a
// concurrent trigger, the latter leaves the record pending for the next
// tick.
func (s *MovementService) ExecuteScheduled(ctx context.Context, recordID int64) error {
	rec, err := s.history.GetByID(ctx, recordID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load record %d: %w", recordID, err)
	}
	if rec.Executed {
		return nil
	}

	unlock := s.locks.lock(rec.BedID)
	defer unlock()

	bed, err := s.loadBed(ctx, rec.BedID)
	if err != nil {
		return err
	}
	if bed.EmergencyStop {
		if s.log != nil {
			s.log.Infow("scheduled_movement_skipped", "record", rec.ID, "bed", bed.BedNumber, "reason", "emergency stop")
		}
		return nil
	}

	previous := bed.Position(rec.MotorType)
	next := motion.CalculateNewPosition(previous, rec.Direction, rec.Duration)

	if err := s.beds.MutatePosition(ctx, rec.BedID, rec.MotorType, next); err != nil {
		return fmt.Errorf("persist position for record %d: %w", rec.ID, err)
	}
	if err := s.history.MarkExecuted(ctx, rec.ID, previous, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the executed=0 guard: someone else completed it.
			return nil
		}
		return fmt.Errorf("mark record %d executed: %w", rec.ID, err)
	}

	// Scheduled execution already knows the intended direction from the
	// stored record, so it overrides the derived label.
	cmd := motion.BuildCommand(rec.MotorType, previous, next, motion.CommandDirectionFor(rec.Direction))
	s.emit(bed.BedNumber, cmd)
	return nil
}

// History returns a bed's movement log, most recent first.
func (s *MovementService) History(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.QueryHistory(ctx, bedID, limit)
}

// ScheduledMovements returns pending future movements, soonest first.
func (s *MovementService) ScheduledMovements(ctx context.Context, bedID *int64) ([]models.MovementRecord, error) {
	return s.history.QueryScheduled(ctx, bedID, time.Now())
}

func (s *MovementService) loadBed(ctx context.Context, bedID int64) (*models.Bed, error) {
	bed, err := s.beds.GetByID(ctx, bedID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bed %d: %w", bedID, err)
	}
	return bed, nil
}

// emit publishes a command fire-and-forget: a delivery failure is logged and
// never fails the operation that produced the command.
func (s *MovementService) emit(bedNumber string, cmd models.BedCommand) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(bedNumber, cmd); err != nil && s.log != nil {
		s.log.Errorw("actuator_publish_failed", "bed", bedNumber, "motor", cmd.MotorType, "err", err)
	}
}

func validateMovementParams(motor models.MotorType, direction models.MotorDirection, duration int) error {
	if !motor.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMotor, motor)
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, direction)
	}
	if duration < minDurationSec || duration > maxDurationSec {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	return nil
}

// resolveScheduleTime parses scheduledFor as RFC3339 or a bare HH:MM[:SS]
// resolved against now's date, and requires a strictly future instant.
func resolveScheduleTime(scheduledFor string, now time.Time) (time.Time, error) {
	var resolved time.Time

	if t, err := time.Parse(time.RFC3339, scheduledFor); err == nil {
		resolved = t
	} else {
		var layout string
		switch {
		case len(scheduledFor) == len("15:04"):
			layout = "15:04"
		case len(scheduledFor) == len("15:04:05"):
			layout = "15:04:05"
		default:
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, scheduledFor)
		}
		t, err := time.Parse(layout, scheduledFor)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, scheduledFor)
		}
		resolved = time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	}

	if !resolved.After(now) {
		return time.Time{}, ErrScheduleInPast
	}
	return resolved.UTC(), nil
}
