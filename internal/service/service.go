package service

import (
	"context"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/actuator"
	"github.com/desta-elias/smart-bed-u/internal/logger"
	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int64, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int64, error)
}

// Beds exposes administrative bed operations: CRUD, occupancy, sensors.
type Beds interface {
	Create(ctx context.Context, p CreateBedParams) (*models.Bed, error)
	Get(ctx context.Context, id int64) (*models.Bed, error)
	GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error)
	List(ctx context.Context) ([]models.Bed, error)
	ListAvailable(ctx context.Context) ([]models.Bed, error)
	Update(ctx context.Context, id int64, p UpdateBedParams) (*models.Bed, error)
	UpdateSensors(ctx context.Context, id int64, p SensorParams) (*models.Bed, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, patientID, bedNumber string) (*models.Bed, error)
	Unassign(ctx context.Context, bedNumber string) (*models.Bed, error)
	UnassignByPatient(ctx context.Context, patientID string) (*models.Bed, error)
	CreatePatient(ctx context.Context, p CreatePatientParams) (*models.Patient, error)
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
}

// Movement is the movement executor: manual control, direct position
// updates, the emergency-stop interlock, scheduling and history access.
type Movement interface {
	ManualControl(ctx context.Context, bedID, userID int64, p ManualControlParams) (*ControlResult, error)
	UpdatePositions(ctx context.Context, bedID int64, changes []PositionChange) (*PositionsResult, error)
	EmergencyStop(ctx context.Context, bedID int64, userID *int64) (*models.Bed, error)
	ResetEmergencyStop(ctx context.Context, bedID int64) (*models.Bed, error)
	Schedule(ctx context.Context, bedID, userID int64, p ScheduleParams) (*models.MovementRecord, error)
	ExecuteScheduled(ctx context.Context, recordID int64) error
	History(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error)
	ScheduledMovements(ctx context.Context, bedID *int64) ([]models.MovementRecord, error)
}

// Scheduler runs the background loop that executes due scheduled movements.
// Stop via context cancellation in main() for graceful shutdown.
type Scheduler interface {
	Run(ctx context.Context, tick time.Duration)
}

// CreateBedParams carries the fields accepted at bed creation.
type CreateBedParams struct {
	BedNumber string
	Room      string
	Status    models.BedStatus
	Notes     string
}

// UpdateBedParams carries optional administrative updates; nil fields are
// left untouched.
type UpdateBedParams struct {
	BedNumber     *string
	Room          *string
	Status        *models.BedStatus
	Notes         *string
	EmergencyStop *bool
}

// CreatePatientParams carries patient admission fields. The ID is generated
// server-side.
type CreatePatientParams struct {
	Name      string
	Room      string
	Condition string
	Age       int
	Gender    string
	Admitted  string
}

// SensorParams carries a sensor snapshot pushed by the bed hardware.
type SensorParams struct {
	Vibration   float64
	Temperature float64
	Unit        string
}

// ManualControlParams is one timed manual movement request.
type ManualControlParams struct {
	MotorType models.MotorType
	Direction models.MotorDirection
	Duration  int // seconds, [1,60]
	Notes     string
}

// PositionChange is one (motor, target) pair of a direct position update.
// The caller-facing boundary builds the list from whichever optional fields
// were present.
type PositionChange struct {
	Motor models.MotorType
	Value float64
}

// ScheduleParams is a deferred movement request. ScheduledFor accepts
// RFC3339 or a bare HH:MM[:SS] resolved against the current date.
type ScheduleParams struct {
	MotorType    models.MotorType
	Direction    models.MotorDirection
	Duration     int
	ScheduledFor string
	Notes        string
}

// ControlResult is what manual control returns to the boundary.
type ControlResult struct {
	Bed     *models.Bed            `json:"bed"`
	History *models.MovementRecord `json:"history"`
	Command models.BedCommand      `json:"command"`
}

// PositionsResult is what a direct position update returns.
type PositionsResult struct {
	Bed      *models.Bed         `json:"bed"`
	Commands []models.BedCommand `json:"commands"`
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Beds
	Movement
	Scheduler
	Authorization
}

// NewService wires the repository layer, the actuator publisher and logging
// into concrete services. The per-bed lock set is shared between the
// movement executor and the scheduler so a manual control can never race a
// scheduled execution against the same bed.
func NewService(repos *repository.Repository, publisher actuator.Publisher, log *logger.Logger) *Service {
	locks := newBedLocks()
	movement := NewMovementService(repos.Beds, repos.History, locks, publisher, log)
	return &Service{
		Beds:          NewBedService(repos.Beds, repos.Patients),
		Movement:      movement,
		Scheduler:     NewSchedulerService(repos.History, movement, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
