package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Beds owns the authoritative state of every bed.
type Beds interface {
	Create(ctx context.Context, bed *models.Bed) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Bed, error)
	GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error)
	GetByPatient(ctx context.Context, patientID string) (*models.Bed, error)
	List(ctx context.Context) ([]models.Bed, error)
	ListAvailable(ctx context.Context) ([]models.Bed, error)
	Update(ctx context.Context, bed *models.Bed) error
	MutatePosition(ctx context.Context, bedID int64, motor models.MotorType, value float64) error
	SavePositions(ctx context.Context, bed *models.Bed) error
	SetEmergencyStop(ctx context.Context, bedID int64, active bool) error
	UpdateSensors(ctx context.Context, bedID int64, vibration, temperature *float64, unit string) error
	Delete(ctx context.Context, id int64) error
}

// MovementHistory is the append-only movement log. Records are never updated
// except the single SCHEDULED-unexecuted -> executed transition.
type MovementHistory interface {
	Append(ctx context.Context, rec *models.MovementRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MovementRecord, error)
	MarkExecuted(ctx context.Context, id int64, previous, next float64) error
	QueryDue(ctx context.Context, before time.Time) ([]models.MovementRecord, error)
	QueryHistory(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error)
	QueryScheduled(ctx context.Context, bedID *int64, after time.Time) ([]models.MovementRecord, error)
}

// Patients covers the slice of patient data the bed engine touches.
type Patients interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	SetBed(ctx context.Context, patientID, bedNumber string) error
}

type Authorization interface {
	Create(username, hash string) (int64, error)
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	Beds     Beds
	History  MovementHistory
	Patients Patients
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Beds:     NewBedSQLite(db),
		History:  NewHistorySQLite(db),
		Patients: NewPatientSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
