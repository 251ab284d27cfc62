package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/repository"
)

// BedService covers administrative bed operations: CRUD, patient occupancy
// and sensor snapshots. Movement belongs to MovementService.
type BedService struct {
	beds     repository.Beds
	patients repository.Patients
}

func NewBedService(beds repository.Beds, patients repository.Patients) *BedService {
	return &BedService{beds: beds, patients: patients}
}

var _ Beds = (*BedService)(nil)

func (s *BedService) Create(ctx context.Context, p CreateBedParams) (*models.Bed, error) {
	_, err := s.beds.GetByNumber(ctx, p.BedNumber)
	if err == nil {
		return nil, ErrBedNumberExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check bed number %q: %w", p.BedNumber, err)
	}

	bed := &models.Bed{
		BedNumber: p.BedNumber,
		Room:      p.Room,
		Status:    p.Status,
		Notes:     p.Notes,
	}
	if _, err := s.beds.Create(ctx, bed); err != nil {
		return nil, fmt.Errorf("create bed %q: %w", p.BedNumber, err)
	}
	return bed, nil
}

func (s *BedService) Get(ctx context.Context, id int64) (*models.Bed, error) {
	bed, err := s.beds.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBedNotFound
	}
	return bed, err
}

func (s *BedService) GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error) {
	bed, err := s.beds.GetByNumber(ctx, bedNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBedNotFound
	}
	return bed, err
}

func (s *BedService) List(ctx context.Context) ([]models.Bed, error) {
	return s.beds.List(ctx)
}

func (s *BedService) ListAvailable(ctx context.Context) ([]models.Bed, error) {
	return s.beds.ListAvailable(ctx)
}

// Update applies the administrative fields that are present. EmergencyStop
// is settable here so an admin update can engage or clear the interlock; the
// audited path is the dedicated stop endpoint.
func (s *BedService) Update(ctx context.Context, id int64, p UpdateBedParams) (*models.Bed, error) {
	bed, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.BedNumber != nil && *p.BedNumber != bed.BedNumber {
		if _, err := s.beds.GetByNumber(ctx, *p.BedNumber); err == nil {
			return nil, ErrBedNumberExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		bed.BedNumber = *p.BedNumber
	}
	if p.Room != nil {
		bed.Room = *p.Room
	}
	if p.Status != nil {
		bed.Status = *p.Status
	}
	if p.Notes != nil {
		bed.Notes = *p.Notes
	}
	if p.EmergencyStop != nil {
		bed.EmergencyStop = *p.EmergencyStop
	}

	if err := s.beds.Update(ctx, bed); err != nil {
		return nil, fmt.Errorf("update bed %d: %w", id, err)
	}
	return bed, nil
}

func (s *BedService) UpdateSensors(ctx context.Context, id int64, p SensorParams) (*models.Bed, error) {
	bed, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.beds.UpdateSensors(ctx, id, &p.Vibration, &p.Temperature, p.Unit); err != nil {
		return nil, fmt.Errorf("update sensors for bed %d: %w", id, err)
	}
	bed.SensorVibration = &p.Vibration
	bed.SensorTemperature = &p.Temperature
	bed.SensorTempUnit = p.Unit
	return bed, nil
}

func (s *BedService) Delete(ctx context.Context, id int64) error {
	bed, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bed.Status == models.StatusOccupied {
		return ErrDeleteOccupied
	}
	return s.beds.Delete(ctx, id)
}

// Assign puts a patient on a bed, maintaining both sides of the 1:1
// relation. Conflict when the bed already holds a patient.
func (s *BedService) Assign(ctx context.Context, patientID, bedNumber string) (*models.Bed, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load patient %q: %w", patientID, err)
	}

	bed, err := s.GetByNumber(ctx, bedNumber)
	if err != nil {
		return nil, err
	}
	if bed.Status == models.StatusOccupied && bed.CurrentPatientID != nil {
		return nil, ErrBedOccupied
	}

	bed.CurrentPatientID = &patient.ID
	bed.CurrentPatient = patient
	bed.Status = models.StatusOccupied

	if err := s.patients.SetBed(ctx, patient.ID, bedNumber); err != nil {
		return nil, fmt.Errorf("set patient bed: %w", err)
	}
	if err := s.beds.Update(ctx, bed); err != nil {
		return nil, fmt.Errorf("assign bed %q: %w", bedNumber, err)
	}
	patient.Bed = bedNumber
	return bed, nil
}

func (s *BedService) Unassign(ctx context.Context, bedNumber string) (*models.Bed, error) {
	bed, err := s.GetByNumber(ctx, bedNumber)
	if err != nil {
		return nil, err
	}
	return s.release(ctx, bed)
}

// UnassignByPatient frees whatever bed the patient occupies. Returns
// (nil, nil) when the patient has no bed.
func (s *BedService) UnassignByPatient(ctx context.Context, patientID string) (*models.Bed, error) {
	bed, err := s.beds.GetByPatient(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bed for patient %q: %w", patientID, err)
	}
	return s.release(ctx, bed)
}

// CreatePatient admits a patient. The patient is not placed on a bed here;
// Assign does that.
func (s *BedService) CreatePatient(ctx context.Context, p CreatePatientParams) (*models.Patient, error) {
	patient := &models.Patient{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Room:      p.Room,
		Condition: p.Condition,
		Age:       p.Age,
		Gender:    p.Gender,
		Admitted:  p.Admitted,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return patient, nil
}

func (s *BedService) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return patient, err
}

func (s *BedService) release(ctx context.Context, bed *models.Bed) (*models.Bed, error) {
	if bed.CurrentPatientID != nil {
		if err := s.patients.SetBed(ctx, *bed.CurrentPatientID, ""); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("clear patient bed: %w", err)
		}
	}
	bed.CurrentPatientID = nil
	bed.CurrentPatient = nil
	bed.Status = models.StatusAvailable

	if err := s.beds.Update(ctx, bed); err != nil {
		return nil, fmt.Errorf("unassign bed %q: %w", bed.BedNumber, err)
	}
	return bed, nil
}
