package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/google/uuid"
)

type PatientSQLite struct {
	db *sql.DB
}

func NewPatientSQLite(db *sql.DB) *PatientSQLite { return &PatientSQLite{db: db} }

var _ Patients = (*PatientSQLite)(nil)

const insertPatientSQL = `
	INSERT INTO patients (id, name, bed, room, condition, age, gender, admitted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectPatientSQL = `
	SELECT id, name, bed, room, condition, age, gender, admitted
	FROM patients WHERE id=?
`

// Create inserts a patient, generating a UUID when the ID is empty.
func (r *PatientSQLite) Create(ctx context.Context, p *models.Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertPatientSQL,
		p.ID, p.Name, nullableString(p.Bed), p.Room,
		nullableString(p.Condition), p.Age, nullableString(p.Gender), nullableString(p.Admitted),
	)
	if err != nil {
		return fmt.Errorf("insert patient %q: %w", p.ID, err)
	}
	return nil
}

func (r *PatientSQLite) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	var (
		p         models.Patient
		bed       sql.NullString
		condition sql.NullString
		gender    sql.NullString
		admitted  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectPatientSQL, id).Scan(
		&p.ID, &p.Name, &bed, &p.Room, &condition, &p.Age, &gender, &admitted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select patient %q: %w", id, err)
	}
	p.Bed = bed.String
	p.Condition = condition.String
	p.Gender = gender.String
	p.Admitted = admitted.String
	return &p, nil
}

// SetBed updates the patient side of the 1:1 occupancy relation. An empty
// bedNumber clears it.
func (r *PatientSQLite) SetBed(ctx context.Context, patientID, bedNumber string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE patients SET bed=? WHERE id=?",
		nullableString(bedNumber), patientID,
	)
	if err != nil {
		return fmt.Errorf("set bed for patient %q: %w", patientID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
