package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
)

type BedSQLite struct {
	db *sql.DB
}

func NewBedSQLite(db *sql.DB) *BedSQLite { return &BedSQLite{db: db} }

var _ Beds = (*BedSQLite)(nil)

const bedColumns = `b.id, b.bed_number, b.room, b.status, b.notes,
		b.head_position, b.right_tilt_position, b.left_tilt_position, b.leg_position,
		b.emergency_stop, b.sensor_vibration, b.sensor_temperature, b.sensor_temperature_unit,
		b.current_patient_id, b.created_at, b.updated_at`

const selectBedSQL = `SELECT ` + bedColumns + `,
		p.name, p.room, p.condition, p.age, p.gender, p.admitted
	FROM beds b
	LEFT JOIN patients p ON p.id = b.current_patient_id`

const insertBedSQL = `
	INSERT INTO beds (bed_number, room, status, notes,
		head_position, right_tilt_position, left_tilt_position, leg_position,
		emergency_stop, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateBedSQL = `
	UPDATE beds SET bed_number=?, room=?, status=?, notes=?,
		head_position=?, right_tilt_position=?, left_tilt_position=?, leg_position=?,
		emergency_stop=?, sensor_vibration=?, sensor_temperature=?, sensor_temperature_unit=?,
		current_patient_id=?, updated_at=?
	WHERE id=?
`

// positionColumn maps a motor to its beds column. Exhaustive over the closed
// enum so adding a motor type is a compile-visible change here.
func positionColumn(m models.MotorType) (string, error) {
	switch m {
	case models.MotorHead:
		return "head_position", nil
	case models.MotorRightTilt:
		return "right_tilt_position", nil
	case models.MotorLeftTilt:
		return "left_tilt_position", nil
	case models.MotorLeg:
		return "leg_position", nil
	}
	return "", fmt.Errorf("unknown motor type %q", m)
}

// scanBed reads one joined beds+patients row.
func scanBed(row interface{ Scan(...any) error }) (*models.Bed, error) {
	var (
		b          models.Bed
		notes      sql.NullString
		tempUnit   sql.NullString
		patientID  sql.NullString
		pName      sql.NullString
		pRoom      sql.NullString
		pCondition sql.NullString
		pAge       sql.NullInt64
		pGender    sql.NullString
		pAdmitted  sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.BedNumber, &b.Room, &b.Status, &notes,
		&b.HeadPosition, &b.RightTiltPosition, &b.LeftTiltPosition, &b.LegPosition,
		&b.EmergencyStop, &b.SensorVibration, &b.SensorTemperature, &tempUnit,
		&patientID, &b.CreatedAt, &b.UpdatedAt,
		&pName, &pRoom, &pCondition, &pAge, &pGender, &pAdmitted,
	)
	if err != nil {
		return nil, err
	}
	b.Notes = notes.String
	b.SensorTempUnit = tempUnit.String
	if patientID.Valid {
		id := patientID.String
		b.CurrentPatientID = &id
		b.CurrentPatient = &models.Patient{
			ID:        id,
			Name:      pName.String,
			Bed:       b.BedNumber,
			Room:      pRoom.String,
			Condition: pCondition.String,
			Age:       int(pAge.Int64),
			Gender:    pGender.String,
			Admitted:  pAdmitted.String,
		}
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (r *BedSQLite) Create(ctx context.Context, bed *models.Bed) (int64, error) {
	now := time.Now().UTC()
	if bed.Status == "" {
		bed.Status = models.StatusAvailable
	}
	res, err := r.db.ExecContext(ctx, insertBedSQL,
		bed.BedNumber, bed.Room, bed.Status, nullableString(bed.Notes),
		bed.HeadPosition, bed.RightTiltPosition, bed.LeftTiltPosition, bed.LegPosition,
		bed.EmergencyStop, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert bed %q: %w", bed.BedNumber, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for bed %q: %w", bed.BedNumber, err)
	}
	bed.ID = id
	bed.CreatedAt = now
	bed.UpdatedAt = now
	return id, nil
}

func (r *BedSQLite) GetByID(ctx context.Context, id int64) (*models.Bed, error) {
	bed, err := scanBed(r.db.QueryRowContext(ctx, selectBedSQL+" WHERE b.id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select bed %d: %w", id, err)
	}
	return bed, nil
}

func (r *BedSQLite) GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error) {
	bed, err := scanBed(r.db.QueryRowContext(ctx, selectBedSQL+" WHERE b.bed_number=?", bedNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select bed %q: %w", bedNumber, err)
	}
	return bed, nil
}

func (r *BedSQLite) GetByPatient(ctx context.Context, patientID string) (*models.Bed, error) {
	bed, err := scanBed(r.db.QueryRowContext(ctx, selectBedSQL+" WHERE b.current_patient_id=?", patientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select bed for patient %q: %w", patientID, err)
	}
	return bed, nil
}

func (r *BedSQLite) List(ctx context.Context) ([]models.Bed, error) {
	return r.queryBeds(ctx, selectBedSQL+" ORDER BY b.bed_number ASC")
}

func (r *BedSQLite) ListAvailable(ctx context.Context) ([]models.Bed, error) {
	return r.queryBeds(ctx, selectBedSQL+" WHERE b.status=? ORDER BY b.bed_number ASC", models.StatusAvailable)
}

func (r *BedSQLite) queryBeds(ctx context.Context, query string, args ...any) ([]models.Bed, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query beds: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bed, 0, 16)
	for rows.Next() {
		bed, err := scanBed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bed: %w", err)
		}
		out = append(out, *bed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the full bed row. Last writer wins; there is no
// concurrent-edit token.
func (r *BedSQLite) Update(ctx context.Context, bed *models.Bed) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, updateBedSQL,
		bed.BedNumber, bed.Room, bed.Status, nullableString(bed.Notes),
		bed.HeadPosition, bed.RightTiltPosition, bed.LeftTiltPosition, bed.LegPosition,
		bed.EmergencyStop, bed.SensorVibration, bed.SensorTemperature, nullableString(bed.SensorTempUnit),
		bed.CurrentPatientID, now,
		bed.ID,
	)
	if err != nil {
		return fmt.Errorf("update bed %d: %w", bed.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	bed.UpdatedAt = now
	return nil
}

// MutatePosition writes a single motor position.
func (r *BedSQLite) MutatePosition(ctx context.Context, bedID int64, motor models.MotorType, value float64) error {
	col, err := positionColumn(motor)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE beds SET "+col+"=?, updated_at=? WHERE id=?",
		value, time.Now().UTC(), bedID,
	)
	if err != nil {
		return fmt.Errorf("update %s for bed %d: %w", col, bedID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SavePositions writes all four motor positions in one statement.
func (r *BedSQLite) SavePositions(ctx context.Context, bed *models.Bed) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE beds SET head_position=?, right_tilt_position=?, left_tilt_position=?, leg_position=?, updated_at=?
		WHERE id=?`,
		bed.HeadPosition, bed.RightTiltPosition, bed.LeftTiltPosition, bed.LegPosition,
		time.Now().UTC(), bed.ID,
	)
	if err != nil {
		return fmt.Errorf("update positions for bed %d: %w", bed.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEmergencyStop sets the interlock flag. Idempotent.
func (r *BedSQLite) SetEmergencyStop(ctx context.Context, bedID int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE beds SET emergency_stop=?, updated_at=? WHERE id=?",
		active, time.Now().UTC(), bedID,
	)
	if err != nil {
		return fmt.Errorf("set emergency stop for bed %d: %w", bedID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BedSQLite) UpdateSensors(ctx context.Context, bedID int64, vibration, temperature *float64, unit string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE beds SET sensor_vibration=?, sensor_temperature=?, sensor_temperature_unit=?, updated_at=? WHERE id=?",
		vibration, temperature, nullableString(unit), time.Now().UTC(), bedID,
	)
	if err != nil {
		return fmt.Errorf("update sensors for bed %d: %w", bedID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BedSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM beds WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete bed %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
