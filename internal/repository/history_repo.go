package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

var _ MovementHistory = (*HistorySQLite)(nil)

const historyColumns = `h.id, h.bed_id, h.performed_by, h.patient_id, h.movement_type,
		h.motor_type, h.direction, h.duration, h.previous_position, h.new_position,
		h.scheduled_for, h.executed, h.notes, h.created_at`

const insertHistorySQL = `
	INSERT INTO bed_movement_history (bed_id, performed_by, patient_id, movement_type,
		motor_type, direction, duration, previous_position, new_position,
		scheduled_for, executed, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// selectDueSQL joins the owning bed so the scheduler can check the interlock
// without a second round trip.
const selectDueSQL = `SELECT ` + historyColumns + `,
		b.bed_number, b.emergency_stop
	FROM bed_movement_history h
	JOIN beds b ON b.id = h.bed_id
	WHERE h.movement_type=? AND h.executed=0 AND h.scheduled_for<=?
	ORDER BY h.scheduled_for ASC`

// Append inserts a new history row. CreatedAt defaults to now (UTC).
func (r *HistorySQLite) Append(ctx context.Context, rec *models.MovementRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC()
	}

	var scheduledFor *time.Time
	if rec.ScheduledFor != nil {
		t := rec.ScheduledFor.UTC()
		scheduledFor = &t
	}

	res, err := r.db.ExecContext(ctx, insertHistorySQL,
		rec.BedID, rec.PerformedBy, rec.PatientID, rec.MovementType,
		nullableString(string(rec.MotorType)), nullableString(string(rec.Direction)),
		nullableInt(rec.Duration), rec.PreviousPosition, rec.NewPosition,
		scheduledFor, rec.Executed, nullableString(rec.Notes), rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert movement record for bed %d: %w", rec.BedID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for movement record: %w", err)
	}
	rec.ID = id
	return id, nil
}

func (r *HistorySQLite) GetByID(ctx context.Context, id int64) (*models.MovementRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+`,
			b.bed_number, b.emergency_stop
		FROM bed_movement_history h
		JOIN beds b ON b.id = h.bed_id
		WHERE h.id=?`, id)

	rec, err := scanRecordWithBed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select movement record %d: %w", id, err)
	}
	return rec, nil
}

// MarkExecuted performs the single allowed record mutation: it flips
// executed, fills the resolved positions, and only matches when the record is
// still pending so a concurrent trigger cannot execute it twice.
func (r *HistorySQLite) MarkExecuted(ctx context.Context, id int64, previous, next float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bed_movement_history
		SET executed=1, previous_position=?, new_position=?
		WHERE id=? AND executed=0`,
		previous, next, id,
	)
	if err != nil {
		return fmt.Errorf("mark movement record %d executed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryDue returns SCHEDULED, unexecuted records whose time has passed, each
// with its owning bed attached.
func (r *HistorySQLite) QueryDue(ctx context.Context, before time.Time) ([]models.MovementRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectDueSQL, models.MovementScheduled, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("query due movements: %w", err)
	}
	defer rows.Close()
	return collectRecordsWithBed(rows)
}

// QueryHistory returns a bed's history, most recent first.
func (r *HistorySQLite) QueryHistory(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+`
		FROM bed_movement_history h
		WHERE h.bed_id=?
		ORDER BY h.created_at DESC
		LIMIT ?`, bedID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for bed %d: %w", bedID, err)
	}
	defer rows.Close()

	out := make([]models.MovementRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryScheduled returns pending SCHEDULED records after the given time,
// soonest first, optionally restricted to one bed.
func (r *HistorySQLite) QueryScheduled(ctx context.Context, bedID *int64, after time.Time) ([]models.MovementRecord, error) {
	q := `SELECT ` + historyColumns + `,
			b.bed_number, b.emergency_stop
		FROM bed_movement_history h
		JOIN beds b ON b.id = h.bed_id
		WHERE h.movement_type=? AND h.executed=0 AND h.scheduled_for>?`
	args := []any{models.MovementScheduled, after.UTC()}
	if bedID != nil {
		q += " AND h.bed_id=?"
		args = append(args, *bedID)
	}
	q += " ORDER BY h.scheduled_for ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scheduled movements: %w", err)
	}
	defer rows.Close()
	return collectRecordsWithBed(rows)
}

func scanRecord(row interface{ Scan(...any) error }) (*models.MovementRecord, error) {
	return scanRecordFields(row, false)
}

func scanRecordWithBed(row interface{ Scan(...any) error }) (*models.MovementRecord, error) {
	return scanRecordFields(row, true)
}

func scanRecordFields(row interface{ Scan(...any) error }, withBed bool) (*models.MovementRecord, error) {
	var (
		rec          models.MovementRecord
		motorType    sql.NullString
		direction    sql.NullString
		duration     sql.NullInt64
		scheduledFor sql.NullTime
		notes        sql.NullString
		bedNumber    sql.NullString
		bedStopped   sql.NullBool
	)
	dest := []any{
		&rec.ID, &rec.BedID, &rec.PerformedBy, &rec.PatientID, &rec.MovementType,
		&motorType, &direction, &duration, &rec.PreviousPosition, &rec.NewPosition,
		&scheduledFor, &rec.Executed, &notes, &rec.CreatedAt,
	}
	if withBed {
		dest = append(dest, &bedNumber, &bedStopped)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.MotorType = models.MotorType(motorType.String)
	rec.Direction = models.MotorDirection(direction.String)
	rec.Duration = int(duration.Int64)
	rec.Notes = notes.String
	if scheduledFor.Valid {
		t := scheduledFor.Time.UTC()
		rec.ScheduledFor = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if withBed {
		rec.Bed = &models.Bed{
			ID:            rec.BedID,
			BedNumber:     bedNumber.String,
			EmergencyStop: bedStopped.Bool,
		}
	}
	return &rec, nil
}

func collectRecordsWithBed(rows *sql.Rows) ([]models.MovementRecord, error) {
	out := make([]models.MovementRecord, 0, 8)
	for rows.Next() {
		rec, err := scanRecordWithBed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
