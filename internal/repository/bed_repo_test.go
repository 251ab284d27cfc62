package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/desta-elias/smart-bed-u/internal/models"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var bedRowColumns = []string{
	"id", "bed_number", "room", "status", "notes",
	"head_position", "right_tilt_position", "left_tilt_position", "leg_position",
	"emergency_stop", "sensor_vibration", "sensor_temperature", "sensor_temperature_unit",
	"current_patient_id", "created_at", "updated_at",
	"name", "p_room", "condition", "age", "gender", "admitted",
}

func TestBedRepo_Create(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectExec("INSERT INTO beds").
		WithArgs("B-101", "ICU-1", string(models.StatusAvailable), sqlmock.AnyArg(),
			0.0, 0.0, 0.0, 0.0, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	bed := &models.Bed{BedNumber: "B-101", Room: "ICU-1"}
	id, err := repo.Create(ctx(t), bed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 7 || bed.ID != 7 {
		t.Fatalf("expected id 7, got %d (bed.ID=%d)", id, bed.ID)
	}
	if bed.Status != models.StatusAvailable {
		t.Fatalf("expected default status AVAILABLE, got %s", bed.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectQuery("SELECT .+ FROM beds b").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(ctx(t), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_GetByNumber_WithPatient(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(bedRowColumns).AddRow(
		int64(3), "B-303", "WARD-2", "OCCUPIED", "window side",
		25.0, 0.0, 0.0, 10.0,
		false, nil, nil, nil,
		"9f1c", now, now,
		"Abebe K", "WARD-2", "stable", 61, "M", "2026-01-28",
	)

	mock.ExpectQuery("SELECT .+ FROM beds b").
		WithArgs("B-303").
		WillReturnRows(rows)

	bed, err := repo.GetByNumber(ctx(t), "B-303")
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if bed.ID != 3 || bed.Status != models.StatusOccupied {
		t.Fatalf("unexpected bed: %+v", bed)
	}
	if bed.HeadPosition != 25 || bed.LegPosition != 10 {
		t.Fatalf("unexpected positions: %+v", bed)
	}
	if bed.CurrentPatient == nil || bed.CurrentPatient.Name != "Abebe K" {
		t.Fatalf("expected joined patient, got %+v", bed.CurrentPatient)
	}
	if bed.CurrentPatient.Bed != "B-303" {
		t.Fatalf("patient back-reference = %q", bed.CurrentPatient.Bed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_MutatePosition(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE beds SET head_position=?, updated_at=? WHERE id=?")).
		WithArgs(55.0, sqlmock.AnyArg(), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MutatePosition(ctx(t), 2, models.MotorHead, 55); err != nil {
		t.Fatalf("MutatePosition: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_MutatePosition_UnknownMotor(t *testing.T) {
	t.Parallel()
	db, _ := newMock(t)
	repo := NewBedSQLite(db)

	if err := repo.MutatePosition(ctx(t), 2, models.MotorType("SPINE"), 10); err == nil {
		t.Fatalf("expected error for unknown motor")
	}
}

func TestBedRepo_SetEmergencyStop_MissingBed(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectExec("UPDATE beds SET emergency_stop").
		WithArgs(true, sqlmock.AnyArg(), int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetEmergencyStop(ctx(t), 404, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_SavePositions(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectExec("UPDATE beds SET head_position=\\?, right_tilt_position").
		WithArgs(10.0, 20.0, 30.0, 40.0, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	bed := &models.Bed{ID: 1, HeadPosition: 10, RightTiltPosition: 20, LeftTiltPosition: 30, LegPosition: 40}
	if err := repo.SavePositions(ctx(t), bed); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestBedRepo_Delete_NotFound(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	repo := NewBedSQLite(db)

	mock.ExpectExec("DELETE FROM beds").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(ctx(t), 8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
