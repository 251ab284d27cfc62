package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

const schemaPatients = `
CREATE TABLE IF NOT EXISTS patients (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    bed TEXT,
    room TEXT NOT NULL,
    condition TEXT,
    age INTEGER NOT NULL DEFAULT 0,
    gender TEXT,
    admitted TEXT
);
`

const schemaBeds = `
CREATE TABLE IF NOT EXISTS beds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bed_number TEXT UNIQUE NOT NULL,
    room TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'AVAILABLE',
    notes TEXT,
    head_position REAL NOT NULL DEFAULT 0,
    right_tilt_position REAL NOT NULL DEFAULT 0,
    left_tilt_position REAL NOT NULL DEFAULT 0,
    leg_position REAL NOT NULL DEFAULT 0,
    emergency_stop BOOLEAN NOT NULL DEFAULT 0,
    sensor_vibration REAL,
    sensor_temperature REAL,
    sensor_temperature_unit TEXT,
    current_patient_id TEXT REFERENCES patients(id) ON DELETE SET NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaMovementHistory = `
CREATE TABLE IF NOT EXISTS bed_movement_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bed_id INTEGER NOT NULL REFERENCES beds(id) ON DELETE CASCADE,
    performed_by INTEGER REFERENCES users(id),
    patient_id TEXT REFERENCES patients(id),
    movement_type TEXT NOT NULL,
    motor_type TEXT,
    direction TEXT,
    duration INTEGER,
    previous_position REAL,
    new_position REAL,
    scheduled_for TIMESTAMP,
    executed BOOLEAN NOT NULL DEFAULT 0,
    notes TEXT,
    created_at TIMESTAMP NOT NULL
);
`

// The scheduler polls this predicate every tick.
const indexDueMovements = `
CREATE INDEX IF NOT EXISTS idx_history_due
ON bed_movement_history (movement_type, executed, scheduled_for);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaPatients,
		schemaBeds,
		schemaMovementHistory,
		indexDueMovements,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
