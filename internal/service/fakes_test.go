package service

import (
	"context"
	"sort"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/repository"
)

// ---- in-memory repository fakes ----

type fakeBedRepo struct {
	beds       map[int64]*models.Bed
	nextID     int64
	mutateErr  error
	saveErr    error
	mutations  int
	saves      int
	stopCalls  int
	sensorSets int
}

func newFakeBedRepo(beds ...*models.Bed) *fakeBedRepo {
	f := &fakeBedRepo{beds: make(map[int64]*models.Bed), nextID: 1}
	for _, b := range beds {
		if b.ID == 0 {
			b.ID = f.nextID
		}
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
		f.beds[b.ID] = b
	}
	return f
}

func (f *fakeBedRepo) Create(ctx context.Context, bed *models.Bed) (int64, error) {
	bed.ID = f.nextID
	f.nextID++
	if bed.Status == "" {
		bed.Status = models.StatusAvailable
	}
	cp := *bed
	f.beds[bed.ID] = &cp
	return bed.ID, nil
}

func (f *fakeBedRepo) GetByID(ctx context.Context, id int64) (*models.Bed, error) {
	b, ok := f.beds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBedRepo) GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error) {
	for _, b := range f.beds {
		if b.BedNumber == bedNumber {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBedRepo) GetByPatient(ctx context.Context, patientID string) (*models.Bed, error) {
	for _, b := range f.beds {
		if b.CurrentPatientID != nil && *b.CurrentPatientID == patientID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBedRepo) List(ctx context.Context) ([]models.Bed, error) {
	out := make([]models.Bed, 0, len(f.beds))
	for _, b := range f.beds {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BedNumber < out[j].BedNumber })
	return out, nil
}

func (f *fakeBedRepo) ListAvailable(ctx context.Context) ([]models.Bed, error) {
	all, _ := f.List(ctx)
	out := all[:0]
	for _, b := range all {
		if b.Status == models.StatusAvailable {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBedRepo) Update(ctx context.Context, bed *models.Bed) error {
	if _, ok := f.beds[bed.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *bed
	f.beds[bed.ID] = &cp
	return nil
}

func (f *fakeBedRepo) MutatePosition(ctx context.Context, bedID int64, motor models.MotorType, value float64) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	b, ok := f.beds[bedID]
	if !ok {
		return repository.ErrNotFound
	}
	b.SetPosition(motor, value)
	f.mutations++
	return nil
}

func (f *fakeBedRepo) SavePositions(ctx context.Context, bed *models.Bed) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	b, ok := f.beds[bed.ID]
	if !ok {
		return repository.ErrNotFound
	}
	b.HeadPosition = bed.HeadPosition
	b.RightTiltPosition = bed.RightTiltPosition
	b.LeftTiltPosition = bed.LeftTiltPosition
	b.LegPosition = bed.LegPosition
	f.saves++
	return nil
}

func (f *fakeBedRepo) SetEmergencyStop(ctx context.Context, bedID int64, active bool) error {
	b, ok := f.beds[bedID]
	if !ok {
		return repository.ErrNotFound
	}
	b.EmergencyStop = active
	f.stopCalls++
	return nil
}

func (f *fakeBedRepo) UpdateSensors(ctx context.Context, bedID int64, vibration, temperature *float64, unit string) error {
	b, ok := f.beds[bedID]
	if !ok {
		return repository.ErrNotFound
	}
	b.SensorVibration = vibration
	b.SensorTemperature = temperature
	b.SensorTempUnit = unit
	f.sensorSets++
	return nil
}

func (f *fakeBedRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.beds[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.beds, id)
	return nil
}

type fakeHistoryRepo struct {
	records   map[int64]*models.MovementRecord
	nextID    int64
	appendErr error
	markErr   error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{records: make(map[int64]*models.MovementRecord), nextID: 1}
}

func (f *fakeHistoryRepo) Append(ctx context.Context, rec *models.MovementRecord) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	rec.ID = f.nextID
	f.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return rec.ID, nil
}

func (f *fakeHistoryRepo) GetByID(ctx context.Context, id int64) (*models.MovementRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeHistoryRepo) MarkExecuted(ctx context.Context, id int64, previous, next float64) error {
	if f.markErr != nil {
		return f.markErr
	}
	r, ok := f.records[id]
	if !ok || r.Executed {
		return repository.ErrNotFound
	}
	r.Executed = true
	r.PreviousPosition = &previous
	r.NewPosition = &next
	return nil
}

func (f *fakeHistoryRepo) QueryDue(ctx context.Context, before time.Time) ([]models.MovementRecord, error) {
	out := make([]models.MovementRecord, 0)
	for _, r := range f.records {
		if r.MovementType == models.MovementScheduled && !r.Executed &&
			r.ScheduledFor != nil && !r.ScheduledFor.After(before) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(*out[j].ScheduledFor) })
	return out, nil
}

func (f *fakeHistoryRepo) QueryHistory(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error) {
	out := make([]models.MovementRecord, 0)
	for _, r := range f.records {
		if r.BedID == bedID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHistoryRepo) QueryScheduled(ctx context.Context, bedID *int64, after time.Time) ([]models.MovementRecord, error) {
	out := make([]models.MovementRecord, 0)
	for _, r := range f.records {
		if r.MovementType != models.MovementScheduled || r.Executed ||
			r.ScheduledFor == nil || !r.ScheduledFor.After(after) {
			continue
		}
		if bedID != nil && r.BedID != *bedID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(*out[j].ScheduledFor) })
	return out, nil
}

// countByType tallies records matching the movement type.
func (f *fakeHistoryRepo) countByType(t models.MovementType) int {
	n := 0
	for _, r := range f.records {
		if r.MovementType == t {
			n++
		}
	}
	return n
}

type fakePatientRepo struct {
	patients map[string]*models.Patient
}

func newFakePatientRepo(ps ...*models.Patient) *fakePatientRepo {
	f := &fakePatientRepo{patients: make(map[string]*models.Patient)}
	for _, p := range ps {
		f.patients[p.ID] = p
	}
	return f
}

func (f *fakePatientRepo) Create(ctx context.Context, p *models.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) SetBed(ctx context.Context, patientID, bedNumber string) error {
	p, ok := f.patients[patientID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Bed = bedNumber
	return nil
}

type fakeAuthRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeAuthRepo) Create(username, hash string) (int64, error) {
	u := &models.User{ID: f.nextID, Username: username, PasswordHash: hash}
	f.nextID++
	f.users[username] = u
	return u.ID, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
