package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int64
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int64
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int64, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int64, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockBeds struct {
	bed        *models.Bed
	beds       []models.Bed
	patient    *models.Patient
	err        error
	lastCreate service.CreateBedParams
	lastUpdate service.UpdateBedParams
	lastAssign [2]string // patientID, bedNumber
	deleteErr  error
	getCalls   int
}

func (m *mockBeds) Create(ctx context.Context, p service.CreateBedParams) (*models.Bed, error) {
	m.lastCreate = p
	return m.bed, m.err
}
func (m *mockBeds) Get(ctx context.Context, id int64) (*models.Bed, error) {
	m.getCalls++
	return m.bed, m.err
}
func (m *mockBeds) GetByNumber(ctx context.Context, bedNumber string) (*models.Bed, error) {
	return m.bed, m.err
}
func (m *mockBeds) List(ctx context.Context) ([]models.Bed, error) {
	return m.beds, m.err
}
func (m *mockBeds) ListAvailable(ctx context.Context) ([]models.Bed, error) {
	return m.beds, m.err
}
func (m *mockBeds) Update(ctx context.Context, id int64, p service.UpdateBedParams) (*models.Bed, error) {
	m.lastUpdate = p
	return m.bed, m.err
}
func (m *mockBeds) UpdateSensors(ctx context.Context, id int64, p service.SensorParams) (*models.Bed, error) {
	return m.bed, m.err
}
func (m *mockBeds) Delete(ctx context.Context, id int64) error {
	return m.deleteErr
}
func (m *mockBeds) Assign(ctx context.Context, patientID, bedNumber string) (*models.Bed, error) {
	m.lastAssign = [2]string{patientID, bedNumber}
	return m.bed, m.err
}
func (m *mockBeds) Unassign(ctx context.Context, bedNumber string) (*models.Bed, error) {
	return m.bed, m.err
}
func (m *mockBeds) UnassignByPatient(ctx context.Context, patientID string) (*models.Bed, error) {
	return m.bed, m.err
}
func (m *mockBeds) CreatePatient(ctx context.Context, p service.CreatePatientParams) (*models.Patient, error) {
	return m.patient, m.err
}
func (m *mockBeds) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	return m.patient, m.err
}

type mockMovement struct {
	control   *service.ControlResult
	positions *service.PositionsResult
	bed       *models.Bed
	record    *models.MovementRecord
	records   []models.MovementRecord
	err       error

	lastManual    service.ManualControlParams
	lastChanges   []service.PositionChange
	lastSchedule  service.ScheduleParams
	lastStopUser  *int64
	stopCalls     int
	resetCalls    int
	lastManualUID int64
}

func (m *mockMovement) ManualControl(ctx context.Context, bedID, userID int64, p service.ManualControlParams) (*service.ControlResult, error) {
	m.lastManual = p
	m.lastManualUID = userID
	return m.control, m.err
}
func (m *mockMovement) UpdatePositions(ctx context.Context, bedID int64, changes []service.PositionChange) (*service.PositionsResult, error) {
	m.lastChanges = changes
	return m.positions, m.err
}
func (m *mockMovement) EmergencyStop(ctx context.Context, bedID int64, userID *int64) (*models.Bed, error) {
	m.stopCalls++
	m.lastStopUser = userID
	return m.bed, m.err
}
func (m *mockMovement) ResetEmergencyStop(ctx context.Context, bedID int64) (*models.Bed, error) {
	m.resetCalls++
	return m.bed, m.err
}
func (m *mockMovement) Schedule(ctx context.Context, bedID, userID int64, p service.ScheduleParams) (*models.MovementRecord, error) {
	m.lastSchedule = p
	return m.record, m.err
}
func (m *mockMovement) ExecuteScheduled(ctx context.Context, recordID int64) error {
	return m.err
}
func (m *mockMovement) History(ctx context.Context, bedID int64, limit int) ([]models.MovementRecord, error) {
	return m.records, m.err
}
func (m *mockMovement) ScheduledMovements(ctx context.Context, bedID *int64) ([]models.MovementRecord, error) {
	return m.records, m.err
}

type mockScheduler struct{}

func (mockScheduler) Run(ctx context.Context, tick time.Duration) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
