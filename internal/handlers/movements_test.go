package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/desta-elias/smart-bed-u/internal/models"
	"github.com/desta-elias/smart-bed-u/internal/service"
)

func TestManualControlHandler(t *testing.T) {
	prev, next := 0.0, 30.0
	step := 12
	mv := &mockMovement{control: &service.ControlResult{
		Bed: &models.Bed{ID: 1, BedNumber: "B-101", HeadPosition: 30},
		History: &models.MovementRecord{
			ID: 5, BedID: 1, MovementType: models.MovementManual,
			MotorType: models.MotorHead, Direction: models.DirectionUp,
			Duration: 3, PreviousPosition: &prev, NewPosition: &next, Executed: true,
		},
		Command: models.BedCommand{
			MotorType: models.MotorHead, Direction: models.CommandForward,
			MappedStep: &step, PreviousPosition: prev, NewPosition: next,
		},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv}
	r := newTestRouter(s)

	// Requires auth
	w := doJSON(t, r, http.MethodPost, "/api/v1/beds/1/manual-control", `{"motor_type":"HEAD","direction":"UP","duration":3}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/beds/1/manual-control", `{"motor_type":"HEAD","direction":"UP","duration":3}`, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if mv.lastManual.MotorType != models.MotorHead || mv.lastManual.Duration != 3 {
		t.Fatalf("params not passed: %+v", mv.lastManual)
	}
	if mv.lastManualUID != 9 {
		t.Fatalf("acting user = %d, want 9", mv.lastManualUID)
	}

	var resp service.ControlResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Command.Direction != models.CommandForward || resp.Command.MappedStep == nil || *resp.Command.MappedStep != 12 {
		t.Fatalf("bad command in response: %+v", resp.Command)
	}

	// Missing body field → 400 before the service is touched
	before := mv.lastManual
	w = doJSON(t, r, http.MethodPost, "/api/v1/beds/1/manual-control", `{"motor_type":"HEAD"}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete body, got %d", w.Code)
	}
	if mv.lastManual != before {
		t.Fatalf("service must not be called on bind failure")
	}
}

func TestManualControlHandler_BlockedState(t *testing.T) {
	mv := &mockMovement{err: service.ErrEmergencyStopActive}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/beds/1/manual-control", `{"motor_type":"HEAD","direction":"UP","duration":3}`, "valid")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while stopped, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestUpdatePositionsHandler(t *testing.T) {
	mv := &mockMovement{positions: &service.PositionsResult{
		Bed: &models.Bed{ID: 1, BedNumber: "B-101", HeadPosition: 20, LegPosition: 45},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/v1/beds/1/positions", `{"head_position":20,"leg_position":45}`, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if len(mv.lastChanges) != 2 {
		t.Fatalf("expected 2 changes, got %+v", mv.lastChanges)
	}
	if mv.lastChanges[0].Motor != models.MotorHead || mv.lastChanges[0].Value != 20 {
		t.Fatalf("head change wrong: %+v", mv.lastChanges[0])
	}
	if mv.lastChanges[1].Motor != models.MotorLeg || mv.lastChanges[1].Value != 45 {
		t.Fatalf("leg change wrong: %+v", mv.lastChanges[1])
	}

	// Empty body surfaces the validation error as 400
	mv.err = service.ErrNoPositionFields
	w = doJSON(t, r, http.MethodPut, "/api/v1/beds/1/positions", `{}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", w.Code)
	}
}

func TestGetPositionsHandler_Public(t *testing.T) {
	beds := &mockBeds{bed: &models.Bed{ID: 1, BedNumber: "B-101", HeadPosition: 45, LegPosition: 50}}
	s := &service.Service{Beds: beds}
	r := newTestRouter(s)

	// No Authorization header at all.
	w := doJSON(t, r, http.MethodGet, "/api/v1/beds/1/positions", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		BedNumber string             `json:"bed_number"`
		Positions map[string]float64 `json:"positions"`
		Steps     map[string]*int    `json:"steps"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.BedNumber != "B-101" || resp.Positions["HEAD"] != 45 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	// 45 maps to step 20; 50 is beyond the mapped band.
	if resp.Steps["HEAD"] == nil || *resp.Steps["HEAD"] != 20 {
		t.Fatalf("HEAD step = %v, want 20", resp.Steps["HEAD"])
	}
	if resp.Steps["LEG"] != nil {
		t.Fatalf("LEG step = %v, want null", resp.Steps["LEG"])
	}
}

func TestEmergencyStopHandler_OptionalAuth(t *testing.T) {
	mv := &mockMovement{bed: &models.Bed{ID: 1, BedNumber: "B-101", EmergencyStop: true}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv, Beds: &mockBeds{}}
	r := newTestRouter(s)

	// Without a token: anonymous actor.
	w := doJSON(t, r, http.MethodPost, "/api/v1/beds/1/emergency-stop", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if mv.lastStopUser != nil {
		t.Fatalf("expected anonymous stop, got user %v", *mv.lastStopUser)
	}

	// With a token: actor recorded.
	w = doJSON(t, r, http.MethodPost, "/api/v1/beds/1/emergency-stop", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if mv.lastStopUser == nil || *mv.lastStopUser != 9 {
		t.Fatalf("expected user 9, got %v", mv.lastStopUser)
	}
	if mv.stopCalls != 2 {
		t.Fatalf("stop calls = %d", mv.stopCalls)
	}
}

func TestEmergencyStopStatusAndReset(t *testing.T) {
	beds := &mockBeds{bed: &models.Bed{ID: 1, BedNumber: "B-101", EmergencyStop: true}}
	mv := &mockMovement{bed: &models.Bed{ID: 1, BedNumber: "B-101"}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Beds: beds, Movement: mv}
	r := newTestRouter(s)

	// Status is public.
	w := doJSON(t, r, http.MethodGet, "/api/v1/beds/1/emergency-stop", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp struct {
		EmergencyStop bool `json:"emergency_stop"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.EmergencyStop {
		t.Fatalf("expected emergency_stop=true, body=%s", w.Body.String())
	}

	// Reset requires auth.
	w = doJSON(t, r, http.MethodDelete, "/api/v1/beds/1/emergency-stop", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reset without auth, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/v1/beds/1/emergency-stop", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status=%d", w.Code)
	}
	if mv.resetCalls != 1 {
		t.Fatalf("reset calls = %d", mv.resetCalls)
	}
}

func TestScheduleMovementHandler(t *testing.T) {
	mv := &mockMovement{record: &models.MovementRecord{ID: 11, BedID: 1, MovementType: models.MovementScheduled}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/beds/1/schedule-movement",
		`{"motor_type":"LEG","direction":"DOWN","duration":5,"scheduled_for":"14:30"}`, "valid")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if mv.lastSchedule.ScheduledFor != "14:30" || mv.lastSchedule.MotorType != models.MotorLeg {
		t.Fatalf("params not passed: %+v", mv.lastSchedule)
	}

	// Past time comes back as 400.
	mv.record, mv.err = nil, service.ErrScheduleInPast
	w = doJSON(t, r, http.MethodPost, "/api/v1/beds/1/schedule-movement",
		`{"motor_type":"LEG","direction":"DOWN","duration":5,"scheduled_for":"00:00"}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for past schedule, got %d", w.Code)
	}
}

func TestHistoryAndScheduledHandlers(t *testing.T) {
	mv := &mockMovement{records: []models.MovementRecord{
		{ID: 2, BedID: 1, MovementType: models.MovementManual},
		{ID: 1, BedID: 1, MovementType: models.MovementEmergencyStop},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 9}, Movement: mv}
	r := newTestRouter(s)

	for _, path := range []string{
		"/api/v1/beds/1/history?limit=10",
		"/api/v1/beds/1/scheduled-movements",
		"/api/v1/scheduled-movements",
	} {
		w := doJSON(t, r, http.MethodGet, path, "", "valid")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, w.Code)
		}
		var resp struct {
			Count     int                     `json:"count"`
			Movements []models.MovementRecord `json:"movements"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal %s: %v", path, err)
		}
		if resp.Count != 2 || len(resp.Movements) != 2 {
			t.Fatalf("%s: unexpected payload %+v", path, resp)
		}
	}
}
