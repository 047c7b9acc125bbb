package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/solver"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/auth"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/database"
)

type stubSolver struct {
	runs       []models.OptimizationRun
	solutions  []models.Solution
	applyCalls []bool
	applyErr   error
}

func (s *stubSolver) Submit(_ context.Context, scheduleID, _ string) (*models.OptimizationRun, error) {
	return &models.OptimizationRun{ID: "r1", WeeklyScheduleID: scheduleID, Status: models.RunPending}, nil
}

func (s *stubSolver) ListRuns(_ context.Context, _ string, _ models.RunStatus) ([]models.OptimizationRun, error) {
	return s.runs, nil
}

func (s *stubSolver) GetRun(_ context.Context, runID string) (*models.OptimizationRun, error) {
	for _, r := range s.runs {
		if r.ID == runID {
			return &r, nil
		}
	}
	return nil, &solver.APIError{Status: http.StatusNotFound, Detail: "run not found"}
}

func (s *stubSolver) ListSolutions(_ context.Context, _ string) ([]models.Solution, error) {
	return s.solutions, nil
}

func (s *stubSolver) Apply(_ context.Context, _ string, overwrite bool) (*models.ApplyResult, error) {
	s.applyCalls = append(s.applyCalls, overwrite)
	if s.applyErr != nil && !overwrite {
		return nil, s.applyErr
	}
	return &models.ApplyResult{CreatedCount: 4, UpdatedCount: 1, Message: "applied"}, nil
}

func (s *stubSolver) DeleteRun(_ context.Context, _ string) error { return nil }

type stubSchedules struct {
	sched *models.WeeklySchedule
}

func (s *stubSchedules) ListEmployees(_ context.Context, _ bool) ([]models.Employee, error) {
	return []models.Employee{{ID: "e1", Active: true}}, nil
}

func (s *stubSchedules) ListShifts(_ context.Context, _, _ time.Time) ([]models.PlannedShift, error) {
	return s.sched.Shifts, nil
}

func (s *stubSchedules) GetWeeklySchedule(_ context.Context, _ string) (*models.WeeklySchedule, error) {
	return s.sched, nil
}

func newTestHandler(t *testing.T, sol *stubSolver) (*Handler, *gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Init("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sched := &models.WeeklySchedule{
		ID:        "s1",
		WeekStart: weekStart,
		Shifts: []models.PlannedShift{
			{
				ID:   "sh1",
				Date: weekStart,
				Template: &models.ShiftTemplate{
					ID: "t1",
					Requirements: []models.RoleRequirement{
						{RoleID: "nurse", RequiredCount: 2},
					},
				},
				Assignments: []models.ShiftAssignment{{ID: "a1", RoleID: "nurse"}},
			},
		},
	}

	authSvc := auth.NewService("test-jwt-secret", "test-master-secret")
	h := New(db, authSvc, logger.NewNop(), sol, &stubSchedules{sched: sched}, time.Hour)
	t.Cleanup(h.Close)

	key := authSvc.GenerateHMACKey("tester")
	return h, NewRouter(h), key
}

func doRequest(r *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyRequired(t *testing.T) {
	_, r, _ := newTestHandler(t, &stubSolver{})

	w := doRequest(r, http.MethodGet, "/api/schedules/s1/runs", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a key, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/schedules/s1/runs", "tester.badsignature")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a forged key, got %d", w.Code)
	}
}

func TestSubmitAndListRuns(t *testing.T) {
	_, r, key := newTestHandler(t, &stubSolver{})

	w := doRequest(r, http.MethodPost, "/api/schedules/s1/optimize?config_id=c1", key)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/api/schedules/s1/runs", key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Runs     []models.OptimizationRun `json:"runs"`
		Selected string                   `json:"selected_run_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].ID != "r1" {
		t.Errorf("expected submitted run tracked, got %+v", resp.Runs)
	}
	if resp.Selected != "" {
		t.Errorf("expected no selection yet, got %q", resp.Selected)
	}
}

func TestApplyConflictRoundTrip(t *testing.T) {
	sol := &stubSolver{applyErr: &solver.ConflictError{Detail: "2 assignments would be overwritten"}}
	_, r, key := newTestHandler(t, sol)

	// First apply: conflict surfaces as 409 with the backend's explanation.
	w := doRequest(r, http.MethodPost, "/api/runs/r1/apply", key)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var conflictResp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conflictResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conflictResp.Detail != "2 assignments would be overwritten" {
		t.Errorf("expected backend detail passed through, got %q", conflictResp.Detail)
	}

	// After the user confirmed, the client re-invokes with overwrite=true.
	w = doRequest(r, http.MethodPost, "/api/runs/r1/apply?overwrite=true", key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.ApplyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.CreatedCount != 4 || result.UpdatedCount != 1 {
		t.Errorf("unexpected apply result: %+v", result)
	}

	if len(sol.applyCalls) != 2 || sol.applyCalls[0] || !sol.applyCalls[1] {
		t.Errorf("expected [apply(false), apply(true)], got %v", sol.applyCalls)
	}
}

func TestScheduleCoverage(t *testing.T) {
	_, r, key := newTestHandler(t, &stubSolver{})

	w := doRequest(r, http.MethodGet, "/api/schedules/s1/coverage", key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Week struct {
			RequiredCount int `json:"required_count"`
			AssignedCount int `json:"assigned_count"`
			FillRate      int `json:"fill_rate"`
		} `json:"week"`
		Shifts []struct {
			ShiftID  string `json:"shift_id"`
			Coverage struct {
				Percentage int    `json:"percentage"`
				Status     string `json:"status"`
			} `json:"coverage"`
		} `json:"shifts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Week.RequiredCount != 2 || resp.Week.AssignedCount != 1 || resp.Week.FillRate != 50 {
		t.Errorf("unexpected week rollup: %+v", resp.Week)
	}
	if len(resp.Shifts) != 1 || resp.Shifts[0].Coverage.Status != "partial" || resp.Shifts[0].Coverage.Percentage != 50 {
		t.Errorf("unexpected shift coverage: %+v", resp.Shifts)
	}
}

func TestDashboardMetrics(t *testing.T) {
	_, r, key := newTestHandler(t, &stubSolver{})

	w := doRequest(r, http.MethodGet, "/api/dashboard/metrics", key)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without weekly_schedule_id, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/dashboard/metrics?weekly_schedule_id=s1", key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary struct {
		TotalEmployees int `json:"total_employees"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalEmployees != 1 {
		t.Errorf("expected 1 employee, got %d", summary.TotalEmployees)
	}
}

func TestAdminLoginAndKeyManagement(t *testing.T) {
	h, r, _ := newTestHandler(t, &stubSolver{})

	if err := auth.EnsureAdminExists(h.DB, "admin", "secret123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.URL.RawQuery = "username=admin&password=secret123"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loginResp.AccessToken == "" {
		t.Fatal("expected a token")
	}

	w = doRequest(r, http.MethodGet, "/admin/keys", loginResp.AccessToken)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 listing keys, got %d", w.Code)
	}
}
