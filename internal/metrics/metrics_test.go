package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

type fakeSource struct {
	employees    []models.Employee
	employeesErr error
	shifts       []models.PlannedShift
	shiftsErr    error
	sched        *models.WeeklySchedule
	schedErr     error
}

func (f *fakeSource) ListEmployees(_ context.Context, _ bool) ([]models.Employee, error) {
	return f.employees, f.employeesErr
}

func (f *fakeSource) ListShifts(_ context.Context, _, _ time.Time) ([]models.PlannedShift, error) {
	return f.shifts, f.shiftsErr
}

func (f *fakeSource) GetWeeklySchedule(_ context.Context, _ string) (*models.WeeklySchedule, error) {
	return f.sched, f.schedErr
}

var testNow = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func newTestAggregator(src *fakeSource) *Aggregator {
	a := NewAggregator(src)
	a.now = func() time.Time { return testNow }
	return a
}

func reqTemplate(count int) *models.ShiftTemplate {
	return &models.ShiftTemplate{
		ID:           "t1",
		Requirements: []models.RoleRequirement{{RoleID: "A", RequiredCount: count}},
	}
}

func TestDashboard(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		employees: []models.Employee{{ID: "e1", Active: true}, {ID: "e2", Active: true}},
		shifts: []models.PlannedShift{
			{
				Date:        today.AddDate(0, 0, 1),
				Template:    reqTemplate(2),
				Assignments: []models.ShiftAssignment{{RoleID: "A"}},
			},
			{
				// No role metadata: one generic required position.
				Date:        today.AddDate(0, 0, 2),
				Assignments: []models.ShiftAssignment{{RoleID: "A"}},
			},
		},
		sched: &models.WeeklySchedule{ID: "s1", WeekStart: today},
	}

	summary, err := newTestAggregator(src).Dashboard(context.Background(), "s1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.TotalEmployees != 2 {
		t.Errorf("expected 2 employees, got %d", summary.TotalEmployees)
	}
	if summary.UpcomingShifts != 2 {
		t.Errorf("expected 2 upcoming shifts, got %d", summary.UpcomingShifts)
	}
	// 2 assigned over 3 required positions.
	if summary.CoverageRate != 67 {
		t.Errorf("expected coverage rate 67, got %d", summary.CoverageRate)
	}
}

func TestDashboard_UpcomingWindowEdges(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		shifts: []models.PlannedShift{
			// Earlier today: lower bound strips time-of-day, so included.
			{Date: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
			// Exactly 7 days out at 23:59:59: included.
			{Date: time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)},
			// Exactly 8 days out at 00:00: excluded.
			{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		sched: &models.WeeklySchedule{ID: "s1", WeekStart: today},
	}

	summary, err := newTestAggregator(src).Dashboard(context.Background(), "s1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.UpcomingShifts != 2 {
		t.Errorf("expected 2 shifts inside the window, got %d", summary.UpcomingShifts)
	}
}

func TestDashboard_CoverageRateCappedAt100(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		shifts: []models.PlannedShift{
			{
				Date:     today.AddDate(0, 0, 1),
				Template: reqTemplate(1),
				Assignments: []models.ShiftAssignment{
					{RoleID: "A"}, {RoleID: "A"}, {RoleID: "A"},
				},
			},
		},
		sched: &models.WeeklySchedule{ID: "s1", WeekStart: today},
	}

	summary, err := newTestAggregator(src).Dashboard(context.Background(), "s1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.CoverageRate != 100 {
		t.Errorf("expected coverage rate capped at 100, got %d", summary.CoverageRate)
	}
}

func TestDashboard_NoRequiredPositions(t *testing.T) {
	src := &fakeSource{
		sched: &models.WeeklySchedule{ID: "s1", WeekStart: testNow},
	}

	summary, err := newTestAggregator(src).Dashboard(context.Background(), "s1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.CoverageRate != 0 {
		t.Errorf("expected coverage rate 0 with no required positions, got %d", summary.CoverageRate)
	}
}

func TestDashboard_AnyFetchFailureFailsTheAggregate(t *testing.T) {
	src := &fakeSource{
		employees: []models.Employee{{ID: "e1"}},
		sched:     &models.WeeklySchedule{ID: "s1"},
		shiftsErr: errors.New("shifts fetch failed"),
	}

	_, err := newTestAggregator(src).Dashboard(context.Background(), "s1")
	if err == nil {
		t.Fatal("expected the whole aggregate to fail; there is no partial-success degrade")
	}
}
