package models

import "time"

// RunStatus is the lifecycle state of an optimization run.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunCancelled RunStatus = "CANCELLED"
)

// Terminal reports whether no further status transition is expected.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCancelled
}

// Active reports whether the solver is still working on the run.
func (s RunStatus) Active() bool {
	return s == RunPending || s == RunRunning
}

// RunMetrics is the nested metrics record attached to a run by the solver.
type RunMetrics struct {
	TotalShifts        int     `json:"total_shifts"`
	FilledShifts       int     `json:"filled_shifts"`
	TotalEmployees     int     `json:"total_employees"`
	AssignedEmployees  int     `json:"assigned_employees"`
	MinAssignments     int     `json:"min_assignments_per_employee"`
	MaxAssignments     int     `json:"max_assignments_per_employee"`
	AvgAssignments     float64 `json:"avg_assignments_per_employee"`
	AvgPreferenceScore float64 `json:"avg_preference_score"`
}

// OptimizationRun is one optimization attempt against a weekly schedule.
// Status is written only by the solver backend; this service never mutates it.
type OptimizationRun struct {
	ID               string      `json:"id"`
	WeeklyScheduleID string      `json:"weekly_schedule_id"`
	Status           RunStatus   `json:"status"`
	StartedAt        *time.Time  `json:"started_at"`
	RuntimeSeconds   float64     `json:"runtime_seconds"`
	ObjectiveValue   float64     `json:"objective_value"`
	SolverStatus     string      `json:"solver_status"`
	MIPGap           float64     `json:"mip_gap"`
	SolutionCount    int         `json:"solution_count"`
	TotalAssignments int         `json:"total_assignments"`
	Metrics          *RunMetrics `json:"metrics,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
}

// Solution is one proposed (employee, shift, role) assignment from a completed run.
type Solution struct {
	EmployeeID string  `json:"employee_id"`
	ShiftID    string  `json:"shift_id"`
	RoleID     string  `json:"role_id"`
	Score      float64 `json:"assignment_score"`
}

// ApplyResult is returned when a run's solutions are materialized as assignments.
type ApplyResult struct {
	CreatedCount int    `json:"created_count"`
	UpdatedCount int    `json:"updated_count"`
	Message      string `json:"message"`
}

// RoleRequirement is the canonical required-headcount-per-role shape. Every
// upstream payload variant is normalized into this once, at the data boundary.
type RoleRequirement struct {
	RoleID        string `json:"role_id"`
	RequiredCount int    `json:"required_count"`
}

// ShiftTemplate describes a recurring shift and the roles it needs filled.
// A template may legitimately declare zero role requirements.
type ShiftTemplate struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Requirements []RoleRequirement `json:"role_requirements"`
}

// ShiftAssignment is a real, persisted employee-to-shift assignment.
type ShiftAssignment struct {
	ID         string `json:"id"`
	ShiftID    string `json:"shift_id"`
	EmployeeID string `json:"employee_id"`
	RoleID     string `json:"role_id"`
}

// PlannedShift is one concrete shift instance inside a weekly schedule.
// Template is nil when the template record could not be loaded.
type PlannedShift struct {
	ID          string            `json:"id"`
	TemplateID  string            `json:"shift_template_id"`
	Date        time.Time         `json:"date"`
	Template    *ShiftTemplate    `json:"template,omitempty"`
	Assignments []ShiftAssignment `json:"assignments"`
}

// Employee is a staff member eligible for assignment.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"is_active"`
}

// WeeklySchedule groups the planned shifts of one calendar week.
type WeeklySchedule struct {
	ID        string         `json:"id"`
	WeekStart time.Time      `json:"week_start"`
	Shifts    []PlannedShift `json:"shifts"`
}
