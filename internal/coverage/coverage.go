package coverage

import (
	"math"
	"time"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

// Status classifies how well a shift's role requirements are staffed.
type Status string

const (
	StatusEmpty          Status = "empty"
	StatusPartial        Status = "partial"
	StatusFull           Status = "full"
	StatusNoRequirements Status = "no_requirements"
)

// fallbackPercent is reported when template metadata is unavailable but the
// shift has assignments. A legacy approximation, kept verbatim on purpose.
const fallbackPercent = 50

// ShiftCoverage is the derived staffing picture of a single shift. It is
// recomputed from current inputs on every call and never cached.
type ShiftCoverage struct {
	AssignedByRole map[string]int `json:"assigned_by_role"`
	TotalRequired  int            `json:"total_required"`
	TotalCovered   int            `json:"total_covered"`
	Percentage     int            `json:"percentage"`
	Status         Status         `json:"status"`
}

// DayCoverage aggregates the shifts of one calendar day.
type DayCoverage struct {
	Date            time.Time `json:"date"`
	PlannedShifts   int       `json:"planned_shifts"`
	AssignedCount   int       `json:"assigned_count"`
	RequiredCount   int       `json:"required_count"`
	UnassignedCount int       `json:"unassigned_count"`
	FillRate        int       `json:"fill_rate"`
}

// WeekCoverage aggregates seven daily rollups. FillRate is recomputed from
// the weekly totals, not averaged over the daily rates, so low-volume days
// cannot skew it.
type WeekCoverage struct {
	Days            []DayCoverage `json:"days"`
	PlannedShifts   int           `json:"planned_shifts"`
	AssignedCount   int           `json:"assigned_count"`
	RequiredCount   int           `json:"required_count"`
	UnassignedCount int           `json:"unassigned_count"`
	FillRate        int           `json:"fill_rate"`
}

// ForShift computes the coverage of one shift from its real assignments and
// its template's role requirements.
//
// A nil template, or a template whose requirement list was never loaded,
// degrades to a binary fallback: empty at 0% with no assignments, otherwise
// partial at a fixed 50%. A template that declares an empty requirement list
// is different: it cannot be covered at all and reports no_requirements.
func ForShift(assignments []models.ShiftAssignment, tmpl *models.ShiftTemplate) ShiftCoverage {
	if tmpl == nil || tmpl.Requirements == nil {
		if len(assignments) == 0 {
			return ShiftCoverage{Status: StatusEmpty}
		}
		return ShiftCoverage{Percentage: fallbackPercent, Status: StatusPartial}
	}

	totalRequired := 0
	for _, req := range tmpl.Requirements {
		totalRequired += req.RequiredCount
	}
	if totalRequired == 0 {
		return ShiftCoverage{
			AssignedByRole: countByRole(assignments),
			Status:         StatusNoRequirements,
		}
	}

	assignedByRole := countByRole(assignments)

	// Cap each role at its requirement so an over-assigned role can never
	// push coverage past 100%.
	totalCovered := 0
	for _, req := range tmpl.Requirements {
		assigned := assignedByRole[req.RoleID]
		if assigned > req.RequiredCount {
			assigned = req.RequiredCount
		}
		totalCovered += assigned
	}

	status := StatusPartial
	switch {
	case totalCovered == 0:
		status = StatusEmpty
	case totalCovered == totalRequired:
		status = StatusFull
	}

	return ShiftCoverage{
		AssignedByRole: assignedByRole,
		TotalRequired:  totalRequired,
		TotalCovered:   totalCovered,
		Percentage:     roundPercent(totalCovered, totalRequired),
		Status:         status,
	}
}

// RequiredPositions returns how many bodies a shift needs: the sum of its
// role requirement counts, or 1 when the shift carries no role metadata at
// all (the one-generic-slot fallback).
func RequiredPositions(shift models.PlannedShift) int {
	if shift.Template == nil || shift.Template.Requirements == nil {
		return 1
	}
	total := 0
	for _, req := range shift.Template.Requirements {
		total += req.RequiredCount
	}
	return total
}

// ForDay rolls the given shifts (assumed to share one date) into a daily
// summary.
func ForDay(date time.Time, shifts []models.PlannedShift) DayCoverage {
	day := DayCoverage{Date: date, PlannedShifts: len(shifts)}
	for _, shift := range shifts {
		day.AssignedCount += len(shift.Assignments)
		day.RequiredCount += RequiredPositions(shift)
	}
	if unassigned := day.RequiredCount - day.AssignedCount; unassigned > 0 {
		day.UnassignedCount = unassigned
	}
	if day.RequiredCount > 0 {
		day.FillRate = roundPercent(day.AssignedCount, day.RequiredCount)
	}
	return day
}

// ForWeek sums daily rollups into a weekly one.
func ForWeek(days []DayCoverage) WeekCoverage {
	week := WeekCoverage{Days: days}
	for _, day := range days {
		week.PlannedShifts += day.PlannedShifts
		week.AssignedCount += day.AssignedCount
		week.RequiredCount += day.RequiredCount
		week.UnassignedCount += day.UnassignedCount
	}
	if week.RequiredCount > 0 {
		week.FillRate = roundPercent(week.AssignedCount, week.RequiredCount)
	}
	return week
}

// ForSchedule buckets a schedule's shifts into the seven days starting at
// WeekStart and rolls them up.
func ForSchedule(sched models.WeeklySchedule) WeekCoverage {
	start := truncateToDay(sched.WeekStart)
	buckets := make([][]models.PlannedShift, 7)
	for _, shift := range sched.Shifts {
		offset := dayOffset(start, shift.Date)
		if offset < 0 {
			continue
		}
		buckets[offset] = append(buckets[offset], shift)
	}

	days := make([]DayCoverage, 7)
	for i, shifts := range buckets {
		days[i] = ForDay(start.AddDate(0, 0, i), shifts)
	}
	return ForWeek(days)
}

func countByRole(assignments []models.ShiftAssignment) map[string]int {
	counts := make(map[string]int, len(assignments))
	for _, a := range assignments {
		counts[a.RoleID]++
	}
	return counts
}

func roundPercent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// dayOffset returns which of the seven days starting at start owns t's
// calendar date, or -1 when none does. Days are matched as calendar dates,
// never as 24h spans, so a DST-shortened day keeps its own bucket.
func dayOffset(start, t time.Time) int {
	for i := 0; i < 7; i++ {
		y1, m1, d1 := start.AddDate(0, 0, i).Date()
		y2, m2, d2 := t.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return i
		}
	}
	return -1
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
