package metrics

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/coverage"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

// DataSource is the slice of the scheduling data backend the aggregator
// reads from.
type DataSource interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]models.Employee, error)
	ListShifts(ctx context.Context, from, to time.Time) ([]models.PlannedShift, error)
	GetWeeklySchedule(ctx context.Context, scheduleID string) (*models.WeeklySchedule, error)
}

// Summary is the dashboard-level rollup.
type Summary struct {
	TotalEmployees int                   `json:"total_employees"`
	UpcomingShifts int                   `json:"upcoming_shifts"`
	CoverageRate   int                   `json:"coverage_rate"`
	Week           coverage.WeekCoverage `json:"week"`
}

// Aggregator combines coverage output with employee and shift counts into
// dashboard numbers.
type Aggregator struct {
	src DataSource
	now func() time.Time
}

// NewAggregator builds an aggregator over the given data source.
func NewAggregator(src DataSource) *Aggregator {
	return &Aggregator{src: src, now: time.Now}
}

// Dashboard fetches employees, upcoming shifts, and the week's schedule
// concurrently and rolls them up. The fetches are all-or-nothing: if any one
// fails the whole aggregate fails, with no partial-success degrade.
func (a *Aggregator) Dashboard(ctx context.Context, scheduleID string) (*Summary, error) {
	now := a.now()
	from := startOfDay(now)
	to := endOfDay(from.AddDate(0, 0, 7))

	var (
		employees []models.Employee
		shifts    []models.PlannedShift
		sched     *models.WeeklySchedule
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = a.src.ListEmployees(ctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		shifts, err = a.src.ListShifts(ctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		sched, err = a.src.GetWeeklySchedule(ctx, scheduleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalEmployees: len(employees),
		UpcomingShifts: countUpcoming(shifts, from, to),
		CoverageRate:   coverageRate(shifts),
		Week:           coverage.ForSchedule(*sched),
	}
	return summary, nil
}

// countUpcoming counts shifts inside the inclusive [from, to] window. The
// lower bound compares calendar dates with time-of-day stripped; the upper
// bound keeps time-of-day.
func countUpcoming(shifts []models.PlannedShift, from, to time.Time) int {
	count := 0
	for _, shift := range shifts {
		day := startOfDay(shift.Date)
		if day.Before(from) || shift.Date.After(to) {
			continue
		}
		count++
	}
	return count
}

// coverageRate is assignments over required positions across the given
// shifts, capped at 100. Shifts without role metadata count as one required
// position each.
func coverageRate(shifts []models.PlannedShift) int {
	assigned, required := 0, 0
	for _, shift := range shifts {
		assigned += len(shift.Assignments)
		required += coverage.RequiredPositions(shift)
	}
	if required == 0 {
		return 0
	}
	rate := math.Round(100 * float64(assigned) / float64(required))
	return int(math.Min(100, rate))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
