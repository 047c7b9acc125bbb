package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/coverage"
)

type shiftCoverageEntry struct {
	ShiftID  string                 `json:"shift_id"`
	Date     time.Time              `json:"date"`
	Coverage coverage.ShiftCoverage `json:"coverage"`
}

// GetScheduleCoverage recomputes per-shift coverage and the day/week rollups
// for a schedule from its current assignments. Nothing here is cached; the
// numbers always reflect the inputs as fetched
func (h *Handler) GetScheduleCoverage(c *gin.Context) {
	scheduleID := c.Param("id")

	sched, err := h.Schedules.GetWeeklySchedule(c.Request.Context(), scheduleID)
	if err != nil {
		h.failUserAction(c, err, "Could not load schedule")
		return
	}

	shifts := make([]shiftCoverageEntry, 0, len(sched.Shifts))
	for _, shift := range sched.Shifts {
		shifts = append(shifts, shiftCoverageEntry{
			ShiftID:  shift.ID,
			Date:     shift.Date,
			Coverage: coverage.ForShift(shift.Assignments, shift.Template),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule_id": scheduleID,
		"week":        coverage.ForSchedule(*sched),
		"shifts":      shifts,
	})
}

// DashboardMetrics returns the dashboard summary. The underlying fetches are
// all-or-nothing: one failure fails the whole request
func (h *Handler) DashboardMetrics(c *gin.Context) {
	scheduleID := c.Query("weekly_schedule_id")
	if scheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekly_schedule_id is required"})
		return
	}

	summary, err := h.Metrics.Dashboard(c.Request.Context(), scheduleID)
	if err != nil {
		h.failUserAction(c, err, "Could not load dashboard metrics")
		return
	}
	c.JSON(http.StatusOK, summary)
}
