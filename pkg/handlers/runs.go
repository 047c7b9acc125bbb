package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/runs"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/solver"
)

// SubmitRun starts an optimization run for a schedule
func (h *Handler) SubmitRun(c *gin.Context) {
	scheduleID := c.Param("id")
	configID := c.Query("config_id")

	run, err := h.Controller(scheduleID).Submit(c.Request.Context(), configID)
	if err != nil {
		h.failUserAction(c, err, "Could not start optimization run")
		return
	}

	h.RecordUsage(c, 1, 0)
	c.JSON(http.StatusAccepted, run)
}

// ListScheduleRuns returns the tracked runs of a schedule, backend order
// preserved, plus the current selection
func (h *Handler) ListScheduleRuns(c *gin.Context) {
	ctl := h.Controller(c.Param("id"))
	runList, selected := ctl.Runs()
	c.JSON(http.StatusOK, gin.H{
		"runs":            runList,
		"selected_run_id": selected,
	})
}

// RefreshRuns reloads the run list on behalf of the user; unlike background
// poll ticks, its failure is surfaced
func (h *Handler) RefreshRuns(c *gin.Context) {
	ctl := h.Controller(c.Param("id"))
	if err := ctl.Refresh(c.Request.Context()); err != nil {
		h.failUserAction(c, err, "Could not load optimization runs")
		return
	}
	runList, selected := ctl.Runs()
	c.JSON(http.StatusOK, gin.H{
		"runs":            runList,
		"selected_run_id": selected,
	})
}

// AutoSelectRun selects the most recent completed run when nothing is
// selected yet
func (h *Handler) AutoSelectRun(c *gin.Context) {
	ctl := h.Controller(c.Param("id"))
	err := ctl.AutoSelect(c.Request.Context())
	_, selected := ctl.Runs()

	resp := gin.H{
		"selected_run_id": selected,
		"solutions":       ctl.Solutions(),
	}
	if err != nil {
		// The selection sticks even when the solution fetch fails; the run
		// list must stay usable, so report the state alongside the error.
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// SelectRun makes a run the active one and caches its solutions when it is
// completed
func (h *Handler) SelectRun(c *gin.Context) {
	scheduleID := c.Query("weekly_schedule_id")
	if scheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekly_schedule_id is required"})
		return
	}

	ctl := h.Controller(scheduleID)
	err := ctl.Select(c.Request.Context(), c.Param("id"))
	if errors.Is(err, runs.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	_, selected := ctl.Runs()
	resp := gin.H{
		"selected_run_id": selected,
		"solutions":       ctl.Solutions(),
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun fetches a single run from the solver backend
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.Solver.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failUserAction(c, err, "Could not load run")
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetSolutions fetches the proposed assignments of a completed run
func (h *Handler) GetSolutions(c *gin.Context) {
	solutions, err := h.Solver.ListSolutions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failUserAction(c, err, "Could not load solutions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"solutions": solutions})
}

// ApplyRun materializes a run's solutions as real assignments. A conflict is
// answered with 409 and the backend's explanation; the client re-invokes
// with overwrite=true only after the user confirmed
func (h *Handler) ApplyRun(c *gin.Context) {
	overwrite := c.Query("overwrite") == "true"

	result, err := h.Applier.Apply(c.Request.Context(), c.Param("id"), overwrite)
	if err != nil {
		var conflict *solver.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"detail": conflict.Detail})
			return
		}
		h.failUserAction(c, err, "Could not apply optimization results")
		return
	}

	h.RecordUsage(c, 0, 1)
	c.JSON(http.StatusOK, result)
}

// DeleteRun removes a run; deleting the selected run clears the selection
func (h *Handler) DeleteRun(c *gin.Context) {
	runID := c.Param("id")

	if scheduleID := c.Query("weekly_schedule_id"); scheduleID != "" {
		if err := h.Controller(scheduleID).Delete(c.Request.Context(), runID); err != nil {
			h.failUserAction(c, err, "Could not delete run")
			return
		}
	} else if err := h.Solver.DeleteRun(c.Request.Context(), runID); err != nil {
		h.failUserAction(c, err, "Could not delete run")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Run deleted"})
}

// failUserAction surfaces a failed user-triggered operation with the
// backend's detail text, falling back to a generic message
func (h *Handler) failUserAction(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	msg := fallback

	var apiErr *solver.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
	}

	c.JSON(status, gin.H{"error": msg})
}
