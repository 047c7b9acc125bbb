package runs

import (
	"context"
	"sync"
	"time"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

// SolverClient is the slice of the solver backend the controller needs.
type SolverClient interface {
	Submit(ctx context.Context, scheduleID, configID string) (*models.OptimizationRun, error)
	ListRuns(ctx context.Context, scheduleID string, status models.RunStatus) ([]models.OptimizationRun, error)
	ListSolutions(ctx context.Context, runID string) ([]models.Solution, error)
	Apply(ctx context.Context, runID string, overwrite bool) (*models.ApplyResult, error)
	DeleteRun(ctx context.Context, runID string) error
}

const defaultPollInterval = 3 * time.Second

// Controller tracks the optimization runs of one schedule view: it submits
// runs, keeps the run list fresh while any run is still being solved, and
// owns the selected run and its cached solutions.
//
// It is the single writer of that state. Create exactly one controller per
// schedule view; never point two pollers at the same schedule.
type Controller struct {
	client   SolverClient
	log      *logger.Logger
	schedule string
	interval time.Duration

	mu        sync.Mutex
	runs      []models.OptimizationRun
	selected  string
	solutions []models.Solution

	// listSeq orders list refreshes; a response whose sequence is no longer
	// current is discarded so a slow fetch can never clobber a newer one.
	listSeq uint64
	// solSeq does the same for solution fetches across re-selections.
	solSeq uint64

	inFlight bool
	polling  bool
	closed   bool
	done     chan struct{}
}

// NewController builds a controller for one weekly schedule. interval <= 0
// falls back to the default 3s poll cadence.
func NewController(client SolverClient, log *logger.Logger, scheduleID string, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Controller{
		client:   client,
		log:      log,
		schedule: scheduleID,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Submit starts a new optimization run and begins polling until it reaches a
// terminal state. configID may be empty.
func (c *Controller) Submit(ctx context.Context, configID string) (*models.OptimizationRun, error) {
	run, err := c.client.Submit(ctx, c.schedule, configID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Backend lists most-recent-first; mirror that until the next refresh.
	c.runs = append([]models.OptimizationRun{*run}, c.runs...)
	c.mu.Unlock()

	c.ensurePolling()
	return run, nil
}

// Refresh reloads the run list on behalf of a user action. Unlike background
// ticks, its failure is returned to the caller.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.refreshOnce(ctx); err != nil {
		return err
	}
	c.ensurePolling()
	return nil
}

// Runs returns a snapshot of the tracked runs in backend order, plus the id
// of the selected run ("" when none).
func (c *Controller) Runs() ([]models.OptimizationRun, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.OptimizationRun, len(c.runs))
	copy(out, c.runs)
	return out, c.selected
}

// Solutions returns the cached solutions of the selected run.
func (c *Controller) Solutions() []models.Solution {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Solution, len(c.solutions))
	copy(out, c.solutions)
	return out
}

// Select makes a run the active one. For a COMPLETED run its solutions are
// fetched and cached; for any other status previously cached solutions are
// cleared so stale results are never shown against a new state.
//
// A failed solution fetch still selects the run (the run list must stay
// usable); the error is returned for the caller to surface.
func (c *Controller) Select(ctx context.Context, runID string) error {
	c.mu.Lock()
	run, ok := c.findLocked(runID)
	if !ok {
		c.mu.Unlock()
		return ErrRunNotFound
	}
	c.selected = runID
	c.solutions = nil
	// Every selection invalidates in-flight solution fetches, even when this
	// run has none to fetch; an earlier fetch must not land on this state.
	c.solSeq++
	if run.Status != models.RunCompleted {
		c.mu.Unlock()
		return nil
	}
	seq := c.solSeq
	c.mu.Unlock()

	solutions, err := c.client.ListSolutions(ctx, runID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.solSeq {
		// A newer selection happened while we were fetching.
		return nil
	}
	if err != nil {
		return err
	}
	c.solutions = solutions
	return nil
}

// AutoSelect picks the most recent COMPLETED run (first match in backend
// order) when nothing is selected yet. A convenience default for view load,
// not a correctness requirement; it is a no-op when a selection exists.
func (c *Controller) AutoSelect(ctx context.Context) error {
	c.mu.Lock()
	if c.selected != "" {
		c.mu.Unlock()
		return nil
	}
	var target string
	for _, run := range c.runs {
		if run.Status == models.RunCompleted {
			target = run.ID
			break
		}
	}
	c.mu.Unlock()

	if target == "" {
		return nil
	}
	return c.Select(ctx, target)
}

// Delete removes a run on the backend and from the tracked list. Deleting
// the selected run clears the selection and its cached solutions.
func (c *Controller) Delete(ctx context.Context, runID string) error {
	if err := c.client.DeleteRun(ctx, runID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, run := range c.runs {
		if run.ID == runID {
			c.runs = append(c.runs[:i], c.runs[i+1:]...)
			break
		}
	}
	if c.selected == runID {
		c.selected = ""
		c.solutions = nil
		c.solSeq++
	}
	return nil
}

// Close stops scheduling new poll ticks and marks the controller torn down.
// In-flight requests are not aborted; their results are simply ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *Controller) refreshOnce(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.listSeq++
	seq := c.listSeq
	c.inFlight = true
	c.mu.Unlock()

	runs, err := c.client.ListRuns(ctx, c.schedule, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed || seq != c.listSeq {
		// A newer refresh was issued while this one was on the wire.
		return nil
	}
	if err != nil {
		return err
	}
	c.runs = runs
	return nil
}

// ensurePolling starts the poll loop when at least one tracked run is still
// PENDING or RUNNING and no loop is active yet.
func (c *Controller) ensurePolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.polling || c.closed || !c.hasActiveLocked() {
		return
	}
	c.polling = true
	go c.pollLoop()
}

func (c *Controller) pollLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			if !c.hasActiveLocked() {
				c.polling = false
				c.mu.Unlock()
				return
			}
			if c.inFlight {
				// A slow fetch is still out; skip this tick rather than
				// stacking requests.
				c.mu.Unlock()
				continue
			}
			c.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), c.interval*4)
			err := c.refreshOnce(ctx)
			cancel()
			if err != nil {
				// Background failures are logged and swallowed; the next
				// tick proceeds unaffected.
				c.log.Warn("run poll tick failed",
					"weekly_schedule_id", c.schedule, "error", err)
			}
		}
	}
}

func (c *Controller) hasActiveLocked() bool {
	for _, run := range c.runs {
		if run.Status.Active() {
			return true
		}
	}
	return false
}

func (c *Controller) findLocked(runID string) (models.OptimizationRun, bool) {
	for _, run := range c.runs {
		if run.ID == runID {
			return run, true
		}
	}
	return models.OptimizationRun{}, false
}
