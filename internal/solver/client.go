package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

// Client talks to the external solver backend. It never retries on its own;
// retry decisions belong to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient builds a solver client for the given base URL.
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Submit asks the backend to start an optimization run for a schedule.
// configID may be empty; the backend then falls back to its default config.
func (c *Client) Submit(ctx context.Context, scheduleID, configID string) (*models.OptimizationRun, error) {
	q := url.Values{}
	q.Set("weekly_schedule_id", scheduleID)
	if configID != "" {
		q.Set("config_id", configID)
	}

	var run models.OptimizationRun
	if err := c.do(ctx, http.MethodPost, "/scheduling/optimize?"+q.Encode(), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the runs for a schedule in backend order, most recent
// first. status filters by run status when non-empty.
func (c *Client) ListRuns(ctx context.Context, scheduleID string, status models.RunStatus) ([]models.OptimizationRun, error) {
	q := url.Values{}
	q.Set("weekly_schedule_id", scheduleID)
	if status != "" {
		q.Set("status", string(status))
	}

	var runs []models.OptimizationRun
	if err := c.do(ctx, http.MethodGet, "/scheduling-runs/?"+q.Encode(), &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun fetches a single run by id.
func (c *Client) GetRun(ctx context.Context, runID string) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	if err := c.do(ctx, http.MethodGet, "/scheduling-runs/"+url.PathEscape(runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListSolutions fetches the proposed assignments of a completed run.
func (c *Client) ListSolutions(ctx context.Context, runID string) ([]models.Solution, error) {
	var solutions []models.Solution
	if err := c.do(ctx, http.MethodGet, "/scheduling-runs/"+url.PathEscape(runID)+"/solutions", &solutions); err != nil {
		return nil, err
	}
	return solutions, nil
}

// Apply materializes a run's solutions as real assignments. A 409 from the
// backend is returned as *ConflictError so callers can run the
// confirm-then-retry protocol.
func (c *Client) Apply(ctx context.Context, runID string, overwrite bool) (*models.ApplyResult, error) {
	path := "/scheduling-runs/" + url.PathEscape(runID) + "/apply?overwrite=" + strconv.FormatBool(overwrite)

	var result models.ApplyResult
	if err := c.do(ctx, http.MethodPost, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteRun removes a run on the backend.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodDelete, "/scheduling-runs/"+url.PathEscape(runID), nil)
}

// do issues one request and decodes the JSON response into out (unless nil).
// Non-2xx responses are normalized into *ConflictError or *APIError here so
// nothing above this boundary sees a raw payload.
func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solver backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read solver response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		return &ConflictError{Detail: normalizeDetail(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("solver request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Detail: normalizeDetail(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode solver response: %w", err)
	}
	return nil
}
