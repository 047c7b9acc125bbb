package schedrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

const dateLayout = "2006-01-02"

// Client reads schedules, shifts, assignments, and employees from the
// scheduling data backend. All payload-shape quirks are absorbed in this
// package; callers only ever see the canonical models.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a scheduling-data client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetWeeklySchedule fetches one schedule with its shifts, assignments, and
// inlined templates.
func (c *Client) GetWeeklySchedule(ctx context.Context, scheduleID string) (*models.WeeklySchedule, error) {
	var raw struct {
		ID        string     `json:"id"`
		WeekStart string     `json:"week_start"`
		Shifts    []rawShift `json:"shifts"`
	}
	if err := c.get(ctx, "/weekly-schedules/"+url.PathEscape(scheduleID), &raw); err != nil {
		return nil, err
	}

	sched := &models.WeeklySchedule{ID: raw.ID}
	if ws, err := time.Parse(dateLayout, raw.WeekStart); err == nil {
		sched.WeekStart = ws
	}
	sched.Shifts = make([]models.PlannedShift, 0, len(raw.Shifts))
	for _, s := range raw.Shifts {
		sched.Shifts = append(sched.Shifts, normalizeShift(s))
	}
	return sched, nil
}

// ListShifts fetches planned shifts in the inclusive [from, to] date range.
func (c *Client) ListShifts(ctx context.Context, from, to time.Time) ([]models.PlannedShift, error) {
	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))

	var raws []rawShift
	if err := c.get(ctx, "/planned-shifts/?"+q.Encode(), &raws); err != nil {
		return nil, err
	}

	shifts := make([]models.PlannedShift, 0, len(raws))
	for _, s := range raws {
		shifts = append(shifts, normalizeShift(s))
	}
	return shifts, nil
}

// ListEmployees fetches employee records. activeOnly restricts to active staff.
func (c *Client) ListEmployees(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	path := "/employees/"
	if activeOnly {
		path += "?is_active=true"
	}

	var employees []models.Employee
	if err := c.get(ctx, path, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func normalizeShift(s rawShift) models.PlannedShift {
	shift := models.PlannedShift{
		ID:          s.ID,
		TemplateID:  s.TemplateID,
		Template:    s.Template.normalize(),
		Assignments: s.Assignments,
	}
	if s.Assignments == nil {
		shift.Assignments = []models.ShiftAssignment{}
	}
	// Shift dates arrive either date-only or as full timestamps.
	if d, err := time.Parse(dateLayout, s.Date); err == nil {
		shift.Date = d
	} else if d, err := time.Parse(time.RFC3339, s.Date); err == nil {
		shift.Date = d
	}
	return shift
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scheduling backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read scheduling response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("scheduling backend error (%d)", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode scheduling response: %w", err)
	}
	return nil
}
