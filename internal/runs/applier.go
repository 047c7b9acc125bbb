package runs

import (
	"context"
	"errors"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/solver"
)

// ErrRunNotFound is returned when an operation names a run the controller
// does not track.
var ErrRunNotFound = errors.New("run not found")

// ErrApplyDeclined is returned when the user refuses to overwrite existing
// assignments. The schedule is left unmodified and the run stays selected.
var ErrApplyDeclined = errors.New("apply declined by user")

// ApplyClient is the slice of the solver backend the applier needs.
type ApplyClient interface {
	Apply(ctx context.Context, runID string, overwrite bool) (*models.ApplyResult, error)
}

// Applier materializes a completed run's proposed solutions into real,
// persisted assignments.
type Applier struct {
	client ApplyClient
	log    *logger.Logger
}

// NewApplier builds an applier over the given solver client.
func NewApplier(client ApplyClient, log *logger.Logger) *Applier {
	return &Applier{client: client, log: log}
}

// Apply asks the backend to materialize the run's solutions. overwrite must
// only be true after the user explicitly confirmed a conflict. Conflicts
// come back as *solver.ConflictError; network failures are surfaced as-is
// and never retried here.
func (a *Applier) Apply(ctx context.Context, runID string, overwrite bool) (*models.ApplyResult, error) {
	result, err := a.client.Apply(ctx, runID, overwrite)
	if err != nil {
		return nil, err
	}
	a.log.Info("run applied",
		"run_id", runID,
		"created", result.CreatedCount,
		"updated", result.UpdatedCount,
		"overwrite", overwrite)
	return result, nil
}

// ApplyWithConfirm runs the full conflict protocol for callers that can
// prompt in process: one apply without overwrite, and on conflict exactly
// one retry with overwrite=true after confirm approves the backend's
// explanation. There is never a second retry, and never a retry without
// confirmation.
//
// The HTTP surface does not call this; over HTTP the confirmation arrives as
// a second request carrying overwrite=true, which Apply handles directly.
func (a *Applier) ApplyWithConfirm(ctx context.Context, runID string, confirm func(detail string) bool) (*models.ApplyResult, error) {
	result, err := a.Apply(ctx, runID, false)

	var conflict *solver.ConflictError
	if errors.As(err, &conflict) {
		if confirm == nil || !confirm(conflict.Detail) {
			return nil, ErrApplyDeclined
		}
		return a.Apply(ctx, runID, true)
	}
	return result, err
}
