// Package workflows holds the Temporal workflows of the inventory context.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

// RepairWorkflowIDPrefix prefixes the id of every bulk repair run.
const RepairWorkflowIDPrefix = "nursery-repair-"

// RepairInput selects the nurseries to repair. Empty means all of them.
type RepairInput struct {
	NurseryIDs []string `json:"nurseryIds,omitempty"`
}

// RepairResult reports how many nurseries were recomputed and which ones
// still failed after every retry.
type RepairResult struct {
	Repaired int      `json:"repaired"`
	Failed   []string `json:"failed,omitempty"`
}

// Recomputer is the slice of the aggregation engine the activities need.
type Recomputer interface {
	NurseryIDs(ctx context.Context) ([]string, error)
	RecomputeAll(ctx context.Context, nurseryID string) (models.NurseryStatistics, error)
}

var repairActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 2 * time.Minute,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:        time.Second,
		BackoffCoefficient:     2,
		MaximumInterval:        time.Minute,
		MaximumAttempts:        5,
		NonRetryableErrorTypes: []string{invalidArgumentErrorType},
	},
}

const invalidArgumentErrorType = "InvalidArgument"

// RecomputeAllNurseriesWorkflow recomputes the statistics of every selected
// nursery, one activity per nursery, fanned out in parallel. A nursery whose
// activity exhausts its retries is reported in the result instead of failing
// the run.
func RecomputeAllNurseriesWorkflow(ctx workflow.Context, in RepairInput) (RepairResult, error) {
	ctx = workflow.WithActivityOptions(ctx, repairActivityOptions)
	log := workflow.GetLogger(ctx)

	var a *RepairActivities
	ids := in.NurseryIDs
	if len(ids) == 0 {
		if err := workflow.ExecuteActivity(ctx, a.ListNurseryIDs).Get(ctx, &ids); err != nil {
			return RepairResult{}, fmt.Errorf("list nurseries: %w", err)
		}
	}

	futures := make([]workflow.Future, len(ids))
	for i, id := range ids {
		futures[i] = workflow.ExecuteActivity(ctx, a.RecomputeNursery, id)
	}

	var res RepairResult
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			log.Warn("nursery repair failed", "nursery_id", ids[i], "error", err)
			res.Failed = append(res.Failed, ids[i])
			continue
		}
		res.Repaired++
	}
	log.Info("nursery repair finished", "repaired", res.Repaired, "failed", len(res.Failed))
	return res, nil
}

// RepairActivities runs the engine on behalf of the repair workflow.
type RepairActivities struct {
	Engine Recomputer
}

// ListNurseryIDs returns the id of every nursery.
func (a *RepairActivities) ListNurseryIDs(ctx context.Context) ([]string, error) {
	return a.Engine.NurseryIDs(ctx)
}

// RecomputeNursery recomputes one nursery and all its beds. A nursery deleted
// since the run started counts as repaired.
func (a *RepairActivities) RecomputeNursery(ctx context.Context, nurseryID string) error {
	stats, err := a.Engine.RecomputeAll(ctx, nurseryID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		activity.GetLogger(ctx).Info("nursery gone, skipping repair", "nursery_id", nurseryID)
		return nil
	case errors.Is(err, domain.ErrInvalidArgument):
		return temporal.NewNonRetryableApplicationError(err.Error(), invalidArgumentErrorType, err)
	case err != nil:
		return err
	}
	activity.GetLogger(ctx).Debug("nursery repaired", "nursery_id", nurseryID, "total_beds", stats.TotalBeds)
	return nil
}
