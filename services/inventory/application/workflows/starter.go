package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Register adds the repair workflow and its activities to w.
func Register(w worker.Registry, engine Recomputer) {
	w.RegisterWorkflow(RecomputeAllNurseriesWorkflow)
	w.RegisterActivity(&RepairActivities{Engine: engine})
}

// Starter launches bulk repair runs on a task queue.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter returns a Starter that schedules runs on taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// RepairRun identifies a started repair workflow execution.
type RepairRun struct {
	WorkflowID string `json:"workflowId" example:"nursery-repair-3f0c9a52-1f4e-4a5e-a2f1-6c7f3b1d2e90"`
	RunID      string `json:"runId"`
}

// StartRepair starts RecomputeAllNurseriesWorkflow for the given nurseries
// (all of them when ids is empty) without waiting for it to finish.
func (s *Starter) StartRepair(ctx context.Context, ids []string) (RepairRun, error) {
	opts := client.StartWorkflowOptions{
		ID:        RepairWorkflowIDPrefix + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, RecomputeAllNurseriesWorkflow, RepairInput{NurseryIDs: ids})
	if err != nil {
		return RepairRun{}, fmt.Errorf("start repair workflow: %w", err)
	}
	return RepairRun{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}
