package api

import (
	"context"
	"fmt"

	"quizflow/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// TemporalStarter starts QuestionExtractionWorkflow runs on a task queue.
type TemporalStarter struct {
	client    tclient.Client
	taskQueue string
}

func NewTemporalStarter(c tclient.Client, taskQueue string) *TemporalStarter {
	return &TemporalStarter{client: c, taskQueue: taskQueue}
}

func (t *TemporalStarter) StartExtraction(ctx context.Context, in workflows.QuestionExtractionInput) (string, error) {
	we, err := t.client.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                                       workflows.WorkflowID(in.RunID),
		TaskQueue:                                t.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.QuestionExtractionWorkflow, in)
	if err != nil {
		return "", fmt.Errorf("start extraction workflow: %w", err)
	}
	return we.GetID(), nil
}
