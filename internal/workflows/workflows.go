package workflows

import (
	"strings"
	"time"

	"quizflow/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetRunStatus = "GetRunStatus"

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// WorkflowID is the Temporal workflow id used for a run.
func WorkflowID(runID string) string {
	return "quizflow-run-" + sanitizeID(runID)
}

func QuestionExtractionWorkflow(ctx workflow.Context, input QuestionExtractionInput) (string, error) {
	status := RunStatus{
		RunID:       input.RunID,
		CurrentStep: "init",
		Status:      statusProcessing,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetRunStatus, func() (RunStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	fail := func(reason string) {
		status.Status = statusFailed
		status.FailReason = reason
		status.Steps[status.CurrentStep] = statusFailed
		_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
			RunID:  input.RunID,
			Status: statusFailed,
			Error:  reason,
		}).Get(ctx, nil)
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{RunID: input.RunID, Status: statusProcessing}).Get(ctx, nil)

	text := input.Text
	if strings.TrimSpace(text) == "" && input.DocumentPath != "" {
		status.CurrentStep = "decode_document"
		status.Steps[status.CurrentStep] = statusProcessing
		var decodeOut activities.DecodeDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "DecodeDocumentActivity", activities.DecodeDocumentInput{DocumentPath: input.DocumentPath}).Get(ctx, &decodeOut); err != nil {
			if isNoTextError(err) {
				fail(err.Error())
				return status.Status, nil
			}
			fail(err.Error())
			return "", err
		}
		text = decodeOut.Text
		status.Steps[status.CurrentStep] = "done"
	}
	if strings.TrimSpace(text) == "" {
		status.CurrentStep = "validate_input"
		fail("no extractable text found in document")
		return status.Status, nil
	}

	status.CurrentStep = "extract_questions"
	status.Steps[status.CurrentStep] = statusProcessing
	var extractOut activities.ExtractQuestionsOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractQuestionsActivity", activities.ExtractQuestionsInput{
		RunID: input.RunID,
		Text:  text,
		Model: input.Model,
	}).Get(ctx, &extractOut); err != nil {
		fail(err.Error())
		return "", err
	}
	status.Strategy = string(extractOut.Stats.Strategy)
	status.Questions = len(extractOut.Questions)
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "write_artifacts"
	status.Steps[status.CurrentStep] = statusProcessing
	var writeOut activities.WriteRunArtifactsOutput
	if err := workflow.ExecuteActivity(ctx, "WriteRunArtifactsActivity", activities.WriteRunArtifactsInput{
		RunID:     input.RunID,
		Questions: extractOut.Questions,
		Stats:     extractOut.Stats,
	}).Get(ctx, &writeOut); err != nil {
		fail(err.Error())
		return "", err
	}
	status.OutPath = writeOut.Path
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "mark_completed"
	status.Steps[status.CurrentStep] = statusProcessing
	if err := workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
		RunID:     input.RunID,
		Status:    statusCompleted,
		Strategy:  status.Strategy,
		Questions: extractOut.Questions,
		OutPath:   status.OutPath,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"
	status.CurrentStep = "done"
	status.Status = statusCompleted
	return status.Status, nil
}

func isNoTextError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "no extractable text") || strings.Contains(e, "unsupported document format")
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
