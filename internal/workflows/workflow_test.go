package workflows

import (
	"context"
	"errors"
	"testing"

	"quizflow/internal/activities"
	"quizflow/internal/pipeline"
	"quizflow/internal/question"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerAll(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "DecodeDocumentActivity", func(context.Context, activities.DecodeDocumentInput) (activities.DecodeDocumentOutput, error) {
		return activities.DecodeDocumentOutput{}, nil
	})
	registerActivityName(env, "ExtractQuestionsActivity", func(context.Context, activities.ExtractQuestionsInput) (activities.ExtractQuestionsOutput, error) {
		return activities.ExtractQuestionsOutput{}, nil
	})
	registerActivityName(env, "WriteRunArtifactsActivity", func(context.Context, activities.WriteRunArtifactsInput) (activities.WriteRunArtifactsOutput, error) {
		return activities.WriteRunArtifactsOutput{}, nil
	})
	registerActivityName(env, "UpdateRunStatusActivity", func(context.Context, activities.UpdateRunStatusInput) error { return nil })
}

func TestQuestionExtractionWorkflowFromDocument(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(QuestionExtractionWorkflow)
	registerAll(env)

	questions := []question.Question{{
		Text:          "What is 2+2?",
		Type:          question.TypeMultipleChoice,
		Options:       []string{"3", "4"},
		CorrectAnswer: "4",
	}}
	var final activities.UpdateRunStatusInput
	env.OnActivity("DecodeDocumentActivity", mock.Anything, activities.DecodeDocumentInput{DocumentPath: "/tmp/q.pdf"}).Return(activities.DecodeDocumentOutput{Text: "Question 1. What is 2+2?\nA) 3\nB) 4\nAnswer: B"}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, activities.ExtractQuestionsInput{
		RunID: "run1",
		Text:  "Question 1. What is 2+2?\nA) 3\nB) 4\nAnswer: B",
		Model: "m1",
	}).Return(activities.ExtractQuestionsOutput{Questions: questions, Stats: pipeline.Stats{Strategy: pipeline.StrategyPattern, Questions: 1}}, nil)
	env.OnActivity("WriteRunArtifactsActivity", mock.Anything, mock.Anything).Return(activities.WriteRunArtifactsOutput{Path: "/out/runs/run1/questions.json"}, nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.UpdateRunStatusInput) error {
		final = in
		return nil
	})

	env.ExecuteWorkflow(QuestionExtractionWorkflow, QuestionExtractionInput{RunID: "run1", DocumentPath: "/tmp/q.pdf", Model: "m1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)
	require.Equal(t, "completed", final.Status)
	require.Equal(t, "pattern", final.Strategy)
	require.Equal(t, questions, final.Questions)
	require.Equal(t, "/out/runs/run1/questions.json", final.OutPath)

	res, err := env.QueryWorkflow(QueryGetRunStatus)
	require.NoError(t, err)
	var st RunStatus
	require.NoError(t, res.Get(&st))
	require.Equal(t, "done", st.CurrentStep)
	require.Equal(t, 1, st.Questions)
	require.Equal(t, "done", st.Steps["decode_document"])
}

func TestQuestionExtractionWorkflowInlineTextSkipsDecode(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(QuestionExtractionWorkflow)
	registerAll(env)

	decodeCalls := 0
	env.OnActivity("DecodeDocumentActivity", mock.Anything, mock.Anything).Return(func(context.Context, activities.DecodeDocumentInput) (activities.DecodeDocumentOutput, error) {
		decodeCalls++
		return activities.DecodeDocumentOutput{}, nil
	})
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, mock.Anything).Return(activities.ExtractQuestionsOutput{Stats: pipeline.Stats{Strategy: pipeline.StrategyPlaceholder}}, nil)
	env.OnActivity("WriteRunArtifactsActivity", mock.Anything, mock.Anything).Return(activities.WriteRunArtifactsOutput{Path: "p"}, nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(QuestionExtractionWorkflow, QuestionExtractionInput{RunID: "run2", Text: "some text"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Zero(t, decodeCalls)
}

func TestQuestionExtractionWorkflowNoTextFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(QuestionExtractionWorkflow)
	registerAll(env)

	var statuses []string
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.UpdateRunStatusInput) error {
		statuses = append(statuses, in.Status)
		return nil
	})
	env.OnActivity("DecodeDocumentActivity", mock.Anything, mock.Anything).Return(activities.DecodeDocumentOutput{}, errors.New("no extractable text found in document"))

	env.ExecuteWorkflow(QuestionExtractionWorkflow, QuestionExtractionInput{RunID: "run3", DocumentPath: "/tmp/scan.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	require.Equal(t, []string{"processing", "failed"}, statuses)
}

func TestQuestionExtractionWorkflowEmptyInput(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(QuestionExtractionWorkflow)
	registerAll(env)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(QuestionExtractionWorkflow, QuestionExtractionInput{RunID: "run4", Text: "   "})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestWorkflowID(t *testing.T) {
	require.Equal(t, "quizflow-run-abc-1", WorkflowID("ABC_1"))
}
