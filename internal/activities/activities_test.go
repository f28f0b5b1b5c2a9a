package activities

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quizflow/internal/config"
	"quizflow/internal/pipeline"
	"quizflow/internal/providers"
	"quizflow/internal/question"
	"quizflow/internal/storage"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

type fakeRunStore struct {
	updates []storage.RunStatusUpdate
}

func (f *fakeRunStore) UpdateRunStatus(_ context.Context, u storage.RunStatusUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

func mockGateway(string) (providers.Completer, error) {
	return providers.NewGateway(providers.NewMockProvider(), []string{"m1"}), nil
}

func TestExtractQuestionsActivityRunsPipeline(t *testing.T) {
	a := NewWithDeps(config.Config{EnhanceBatchSize: 5}, nil, nil, mockGateway)
	out, err := a.ExtractQuestionsActivity(context.Background(), ExtractQuestionsInput{
		RunID: "r1",
		Text:  "Question 1. What is 2+2? A) 3 B) 4 C) 5 D) 6 Answer: B) 4",
	})
	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	require.Equal(t, "4", out.Questions[0].CorrectAnswer)
	require.Equal(t, pipeline.StrategyPattern, out.Stats.Strategy)
}

func TestExtractQuestionsActivityGatewayError(t *testing.T) {
	a := NewWithDeps(config.Config{}, nil, nil, func(string) (providers.Completer, error) {
		return nil, errors.New("boom")
	})
	_, err := a.ExtractQuestionsActivity(context.Background(), ExtractQuestionsInput{RunID: "r1", Text: "x"})
	require.ErrorContains(t, err, "build completion gateway")
}

func TestWriteRunArtifactsActivity(t *testing.T) {
	root := t.TempDir()
	a := NewWithDeps(config.Config{DataOutRoot: root}, nil, nil, mockGateway)
	qs := []question.Question{{Text: "Sky is blue.", Type: question.TypeTrueFalse, Options: question.TrueFalseOptions(), CorrectAnswer: "true"}}
	out, err := a.WriteRunArtifactsActivity(context.Background(), WriteRunArtifactsInput{RunID: "../r2", Questions: qs})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "runs", "r2", "questions.json"), out.Path)

	b, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	var got []question.Question
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, qs, got)
	require.FileExists(t, filepath.Join(root, "runs", "r2", "stats.json"))
}

func TestUpdateRunStatusActivity(t *testing.T) {
	store := &fakeRunStore{}
	a := NewWithDeps(config.Config{}, nil, store, mockGateway)
	require.NoError(t, a.UpdateRunStatusActivity(context.Background(), UpdateRunStatusInput{RunID: "r3", Status: "failed", Error: "no text"}))
	require.Equal(t, []storage.RunStatusUpdate{{RunID: "r3", Status: "failed", Error: "no text"}}, store.updates)

	noStore := NewWithDeps(config.Config{}, nil, nil, mockGateway)
	require.NoError(t, noStore.UpdateRunStatusActivity(context.Background(), UpdateRunStatusInput{RunID: "r3", Status: "completed"}))
}

func TestDecodeDocumentActivity(t *testing.T) {
	dir := t.TempDir()
	a := NewWithDeps(config.Config{}, nil, nil, mockGateway)

	good := filepath.Join(dir, "quiz.txt")
	require.NoError(t, os.WriteFile(good, []byte("The Earth orbits the Sun. True or False?"), 0o644))
	out, err := a.DecodeDocumentActivity(context.Background(), DecodeDocumentInput{DocumentPath: good})
	require.NoError(t, err)
	require.Equal(t, "The Earth orbits the Sun. True or False?", out.Text)
	require.NotEmpty(t, out.DocumentID)

	blank := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte("\n\n"), 0o644))
	_, err = a.DecodeDocumentActivity(context.Background(), DecodeDocumentInput{DocumentPath: blank})
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.True(t, appErr.NonRetryable())
	require.Contains(t, err.Error(), "no extractable text")
}

func TestNewRejectsBadProvider(t *testing.T) {
	_, err := New(config.Config{LLMProvider: "nope", Models: "m1"}, nil, nil)
	require.Error(t, err)

	a, err := New(config.Config{LLMProvider: "mock", Models: "m1|m2", EnhanceBatchSize: 5}, nil, nil)
	require.NoError(t, err)
	out, err := a.ExtractQuestionsActivity(context.Background(), ExtractQuestionsInput{RunID: "r4", Text: "asdkjhasd 123 !!"})
	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
}
