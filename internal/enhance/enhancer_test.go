package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"quizflow/internal/providers"
	"quizflow/internal/question"
)

type fakeCompleter struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	prompts  []string
	reply    func(req providers.CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req providers.CompletionRequest) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	return f.reply(req)
}

func flaggedMC(text string) question.Record {
	return question.Record{
		Question: question.Question{
			Text:          text,
			Type:          question.TypeMultipleChoice,
			Options:       question.GenericOptions(),
			CorrectAnswer: "Option A",
		},
		NeedsAIEnhancement: true,
	}
}

func TestEnhanceBatchesAndMergesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	fc := &fakeCompleter{reply: func(req providers.CompletionRequest) (string, error) {
		if strings.Contains(req.Prompt, "Question 3") {
			return "", errors.New("boom")
		}
		return `{"options":["Red","Green","Blue","Yellow"],"correctAnswer":"blue"}`, nil
	}}
	records := make([]question.Record, 0, 8)
	for i := 1; i <= 7; i++ {
		records = append(records, flaggedMC(fmt.Sprintf("Question %d: which color?", i)))
	}
	clean := question.Record{Question: question.Question{Text: "Untouched?", Type: question.TypeMultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: "a"}}
	records = append(records, clean)

	out := New(fc, nil, 5).Enhance(context.Background(), records, "m1")
	require.Len(t, out, 8)
	require.LessOrEqual(t, fc.maxSeen.Load(), int32(5))
	for i, r := range out[:7] {
		require.Equal(t, records[i].Text, r.Text)
		if i == 2 {
			require.True(t, r.NeedsAIEnhancement)
			require.Equal(t, question.GenericOptions(), r.Options)
			continue
		}
		require.False(t, r.NeedsAIEnhancement)
		require.Equal(t, []string{"Red", "Green", "Blue", "Yellow"}, r.Options)
		require.Equal(t, "Blue", r.CorrectAnswer)
	}
	require.Equal(t, clean.Question, out[7].Question)
	require.Len(t, fc.prompts, 7)
}

func TestEnhanceSkipsEmbeddedAnswers(t *testing.T) {
	fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) {
		return `{"options":["1","2"],"correctAnswer":"1"}`, nil
	}}
	rec := flaggedMC("What is the boiling point of water?")
	rec.Options = []string{"50C", "100C", "150C", "200C"}
	rec.CorrectAnswer = "100C"
	rec.HasEmbeddedAnswer = true

	out := New(fc, nil, 0).Enhance(context.Background(), []question.Record{rec}, "")
	require.Equal(t, "100C", out[0].CorrectAnswer)
	require.Empty(t, fc.prompts)

	out = New(fc, nil, 0).Validate(context.Background(), out, "")
	require.Equal(t, "100C", out[0].CorrectAnswer)
	require.Empty(t, fc.prompts)
}

func TestEnhanceLeavesEmbeddedTwinUntouched(t *testing.T) {
	fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) {
		return `{"options":["red","green","blue","black"],"correctAnswer":"black"}`, nil
	}}
	embedded := question.Record{
		Question: question.Question{
			Text:          "Which colour is it?",
			Type:          question.TypeMultipleChoice,
			Options:       []string{"red", "green"},
			CorrectAnswer: "green",
		},
		HasEmbeddedAnswer:    true,
		EmbeddedAnswerLetter: "B",
	}
	flagged := flaggedMC("Which colour is it?")

	out := New(fc, nil, 5).Enhance(context.Background(), []question.Record{embedded, flagged}, "")
	require.Len(t, out, 2)
	require.Equal(t, embedded, out[0])
	require.Equal(t, []string{"red", "green", "blue", "black"}, out[1].Options)
	require.Equal(t, "black", out[1].CorrectAnswer)
	require.Len(t, fc.prompts, 1)
}

func TestEnhanceRejectsGenericReplies(t *testing.T) {
	fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) { return `{}`, nil }}
	rec := flaggedMC("Which gas do plants absorb?")
	out := New(fc, nil, 5).Enhance(context.Background(), []question.Record{rec}, "")
	require.True(t, out[0].NeedsAIEnhancement)
}

func TestValidateAppliesCorrection(t *testing.T) {
	fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) {
		return `{"isCorrect": false, "correctedText": "What is the capital of Australia? Because.", "correctedOptions": ["Sydney","Canberra","Perth"], "correctedAnswer": "Canberra"}`, nil
	}}
	rec := question.Record{Question: question.Question{
		Text: "What is the capital of Australia?", Type: question.TypeMultipleChoice,
		Options: []string{"Sydney", "Melbourne"}, CorrectAnswer: "Sydney",
	}}
	nonFactual := question.Record{Question: question.Question{
		Text: "Describe your favourite colour?", Type: question.TypeMultipleChoice,
		Options: []string{"Red", "Blue"}, CorrectAnswer: "Red",
	}}
	out := New(fc, nil, 5).Validate(context.Background(), []question.Record{rec, nonFactual}, "")
	require.Equal(t, "What is the capital of Australia?", out[0].Text)
	require.Equal(t, []string{"Sydney", "Canberra", "Perth"}, out[0].Options)
	require.Equal(t, "Canberra", out[0].CorrectAnswer)
	require.Equal(t, nonFactual.Question, out[1].Question)
	require.Len(t, fc.prompts, 1)
}

func TestValidateKeepsOriginalOnFailure(t *testing.T) {
	rec := question.Record{Question: question.Question{
		Text: "How many legs does a spider have?", Type: question.TypeMultipleChoice,
		Options: []string{"6", "8"}, CorrectAnswer: "8",
	}}
	for _, reply := range []string{`{"isCorrect": true}`, `not json`, `{"isCorrect": false}`} {
		reply := reply
		fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) { return reply, nil }}
		out := New(fc, nil, 5).Validate(context.Background(), []question.Record{rec}, "")
		require.Equal(t, rec.Question, out[0].Question, reply)
	}
	fc := &fakeCompleter{reply: func(providers.CompletionRequest) (string, error) {
		return "", providers.ErrAllModelsFailed
	}}
	out := New(fc, nil, 5).Validate(context.Background(), []question.Record{rec}, "")
	require.Equal(t, rec.Question, out[0].Question)
}

func TestIsFactual(t *testing.T) {
	require.True(t, IsFactual("What is the capital of France?"))
	require.True(t, IsFactual("Who discovered penicillin?"))
	require.True(t, IsFactual("How many planets are in the solar system?"))
	require.False(t, IsFactual("Explain why you like reading."))
}

func TestDegrade(t *testing.T) {
	in := []question.Record{
		flaggedMC("Pick one?"),
		{Question: question.Question{Text: "Is it?", Type: question.TypeTrueFalse, CorrectAnswer: "perhaps"}, NeedsAIEnhancement: true},
		{Question: question.Question{Text: "List them.", Type: question.TypeEnumeration}, NeedsAIEnhancement: true},
		{Question: question.Question{Text: "Choose?", Type: question.TypeMultipleChoice, Options: []string{"x"}, CorrectAnswer: "z"}, NeedsAIEnhancement: true},
	}
	out := Degrade(in)
	for _, r := range out {
		require.False(t, r.NeedsAIEnhancement)
	}
	require.Equal(t, "Option A", out[0].CorrectAnswer)
	require.Equal(t, []string{"True", "False"}, out[1].Options)
	require.Equal(t, "true", out[1].CorrectAnswer)
	require.Equal(t, question.AnswerRequired, out[2].CorrectAnswer)
	require.Equal(t, question.GenericOptions(), out[3].Options)
	require.Equal(t, "Option A", out[3].CorrectAnswer)
}
