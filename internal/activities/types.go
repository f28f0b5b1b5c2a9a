package activities

import (
	"quizflow/internal/pipeline"
	"quizflow/internal/question"
)

type DecodeDocumentInput struct {
	DocumentPath string `json:"document_path"`
}

type DecodeDocumentOutput struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

type ExtractQuestionsInput struct {
	RunID string `json:"run_id"`
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type ExtractQuestionsOutput struct {
	Questions []question.Question `json:"questions"`
	Stats     pipeline.Stats      `json:"stats"`
}

type WriteRunArtifactsInput struct {
	RunID     string              `json:"run_id"`
	Questions []question.Question `json:"questions"`
	Stats     pipeline.Stats      `json:"stats"`
}

type WriteRunArtifactsOutput struct {
	Path string `json:"path"`
}

type UpdateRunStatusInput struct {
	RunID     string              `json:"run_id"`
	Status    string              `json:"status"`
	Strategy  string              `json:"strategy,omitempty"`
	Questions []question.Question `json:"questions,omitempty"`
	OutPath   string              `json:"out_path,omitempty"`
	Error     string              `json:"error,omitempty"`
}
