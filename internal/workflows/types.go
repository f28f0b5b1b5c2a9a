package workflows

type QuestionExtractionInput struct {
	RunID        string `json:"run_id"`
	Text         string `json:"text,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
	Model        string `json:"model,omitempty"`
}

type RunStatus struct {
	RunID       string            `json:"run_id"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	Strategy    string            `json:"strategy,omitempty"`
	Questions   int               `json:"questions"`
	OutPath     string            `json:"out_path,omitempty"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Steps       map[string]string `json:"steps"`
}
