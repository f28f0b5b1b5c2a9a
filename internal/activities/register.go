package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.DecodeDocumentActivity)
	w.RegisterActivity(a.ExtractQuestionsActivity)
	w.RegisterActivity(a.WriteRunArtifactsActivity)
	w.RegisterActivity(a.UpdateRunStatusActivity)
}
