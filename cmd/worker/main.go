package main

import (
	"context"
	"time"

	"quizflow/internal/activities"
	"quizflow/internal/config"
	"quizflow/internal/logger"
	"quizflow/internal/storage"
	"quizflow/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal("dial temporal", "error", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("connect postgres", "error", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", "error", err)
	}
	a, err := activities.New(cfg, db, log)
	if err != nil {
		log.Fatal("build activities", "error", err)
	}
	activities.Register(w, a)

	log.Info("quizflow worker listening", "temporal", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue, "llm_provider", cfg.LLMProvider, "models", cfg.Models)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker stopped", "error", err)
	}
}
