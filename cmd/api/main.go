package main

import (
	"context"
	"net/http"
	"time"

	"quizflow/internal/api"
	"quizflow/internal/config"
	"quizflow/internal/logger"
	"quizflow/internal/pipeline"
	"quizflow/internal/providers"
	"quizflow/internal/storage"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var (
		runs    api.RunStore
		starter api.WorkflowStarter
		auditor providers.Auditor
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Warn("postgres unavailable, async runs disabled", "error", err)
	} else {
		defer db.Close()
		runs = storage.NewRunRepo(db)
		if cfg.AuditEnabled {
			auditor = storage.NewLLMAuditRepo(db)
		}
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Warn("temporal unavailable, async runs disabled", "error", err)
	} else {
		defer tc.Close()
		starter = api.NewTemporalStarter(tc, cfg.TemporalTaskQueue)
	}

	gw, err := providers.NewGatewayFromConfig(cfg, log, auditor)
	if err != nil {
		log.Fatal("build completion gateway", "error", err)
	}
	p := pipeline.New(gw,
		pipeline.WithLogger(log),
		pipeline.WithEnhanceBatchSize(cfg.EnhanceBatchSize),
		pipeline.WithChunking(cfg.AIChunkSize, cfg.AIChunkOverlap),
	)
	h := api.NewServer(cfg, log, p, runs, starter)
	log.Info("quizflow api listening", "addr", cfg.APIAddr, "llm_provider", cfg.LLMProvider, "models", gw.Models())
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal("api server stopped", "error", err)
	}
}
