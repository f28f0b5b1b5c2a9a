package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"quizflow/internal/config"
	"quizflow/internal/document"
	"quizflow/internal/logger"
	"quizflow/internal/pipeline"
	"quizflow/internal/providers"
	"quizflow/internal/util"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type extractFlags struct {
	model  string
	block  bool
	stats  bool
	indent bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract canonical questions from a document",
		Long:  "Reads a PDF or text document (stdin when no file is given) and prints the extracted questions as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, f)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&f.model, "model", "", "preferred model, tried before the configured list")
	cmd.Flags().BoolVar(&f.block, "block", false, "treat the input as a single question block")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "wrap output as {questions, stats}")
	cmd.Flags().BoolVar(&f.indent, "indent", true, "indent JSON output")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string, f extractFlags) error {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, err := readInput(cmd.InOrStdin(), args)
	if errors.Is(err, util.ErrNoExtractableText) {
		log.Warn("input has no extractable text", "name", doc.Name)
	} else if err != nil {
		return err
	}

	gw, err := providers.NewGatewayFromConfig(cfg, log, nil)
	if err != nil {
		return err
	}
	p := pipeline.New(gw,
		pipeline.WithLogger(log),
		pipeline.WithEnhanceBatchSize(cfg.EnhanceBatchSize),
		pipeline.WithChunking(cfg.AIChunkSize, cfg.AIChunkOverlap),
	)

	var out any
	switch {
	case f.block:
		out = p.ProcessBlock(cmd.Context(), doc.Text, f.model)
	case f.stats:
		qs, stats := p.ProcessTextWithStats(cmd.Context(), doc.Text, f.model)
		out = map[string]any{"questions": qs, "stats": stats}
	default:
		qs, stats := p.ProcessTextWithStats(cmd.Context(), doc.Text, f.model)
		log.Info("extraction finished", "document_id", doc.SHA256, "strategy", stats.Strategy, "questions", stats.Questions)
		out = qs
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if f.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func readInput(stdin io.Reader, args []string) (document.Document, error) {
	if len(args) == 1 && args[0] != "-" {
		return document.DecodeFile(args[0])
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return document.Document{Name: "stdin"}, fmt.Errorf("read stdin: %w", err)
	}
	return document.Decode("stdin", data)
}
