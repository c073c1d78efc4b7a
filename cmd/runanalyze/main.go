package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/app"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

// runanalyze processes the same document repeatedly to check how stable the model's
// verdicts are.
func main() {
	times := flag.Int("times", 3, "number of runs")
	pause := flag.Duration("pause", 750*time.Millisecond, "pause between runs")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if flag.NArg() != 2 {
		logger.Error("usage: runanalyze [-times N] <document_type> <file.pdf>")
		os.Exit(2)
	}
	docType, path := flag.Arg(0), flag.Arg(1)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if !cfg.AnalyzerConfigured() {
		logger.Error("an AI credential is required (OPENAI_API_KEY or VERTEX_PROJECT)")
		os.Exit(2)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("init", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	up := pipeline.Upload{
		Name:     filepath.Base(path),
		Data:     data,
		MIMEType: constants.MIMEFromExt(filepath.Ext(path)),
	}
	scores := make([]int, 0, *times)
	for i := 1; i <= *times; i++ {
		runCtx, cancelRun := context.WithTimeout(ctx, 2*time.Minute)
		start := time.Now()
		logger.Info("pipeline.run.start", "iter", i, "file", up.Name)

		res, err := a.Processor.Process(runCtx, up, docType)
		cancelRun()

		switch {
		case err != nil:
			logger.Error("pipeline.run.error", "iter", i, "err", err)
		case res.Verdict == nil:
			logger.Warn("pipeline.run.rejected", "iter", i, "message", res.Message)
		default:
			scores = append(scores, res.Verdict.ConformityScore)
			logger.Info("pipeline.run.ok",
				"iter", i,
				"kind", res.Verdict.Kind,
				"valid", res.Verdict.Valid,
				"score", res.Verdict.ConformityScore,
				"missing", res.Verdict.FieldsMissing,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		if i < *times {
			time.Sleep(*pause)
		}
	}

	logger.Info("done", "file", up.Name, "times", *times, "scores", scores)
}
