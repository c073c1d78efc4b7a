package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/extract"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
)

func main() {
	outDir := flag.String("out", "", "write rendered pages as PNG into this directory (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runextract [-out dir] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	ex := extract.NewPDFExtractor(extract.Config{
		Pdftoppm:  cfg.Extract.Pdftoppm,
		DPI:       cfg.Extract.DPI,
		MaxPages:  cfg.Extract.MaxPages,
		TempDir:   cfg.Extract.TempDir,
		Tesseract: cfg.Extract.Tesseract,
		OCRLang:   cfg.Extract.OCRLang,
		Logger:    logger,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	content := ex.Extract(ctx, data)
	dur := time.Since(start)

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			logger.Error("create out dir", "error", err)
			os.Exit(1)
		}
		for _, p := range content.Pages {
			name := filepath.Join(*outDir, fmt.Sprintf("page-%d.png", p.Number))
			if err := os.WriteFile(name, p.PNG, 0o644); err != nil {
				logger.Error("write page", "path", name, "error", err)
				os.Exit(1)
			}
		}
	}

	logger.Info("extraction done",
		"file", filepath.Base(path),
		"sha256", utils.SHA256Hex(data),
		"page_count", content.PageCount,
		"rendered_pages", len(content.Pages),
		"text_bytes", len(content.Text),
		"preview", utils.Ellipsize(content.Text, constants.PreviewTextLimit),
		"warnings", content.Warnings,
		"duration_ms", dur.Milliseconds(),
	)
	if content.Degraded() {
		os.Exit(1)
	}
}
