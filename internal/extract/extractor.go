// Package extract derives the evidence the compliance analyzer works from: the
// document's plain text, its true page count and a few rendered page images.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

// ContentExtractor turns an uploaded file into analysis evidence. It never fails:
// extraction problems are reported as warnings on the result.
type ContentExtractor interface {
	Extract(ctx context.Context, data []byte) entity.ExtractedContent
}

type PDFExtractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewPDFExtractor builds an extractor. A nil runner executes real binaries.
func NewPDFExtractor(cfg Config, runner Runner) *PDFExtractor {
	cfg.defaults()
	if runner == nil {
		runner = execRunner{logger: cfg.Logger}
	}
	return &PDFExtractor{cfg: cfg, runner: runner, logger: cfg.Logger}
}

// Extract reads text, counts pages and renders page images, falling back to OCR
// for scanned documents when enabled. Each step is best-effort.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) entity.ExtractedContent {
	start := time.Now()
	var out entity.ExtractedContent

	text, textPages, err := readText(data)
	if err != nil {
		e.logger.Warn("extract.text.failed", "error", err)
		out.Warnings = append(out.Warnings, "text extraction failed: "+err.Error())
		text = ""
	}
	out.Text = text

	pages, err := e.render(ctx, data)
	if err != nil {
		e.logger.Warn("extract.render.failed", "error", err)
		out.Warnings = append(out.Warnings, "page rendering failed: "+err.Error())
		pages = nil
	}
	out.Pages = pages

	if e.cfg.Tesseract != "" && strings.TrimSpace(out.Text) == "" && len(pages) > 0 {
		ocrText, warns, err := e.ocrPages(ctx, pages)
		out.Warnings = append(out.Warnings, warns...)
		if err != nil {
			e.logger.Warn("extract.ocr.failed", "error", err)
			out.Warnings = append(out.Warnings, "ocr failed: "+err.Error())
		} else {
			out.Text = ocrText
		}
	}

	n, err := countPages(data)
	switch {
	case err == nil:
		out.PageCount = n
	case textPages > 0:
		e.logger.Debug("extract.pagecount.fallback", "source", "text", "error", err)
		out.PageCount = textPages
	default:
		e.logger.Debug("extract.pagecount.fallback", "source", "render", "error", err)
		out.PageCount = len(pages)
	}

	e.logger.Info("extract.ok",
		"text_len", len(out.Text),
		"page_count", out.PageCount,
		"images", len(out.Pages),
		"warnings", len(out.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}
