package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

// ocrPages runs tesseract over already rendered pages. Scanned documents carry no
// text layer, so this is the only way their text reaches the analyzer.
func (e *PDFExtractor) ocrPages(ctx context.Context, pages []entity.PageImage) (string, []string, error) {
	start := time.Now()
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "pc-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func(path string) {
		if rmErr := os.RemoveAll(path); rmErr != nil {
			e.logger.Warn("extract.ocr.cleanup_failed", "dir", path, "error", rmErr)
		}
	}(tmpDir)

	var texts, warns []string
	for _, p := range pages {
		img := filepath.Join(tmpDir, fmt.Sprintf("page-%d.png", p.Number))
		if err := os.WriteFile(img, p.PNG, 0o600); err != nil {
			return "", warns, fmt.Errorf("write scratch page: %w", err)
		}
		// tesseract <img> stdout -l por
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", e.cfg.OCRLang)
		if err != nil {
			warns = append(warns, fmt.Sprintf("ocr page %d: %v: %s", p.Number, err, strings.TrimSpace(string(errb))))
			continue
		}
		texts = append(texts, normalizeOCR(string(out)))
	}
	if len(texts) == 0 {
		return "", warns, fmt.Errorf("tesseract produced no text")
	}

	text := joinPages(texts)
	e.logger.Info("extract.ocr.ok",
		"pages", len(pages),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, warns, nil
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=|]{3,}[ \t]*$`)
)

// normalizeOCR collapses noisy whitespace and drops table-rule lines. Line breaks survive.
func normalizeOCR(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
