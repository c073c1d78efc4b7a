package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/port-compliance/constants"
)

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 200
	MaxPages int    // pages rendered and kept as images, default 3
	TempDir  string // parent for per-call scratch dirs; empty -> os.TempDir()

	// Tesseract enables OCR of rendered pages when the text layer is empty.
	// Empty disables it.
	Tesseract string
	OCRLang   string // tesseract -l value, default "por"

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.DPI <= 0 {
		c.DPI = constants.RenderDPI
	}
	if c.MaxPages <= 0 {
		c.MaxPages = constants.MaxAnalyzedPages
	}
	if c.OCRLang == "" {
		c.OCRLang = "por"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
