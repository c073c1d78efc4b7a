package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
)

// AnalyzerConfig bounds a single analysis call.
type AnalyzerConfig struct {
	MaxTokens   int           // default 1000
	Temperature float32       // default 0.1
	Timeout     time.Duration // default 30s
	MaxImages   int           // default 3
}

// ComplianceAnalyzer asks a VisionModel for a verdict and never fails: unusable replies and
// failed calls become fallback verdicts.
type ComplianceAnalyzer struct {
	model  VisionModel
	cfg    AnalyzerConfig
	logger *slog.Logger
}

func NewComplianceAnalyzer(model VisionModel, cfg AnalyzerConfig, logger *slog.Logger) *ComplianceAnalyzer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = constants.MaxAnalyzedPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceAnalyzer{model: model, cfg: cfg, logger: logger}
}

// ModelName identifies the backing model, for history records.
func (a *ComplianceAnalyzer) ModelName() string {
	return a.model.Name()
}

// Analyze makes exactly one model call. The returned verdict always satisfies EnforceInvariants.
func (a *ComplianceAnalyzer) Analyze(ctx context.Context, entry rules.Entry, text string, pages []entity.PageImage) entity.Verdict {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	if len(pages) > a.cfg.MaxImages {
		pages = pages[:a.cfg.MaxImages]
	}
	images := make([][]byte, 0, len(pages))
	for _, p := range pages {
		if len(p.PNG) > 0 {
			images = append(images, p.PNG)
		}
	}

	req := VisionRequest{
		Prompt:      BuildCompliancePrompt(entry, text),
		Images:      images,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	a.logger.Info("llm.analyze.start",
		"req_id", rid,
		"model", a.model.Name(),
		"document_type", entry.DocumentType,
		"text_len", len(text),
		"images", len(images),
	)

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	raw, err := a.model.Complete(callCtx, req)
	if err != nil {
		if !errors.Is(err, common.ErrAnalyzerUnreachable) {
			err = fmt.Errorf("%w: %w", common.ErrAnalyzerUnreachable, err)
		}
		a.logger.Error("llm.analyze.call_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return EnforceInvariants(UnreachableVerdict(err, entry.RequiredFields), entry.RequiredFields)
	}

	v, err := ParseVerdict(raw)
	if err != nil {
		a.logger.Warn("llm.analyze.malformed_reply",
			"req_id", rid, "error", err, "raw_len", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return EnforceInvariants(MalformedReplyVerdict(raw, entry.RequiredFields), entry.RequiredFields)
	}

	v = EnforceInvariants(v, entry.RequiredFields)
	a.logger.Info("llm.analyze.ok",
		"req_id", rid,
		"valid", v.Valid,
		"score", v.ConformityScore,
		"found", len(v.FieldsFound),
		"missing", len(v.FieldsMissing),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return v
}
