// Package pipeline sequences file validation, content extraction and compliance analysis
// for one uploaded document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/extract"
	"github.com/joseph-ayodele/port-compliance/internal/filecheck"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
)

const (
	msgUnknownType         = "Tipo de documento desconhecido: %s"
	msgAnalyzerUnavailable = "Análise por IA indisponível: configure a chave da API"
)

// Upload is one file as received from the caller.
type Upload struct {
	Name     string
	Data     []byte
	MIMEType string
}

// StageObserver is told about every state transition of a processing call.
type StageObserver func(ctx context.Context, stage constants.Stage)

// Processor coordinates validate -> extract -> analyze. It holds no per-call state and is
// safe for concurrent use.
type Processor struct {
	catalog   *rules.Catalog
	extractor extract.ContentExtractor
	analyzer  llm.Analyzer
	observer  StageObserver
	logger    *slog.Logger
}

type Option func(*Processor)

func WithObserver(fn StageObserver) Option {
	return func(p *Processor) { p.observer = fn }
}

// NewProcessor wires the stages. Pass a nil analyzer when no AI credential is configured;
// Process then refuses with common.ErrAnalyzerUnavailable.
func NewProcessor(catalog *rules.Catalog, extractor extract.ContentExtractor, analyzer llm.Analyzer, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = rules.Default()
	}
	p := &Processor{catalog: catalog, extractor: extractor, analyzer: analyzer, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Available reports whether an analyzer is configured.
func (p *Processor) Available() bool {
	return p.analyzer != nil
}

// Catalog exposes the rule catalog the processor validates against.
func (p *Processor) Catalog() *rules.Catalog {
	return p.catalog
}

// Process runs one document through the pipeline. The error is non-nil only for caller
// misuse (unknown type) or a missing analyzer; the returned result then has status=error.
// Rejected files come back as status=error results with a nil error.
func (p *Processor) Process(ctx context.Context, up Upload, documentType string) (entity.ProcessingResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()
	p.stage(ctx, rid, constants.StageIdle)

	entry, err := p.catalog.Lookup(documentType)
	if err != nil {
		p.logger.Warn("pipeline.unknown_type", "req_id", rid, "document_type", documentType)
		return entity.ProcessingResult{
			Status:       constants.ProcessingError,
			Message:      fmt.Sprintf(msgUnknownType, documentType),
			DocumentType: documentType,
		}, err
	}

	if !p.Available() {
		p.logger.Warn("pipeline.analyzer_unavailable", "req_id", rid)
		return entity.ProcessingResult{
			Status:       constants.ProcessingError,
			Message:      msgAnalyzerUnavailable,
			DocumentType: documentType,
		}, common.ErrAnalyzerUnavailable
	}

	p.stage(ctx, rid, constants.StageValidating)
	fv := filecheck.Validate(int64(len(up.Data)), up.MIMEType, entry)
	if !fv.Accepted() {
		p.stage(ctx, rid, constants.StageRejected)
		reason := filecheck.RejectionReason(fv, entry)
		p.logger.Info("pipeline.rejected",
			"req_id", rid,
			"file", up.Name,
			"reason", reason,
			"size_mb", fv.SizeMB,
			"mime", fv.DeclaredMIMEType,
		)
		return entity.ProcessingResult{
			Status:         constants.ProcessingError,
			Message:        reason,
			DocumentType:   documentType,
			FileValidation: fv,
		}, nil
	}

	p.stage(ctx, rid, constants.StageExtracting)
	content := p.extractor.Extract(ctx, up.Data)

	p.stage(ctx, rid, constants.StageAnalyzing)
	verdict := p.analyzer.Analyze(ctx, entry, content.Text, content.Pages)

	switch verdict.Kind {
	case constants.VerdictDegraded:
		p.stage(ctx, rid, constants.StageDegradedVerdict)
	case constants.VerdictFailed:
		p.stage(ctx, rid, constants.StageFailedVerdict)
	default:
		p.stage(ctx, rid, constants.StageVerdict)
	}

	res := entity.ProcessingResult{
		Status:               constants.ProcessingSuccess,
		DocumentType:         documentType,
		FileValidation:       fv,
		Verdict:              &verdict,
		ExtractedTextPreview: utils.Ellipsize(content.Text, constants.PreviewTextLimit),
		PageCount:            content.PageCount,
	}
	p.stage(ctx, rid, constants.StageDone)

	p.logger.Info("pipeline.done",
		"req_id", rid,
		"file", up.Name,
		"document_type", documentType,
		"verdict_kind", verdict.Kind,
		"valid", verdict.Valid,
		"score", verdict.ConformityScore,
		"degraded_extraction", content.Degraded(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) stage(ctx context.Context, rid string, s constants.Stage) {
	p.logger.Debug("pipeline.stage", "req_id", rid, "stage", s)
	if p.observer != nil {
		p.observer(ctx, s)
	}
}
