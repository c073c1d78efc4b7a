// Package app assembles the compliance services from configuration. Commands share it so
// the daemon and the CLIs run the same wiring.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/port-compliance/internal/assistant"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/export"
	"github.com/joseph-ayodele/port-compliance/internal/extract"
	"github.com/joseph-ayodele/port-compliance/internal/gateway"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
	"github.com/joseph-ayodele/port-compliance/internal/llm/openai"
	"github.com/joseph-ayodele/port-compliance/internal/llm/vertex"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
	"github.com/joseph-ayodele/port-compliance/internal/repository"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
	"github.com/joseph-ayodele/port-compliance/internal/session"
)

// App holds the process-wide services.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Catalog   *rules.Catalog
	Extractor *extract.PDFExtractor
	Analyzer  *llm.ComplianceAnalyzer // nil when no AI credential is configured
	Processor *pipeline.Processor
	Analyses  repository.AnalysisRepository
	Exporter  *export.Service
	Gateway   gateway.Gateway
	Sessions  *session.Manager

	closers []func() error
}

// Option adjusts wiring, mostly for tests and tools.
type Option func(*options)

type options struct {
	model      llm.VisionModel
	runner     extract.Runner
	pipelineOp []pipeline.Option
}

// WithVisionModel replaces the configured AI provider.
func WithVisionModel(m llm.VisionModel) Option {
	return func(o *options) { o.model = m }
}

// WithRunner replaces the process runner used for page rendering.
func WithRunner(r extract.Runner) Option {
	return func(o *options) { o.runner = r }
}

func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(o *options) { o.pipelineOp = append(o.pipelineOp, opts...) }
}

// New validates cfg and builds every service. Close releases what New opened.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	a := &App{Config: cfg, Logger: logger}

	catalog, err := rules.FromConfig(cfg.System.RulesFile)
	if err != nil {
		return nil, err
	}
	a.Catalog = catalog

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { repository.Close(db, logger); return nil })
	a.Analyses = repository.NewAnalysisRepository(db, logger)
	a.Exporter = export.NewService(a.Analyses, logger)

	a.Extractor = extract.NewPDFExtractor(extract.Config{
		Pdftoppm:  cfg.Extract.Pdftoppm,
		DPI:       cfg.Extract.DPI,
		MaxPages:  cfg.Extract.MaxPages,
		TempDir:   cfg.Extract.TempDir,
		Tesseract: cfg.Extract.Tesseract,
		OCRLang:   cfg.Extract.OCRLang,
		Logger:    logger,
	}, o.runner)

	model := o.model
	if model == nil && cfg.AnalyzerConfigured() {
		model, err = a.visionModel(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	if model != nil {
		a.Analyzer = llm.NewComplianceAnalyzer(model, llm.AnalyzerConfig{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxImages:   cfg.Extract.MaxPages,
		}, logger)
	} else {
		logger.Warn("app.analyzer.unavailable", "provider", cfg.LLM.Provider)
	}

	var analyzer llm.Analyzer
	if a.Analyzer != nil {
		analyzer = a.Analyzer
	}
	a.Processor = pipeline.NewProcessor(catalog, a.Extractor, analyzer, logger, o.pipelineOp...)

	if cfg.Gateway.Simulate {
		a.Gateway = gateway.NewSimulated()
	} else {
		a.Gateway = gateway.NewHTTP(gateway.HTTPConfig{
			APIKey:       cfg.Gateway.APIKey,
			CapitaniaURL: cfg.Gateway.CapitaniaURL,
			TerminalURL:  cfg.Gateway.TerminalURL,
			AgenciaURL:   cfg.Gateway.AgenciaURL,
			Timeout:      cfg.Gateway.Timeout,
		}, logger)
	}

	modelName := ""
	if a.Analyzer != nil {
		modelName = a.Analyzer.ModelName()
	}
	a.Sessions = session.NewManager(session.Deps{
		Processor: a.Processor,
		Gateway:   a.Gateway,
		Assistant: assistant.NewClient(assistant.Config{
			WebhookURL: cfg.Assistant.WebhookURL,
			Timeout:    cfg.Assistant.Timeout,
		}, logger),
		Analyses:         a.Analyses,
		ModelName:        modelName,
		MaxNotifications: cfg.System.MaxNotifications,
		Logger:           logger,
	})

	logger.Info("app.ready",
		"document_types", len(catalog.Types()),
		"analyzer", modelName,
		"gateway_simulated", cfg.Gateway.Simulate,
	)
	return a, nil
}

func (a *App) visionModel(ctx context.Context) (llm.VisionModel, error) {
	cfg := a.Config.LLM
	switch cfg.Provider {
	case "vertex":
		c, err := vertex.NewClient(ctx, vertex.Config{
			Project: cfg.VertexProject,
			Region:  cfg.VertexRegion,
			Model:   cfg.VertexModel,
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, a.Logger), nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
