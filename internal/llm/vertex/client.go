// Package vertex backs llm.VisionModel with Gemini on Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
)

type Config struct {
	Project string
	Region  string // default us-central1
	Model   string // default gemini-1.5-pro
}

// generator is the single Gemini call the client makes. Tests stub it.
type generator interface {
	GenerateContent(ctx context.Context, model string, cfg genai.GenerationConfig, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g genaiGenerator) GenerateContent(ctx context.Context, model string, cfg genai.GenerationConfig, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m := g.client.GenerativeModel(model)
	m.GenerationConfig = cfg
	return m.GenerateContent(ctx, parts...)
}

type Client struct {
	cfg    Config
	client *genai.Client
	gen    generator
	logger *slog.Logger
}

// NewClient dials Vertex AI using application default credentials.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}
	c, err := genai.NewClient(ctx, cfg.Project, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{cfg: cfg, client: c, gen: genaiGenerator{client: c}, logger: logger}, nil
}

func (c *Client) Name() string { return c.cfg.Model }

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Complete implements llm.VisionModel. Failures wrap common.ErrAnalyzerUnreachable.
func (c *Client) Complete(ctx context.Context, req llm.VisionRequest) (string, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	gc := genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](req.Temperature),
		MaxOutputTokens: genai.Ptr[int32](int32(req.MaxTokens)),
	}

	parts := make([]genai.Part, 0, 1+len(req.Images))
	parts = append(parts, genai.Text(req.Prompt))
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData("png", img))
	}

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, gc, parts...)
	if err != nil {
		c.logger.Error("llm.vertex.generate_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: vertex: %w", common.ErrAnalyzerUnreachable, err)
	}

	text, n := responseText(resp)
	if n == 0 {
		c.logger.Error("llm.vertex.no_text", "req_id", rid)
		return "", fmt.Errorf("%w: no text in gemini response", common.ErrAnalyzerUnreachable)
	}
	if n > 1 {
		c.logger.Debug("llm.vertex.parts_concatenated", "req_id", rid, "parts", n)
	}
	c.logger.Debug("llm.vertex.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"content_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, int) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", 0
	}
	var b strings.Builder
	n := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
			n++
		}
	}
	return b.String(), n
}
