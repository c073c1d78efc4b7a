package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
)

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements llm.VisionModel using chat/completions with one user message whose
// content mixes the text prompt and base64 PNG data URLs.
// Every failure wraps common.ErrAnalyzerUnreachable.
func (c *Client) Complete(ctx context.Context, req llm.VisionRequest) (string, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	parts := make([]contentPart, 0, 1+len(req.Images))
	parts = append(parts, contentPart{Type: "text", Text: req.Prompt})
	for _, img := range req.Images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)},
		})
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: parts}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := common.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.openai.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: openai: %w", common.ErrAnalyzerUnreachable, err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.openai.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return "", fmt.Errorf("%w: decode openai response: %w", common.ErrAnalyzerUnreachable, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.openai.no_choices", "req_id", rid, "raw", string(raw))
		return "", fmt.Errorf("%w: no choices in openai response", common.ErrAnalyzerUnreachable)
	}

	content := cc.Choices[0].Message.Content
	c.logger.Debug("llm.openai.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
