package vertex

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"cloud.google.com/go/vertexai/genai"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
)

type stubGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	model string
	cfg   genai.GenerationConfig
	parts []genai.Part
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, cfg genai.GenerationConfig, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	s.model, s.cfg, s.parts = model, cfg, parts
	return s.resp, s.err
}

func newStubClient(gen generator) *Client {
	return &Client{cfg: Config{Model: "gemini-1.5-pro"}, gen: gen, logger: slog.Default()}
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}}}
}

func TestComplete_SendsPromptAndImages(t *testing.T) {
	gen := &stubGenerator{resp: textResponse(genai.Text(`{"valido": true}`))}
	c := newStubClient(gen)

	got, err := c.Complete(context.Background(), llm.VisionRequest{
		Prompt:      "analise",
		Images:      [][]byte{{1}, {2}},
		MaxTokens:   1000,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"valido": true}` {
		t.Errorf("reply: got %q", got)
	}
	if gen.model != "gemini-1.5-pro" {
		t.Errorf("model: got %q", gen.model)
	}
	if gen.cfg.MaxOutputTokens == nil || *gen.cfg.MaxOutputTokens != 1000 {
		t.Errorf("max tokens: got %v", gen.cfg.MaxOutputTokens)
	}
	if gen.cfg.Temperature == nil || *gen.cfg.Temperature != 0.1 {
		t.Errorf("temperature: got %v", gen.cfg.Temperature)
	}
	if len(gen.parts) != 3 {
		t.Fatalf("parts: got %d, want 3", len(gen.parts))
	}
	if txt, ok := gen.parts[0].(genai.Text); !ok || txt != "analise" {
		t.Errorf("first part: got %#v", gen.parts[0])
	}
	if blob, ok := gen.parts[1].(genai.Blob); !ok || blob.MIMEType != "image/png" {
		t.Errorf("image part: got %#v", gen.parts[1])
	}
}

func TestComplete_Failures(t *testing.T) {
	boom := errors.New("permission denied")
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"transport error", &stubGenerator{err: boom}},
		{"no candidates", &stubGenerator{resp: &genai.GenerateContentResponse{}}},
		{"empty candidate", &stubGenerator{resp: textResponse()}},
		{"image only", &stubGenerator{resp: textResponse(genai.ImageData("png", []byte{1}))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newStubClient(tt.gen).Complete(context.Background(), llm.VisionRequest{Prompt: "x"})
			if !errors.Is(err, common.ErrAnalyzerUnreachable) {
				t.Fatalf("got %v, want ErrAnalyzerUnreachable", err)
			}
			if tt.gen.err != nil && !errors.Is(err, tt.gen.err) {
				t.Errorf("cause lost: %v", err)
			}
			if got != "" {
				t.Errorf("reply: got %q, want empty", got)
			}
		})
	}
}

func TestClose_WithoutClient(t *testing.T) {
	if err := newStubClient(&stubGenerator{}).Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name  string
		resp  *genai.GenerateContentResponse
		want  string
		parts int
	}{
		{"nil", nil, "", 0},
		{"no candidates", &genai.GenerateContentResponse{}, "", 0},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, "", 0},
		{
			"joins text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{
					genai.Text(`{"valido": `),
					genai.ImageData("png", []byte{1}),
					genai.Text(`true}`),
				}},
			}}},
			`{"valido": true}`,
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := responseText(tt.resp)
			if got != tt.want || n != tt.parts {
				t.Errorf("got (%q, %d), want (%q, %d)", got, n, tt.want, tt.parts)
			}
		})
	}
}
