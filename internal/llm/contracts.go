package llm

import (
	"context"

	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
)

// VisionRequest is one multimodal completion: a text prompt followed by PNG images.
type VisionRequest struct {
	Prompt      string
	Images      [][]byte // PNG-encoded
	MaxTokens   int
	Temperature float32
}

// VisionModel is a provider capable of answering a text+image prompt with free text.
type VisionModel interface {
	Complete(ctx context.Context, req VisionRequest) (string, error)
	Name() string
}

// Analyzer judges one document against its rule entry. It always returns a verdict.
type Analyzer interface {
	Analyze(ctx context.Context, entry rules.Entry, text string, pages []entity.PageImage) entity.Verdict
}

// verdictReply is the JSON shape we ask the model to produce.
type verdictReply struct {
	Valid           bool     `json:"valido"`
	FieldsFound     []string `json:"campos_encontrados"`
	FieldsMissing   []string `json:"campos_faltantes"`
	Observations    []string `json:"observacoes"`
	ConformityScore float64  `json:"score_conformidade"`
	Recommendations []string `json:"recomendacoes"`
}

// ReplyKeys lists the verdict keys in the order the prompt enumerates them.
var ReplyKeys = []string{
	"valido",
	"campos_encontrados",
	"campos_faltantes",
	"observacoes",
	"score_conformidade",
	"recomendacoes",
}
