package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/gateway"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

type stubModel struct{}

func (stubModel) Name() string { return "stub-vision" }

func (stubModel) Complete(context.Context, llm.VisionRequest) (string, error) {
	return `{"valido": true, "campos_encontrados": ["navio"], "campos_faltantes": [], "observacoes": [], "score_conformidade": 90, "recomendacoes": []}`, nil
}

type noopRunner struct{}

func (noopRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return nil, nil, errors.New("pdftoppm not available")
}

func testConfig() *common.Config {
	return &common.Config{
		Server:   common.ServerConfig{HTTPAddr: ":0"},
		Database: common.DatabaseConfig{DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared", MaxOpenConns: 2, DialTimeout: time.Second},
		Extract:  common.ExtractConfig{DPI: 200, MaxPages: 3},
		LLM:      common.LLMConfig{Provider: "openai", Temperature: 0.1, Timeout: time.Second},
		Gateway:  common.GatewayConfig{Simulate: true},
		System:   common.SystemConfig{MaxFileSizeMB: 25, MaxNotifications: 10},
	}
}

func TestNew_WithoutCredential(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Analyzer != nil || a.Processor.Available() {
		t.Error("analyzer should be unavailable without a credential")
	}
	if _, ok := a.Gateway.(*gateway.Simulated); !ok {
		t.Errorf("gateway: got %T, want *gateway.Simulated", a.Gateway)
	}
	_, err = a.Sessions.Get("s").ProcessDocument(context.Background(), "", pipeline.Upload{Name: "a.pdf", MIMEType: constants.MIMEPDF}, "DUE")
	if !errors.Is(err, common.ErrAnalyzerUnavailable) {
		t.Errorf("got %v, want ErrAnalyzerUnavailable", err)
	}
}

func TestNew_EndToEnd(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil, WithVisionModel(stubModel{}), WithRunner(noopRunner{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	c := a.Sessions.Get("s")
	up := pipeline.Upload{Name: "due.pdf", Data: []byte("%PDF-1.4 not really"), MIMEType: constants.MIMEPDF}
	res, err := c.ProcessDocument(context.Background(), "", up, "DUE")
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.Verdict == nil || res.Verdict.ConformityScore != 90 || res.Verdict.Kind != constants.VerdictAI {
		t.Fatalf("verdict: got %+v", res.Verdict)
	}

	recs, err := c.Analyses(context.Background(), 0)
	if err != nil || len(recs) != 1 || recs[0].Model != "stub-vision" {
		t.Fatalf("analyses: got %v, %v", recs, err)
	}
	data, err := a.Exporter.ExportAnalysesXLSX(context.Background(), "s")
	if err != nil || len(data) == 0 {
		t.Errorf("export: got %d bytes, %v", len(data), err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "other"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Error("expected config error")
	}
}
