package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/llm"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
)

type stubExtractor struct {
	content entity.ExtractedContent
	calls   int
}

func (s *stubExtractor) Extract(context.Context, []byte) entity.ExtractedContent {
	s.calls++
	return s.content
}

type stubAnalyzer struct {
	verdict entity.Verdict
	calls   int
}

func (s *stubAnalyzer) Analyze(_ context.Context, entry rules.Entry, _ string, _ []entity.PageImage) entity.Verdict {
	s.calls++
	return llm.EnforceInvariants(s.verdict, entry.RequiredFields)
}

func okVerdict() entity.Verdict {
	return entity.Verdict{
		Valid:           true,
		FieldsFound:     []string{"navio", "agente"},
		FieldsMissing:   []string{"carga"},
		Observations:    []string{"ok"},
		ConformityScore: 80,
		Recommendations: []string{},
		Kind:            constants.VerdictAI,
	}
}

func pdfUpload(size int) Upload {
	return Upload{Name: "due.pdf", Data: bytes.Repeat([]byte{'x'}, size), MIMEType: constants.MIMEPDF}
}

func TestProcess_RejectedShortCircuits(t *testing.T) {
	tests := []struct {
		name    string
		up      Upload
		message string
	}{
		{"bad format", Upload{Name: "a.png", Data: []byte("png"), MIMEType: "image/png"}, "Formato de arquivo inválido. Apenas PDF é aceito."},
		{"oversize", pdfUpload(10*1048576 + 1), "Arquivo muito grande. Máximo: 10MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &stubExtractor{}
			an := &stubAnalyzer{verdict: okVerdict()}
			p := NewProcessor(nil, ex, an, nil)

			res, err := p.Process(context.Background(), tt.up, "DUE")
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if res.Status != constants.ProcessingError {
				t.Errorf("status: got %s, want error", res.Status)
			}
			if res.Message != tt.message {
				t.Errorf("message: got %q, want %q", res.Message, tt.message)
			}
			if res.Verdict != nil {
				t.Error("rejected result must not carry a verdict")
			}
			if ex.calls != 0 || an.calls != 0 {
				t.Errorf("calls: extractor=%d analyzer=%d, want 0/0", ex.calls, an.calls)
			}
		})
	}
}

func TestProcess_Success(t *testing.T) {
	text := strings.Repeat("a", 600)
	ex := &stubExtractor{content: entity.ExtractedContent{Text: text, PageCount: 7}}
	an := &stubAnalyzer{verdict: okVerdict()}
	p := NewProcessor(nil, ex, an, nil)

	res, err := p.Process(context.Background(), pdfUpload(2048), "DUE")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Status != constants.ProcessingSuccess || res.Verdict == nil {
		t.Fatalf("got %+v", res)
	}
	if want := strings.Repeat("a", 500) + "..."; res.ExtractedTextPreview != want {
		t.Errorf("preview length: got %d", len(res.ExtractedTextPreview))
	}
	if res.PageCount != 7 {
		t.Errorf("page count: got %d, want 7", res.PageCount)
	}
	if !res.FileValidation.FormatValid || !res.FileValidation.SizeValid {
		t.Errorf("file validation: got %+v", res.FileValidation)
	}
	if an.calls != 1 || ex.calls != 1 {
		t.Errorf("calls: extractor=%d analyzer=%d", ex.calls, an.calls)
	}
}

func TestProcess_ShortTextPreviewUnchanged(t *testing.T) {
	ex := &stubExtractor{content: entity.ExtractedContent{Text: "curto"}}
	p := NewProcessor(nil, ex, &stubAnalyzer{verdict: okVerdict()}, nil)
	res, _ := p.Process(context.Background(), pdfUpload(10), "DUE")
	if res.ExtractedTextPreview != "curto" {
		t.Errorf("preview: got %q", res.ExtractedTextPreview)
	}
}

func TestProcess_UnknownType(t *testing.T) {
	an := &stubAnalyzer{}
	p := NewProcessor(nil, &stubExtractor{}, an, nil)

	res, err := p.Process(context.Background(), pdfUpload(10), "Passaporte")
	if !errors.Is(err, common.ErrUnknownDocumentType) {
		t.Fatalf("err: got %v, want ErrUnknownDocumentType", err)
	}
	if res.Status != constants.ProcessingError || res.Verdict != nil {
		t.Errorf("got %+v", res)
	}
	if an.calls != 0 {
		t.Error("analyzer must not be called")
	}
}

func TestProcess_AnalyzerUnavailable(t *testing.T) {
	ex := &stubExtractor{}
	p := NewProcessor(nil, ex, nil, nil)
	if p.Available() {
		t.Fatal("processor without analyzer should not be available")
	}

	res, err := p.Process(context.Background(), pdfUpload(10), "DUE")
	if !errors.Is(err, common.ErrAnalyzerUnavailable) {
		t.Fatalf("err: got %v", err)
	}
	if res.Status != constants.ProcessingError || ex.calls != 0 {
		t.Errorf("got %+v, extractor calls %d", res, ex.calls)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	ex := &stubExtractor{content: entity.ExtractedContent{Text: "DUE 123 navio", PageCount: 1}}
	p := NewProcessor(nil, ex, &stubAnalyzer{verdict: okVerdict()}, nil)

	first, err := p.Process(context.Background(), pdfUpload(100), "DUE")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Process(context.Background(), pdfUpload(100), "DUE")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Errorf("results differ:\n%s\n%s", a, b)
	}
}

func TestProcess_StageSequence(t *testing.T) {
	tests := []struct {
		name string
		up   Upload
		kind constants.VerdictKind
		want []constants.Stage
	}{
		{
			name: "verdict",
			up:   pdfUpload(10),
			kind: constants.VerdictAI,
			want: []constants.Stage{constants.StageIdle, constants.StageValidating, constants.StageExtracting, constants.StageAnalyzing, constants.StageVerdict, constants.StageDone},
		},
		{
			name: "degraded",
			up:   pdfUpload(10),
			kind: constants.VerdictDegraded,
			want: []constants.Stage{constants.StageIdle, constants.StageValidating, constants.StageExtracting, constants.StageAnalyzing, constants.StageDegradedVerdict, constants.StageDone},
		},
		{
			name: "failed",
			up:   pdfUpload(10),
			kind: constants.VerdictFailed,
			want: []constants.Stage{constants.StageIdle, constants.StageValidating, constants.StageExtracting, constants.StageAnalyzing, constants.StageFailedVerdict, constants.StageDone},
		},
		{
			name: "rejected",
			up:   Upload{Data: []byte("x"), MIMEType: "text/plain"},
			want: []constants.Stage{constants.StageIdle, constants.StageValidating, constants.StageRejected},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []constants.Stage
			v := okVerdict()
			v.Kind = tt.kind
			p := NewProcessor(nil, &stubExtractor{}, &stubAnalyzer{verdict: v}, nil,
				WithObserver(func(_ context.Context, s constants.Stage) { got = append(got, s) }))

			if _, err := p.Process(context.Background(), tt.up, "DUE"); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("stages: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcess_VerdictInvariants(t *testing.T) {
	v := entity.Verdict{
		FieldsFound:     []string{"navio", "porto", "navio"},
		FieldsMissing:   []string{"navio", "carga", "xyz"},
		ConformityScore: 250,
	}
	p := NewProcessor(nil, &stubExtractor{}, &stubAnalyzer{verdict: v}, nil)
	res, err := p.Process(context.Background(), pdfUpload(10), "DUE")
	if err != nil {
		t.Fatal(err)
	}
	entry, _ := rules.Default().Lookup("DUE")
	for _, f := range res.Verdict.FieldsFound {
		if slices.Contains(res.Verdict.FieldsMissing, f) || !slices.Contains(entry.RequiredFields, f) {
			t.Errorf("found field %q violates invariants", f)
		}
	}
	for _, f := range res.Verdict.FieldsMissing {
		if !slices.Contains(entry.RequiredFields, f) {
			t.Errorf("missing field %q not required", f)
		}
	}
	if res.Verdict.ConformityScore != 100 {
		t.Errorf("score: got %d", res.Verdict.ConformityScore)
	}
}
