package llm

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

var dueFields = []string{"numero_due", "navio", "agente", "carga"}

func TestParseVerdict_EmbeddedInProse(t *testing.T) {
	raw := "Here is the result: {\"valido\": true, \"campos_encontrados\": [\"navio\"], \"campos_faltantes\": [], \"observacoes\": [], \"score_conformidade\": 90, \"recomendacoes\": []} Thanks!"

	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	v = EnforceInvariants(v, dueFields)

	want := entity.Verdict{
		Valid:           true,
		FieldsFound:     []string{"navio"},
		FieldsMissing:   []string{},
		Observations:    []string{},
		ConformityScore: 90,
		Recommendations: []string{},
		Kind:            constants.VerdictAI,
	}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParseVerdict_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"valido\": false, \"campos_encontrados\": [], \"campos_faltantes\": [\"carga\"], \"observacoes\": [\"ilegível\"], \"score_conformidade\": 40.6, \"recomendacoes\": [\"reenviar\"]}\n```"
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if v.Valid || v.ConformityScore != 41 || !slices.Equal(v.FieldsMissing, []string{"carga"}) {
		t.Errorf("unexpected verdict %+v", v)
	}
}

func TestParseVerdict_Normalized(t *testing.T) {
	raw := `{"valido": "sim", "campos_encontrados": "navio", "campos_faltantes": null, "observacoes": [1, "ok"], "score_conformidade": "85%"}`
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if !v.Valid || v.ConformityScore != 85 {
		t.Errorf("valid/score: got %v/%d", v.Valid, v.ConformityScore)
	}
	if !slices.Equal(v.FieldsFound, []string{"navio"}) {
		t.Errorf("found: got %v", v.FieldsFound)
	}
	if !slices.Equal(v.Observations, []string{"1", "ok"}) {
		t.Errorf("observations: got %v", v.Observations)
	}
	if len(v.Recommendations) != 0 {
		t.Errorf("recommendations: got %v", v.Recommendations)
	}
}

func TestParseVerdict_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no braces", "Documento aprovado, tudo certo."},
		{"reversed braces", "} nada {"},
		{"broken json", `{"valido": true, "campos_encontrados": [}`},
		{"missing valido", `{"campos_encontrados": [], "campos_faltantes": [], "observacoes": [], "score_conformidade": 10, "recomendacoes": []}`},
		{"unparseable score", `{"valido": true, "campos_encontrados": [], "campos_faltantes": [], "observacoes": [], "score_conformidade": "alto", "recomendacoes": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVerdict(tt.raw)
			if !errors.Is(err, common.ErrMalformedReply) {
				t.Errorf("got %v, want ErrMalformedReply", err)
			}
		})
	}
}

func TestKeywordApproval(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"Documento aprovado, tudo certo.", true},
		{"APROVADO", true},
		{"The document is Approved.", true},
		{"Documento pendente de revisão", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := KeywordApproval(tt.raw); got != tt.want {
			t.Errorf("KeywordApproval(%q): got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestMalformedReplyVerdict(t *testing.T) {
	v := MalformedReplyVerdict("Documento aprovado, tudo certo.", dueFields)
	if !v.Valid {
		t.Error("keyword match should approve")
	}
	if v.ConformityScore != 50 {
		t.Errorf("score: got %d, want 50", v.ConformityScore)
	}
	if !slices.Equal(v.FieldsMissing, dueFields) || len(v.FieldsFound) != 0 {
		t.Errorf("found/missing: got %v/%v", v.FieldsFound, v.FieldsMissing)
	}
	if v.Observations[0] != "Documento aprovado, tudo certo...." {
		t.Errorf("observation: got %q", v.Observations[0])
	}
	if v.Recommendations[0] != "Revisar documento conforme regras do porto" {
		t.Errorf("recommendation: got %q", v.Recommendations[0])
	}
	if v.Kind != constants.VerdictDegraded {
		t.Errorf("kind: got %s", v.Kind)
	}

	long := strings.Repeat("é", 300)
	v = MalformedReplyVerdict(long, dueFields)
	if got := []rune(v.Observations[0]); len(got) != 203 {
		t.Errorf("excerpt runes: got %d, want 203", len(got))
	}
}

func TestUnreachableVerdict(t *testing.T) {
	err := fmt.Errorf("%w: dial tcp: timeout", common.ErrAnalyzerUnreachable)
	v := UnreachableVerdict(err, dueFields)
	if v.Valid || v.ConformityScore != 0 {
		t.Errorf("valid/score: got %v/%d", v.Valid, v.ConformityScore)
	}
	if !slices.Equal(v.FieldsMissing, dueFields) {
		t.Errorf("missing: got %v", v.FieldsMissing)
	}
	if !strings.HasPrefix(v.Observations[0], "Erro na análise: ") {
		t.Errorf("observation: got %q", v.Observations[0])
	}
	if v.Recommendations[0] != "Verificar documento e tentar novamente" {
		t.Errorf("recommendation: got %q", v.Recommendations[0])
	}
	if v.Kind != constants.VerdictFailed {
		t.Errorf("kind: got %s", v.Kind)
	}
}

func TestEnforceInvariants(t *testing.T) {
	tests := []struct {
		name        string
		in          entity.Verdict
		wantFound   []string
		wantMissing []string
		wantScore   int
	}{
		{
			name:        "drops unknown fields",
			in:          entity.Verdict{FieldsFound: []string{"navio", "porto"}, FieldsMissing: []string{"xpto", "carga"}, ConformityScore: 70},
			wantFound:   []string{"navio"},
			wantMissing: []string{"carga"},
			wantScore:   70,
		},
		{
			name:        "found wins over missing",
			in:          entity.Verdict{FieldsFound: []string{"navio", "agente"}, FieldsMissing: []string{"agente", "carga"}},
			wantFound:   []string{"navio", "agente"},
			wantMissing: []string{"carga"},
		},
		{
			name:        "dedupes and trims",
			in:          entity.Verdict{FieldsFound: []string{" navio", "navio"}, FieldsMissing: []string{"carga", "carga "}},
			wantFound:   []string{"navio"},
			wantMissing: []string{"carga"},
		},
		{
			name:      "clamps high score",
			in:        entity.Verdict{ConformityScore: 140},
			wantScore: 100,
		},
		{
			name:      "clamps negative score",
			in:        entity.Verdict{ConformityScore: -5},
			wantScore: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnforceInvariants(tt.in, dueFields)
			if !slices.Equal(got.FieldsFound, orEmpty(tt.wantFound)) {
				t.Errorf("found: got %v, want %v", got.FieldsFound, tt.wantFound)
			}
			if !slices.Equal(got.FieldsMissing, orEmpty(tt.wantMissing)) {
				t.Errorf("missing: got %v, want %v", got.FieldsMissing, tt.wantMissing)
			}
			if got.ConformityScore != tt.wantScore {
				t.Errorf("score: got %d, want %d", got.ConformityScore, tt.wantScore)
			}
			for _, f := range got.FieldsFound {
				if slices.Contains(got.FieldsMissing, f) {
					t.Errorf("%q is both found and missing", f)
				}
			}
		})
	}
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := ExtractJSONObject(`a {"x": {"y": 1}} b } c`)
	if !ok || got != `{"x": {"y": 1}} b }` {
		t.Errorf("got (%q, %v)", got, ok)
	}
	if _, ok := ExtractJSONObject("no json"); ok {
		t.Error("expected no object")
	}
}
