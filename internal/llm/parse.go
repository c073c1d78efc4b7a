package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
)

const (
	malformedScore    = 50
	unreachableScore  = 0
	rawExcerptLimit   = 200
	malformedAdvice   = "Revisar documento conforme regras do porto"
	unreachableAdvice = "Verificar documento e tentar novamente"
)

// ExtractJSONObject returns the substring spanning the first '{' to the last '}' of raw.
// Models often wrap JSON in prose or markdown fences.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// ParseVerdict finds the embedded verdict object in a model reply and validates it against
// BuildVerdictJSONSchema, normalizing near-misses once before giving up.
// Failures wrap common.ErrMalformedReply.
func ParseVerdict(raw string) (entity.Verdict, error) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return entity.Verdict{}, fmt.Errorf("%w: no json object in reply", common.ErrMalformedReply)
	}

	doc := []byte(obj)
	schema := BuildVerdictJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, doc); err != nil {
		cleaned, _, nErr := NormalizeVerdictJSON(doc)
		if nErr != nil {
			return entity.Verdict{}, fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return entity.Verdict{}, fmt.Errorf("%w: %v", common.ErrMalformedReply, vErr)
		}
		doc = cleaned
	}

	var r verdictReply
	if err := json.Unmarshal(doc, &r); err != nil {
		return entity.Verdict{}, fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
	}
	return entity.Verdict{
		Valid:           r.Valid,
		FieldsFound:     r.FieldsFound,
		FieldsMissing:   r.FieldsMissing,
		Observations:    r.Observations,
		ConformityScore: int(math.Round(r.ConformityScore)),
		Recommendations: r.Recommendations,
		Kind:            constants.VerdictAI,
	}, nil
}

// KeywordApproval is the legacy approval heuristic applied to replies without usable JSON:
// the reply counts as approving when it mentions "aprovado" or "approved" anywhere.
func KeywordApproval(raw string) bool {
	l := strings.ToLower(raw)
	return strings.Contains(l, "aprovado") || strings.Contains(l, "approved")
}

// MalformedReplyVerdict is the neutral verdict for a reply that carried no usable JSON.
func MalformedReplyVerdict(raw string, required []string) entity.Verdict {
	return entity.Verdict{
		Valid:           KeywordApproval(raw),
		FieldsFound:     []string{},
		FieldsMissing:   slices.Clone(required),
		Observations:    []string{utils.TruncateRunes(raw, rawExcerptLimit) + "..."},
		ConformityScore: malformedScore,
		Recommendations: []string{malformedAdvice},
		Kind:            constants.VerdictDegraded,
	}
}

// UnreachableVerdict is the pessimistic verdict for a failed model call.
func UnreachableVerdict(err error, required []string) entity.Verdict {
	return entity.Verdict{
		Valid:           false,
		FieldsFound:     []string{},
		FieldsMissing:   slices.Clone(required),
		Observations:    []string{"Erro na análise: " + err.Error()},
		ConformityScore: unreachableScore,
		Recommendations: []string{unreachableAdvice},
		Kind:            constants.VerdictFailed,
	}
}

// EnforceInvariants restricts found/missing to the required fields, keeps them disjoint
// (found wins), and clamps the score to [0,100]. Nil lists become empty.
func EnforceInvariants(v entity.Verdict, required []string) entity.Verdict {
	v.FieldsFound = keepRequired(v.FieldsFound, required, nil)
	v.FieldsMissing = keepRequired(v.FieldsMissing, required, v.FieldsFound)
	if v.Observations == nil {
		v.Observations = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}
	v.ConformityScore = min(max(v.ConformityScore, 0), 100)
	return v
}

func keepRequired(fields, required, exclude []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if !slices.Contains(required, f) || slices.Contains(exclude, f) || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
