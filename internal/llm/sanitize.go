package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var listKeys = []string{"campos_encontrados", "campos_faltantes", "observacoes", "recomendacoes"}

// NormalizeVerdictJSON coerces common near-misses into the verdict schema so the document can
// still validate: string booleans, string or integer-like scores, scalar or null lists.
// It never invents "valido" or "score_conformidade" when they are absent.
// The returned slice names every key that was rewritten.
func NormalizeVerdictJSON(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var changed []string

	if v, ok := m["valido"]; ok {
		if b, ok := coerceBool(v); ok {
			if _, isBool := v.(bool); !isBool {
				m["valido"] = b
				changed = append(changed, "valido")
			}
		}
	}

	if v, ok := m["score_conformidade"]; ok {
		if s, isStr := v.(string); isStr {
			s = strings.TrimSuffix(strings.TrimSpace(s), "%")
			if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
				m["score_conformidade"] = f
				changed = append(changed, "score_conformidade")
			}
		}
	}

	for _, k := range listKeys {
		v, ok := m[k]
		if !ok {
			m[k] = []any{}
			changed = append(changed, k)
			continue
		}
		switch t := v.(type) {
		case nil:
			m[k] = []any{}
			changed = append(changed, k)
		case string:
			if strings.TrimSpace(t) == "" {
				m[k] = []any{}
			} else {
				m[k] = []any{t}
			}
			changed = append(changed, k)
		case []any:
			out := make([]any, 0, len(t))
			dirty := false
			for _, item := range t {
				switch iv := item.(type) {
				case string:
					out = append(out, iv)
				case nil:
					dirty = true
				default:
					out = append(out, fmt.Sprint(iv))
					dirty = true
				}
			}
			if dirty {
				m[k] = out
				changed = append(changed, k)
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, changed, nil
}

func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "sim", "yes", "valido", "válido":
			return true, true
		case "false", "nao", "não", "no", "invalido", "inválido":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}
