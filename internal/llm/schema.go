package llm

// BuildVerdictJSONSchema returns the JSON-Schema (draft 2020-12 subset) a model reply must
// satisfy before it is trusted. Extra keys are tolerated; the six verdict keys are not optional.
func BuildVerdictJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"valido":             map[string]any{"type": "boolean"},
			"campos_encontrados": stringListProp(),
			"campos_faltantes":   stringListProp(),
			"observacoes":        stringListProp(),
			"score_conformidade": map[string]any{"type": "number"},
			"recomendacoes":      stringListProp(),
		},
		"required": ReplyKeys,
	}
}

func stringListProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
