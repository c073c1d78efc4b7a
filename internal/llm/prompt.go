package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
)

var replyKeyHints = map[string]string{
	"valido":             "true/false",
	"campos_encontrados": "lista dos campos obrigatórios encontrados",
	"campos_faltantes":   "lista dos campos obrigatórios não encontrados",
	"observacoes":        "lista de observações sobre o documento",
	"score_conformidade": "pontuação de 0 a 100",
	"recomendacoes":      "lista de recomendações para correção",
}

// BuildCompliancePrompt renders the analysis request for one document. Only the first
// PromptTextLimit runes of the extracted text are included.
func BuildCompliancePrompt(entry rules.Entry, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analise este documento portuário do tipo %s (%s).\n\n", entry.DocumentType, entry.Description)

	b.WriteString("Regras do Porto de Santos para este documento:\n")
	fmt.Fprintf(&b, "- Campos obrigatórios: [%s]\n", quoteList(entry.RequiredFields))
	fmt.Fprintf(&b, "- Formato: %s\n", entry.Format)
	fmt.Fprintf(&b, "- Tamanho máximo: %sMB\n\n", formatMB(entry.MaxSizeMB))

	b.WriteString("Texto extraído do documento:\n")
	b.WriteString(utils.TruncateRunes(text, constants.PromptTextLimit))
	b.WriteString("...\n\n")

	b.WriteString("Por favor, analise e retorne um JSON com:\n")
	for i, k := range ReplyKeys {
		fmt.Fprintf(&b, "%d. %q: %s\n", i+1, k, replyKeyHints[k])
	}
	b.WriteString("Use apenas nomes de campos da lista de campos obrigatórios.")
	return b.String()
}

func quoteList(xs []string) string {
	q := make([]string, len(xs))
	for i, x := range xs {
		q[i] = "'" + x + "'"
	}
	return strings.Join(q, ", ")
}

func formatMB(mb float64) string {
	if mb == float64(int64(mb)) {
		return fmt.Sprintf("%d", int64(mb))
	}
	return fmt.Sprintf("%g", mb)
}
