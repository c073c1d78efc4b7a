package constants

// Document type identifiers of the Porto de Santos rule catalog.
const (
	DocDUE                  = "DUE"
	DocManifesto            = "Manifesto"
	DocCertificadoSanitario = "Certificado_Sanitario"
	DocCertificadoSeguranca = "Certificado_Seguranca"
	DocPlanoCarga           = "Plano_Carga"
	DocAutorizacaoIBAMA     = "Autorizacao_IBAMA"
)

// FormatPDF is the accepted document format of every catalog entry.
const FormatPDF = "PDF"

// Pipeline budgets.
const (
	PromptTextLimit  = 2000 // runes of extracted text embedded in the analysis prompt
	PreviewTextLimit = 500  // runes of extracted text returned to the caller
	MaxAnalyzedPages = 3    // page images forwarded to the analyzer
	RenderDPI        = 200
)
