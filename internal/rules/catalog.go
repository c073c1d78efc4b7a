package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
)

// Entry holds the compliance rules of one document type.
type Entry struct {
	DocumentType   string   `json:"document_type" yaml:"document_type"`
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`
	Format         string   `json:"format" yaml:"format"`
	MaxSizeMB      float64  `json:"max_size_mb" yaml:"max_size_mb"`
	Description    string   `json:"description" yaml:"description"`
}

// MaxSizeBytes is the inclusive byte ceiling for uploads of this type.
func (e Entry) MaxSizeBytes() int64 {
	return int64(e.MaxSizeMB * constants.BytesPerMB)
}

// Catalog is a read-only table of rule entries keyed by document type.
// It is safe for concurrent use once built.
type Catalog struct {
	entries map[string]Entry
	order   []string
}

// New builds a catalog from entries, rejecting duplicates and unusable rules.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		e.DocumentType = strings.TrimSpace(e.DocumentType)
		if e.DocumentType == "" {
			return nil, common.NewAppError("RULES_ERROR", "document_type is required", common.ErrInvalidInput)
		}
		if _, dup := c.entries[e.DocumentType]; dup {
			return nil, common.NewAppError("RULES_ERROR", fmt.Sprintf("duplicate document type %q", e.DocumentType), common.ErrInvalidInput)
		}
		if len(e.RequiredFields) == 0 {
			return nil, common.NewAppError("RULES_ERROR", fmt.Sprintf("%s: required_fields is empty", e.DocumentType), common.ErrInvalidInput)
		}
		if e.MaxSizeMB <= 0 {
			return nil, common.NewAppError("RULES_ERROR", fmt.Sprintf("%s: max_size_mb must be positive", e.DocumentType), common.ErrInvalidInput)
		}
		if e.Format == "" {
			e.Format = constants.FormatPDF
		}
		e.RequiredFields = slices.Clone(e.RequiredFields)
		c.entries[e.DocumentType] = e
		c.order = append(c.order, e.DocumentType)
	}
	return c, nil
}

// Lookup returns the rules for documentType or ErrUnknownDocumentType.
func (c *Catalog) Lookup(documentType string) (Entry, error) {
	e, ok := c.entries[documentType]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", common.ErrUnknownDocumentType, documentType)
	}
	e.RequiredFields = slices.Clone(e.RequiredFields)
	return e, nil
}

// Types returns the document types in declaration order.
func (c *Catalog) Types() []string {
	return slices.Clone(c.order)
}

// Entries returns every entry in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, t := range c.order {
		e, _ := c.Lookup(t)
		out = append(out, e)
	}
	return out
}

// Default returns the Porto de Santos rule catalog.
func Default() *Catalog {
	c, err := New(defaultEntries...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultEntries = []Entry{
	{
		DocumentType:   constants.DocDUE,
		RequiredFields: []string{"numero_due", "navio", "agente", "carga"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      10,
		Description:    "Declaração Única de Exportação",
	},
	{
		DocumentType:   constants.DocManifesto,
		RequiredFields: []string{"lista_carga", "origem", "destino", "peso"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      15,
		Description:    "Manifesto de Carga",
	},
	{
		DocumentType:   constants.DocCertificadoSanitario,
		RequiredFields: []string{"autoridade_sanitaria", "data_inspecao", "resultado"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      5,
		Description:    "Certificado Sanitário ANVISA",
	},
	{
		DocumentType:   constants.DocCertificadoSeguranca,
		RequiredFields: []string{"validade", "autoridade_emissora", "tipo_certificado"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      5,
		Description:    "Certificado de Segurança",
	},
	{
		DocumentType:   constants.DocPlanoCarga,
		RequiredFields: []string{"distribuicao_carga", "peso_total", "centro_gravidade"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      20,
		Description:    "Plano de Carregamento",
	},
	{
		DocumentType:   constants.DocAutorizacaoIBAMA,
		RequiredFields: []string{"numero_licenca", "validade", "tipo_carga"},
		Format:         constants.FormatPDF,
		MaxSizeMB:      5,
		Description:    "Autorização Ambiental IBAMA",
	},
}
