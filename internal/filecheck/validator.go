// Package filecheck validates uploads against the rule catalog before any
// extraction or analysis cost is paid.
package filecheck

import (
	"fmt"
	"math"
	"strconv"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
)

// Validate checks an upload's declared MIME type and byte size against entry.
func Validate(size int64, mimeType string, entry rules.Entry) entity.FileValidation {
	return entity.FileValidation{
		FormatValid:      mimeType == constants.MIMEPDF,
		SizeValid:        size >= 0 && size <= entry.MaxSizeBytes(),
		SizeMB:           roundMB(size),
		DeclaredMIMEType: mimeType,
	}
}

// RejectionReason explains why v is rejected, or returns "" when the upload is accepted.
// A bad format is reported before a bad size.
func RejectionReason(v entity.FileValidation, entry rules.Entry) string {
	switch {
	case !v.FormatValid:
		return "Formato de arquivo inválido. Apenas PDF é aceito."
	case !v.SizeValid:
		return fmt.Sprintf("Arquivo muito grande. Máximo: %sMB", strconv.FormatFloat(entry.MaxSizeMB, 'f', -1, 64))
	default:
		return ""
	}
}

// Validator resolves rules from a catalog before validating.
type Validator struct {
	catalog *rules.Catalog
}

func NewValidator(catalog *rules.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate looks up documentType and validates the upload against its entry.
// Unknown types fail with common.ErrUnknownDocumentType.
func (v *Validator) Validate(size int64, mimeType, documentType string) (entity.FileValidation, error) {
	entry, err := v.catalog.Lookup(documentType)
	if err != nil {
		return entity.FileValidation{}, err
	}
	return Validate(size, mimeType, entry), nil
}

func roundMB(size int64) float64 {
	return math.Round(float64(size)/constants.BytesPerMB*100) / 100
}
