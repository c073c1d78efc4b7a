package entity

import "github.com/joseph-ayodele/port-compliance/constants"

// FileValidation is the outcome of checking an upload's format and size.
type FileValidation struct {
	FormatValid      bool    `json:"format_valid"`
	SizeValid        bool    `json:"size_valid"`
	SizeMB           float64 `json:"size_mb"`
	DeclaredMIMEType string  `json:"declared_mime_type"`
}

// Accepted reports whether the file passed every check.
func (v FileValidation) Accepted() bool {
	return v.FormatValid && v.SizeValid
}

// PageImage is one rendered page, PNG-encoded.
type PageImage struct {
	Number int    `json:"number"`
	PNG    []byte `json:"-"`
}

// ExtractedContent is the evidence derived from an upload. It is owned by a single
// processing call and dropped once the analyzer has consumed it.
type ExtractedContent struct {
	Text      string
	Pages     []PageImage
	PageCount int
	Warnings  []string
}

// Degraded reports whether text or image extraction failed.
func (c ExtractedContent) Degraded() bool {
	return len(c.Warnings) > 0
}

// Verdict is the structured compliance judgement for one document.
type Verdict struct {
	Valid           bool                  `json:"valid"`
	FieldsFound     []string              `json:"fields_found"`
	FieldsMissing   []string              `json:"fields_missing"`
	Observations    []string              `json:"observations"`
	ConformityScore int                   `json:"conformity_score"`
	Recommendations []string              `json:"recommendations"`
	Kind            constants.VerdictKind `json:"kind"`
}

// ProcessingResult is the terminal artifact of a processing call.
// A result with StatusError never carries a verdict.
type ProcessingResult struct {
	Status               constants.ProcessingStatus `json:"status"`
	Message              string                     `json:"message,omitempty"`
	DocumentType         string                     `json:"document_type"`
	FileValidation       FileValidation             `json:"file_validation"`
	Verdict              *Verdict                   `json:"verdict,omitempty"`
	ExtractedTextPreview string                     `json:"extracted_text_preview"`
	PageCount            int                        `json:"page_count"`
}
