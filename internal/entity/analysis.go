package entity

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a processed document kept in the session's analysis history.
type AnalysisRecord struct {
	ID        uuid.UUID        `json:"id"`
	SessionID string           `json:"session_id"`
	VesselID  string           `json:"vessel_id,omitempty"`
	FileName  string           `json:"file_name"`
	SHA256    string           `json:"sha256"`
	Model     string           `json:"model,omitempty"`
	Result    ProcessingResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
