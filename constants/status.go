package constants

// ProcessingStatus is the terminal status of a document processing call.
type ProcessingStatus string

const (
	ProcessingSuccess ProcessingStatus = "success"
	ProcessingError   ProcessingStatus = "error"
)

// Stage is a state of the per-document processing state machine.
type Stage string

const (
	StageIdle            Stage = "IDLE"
	StageValidating      Stage = "VALIDATING"
	StageRejected        Stage = "REJECTED"
	StageExtracting      Stage = "EXTRACTING"
	StageAnalyzing       Stage = "ANALYZING"
	StageVerdict         Stage = "VERDICT"
	StageDegradedVerdict Stage = "DEGRADED_VERDICT"
	StageFailedVerdict   Stage = "FAILED_VERDICT"
	StageDone            Stage = "DONE"
)

// VerdictKind records which analysis tier produced a verdict.
type VerdictKind string

const (
	VerdictAI       VerdictKind = "ai"       // parsed from the model reply
	VerdictDegraded VerdictKind = "degraded" // reply had no usable JSON
	VerdictFailed   VerdictKind = "failed"   // model call failed
)

// VesselStatus values as shown to port operators (store these exact strings).
type VesselStatus string

const (
	VesselApproved VesselStatus = "Aprovado"
	VesselPending  VesselStatus = "Pendente"
	VesselRefused  VesselStatus = "Recusado"
	VesselInReview VesselStatus = "Em Análise"
)

// AllVesselStatuses lists the statuses a harbour master decision may set.
var AllVesselStatuses = []VesselStatus{VesselApproved, VesselPending, VesselRefused, VesselInReview}

// IsValidVesselStatus reports whether s is a known vessel status.
func IsValidVesselStatus(s string) bool {
	for _, v := range AllVesselStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// NotificationKind classifies notification feed entries.
type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)
