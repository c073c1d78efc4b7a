package assistant

import (
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

const docsComplete = "Completos"

// BuildQuery describes a vessel's paperwork, schedule and recent activity for the assistant.
func BuildQuery(v entity.Vessel) entity.AssistantQuery {
	eta := &v.ETA
	if v.ETA.IsZero() {
		eta = nil
	}
	status := v.Documents
	if status == "" {
		status = "Pendente"
	}
	op := v.OperationType
	if op == "" {
		op = "Atracação"
	}
	return entity.AssistantQuery{
		Documents: entity.AssistantDocuments{
			DUE:           v.Documents == docsComplete,
			Manifest:      true,
			Certificates:  true,
			OverallStatus: status,
		},
		Schedule: entity.AssistantSchedule{
			ETA:            eta,
			RequestedBerth: v.Berth,
			OperationType:  op,
		},
		Updates: []string{
			"Navio " + v.Name + " solicitou entrada",
			"Status atual: " + string(v.Status),
			"Agente responsável: " + v.Agent,
		},
	}
}
