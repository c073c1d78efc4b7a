package entity

import (
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
)

// Vessel is an arrival request tracked by the port registry.
type Vessel struct {
	ID              string                 `json:"navio_id"`
	Name            string                 `json:"nome"`
	CargoType       string                 `json:"tipo_carga"`
	ETA             time.Time              `json:"eta"`
	Status          constants.VesselStatus `json:"status"`
	Berth           string                 `json:"berco"`
	Documents       string                 `json:"documentos"`
	Agent           string                 `json:"agente"`
	AuthorizationID string                 `json:"autorizacao_id"`
	ApprovalDate    *time.Time             `json:"data_aprovacao,omitempty"`
	OperationType   string                 `json:"tipo_operacao"`
	OperationID     string                 `json:"operacao_id"`
	OperationStart  *time.Time             `json:"inicio_operacao,omitempty"`
	CallID          string                 `json:"escala_id"`
}
