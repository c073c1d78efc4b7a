// Package gateway talks to the harbour master, terminal operator and shipping agency APIs.
package gateway

import "context"

const (
	APICapitania = "Capitania dos Portos"
	APITerminal  = "Terminal Portuário"
	APIAgencia   = "Agência Marítima"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

type AuthorizationRequest struct {
	AuthorizationID string `json:"autorizacao_id"`
	ApprovalDate    string `json:"data_aprovacao,omitempty"` // YYYY-MM-DD, set on approval only
	Status          string `json:"status"`
	OperationType   string `json:"tipo_operacao"`
	VesselID        string `json:"navio_id"`
}

type AuthorizationReply struct {
	Success         bool   `json:"success"`
	AuthorizationID string `json:"autorizacao_id"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

type OperationRequest struct {
	OperationID    string `json:"operacao_id"`
	OperationStart string `json:"inicio_operacao"` // YYYY-MM-DD HH:MM:SS
	VesselID       string `json:"navio_id"`
	Berth          string `json:"berco,omitempty"`
}

type OperationReply struct {
	Success       bool   `json:"success"`
	OperationID   string `json:"operacao_id"`
	Status        string `json:"status"`
	AssignedBerth string `json:"berco_atribuido"`
}

type CallRequest struct {
	CallID   string `json:"escala_id"`
	Status   string `json:"status"`
	VesselID string `json:"navio_id"`
	Agency   string `json:"agencia"`
}

type CallReply struct {
	Success bool   `json:"success"`
	CallID  string `json:"escala_id"`
	Status  string `json:"status"`
	Agent   string `json:"preposto_responsavel"`
}

// APIStatus is the reachability of one authority API.
type APIStatus struct {
	Name   string `json:"api"`
	Status string `json:"status"`
}

// Gateway is the capability the session controller uses to reach external authorities.
type Gateway interface {
	SubmitAuthorization(ctx context.Context, req AuthorizationRequest) (AuthorizationReply, error)
	SyncOperation(ctx context.Context, req OperationRequest) (OperationReply, error)
	RegisterCall(ctx context.Context, req CallRequest) (CallReply, error)
	Status(ctx context.Context) []APIStatus
}
