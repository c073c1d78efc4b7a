package entity

import "time"

// AssistantQuery is the payload sent to the scheduling assistant webhook.
type AssistantQuery struct {
	Documents AssistantDocuments `json:"documentos"`
	Schedule  AssistantSchedule  `json:"horarios"`
	Updates   []string           `json:"atualizacoes"`
}

type AssistantDocuments struct {
	DUE           bool   `json:"due"`
	Manifest      bool   `json:"manifesto"`
	Certificates  bool   `json:"certificados"`
	OverallStatus string `json:"status_geral"`
}

type AssistantSchedule struct {
	ETA            *time.Time `json:"eta"`
	RequestedBerth string     `json:"berco_solicitado"`
	OperationType  string     `json:"tipo_operacao"`
}

// AssistantReply is the assistant's coordination advice for one vessel.
type AssistantReply struct {
	DocumentValidation   string `json:"validacao_documentos"`
	ScheduleConflicts    string `json:"conflitos_horarios"`
	HarbourMasterMessage string `json:"mensagem_capitania"`
	TerminalMessage      string `json:"mensagem_terminal"`
	AgentMessage         string `json:"mensagem_agente"`
	RecommendedAction    string `json:"acao_recomendada"`
	Simulated            bool   `json:"simulado"`
}

// AssistantEntry is a stored assistant consultation.
type AssistantEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	VesselID   string         `json:"navio_id"`
	VesselName string         `json:"navio"`
	Reply      AssistantReply `json:"resposta"`
}
