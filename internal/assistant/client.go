// Package assistant consults the scheduling assistant workflow about a vessel call.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

type Config struct {
	WebhookURL string
	Timeout    time.Duration // default 30s
}

// Client posts queries to the webhook. Replies are treated as untrusted text and stripped
// of any markup before they are returned.
type Client struct {
	cfg    Config
	http   *http.Client
	policy *bluemonday.Policy
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}
}

// DemoReply is returned when the webhook cannot be reached.
func DemoReply() entity.AssistantReply {
	return entity.AssistantReply{
		DocumentValidation:   "Documentos validados com sucesso. DUE e Manifesto estão completos.",
		ScheduleConflicts:    "Nenhum conflito detectado nos horários programados.",
		HarbourMasterMessage: "Autorização aprovada. Navio pode prosseguir com atracação conforme programado.",
		TerminalMessage:      "Berço 3 disponível. Operação de carga pode iniciar às 14:00h.",
		AgentMessage:         "Documentação completa. Preposto autorizado para acompanhar operação.",
		RecommendedAction:    "Proceder com atracação. Monitorar condições climáticas.",
		Simulated:            true,
	}
}

// Consult sends the query. Only a 200 reply is accepted; other statuses are returned as
// "Erro HTTP <code>". Transport failures and undecodable bodies fall back to DemoReply.
func (c *Client) Consult(ctx context.Context, q entity.AssistantQuery) (entity.AssistantReply, error) {
	start := time.Now()
	if c.cfg.WebhookURL == "" {
		c.logger.Debug("assistant.consult.simulated", "reason", "no webhook configured")
		return DemoReply(), nil
	}

	raw, status, err := common.SendJSON(ctx, c.http, c.cfg.WebhookURL, q, nil, c.logger)
	var se *common.StatusError
	switch {
	case errors.As(err, &se):
		return entity.AssistantReply{}, fmt.Errorf("Erro HTTP %d", se.StatusCode)
	case err != nil:
		c.logger.Warn("assistant.consult.unreachable", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return DemoReply(), nil
	case status != http.StatusOK:
		return entity.AssistantReply{}, fmt.Errorf("Erro HTTP %d", status)
	}

	var reply entity.AssistantReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		c.logger.Warn("assistant.consult.decode_failed", "error", err, "bytes", len(raw))
		return DemoReply(), nil
	}
	reply = c.sanitize(reply)
	reply.Simulated = false

	c.logger.Info("assistant.consult.ok", "elapsed_ms", time.Since(start).Milliseconds())
	return reply, nil
}

func (c *Client) sanitize(r entity.AssistantReply) entity.AssistantReply {
	for _, f := range []*string{
		&r.DocumentValidation,
		&r.ScheduleConflicts,
		&r.HarbourMasterMessage,
		&r.TerminalMessage,
		&r.AgentMessage,
		&r.RecommendedAction,
	} {
		*f = c.policy.Sanitize(*f)
	}
	return r
}
