package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/assistant"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/gateway"
	"github.com/joseph-ayodele/port-compliance/internal/notify"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
	"github.com/joseph-ayodele/port-compliance/internal/utils"
	"github.com/joseph-ayodele/port-compliance/internal/vessel"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	opUnberthing   = "Desatracação"
)

// Controller carries the state of one operator session. All methods are safe for
// concurrent use.
type Controller struct {
	id       string
	deps     Deps
	logger   *slog.Logger
	registry *vessel.Registry
	feed     *notify.Feed

	mu      sync.Mutex
	history []entity.AssistantEntry
}

// Overview summarizes the session's fleet.
type Overview struct {
	Total         int                            `json:"total"`
	Waiting       int                            `json:"aguardando"`
	Approved      int                            `json:"aprovados"`
	Refused       int                            `json:"recusados"`
	ByStatus      map[constants.VesselStatus]int `json:"por_status"`
	Analyses      int                            `json:"analises"`
	Notifications int                            `json:"notificacoes"`
}

// SyncResult is the terminal's answer for one approved vessel.
type SyncResult struct {
	VesselID   string                 `json:"navio_id"`
	VesselName string                 `json:"navio"`
	Reply      gateway.OperationReply `json:"resposta"`
	Error      string                 `json:"erro,omitempty"`
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Vessels() []entity.Vessel {
	return c.registry.List()
}

func (c *Controller) Vessel(id string) (entity.Vessel, error) {
	return c.registry.Get(id)
}

func (c *Controller) RegisterVessel(_ context.Context, in vessel.RegisterInput) (entity.Vessel, error) {
	v, err := c.registry.Register(in)
	if err != nil {
		return entity.Vessel{}, err
	}
	c.feed.Add(fmt.Sprintf("Nova solicitação manual: %s - ID: %s", v.Name, v.ID), constants.NotifyInfo)
	c.logger.Info("session.vessel.registered", "vessel_id", v.ID)
	return v, nil
}

// DecideAuthorization sends the harbour master decision and applies it once the
// Capitania accepts it.
func (c *Controller) DecideAuthorization(ctx context.Context, vesselID string, status constants.VesselStatus) (gateway.AuthorizationReply, entity.Vessel, error) {
	if !constants.IsValidVesselStatus(string(status)) {
		return gateway.AuthorizationReply{}, entity.Vessel{}, common.NewAppError("INVALID_STATUS", "unknown vessel status: "+string(status), common.ErrInvalidInput)
	}
	v, err := c.registry.Get(vesselID)
	if err != nil {
		return gateway.AuthorizationReply{}, entity.Vessel{}, err
	}

	req := gateway.AuthorizationRequest{
		AuthorizationID: v.AuthorizationID,
		Status:          strings.ToLower(string(status)),
		OperationType:   v.OperationType,
		VesselID:        v.ID,
	}
	if status == constants.VesselApproved {
		req.ApprovalDate = c.deps.Now().Format(dateLayout)
	}

	reply, err := c.deps.Gateway.SubmitAuthorization(ctx, req)
	if err != nil {
		c.logger.Warn("session.authorization.failed", "vessel_id", v.ID, "err", err)
		return reply, v, err
	}
	if !reply.Success {
		return reply, v, common.NewAppError("GATEWAY_REJECTED", reply.Message, common.ErrInternal)
	}

	v, err = c.registry.SetStatus(v.ID, status)
	if err != nil {
		return reply, v, err
	}
	c.feed.Add(fmt.Sprintf("Capitania: %s - %s", v.Name, status), constants.NotifyInfo)
	c.logger.Info("session.authorization.ok", "vessel_id", v.ID, "status", status)
	return reply, v, nil
}

// SyncTerminal pushes every approved vessel's operation to the terminal. Failures are
// reported per vessel and do not stop the others.
func (c *Controller) SyncTerminal(ctx context.Context) ([]SyncResult, error) {
	approved := c.registry.Approved()
	results := make([]SyncResult, len(approved))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.deps.SyncConcurrency)
	for i, v := range approved {
		i, v := i, v
		g.Go(func() error {
			start := c.deps.Now()
			reply, err := c.deps.Gateway.SyncOperation(gctx, gateway.OperationRequest{
				OperationID:    v.OperationID,
				OperationStart: start.Format(dateTimeLayout),
				VesselID:       v.ID,
				Berth:          v.Berth,
			})
			results[i] = SyncResult{VesselID: v.ID, VesselName: v.Name, Reply: reply}
			if err != nil {
				results[i].Error = err.Error()
				c.logger.Warn("session.terminal.sync_failed", "vessel_id", v.ID, "err", err)
				return nil
			}
			if reply.Success {
				_, _ = c.registry.Update(v.ID, func(ves *entity.Vessel) {
					ves.OperationStart = &start
					if reply.AssignedBerth != "" {
						ves.Berth = reply.AssignedBerth
					}
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	c.feed.Add("Terminal sincronizado com Instituto AmiGU", constants.NotifySuccess)
	c.logger.Info("session.terminal.synced", "vessels", len(approved))
	return results, nil
}

func (c *Controller) RegisterCall(ctx context.Context, vesselID string) (gateway.CallReply, error) {
	v, err := c.registry.Get(vesselID)
	if err != nil {
		return gateway.CallReply{}, err
	}
	reply, err := c.deps.Gateway.RegisterCall(ctx, gateway.CallRequest{
		CallID:   v.CallID,
		Status:   strings.ToLower(string(v.Status)),
		VesselID: v.ID,
		Agency:   v.Agent,
	})
	if err != nil {
		c.logger.Warn("session.call.failed", "vessel_id", v.ID, "err", err)
		return reply, err
	}
	c.feed.Add(fmt.Sprintf("Escala registrada: %s - %s", v.Name, reply.CallID), constants.NotifyInfo)
	return reply, nil
}

// RequestDeparture clears an approved vessel for departure once its operation is
// finished and its exit paperwork is in order.
func (c *Controller) RequestDeparture(_ context.Context, vesselID string, operationDone, documentsOK bool) (entity.Vessel, error) {
	v, err := c.registry.Get(vesselID)
	if err != nil {
		return entity.Vessel{}, err
	}
	val := common.NewValidator().
		Check(v.Status == constants.VesselApproved, "status", v.Status, "vessel must be approved").
		Check(operationDone, "operacao_concluida", operationDone, "operation must be finished").
		Check(documentsOK, "documentos_ok", documentsOK, "exit documents must be in order")
	if val.HasErrors() {
		return v, val.Error()
	}

	c.feed.Add("Solicitação de saída: "+v.Name, constants.NotifyInfo)
	v, err = c.registry.Update(v.ID, func(ves *entity.Vessel) {
		ves.OperationType = opUnberthing
	})
	if err != nil {
		return v, err
	}
	c.feed.Add("Saída aprovada: "+v.Name, constants.NotifySuccess)
	c.logger.Info("session.departure.ok", "vessel_id", v.ID)
	return v, nil
}

// ConsultAssistant asks the scheduling assistant about a vessel and keeps the answer.
func (c *Controller) ConsultAssistant(ctx context.Context, vesselID string) (entity.AssistantEntry, error) {
	v, err := c.registry.Get(vesselID)
	if err != nil {
		return entity.AssistantEntry{}, err
	}
	if c.deps.Assistant == nil {
		return entity.AssistantEntry{}, common.NewAppError("ASSISTANT_UNAVAILABLE", "scheduling assistant not configured", common.ErrInternal)
	}
	reply, err := c.deps.Assistant.Consult(ctx, assistant.BuildQuery(v))
	if err != nil {
		return entity.AssistantEntry{}, err
	}

	entry := entity.AssistantEntry{
		Timestamp:  c.deps.Now(),
		VesselID:   v.ID,
		VesselName: v.Name,
		Reply:      reply,
	}
	c.mu.Lock()
	c.history = append([]entity.AssistantEntry{entry}, c.history...)
	c.mu.Unlock()

	c.feed.Add(fmt.Sprintf("IA analisou %s - Recomendações geradas", v.Name), constants.NotifySuccess)
	return entry, nil
}

// AssistantHistory returns up to n consultations, newest first. n <= 0 means all.
func (c *Controller) AssistantHistory(n int) []entity.AssistantEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || n > len(c.history) {
		n = len(c.history)
	}
	out := make([]entity.AssistantEntry, n)
	copy(out, c.history[:n])
	return out
}

// ProcessDocument runs one upload through the compliance pipeline and records the
// outcome. vesselID is optional; when set it must name a vessel of this session.
// A history write failure is logged and the result is still returned.
func (c *Controller) ProcessDocument(ctx context.Context, vesselID string, up pipeline.Upload, documentType string) (entity.ProcessingResult, error) {
	if c.deps.Processor == nil {
		return entity.ProcessingResult{}, common.ErrAnalyzerUnavailable
	}
	if vesselID != "" {
		if _, err := c.registry.Get(vesselID); err != nil {
			return entity.ProcessingResult{}, err
		}
	}

	ctx = common.WithSessionID(ctx, c.id)
	res, err := c.deps.Processor.Process(ctx, up, documentType)
	if err != nil {
		return res, err
	}

	if c.deps.Analyses != nil {
		rec := &entity.AnalysisRecord{
			ID:        uuid.New(),
			SessionID: c.id,
			VesselID:  vesselID,
			FileName:  up.Name,
			SHA256:    utils.SHA256Hex(up.Data),
			Result:    res,
			CreatedAt: c.deps.Now(),
		}
		if res.Verdict != nil {
			rec.Model = c.deps.ModelName
		}
		if err := c.deps.Analyses.Insert(ctx, rec); err != nil {
			c.logger.Error("session.analysis.store_failed", "id", rec.ID, "file", up.Name, "err", err)
		}
	}

	c.feed.Add(documentNotice(up.Name, res))
	return res, nil
}

func documentNotice(file string, res entity.ProcessingResult) (string, constants.NotificationKind) {
	if res.Verdict == nil {
		return fmt.Sprintf("Documento rejeitado: %s - %s", file, res.Message), constants.NotifyError
	}
	msg := fmt.Sprintf("Documento %s analisado: %s - %d%%", res.DocumentType, file, res.Verdict.ConformityScore)
	switch {
	case res.Verdict.Kind == constants.VerdictFailed:
		return msg, constants.NotifyError
	case res.Verdict.Valid:
		return msg, constants.NotifySuccess
	default:
		return msg, constants.NotifyWarning
	}
}

// Analyses lists this session's stored results, newest first.
func (c *Controller) Analyses(ctx context.Context, limit int) ([]*entity.AnalysisRecord, error) {
	if c.deps.Analyses == nil {
		return nil, nil
	}
	return c.deps.Analyses.ListBySession(ctx, c.id, limit)
}

func (c *Controller) Overview(ctx context.Context) Overview {
	counts := c.registry.CountByStatus()
	o := Overview{
		Waiting:       counts[constants.VesselPending] + counts[constants.VesselInReview],
		Approved:      counts[constants.VesselApproved],
		Refused:       counts[constants.VesselRefused],
		ByStatus:      counts,
		Notifications: len(c.feed.List()),
	}
	for _, n := range counts {
		o.Total += n
	}
	if recs, err := c.Analyses(ctx, 0); err == nil {
		o.Analyses = len(recs)
	} else {
		c.logger.Warn("session.overview.analyses_failed", "err", err)
	}
	return o
}

// Notifications returns up to n entries, newest first. n <= 0 means all.
func (c *Controller) Notifications(n int) []entity.Notification {
	if n <= 0 {
		return c.feed.List()
	}
	return c.feed.Recent(n)
}

func (c *Controller) GatewayStatus(ctx context.Context) []gateway.APIStatus {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.deps.Gateway.Status(ctx)
}
