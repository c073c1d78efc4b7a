package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/port-compliance/internal/common"
)

const (
	pathAutorizacoes = "/autorizacoes"
	pathOperacoes    = "/operacoes"
	pathEscalas      = "/escalas"
)

type HTTPConfig struct {
	APIKey       string
	CapitaniaURL string
	TerminalURL  string
	AgenciaURL   string
	Timeout      time.Duration
}

// HTTP posts to the real authority APIs with "Authorization: ApiKey <key>".
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
	logger *slog.Logger
}

func NewHTTP(cfg HTTPConfig, logger *slog.Logger) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

func (g *HTTP) SubmitAuthorization(ctx context.Context, req AuthorizationRequest) (AuthorizationReply, error) {
	var out AuthorizationReply
	err := g.post(ctx, g.cfg.CapitaniaURL+pathAutorizacoes, req, &out)
	return out, err
}

func (g *HTTP) SyncOperation(ctx context.Context, req OperationRequest) (OperationReply, error) {
	var out OperationReply
	err := g.post(ctx, g.cfg.TerminalURL+pathOperacoes, req, &out)
	return out, err
}

func (g *HTTP) RegisterCall(ctx context.Context, req CallRequest) (CallReply, error) {
	var out CallReply
	err := g.post(ctx, g.cfg.AgenciaURL+pathEscalas, req, &out)
	return out, err
}

// Status probes the three base URLs concurrently. Any answer below 500 counts as online.
func (g *HTTP) Status(ctx context.Context) []APIStatus {
	targets := []struct{ name, url string }{
		{APICapitania, g.cfg.CapitaniaURL},
		{APITerminal, g.cfg.TerminalURL},
		{APIAgencia, g.cfg.AgenciaURL},
	}
	out := make([]APIStatus, len(targets))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			out[i] = APIStatus{Name: t.name, Status: g.probe(egCtx, t.url)}
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func (g *HTTP) probe(ctx context.Context, url string) string {
	if url == "" {
		return StatusOffline
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusOffline
	}
	req.Header.Set("Authorization", "ApiKey "+g.cfg.APIKey)
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("gateway.probe.failed", "url", url, "error", err)
		return StatusOffline
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return StatusOffline
	}
	return StatusOnline
}

func (g *HTTP) post(ctx context.Context, url string, body, out any) error {
	headers := map[string]string{"Authorization": "ApiKey " + g.cfg.APIKey}
	raw, _, err := common.SendJSON(ctx, g.client, url, body, headers, g.logger)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", endpointName(url), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway %s: decode reply: %w", endpointName(url), err)
	}
	return nil
}

func endpointName(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}
