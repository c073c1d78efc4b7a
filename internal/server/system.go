package server

import (
	"net/http"
	"time"

	"github.com/joseph-ayodele/port-compliance/internal/repository"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Analyzer bool   `json:"analyzer"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", Analyzer: s.deps.Analyzer()}
	status := http.StatusOK
	if s.deps.DB == nil {
		resp.Database = "disabled"
	} else if err := repository.HealthCheck(r.Context(), s.deps.DB, 2*time.Second); err != nil {
		s.logger.Warn("http.health.db_failed", "err", err)
		resp.Status, resp.Database = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller(r).Notifications(limit))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller(r).Overview(r.Context()))
}

func (s *Server) handleGatewayStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller(r).GatewayStatus(r.Context()))
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Sessions.IDs())
}

// handleResetSession drops the caller's session. The next request starts from the seeded registry.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.deps.Sessions.Drop(sessionID(r))
	w.WriteHeader(http.StatusNoContent)
}
