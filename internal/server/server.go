// Package server exposes the compliance services over HTTP (chi) and reports health over
// gRPC.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/export"
	"github.com/joseph-ayodele/port-compliance/internal/rules"
	"github.com/joseph-ayodele/port-compliance/internal/session"
)

const (
	HeaderSessionID = "X-Session-ID"

	defaultMaxUploadMB = 25
	multipartOverhead  = 1 << 20
)

type Deps struct {
	Sessions    *session.Manager
	Catalog     *rules.Catalog
	Exporter    *export.Service
	DB          *sql.DB // optional, probed by /healthz
	Analyzer    func() bool
	MaxUploadMB int
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.MaxUploadMB <= 0 {
		deps.MaxUploadMB = defaultMaxUploadMB
	}
	if deps.Catalog == nil {
		deps.Catalog = rules.Default()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = func() bool { return false }
	}
	return &Server{deps: deps, logger: logger}
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.deps.MaxUploadMB) * constants.BytesPerMB
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestContext)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", s.handleListRules)
		r.Get("/rules/{type}", s.handleGetRule)

		r.Post("/documents", s.handleProcessDocument)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/export.xlsx", s.handleExportAnalyses)

		r.Route("/vessels", func(r chi.Router) {
			r.Get("/", s.handleListVessels)
			r.Post("/", s.handleRegisterVessel)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetVessel)
				r.Post("/authorization", s.handleAuthorization)
				r.Post("/call", s.handleRegisterCall)
				r.Post("/departure", s.handleDeparture)
				r.Post("/assistant", s.handleConsultAssistant)
			})
		})
		r.Get("/assistant/history", s.handleAssistantHistory)
		r.Post("/terminal/sync", s.handleTerminalSync)

		r.Get("/notifications", s.handleNotifications)
		r.Get("/overview", s.handleOverview)
		r.Get("/gateways/status", s.handleGatewayStatus)

		r.Get("/sessions", s.handleListSessions)
		r.Delete("/session", s.handleResetSession)
	})
	return r
}

func (s *Server) controller(r *http.Request) *session.Controller {
	return s.deps.Sessions.Get(sessionID(r))
}
