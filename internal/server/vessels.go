package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/gateway"
	"github.com/joseph-ayodele/port-compliance/internal/vessel"
)

type authorizationRequest struct {
	Status constants.VesselStatus `json:"status"`
}

type authorizationResponse struct {
	Reply  gateway.AuthorizationReply `json:"resposta"`
	Vessel entity.Vessel              `json:"navio"`
}

type departureRequest struct {
	OperationDone bool `json:"operacao_concluida"`
	DocumentsOK   bool `json:"documentos_ok"`
}

func (s *Server) handleListVessels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller(r).Vessels())
}

func (s *Server) handleGetVessel(w http.ResponseWriter, r *http.Request) {
	v, err := s.controller(r).Vessel(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRegisterVessel(w http.ResponseWriter, r *http.Request) {
	var in vessel.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.controller(r).RegisterVessel(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleAuthorization(w http.ResponseWriter, r *http.Request) {
	var req authorizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, v, err := s.controller(r).DecideAuthorization(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authorizationResponse{Reply: reply, Vessel: v})
}

func (s *Server) handleRegisterCall(w http.ResponseWriter, r *http.Request) {
	reply, err := s.controller(r).RegisterCall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleDeparture(w http.ResponseWriter, r *http.Request) {
	var req departureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.controller(r).RequestDeparture(r.Context(), chi.URLParam(r, "id"), req.OperationDone, req.DocumentsOK)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleConsultAssistant(w http.ResponseWriter, r *http.Request) {
	entry, err := s.controller(r).ConsultAssistant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleAssistantHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller(r).AssistantHistory(limit))
}

func (s *Server) handleTerminalSync(w http.ResponseWriter, r *http.Request) {
	results, err := s.controller(r).SyncTerminal(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
