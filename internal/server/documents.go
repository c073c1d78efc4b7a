package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Entries())
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.Catalog.Lookup(chi.URLParam(r, "type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleProcessDocument accepts multipart fields file, document_type and optional vessel_id.
// Rejected files are a normal outcome and come back as 200 with status=error.
func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg := fmt.Sprintf("Arquivo muito grande. Máximo: %dMB", s.deps.MaxUploadMB)
			s.writeError(w, r, common.NewAppError("UPLOAD_TOO_LARGE", msg, common.ErrInputRejected))
			return
		}
		s.writeError(w, r, badRequest("invalid multipart form: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	docType := strings.TrimSpace(r.FormValue("document_type"))
	if docType == "" {
		s.writeError(w, r, badRequest("document_type is required"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, badRequest("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = constants.MIMEFromExt(filepath.Ext(header.Filename))
	}

	up := pipeline.Upload{Name: filepath.Base(header.Filename), Data: data, MIMEType: mime}
	res, err := s.controller(r).ProcessDocument(r.Context(), strings.TrimSpace(r.FormValue("vessel_id")), up, docType)
	if err != nil {
		if errors.Is(err, common.ErrUnknownDocumentType) {
			writeJSON(w, http.StatusBadRequest, res)
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.controller(r).Analyses(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleExportAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.deps.Exporter == nil {
		s.writeError(w, r, errors.New("export not configured"))
		return
	}
	data, err := s.deps.Exporter.ExportAnalysesXLSX(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="analises_conformidade.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
