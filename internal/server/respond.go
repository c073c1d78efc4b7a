package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/joseph-ayodele/port-compliance/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnknownDocumentType),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInputRejected):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrAnalyzerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status. Internal errors are logged and not echoed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), Code: common.ErrorCode(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("http.error",
			"req_id", common.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func badRequest(msg string) error {
	return common.NewAppError("BAD_REQUEST", msg, common.ErrInvalidInput)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// queryInt reads a non-negative integer query parameter, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest(name + " must be a non-negative integer")
	}
	return n, nil
}
