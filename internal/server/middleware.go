package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/session"
)

func sessionID(r *http.Request) string {
	if id := common.SessionIDFromContext(r.Context()); id != "" {
		return id
	}
	return session.DefaultID
}

// requestContext copies the chi request id and the X-Session-ID header into the context.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if rid := middleware.GetReqID(ctx); rid != "" {
			ctx = common.WithRequestID(ctx, rid)
			w.Header().Set(middleware.RequestIDHeader, rid)
		}
		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sid == "" || len(sid) > 128 {
			sid = session.DefaultID
		}
		ctx = common.WithSessionID(ctx, sid)
		w.Header().Set(HeaderSessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("http.request",
			"req_id", common.RequestIDFromContext(r.Context()),
			"session_id", common.SessionIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
