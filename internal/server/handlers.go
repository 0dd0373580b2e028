package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/myschema/internal/coltype"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/introspect"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	normalize, err := s.normalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tables, err := s.inspector.Tables(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if normalize {
		for _, t := range tables {
			introspect.NormalizeTable(t)
		}
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	normalize, err := s.normalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, err := s.inspector.Table(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if normalize {
		introspect.NormalizeTable(table)
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	normalize, err := s.normalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table := chi.URLParam(r, "table")
	columns, err := s.inspector.Columns(r.Context(), table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(columns) == 0 {
		s.writeError(w, r, errs.Newf(errs.ErrKindNotFound, "table %s not found", table))
		return
	}
	if normalize {
		for _, c := range columns {
			coltype.Normalize(c.Type)
		}
	}
	writeJSON(w, http.StatusOK, columns)
}

func (s *Server) handleColumn(w http.ResponseWriter, r *http.Request) {
	normalize, err := s.normalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	column, err := s.inspector.Column(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "column"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if normalize {
		coltype.Normalize(column.Type)
	}
	writeJSON(w, http.StatusOK, column)
}

func (s *Server) handleIndexes(w http.ResponseWriter, r *http.Request) {
	indexes, err := s.inspector.Indexes(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexes)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index, err := s.inspector.Index(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, index)
}

// normalize reads the normalize query parameter, falling back to the
// server default.
func (s *Server) normalize(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("normalize")
	if v == "" {
		return s.cfg.Normalize, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Newf(errs.ErrKindInvalidInput, "normalize: %q is not a boolean", v)
	}
	return b, nil
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError renders err as JSON. Server-side failures are also logged,
// client errors only show up in the request log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"kind":       kind.String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind.String()})
}

func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput, errs.ErrKindParseFailed:
		return http.StatusBadRequest
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var _ Inspector = (*introspect.Introspector)(nil)
