package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"portfolio.dev/portfolio-api/internal/core"
	"portfolio.dev/portfolio-api/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps service errors onto HTTP answers. failMsg is what the
// caller sees for unexpected failures; the cause is only logged.
func (h *APIHandler) respondError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var vErr *store.ValidationError
	var upErr *core.UpstreamError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Msg)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, core.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "Chat is not configured on this server")
	case errors.As(err, &upErr):
		if upErr.HTTPStatus() == http.StatusInternalServerError {
			h.log.WithField("request_id", middleware.GetReqID(r.Context())).Warnf("%s: %v", failMsg, err)
		}
		writeError(w, upErr.HTTPStatus(), upErr.Msg)
	default:
		h.log.WithField("request_id", middleware.GetReqID(r.Context())).Errorf("%s: %v", failMsg, err)
		writeError(w, http.StatusInternalServerError, failMsg)
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(v)
}
