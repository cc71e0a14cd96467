package api

import (
	"net/http"
)

type LoginRequest struct {
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !h.Gate.CheckPassword(req.Password) {
		h.log.WithField("remote", r.RemoteAddr).Warn("Rejected admin login")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	h.Gate.SetSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.Gate.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
