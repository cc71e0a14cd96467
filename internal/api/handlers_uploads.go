package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"portfolio.dev/portfolio-api/internal/store"
)

// UploadHandler stores an image sent as the raw request body. Type and
// declared size are checked before any of the body is read.
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !store.AllowedUploadType(r.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Allowed: "+strings.Join(store.AllowedUploadTypes, ", "))
		return
	}
	if r.ContentLength > store.MaxUploadSize {
		writeError(w, http.StatusBadRequest, "File too large. Max 5MB.")
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "Missing filename query parameter")
		return
	}

	body := http.MaxBytesReader(w, r.Body, store.MaxUploadSize+1)
	name, err := h.Uploads.Save(filename, body)
	if err != nil {
		h.respondError(w, r, err, "Upload failed")
		return
	}
	h.log.WithField("file", name).Info("Stored upload")
	writeJSON(w, http.StatusOK, map[string]string{"url": h.Uploads.URL(name)})
}

func (h *APIHandler) ServeUploadHandler(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.Uploads.Open(chi.URLParam(r, "*"))
	if err != nil {
		h.respondError(w, r, err, "Failed to read upload")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(data)
}
