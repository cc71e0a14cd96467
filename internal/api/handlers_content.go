package api

import (
	"encoding/json"
	"io"
	"net/http"

	"portfolio.dev/portfolio-api/internal/store"
)

func (h *APIHandler) GetResourceHandler(w http.ResponseWriter, r *http.Request) {
	resource := resourceFrom(r)

	doc, err := h.Content.Read(r.Context(), resource)
	if err != nil {
		h.log.WithField("resource", resource).Errorf("Failed to read content: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read content")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (h *APIHandler) PatchResourceHandler(w http.ResponseWriter, r *http.Request) {
	resource := resourceFrom(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	doc, err := h.Content.Write(r.Context(), resource, body)
	if err != nil {
		h.respondError(w, r, err, "Failed to update content")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (h *APIHandler) GetChatbotContextHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Chatbot(r.Context())
	if err != nil {
		h.respondError(w, r, err, "Failed to read chatbot settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *APIHandler) PutChatbotContextHandler(w http.ResponseWriter, r *http.Request) {
	var upd store.ChatbotSettingsUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settings, err := h.Settings.UpdateChatbot(r.Context(), upd)
	if err != nil {
		h.respondError(w, r, err, "Failed to save chatbot settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PublicChatbotSettingsHandler exposes only what the chat widget renders.
// Settings errors fall back to defaults so the widget always loads.
func (h *APIHandler) PublicChatbotSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Chatbot(r.Context())
	if err != nil {
		h.log.Warnf("Serving default chatbot settings: %v", err)
		settings = store.DefaultChatbotSettings()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"greeting":           settings.Greeting,
		"suggestedQuestions": settings.SuggestedQuestions,
	})
}

func (h *APIHandler) GetGitHubSettingsHandler(w http.ResponseWriter, r *http.Request) {
	gh, err := h.Settings.GitHub()
	if err != nil {
		h.respondError(w, r, err, "Failed to read GitHub settings")
		return
	}
	writeJSON(w, http.StatusOK, gh.Masked())
}

func (h *APIHandler) PutGitHubSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var upd store.GitHubSettingsUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	gh, err := h.Settings.UpdateGitHub(upd)
	if err != nil {
		h.respondError(w, r, err, "Failed to save GitHub settings")
		return
	}
	writeJSON(w, http.StatusOK, gh.Masked())
}

func (h *APIHandler) GitHubSyncHandler(w http.ResponseWriter, r *http.Request) {
	gh, err := h.Settings.GitHub()
	if err != nil {
		h.log.Warnf("GitHub settings unreadable: %v", err)
		writeError(w, http.StatusBadRequest, "GitHub settings not found. Please configure in Admin → GitHub.")
		return
	}

	projects, err := h.GitHub.ImportProjects(r.Context(), gh)
	if err != nil {
		h.respondError(w, r, err, "Unexpected error syncing GitHub repos.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}
