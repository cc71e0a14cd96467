package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"portfolio.dev/portfolio-api/internal/store"
)

type SaveConversationRequest struct {
	ConversationID string          `json:"conversationId"`
	Messages       []store.Message `json:"messages"`
}

func (h *APIHandler) SaveConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveConversationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ConversationID == "" || len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "conversationId and messages[] required")
		return
	}

	conv, err := h.Conversations.Save(req.ConversationID, req.Messages)
	if err != nil {
		h.respondError(w, r, err, "Failed to save conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": conv.ID})
}

type SendTranscriptRequest struct {
	ConversationID string `json:"conversationId"`
}

func (h *APIHandler) SendTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	var req SendTranscriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.Transcripts.Send(req.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		h.respondError(w, r, err, "Failed to send transcript")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListConversationsHandler returns every conversation with aggregate stats
// and starts a background sweep of stale conversations.
func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.Conversations.List()
	if err != nil {
		h.respondError(w, r, err, "Failed to list conversations")
		return
	}
	stats, err := h.Conversations.Stats()
	if err != nil {
		h.respondError(w, r, err, "Failed to list conversations")
		return
	}

	if h.Sweeper != nil {
		h.Sweeper.Trigger()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": conversations,
		"stats":         stats,
	})
}

type ConversationActionRequest struct {
	Action     string `json:"action"`
	MaxAgeDays *int   `json:"maxAgeDays,omitempty"`
}

func (h *APIHandler) ConversationActionHandler(w http.ResponseWriter, r *http.Request) {
	var req ConversationActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Action != "cleanup" {
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	}

	maxAge := h.CleanupMaxAgeDays
	if req.MaxAgeDays != nil {
		maxAge = *req.MaxAgeDays
	}
	deleted, err := h.Conversations.Cleanup(maxAge)
	if err != nil {
		h.respondError(w, r, err, "Failed to cleanup")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.Conversations.Get(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		h.respondError(w, r, err, "Failed to read conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Conversations.Delete(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		h.respondError(w, r, err, "Failed to delete conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
