package api

import (
	"fmt"
	"io"
	"net/http"

	"portfolio.dev/portfolio-api/internal/core"
)

type ChatRequest struct {
	Messages []core.ChatTurn `json:"messages"`
}

// ChatHandler streams the assistant answer as plain text. Validation and
// configuration errors are JSON; once streaming has begun, a failure is
// appended to the body as "[Error: ...]".
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if h.chatLimiter != nil && !h.chatLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
		return
	}

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := r.Context()
	prompt, messages, err := h.Chat.Prepare(ctx, req.Messages)
	if err != nil {
		h.respondError(w, r, err, "Failed to start chat")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	err = h.Chat.Stream(ctx, prompt, messages, func(chunk string) error {
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		h.log.Debugf("Chat stream ended by client: %v", err)
		return
	}
	h.log.Errorf("Chat stream failed: %v", err)
	_, _ = fmt.Fprintf(w, "\n[Error: %s]", err.Error())
	if flusher != nil {
		flusher.Flush()
	}
}
