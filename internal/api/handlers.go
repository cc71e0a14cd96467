package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"portfolio.dev/portfolio-api/internal/auth"
	"portfolio.dev/portfolio-api/internal/core"
	"portfolio.dev/portfolio-api/internal/store"
)

// maxJSONBody bounds JSON request bodies other than uploads.
const maxJSONBody = 1 << 20

type ctxKey int

const resourceKey ctxKey = iota

// Services groups everything the handlers depend on.
type Services struct {
	Gate          *auth.Gate
	Content       *store.ContentStore
	Settings      *store.SettingsStore
	Conversations *store.ConversationStore
	Uploads       *store.UploadStore
	Chat          *core.ChatService
	GitHub        *core.GitHubService
	Transcripts   *core.TranscriptService
	Sweeper       *core.Sweeper

	// ChatRateLimit is the global chat budget in requests per minute; 0
	// disables limiting.
	ChatRateLimit int
	// CleanupMaxAgeDays is used when a cleanup request names no age.
	CleanupMaxAgeDays int
}

type APIHandler struct {
	Services
	chatLimiter *rate.Limiter
	log         *logrus.Entry
}

func NewAPIHandler(s Services) *APIHandler {
	h := &APIHandler{
		Services: s,
		log:      logrus.WithField("component", "api"),
	}
	if s.ChatRateLimit > 0 {
		h.chatLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.ChatRateLimit)), s.ChatRateLimit)
	}
	if h.CleanupMaxAgeDays < 1 {
		h.CleanupMaxAgeDays = store.DefaultConversationMaxAgeDays
	}
	return h
}

// AdminAuthMiddleware rejects requests that carry neither the admin cookie
// nor a matching bearer token.
func (h *APIHandler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Gate.Authorized(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResourceGuard validates the {resource} URL parameter. It runs ahead of the
// auth check so an unknown resource is a 400 for every caller.
func (h *APIHandler) ResourceGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource, err := store.ParseResource(chi.URLParam(r, "resource"))
		if err != nil {
			h.respondError(w, r, err, "Invalid resource")
			return
		}
		ctx := context.WithValue(r.Context(), resourceKey, resource)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resourceFrom(r *http.Request) store.Resource {
	resource, _ := r.Context().Value(resourceKey).(store.Resource)
	return resource
}
