package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logrus.StandardLogger(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/chat", apiHandler.ChatHandler)
		r.Get("/chatbot-settings", apiHandler.PublicChatbotSettingsHandler)
		r.Post("/conversations", apiHandler.SaveConversationHandler)
		r.Post("/conversations/send-transcript", apiHandler.SendTranscriptHandler)
		r.Get("/uploads/*", apiHandler.ServeUploadHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/auth", apiHandler.LoginHandler)
			r.Delete("/auth", apiHandler.LogoutHandler)

			// Admin-authenticated routes
			r.Group(func(r chi.Router) {
				r.Use(apiHandler.AdminAuthMiddleware)

				r.Get("/chatbot-context", apiHandler.GetChatbotContextHandler)
				r.Put("/chatbot-context", apiHandler.PutChatbotContextHandler)
				r.Get("/github-settings", apiHandler.GetGitHubSettingsHandler)
				r.Put("/github-settings", apiHandler.PutGitHubSettingsHandler)
				r.Post("/github-sync", apiHandler.GitHubSyncHandler)

				r.Get("/conversations", apiHandler.ListConversationsHandler)
				r.Post("/conversations", apiHandler.ConversationActionHandler)
				r.Get("/conversations/{id}", apiHandler.GetConversationHandler)
				r.Delete("/conversations/{id}", apiHandler.DeleteConversationHandler)

				r.Put("/upload", apiHandler.UploadHandler)
			})

			// Unknown resources are rejected before the auth check.
			r.With(apiHandler.ResourceGuard, apiHandler.AdminAuthMiddleware).Get("/{resource}", apiHandler.GetResourceHandler)
			r.With(apiHandler.ResourceGuard, apiHandler.AdminAuthMiddleware).Patch("/{resource}", apiHandler.PatchResourceHandler)
		})
	})

	return r
}
