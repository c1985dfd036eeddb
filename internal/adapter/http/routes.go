package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.RefreshToken)
		r.Get("/auth/me", h.Me)
		r.Post("/auth/logout", h.Logout)

		// Chat
		r.Post("/chat", h.SubmitChat)

		// Sessions
		r.Get("/sessions", h.ListSessions)
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.DeleteSession)

		// Documents
		r.Get("/documents", h.ListDocuments)
		r.Post("/documents", h.UploadDocuments)
		r.Get("/documents/{id}", h.GetDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)
		r.Post("/documents/youtube", h.IngestYouTube)

		// Folders
		r.Get("/folders", h.ListFolders)
		r.Put("/folders/{name}", h.RenameFolder)
		r.Delete("/folders/{name}", h.DeleteFolder)

		// Models
		r.Get("/models", h.ListModels)

		// Assets
		r.Get("/assets/url", h.ResolveAsset)

		// TAK server configuration
		r.Get("/tak/config", h.GetTAKConfig)
		r.Put("/tak/config", h.SetTAKConfig)
		r.Delete("/tak/config", h.DeleteTAKConfig)
	})

	// WebSocket endpoint for turn lifecycle events.
	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}
}
