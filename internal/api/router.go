package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/studio/internal/contentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *contentservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/workspace/init", h.InitializeWorkspace)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Route("/{folder}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Delete("/", h.DeleteProject)
			r.Put("/name", h.RenameProject)
			r.Put("/settings", h.UpdateProjectSettings)

			r.Get("/posts", h.ListPosts)
			r.Post("/posts", h.CreatePost)
			r.Get("/posts/{slug}", h.ReadPost)
			r.Put("/posts/{slug}", h.UpdatePost)
			r.Delete("/posts/{slug}", h.DeletePost)
			r.Put("/posts/{slug}/title", h.RetitlePost)
		})
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
