package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/studio/internal/checksum"
	"github.com/starford/studio/internal/contentservice"
	"github.com/starford/studio/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// InitializeWorkspace handles POST /api/workspace/init.
//
//	@Summary		Create the workspace root if it does not exist
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	InitializeResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/init [post]
func (h *Handler) InitializeWorkspace(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.InitializeWorkspace(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InitializeResponse{Created: created})
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List projects
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	ProjectListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: list})
}

// CreateProject handles POST /api/projects.
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	true	"Project to create"
//	@Success		201		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProject(r.Context(), req.RequestedName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{folder}.
//
//	@Summary		Get a project with its settings
//	@Tags			projects
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"
//	@Success		200		{object}	models.Project
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "folder"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RenameProject handles PUT /api/projects/{folder}/name.
//
//	@Summary		Rename a project and move its folder
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string					true	"Current folder name"
//	@Param			body	body		RenameProjectRequest	true	"New display name"
//	@Success		200		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/name [put]
func (h *Handler) RenameProject(w http.ResponseWriter, r *http.Request) {
	var req RenameProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.RenameProject(r.Context(), chi.URLParam(r, "folder"), req.NewDisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProjectSettings handles PUT /api/projects/{folder}/settings.
//
//	@Summary		Replace project settings
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string					true	"Folder name"
//	@Param			body	body		UpdateSettingsRequest	true	"Settings"
//	@Success		200		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/settings [put]
func (h *Handler) UpdateProjectSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProjectSettings(r.Context(), chi.URLParam(r, "folder"), req.settings())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{folder}.
//
//	@Summary		Delete a project and all of its posts
//	@Tags			projects
//	@Param			folder	path	string	true	"Folder name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), chi.URLParam(r, "folder")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPosts handles GET /api/projects/{folder}/posts.
//
//	@Summary		List the posts of a project
//	@Tags			posts
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"
//	@Success		200		{object}	PostListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPosts(r.Context(), chi.URLParam(r, "folder"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: list})
}

// CreatePost handles POST /api/projects/{folder}/posts.
//
//	@Summary		Create a post
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string				true	"Folder name"
//	@Param			body	body		CreatePostRequest	true	"Post to create"
//	@Success		201		{object}	models.Post
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.CreatePost(r.Context(), chi.URLParam(r, "folder"), req.RequestedTitle)
	if err != nil {
		writeError(w, err)
		return
	}
	writePost(w, http.StatusCreated, p)
}

// ReadPost handles GET /api/projects/{folder}/posts/{slug}.
//
//	@Summary		Read a post
//	@Tags			posts
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	models.Post
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts/{slug} [get]
func (h *Handler) ReadPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ReadPost(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writePost(w, http.StatusOK, p)
}

// UpdatePost handles PUT /api/projects/{folder}/posts/{slug}.
//
//	@Summary		Replace post content with optimistic concurrency
//	@Tags			posts
//	@Accept			json
//	@Param			folder		path	string				true	"Folder name"
//	@Param			slug		path	string				true	"Post slug"
//	@Param			If-Match	header	string				false	"ETag from a previous read"
//	@Param			body		body	UpdatePostRequest	true	"New content"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts/{slug} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))
	err := h.svc.UpdatePost(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug"), *req.Content, ifMatch)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetitlePost handles PUT /api/projects/{folder}/posts/{slug}/title.
//
//	@Summary		Change the title stored in a post's frontmatter
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			folder	path		string				true	"Folder name"
//	@Param			slug	path		string				true	"Post slug"
//	@Param			body	body		RetitlePostRequest	true	"New title"
//	@Success		200		{object}	models.Post
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts/{slug}/title [put]
func (h *Handler) RetitlePost(w http.ResponseWriter, r *http.Request) {
	var req RetitlePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.RetitlePost(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug"), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writePost(w, http.StatusOK, p)
}

// DeletePost handles DELETE /api/projects/{folder}/posts/{slug}.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Param			folder	path	string	true	"Folder name"
//	@Param			slug	path	string	true	"Post slug"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{folder}/posts/{slug} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writePost(w http.ResponseWriter, status int, p models.Post) {
	w.Header().Set("ETag", checksum.ETag(p.Checksum))
	writeJSON(w, status, p)
}
