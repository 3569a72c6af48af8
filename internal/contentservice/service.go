// Package contentservice is the command surface of the content store: one
// method per operation the presentation layer can invoke.
package contentservice

import (
	"context"
	"log/slog"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/models"
	"github.com/starford/studio/internal/posts"
	"github.com/starford/studio/internal/projects"
	"github.com/starford/studio/internal/storage"
	"github.com/starford/studio/internal/workspace"
)

// Service coordinates the workspace initializer and both repositories.
type Service struct {
	store    storage.Provider
	init     *workspace.Initializer
	projects *projects.Repository
	posts    *posts.Repository
	logger   *slog.Logger
}

// NewService creates a content service over store.
func NewService(store storage.Provider, logger *slog.Logger) *Service {
	projectRepo := projects.NewRepository(store, logger)
	return &Service{
		store:    store,
		init:     workspace.NewInitializer(projectRepo, store, logger),
		projects: projectRepo,
		posts:    posts.NewRepository(store, projectRepo, logger),
		logger:   logger,
	}
}

// Root returns the absolute workspace root.
func (s *Service) Root() string { return s.store.Root() }

// InitializeWorkspace creates and seeds the workspace root if it is missing.
func (s *Service) InitializeWorkspace(ctx context.Context) (bool, error) {
	created, err := s.init.Initialize(ctx)
	if err != nil {
		return created, s.fail(ctx, "initialize_workspace", err)
	}
	return created, nil
}

// ListProjects enumerates the projects in the workspace.
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	list, err := s.projects.List()
	if err != nil {
		return nil, s.fail(ctx, "list_projects", err)
	}
	return list, nil
}

// GetProject returns one project with its settings.
func (s *Service) GetProject(ctx context.Context, folder string) (models.Project, error) {
	p, err := s.projects.Get(folder)
	if err != nil {
		return p, s.fail(ctx, "get_project", err, slog.String("folder", folder))
	}
	return p, nil
}

// CreateProject makes a new project from a display name.
func (s *Service) CreateProject(ctx context.Context, requestedName string) (models.Project, error) {
	p, err := s.projects.Create(requestedName)
	if err != nil {
		return p, s.fail(ctx, "create_project", err, slog.String("name", requestedName))
	}
	s.logger.InfoContext(ctx, "project created", slog.String("folder", p.FolderName))
	return p, nil
}

// RenameProject changes a project's display name and folder.
func (s *Service) RenameProject(ctx context.Context, oldFolder, newDisplayName string) (models.Project, error) {
	p, err := s.projects.Rename(oldFolder, newDisplayName)
	if err != nil {
		return p, s.fail(ctx, "rename_project", err,
			slog.String("folder", oldFolder), slog.String("name", newDisplayName))
	}
	s.logger.InfoContext(ctx, "project renamed",
		slog.String("from", oldFolder), slog.String("to", p.FolderName))
	return p, nil
}

// UpdateProjectSettings stores a project's description, intention and recipe.
func (s *Service) UpdateProjectSettings(ctx context.Context, folder string, settings models.ProjectSettings) (models.Project, error) {
	p, err := s.projects.UpdateSettings(folder, settings)
	if err != nil {
		return p, s.fail(ctx, "update_project_settings", err, slog.String("folder", folder))
	}
	return p, nil
}

// DeleteProject removes a project and all of its posts.
func (s *Service) DeleteProject(ctx context.Context, folder string) error {
	if err := s.projects.Delete(folder); err != nil {
		return s.fail(ctx, "delete_project", err, slog.String("folder", folder))
	}
	s.logger.InfoContext(ctx, "project deleted", slog.String("folder", folder))
	return nil
}

// ListPosts summarizes the posts of a project.
func (s *Service) ListPosts(ctx context.Context, project string) ([]models.PostSummary, error) {
	list, err := s.posts.List(project)
	if err != nil {
		return nil, s.fail(ctx, "list_posts", err, slog.String("project", project))
	}
	return list, nil
}

// CreatePost adds a post titled requestedTitle.
func (s *Service) CreatePost(ctx context.Context, project, requestedTitle string) (models.Post, error) {
	p, err := s.posts.Create(project, requestedTitle)
	if err != nil {
		return p, s.fail(ctx, "create_post", err,
			slog.String("project", project), slog.String("title", requestedTitle))
	}
	return p, nil
}

// ReadPost loads a post with its content and checksum.
func (s *Service) ReadPost(ctx context.Context, project, slug string) (models.Post, error) {
	p, err := s.posts.Read(project, slug)
	if err != nil {
		return p, s.fail(ctx, "read_post", err,
			slog.String("project", project), slog.String("slug", slug))
	}
	return p, nil
}

// UpdatePost replaces a post's content. A non-empty ifMatch must equal the
// checksum of the content currently on disk.
func (s *Service) UpdatePost(ctx context.Context, project, slug, content, ifMatch string) error {
	attrs := []any{slog.String("project", project), slog.String("slug", slug)}
	if ifMatch != "" {
		current, err := s.posts.Read(project, slug)
		if err != nil {
			return s.fail(ctx, "update_post", err, attrs...)
		}
		if current.Checksum != ifMatch {
			return s.fail(ctx, "update_post",
				apperr.E(apperr.ErrConflict, "update post", project+"/"+slug, nil), attrs...)
		}
	}
	if err := s.posts.Update(project, slug, content); err != nil {
		return s.fail(ctx, "update_post", err, attrs...)
	}
	return nil
}

// RetitlePost rewrites the frontmatter title of a post.
func (s *Service) RetitlePost(ctx context.Context, project, slug, title string) (models.Post, error) {
	p, err := s.posts.Retitle(project, slug, title)
	if err != nil {
		return p, s.fail(ctx, "retitle_post", err,
			slog.String("project", project), slog.String("slug", slug))
	}
	return p, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, project, slug string) error {
	if err := s.posts.Delete(project, slug); err != nil {
		return s.fail(ctx, "delete_post", err,
			slog.String("project", project), slog.String("slug", slug))
	}
	return nil
}

// fail records a diagnostic trace for err and returns it unchanged.
func (s *Service) fail(ctx context.Context, op string, err error, attrs ...any) error {
	attrs = append(attrs,
		slog.String("op", op),
		slog.String("kind", apperr.Code(err)),
		slog.String("error", err.Error()))
	s.logger.WarnContext(ctx, "operation failed", attrs...)
	return err
}
