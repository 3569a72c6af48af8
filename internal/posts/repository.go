// Package posts manages the Markdown files inside a project directory.
package posts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/checksum"
	"github.com/starford/studio/internal/frontmatter"
	"github.com/starford/studio/internal/models"
	"github.com/starford/studio/internal/slug"
	"github.com/starford/studio/internal/storage"
)

// ProjectLookup resolves a project so new posts can follow its recipe.
type ProjectLookup interface {
	Get(folder string) (models.Project, error)
}

// Repository implements post operations on top of a storage.Provider.
// It keeps no state; every call re-reads the file system.
type Repository struct {
	store    storage.Provider
	projects ProjectLookup
	logger   *slog.Logger
	now      func() time.Time
}

// NewRepository creates a post repository. projects may be nil, in which
// case new posts start with an empty body.
func NewRepository(store storage.Provider, projects ProjectLookup, logger *slog.Logger) *Repository {
	return &Repository{
		store:    store,
		projects: projects,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns a summary of every post in project, ordered by filename.
func (r *Repository) List(project string) ([]models.PostSummary, error) {
	const op = "list posts"
	if !storage.ValidName(project) {
		return nil, apperr.E(apperr.ErrNotFound, op, project, nil)
	}
	files, err := r.store.ListFiles(project, models.PostExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.E(apperr.ErrNotFound, op, project, nil)
		}
		return nil, apperr.E(apperr.ErrReadFailed, op, project, err)
	}

	out := make([]models.PostSummary, 0, len(files))
	for _, name := range files {
		title := frontmatter.DefaultTitle
		data, err := r.store.Read(path.Join(project, name))
		if err != nil {
			r.logger.Warn("posts: read for listing",
				slog.String("project", project),
				slog.String("file", name),
				slog.String("error", err.Error()))
		} else {
			title = frontmatter.ExtractTitle(string(data))
		}
		out = append(out, models.PostSummary{
			Filename: name,
			Slug:     strings.TrimSuffix(name, models.PostExt),
			Title:    title,
		})
	}
	return out, nil
}

// Create adds a post whose slug is derived once from requestedTitle. The
// file is created exclusively, so an existing post is never overwritten.
func (r *Repository) Create(project, requestedTitle string) (models.Post, error) {
	const op = "create post"
	if err := r.projectDir(project); err != nil {
		return models.Post{}, apperr.E(apperr.ErrCreateFailed, op, project, err)
	}
	files, err := r.store.ListFiles(project, models.PostExt)
	if err != nil {
		return models.Post{}, apperr.E(apperr.ErrCreateFailed, op, project, err)
	}
	taken := make(map[string]struct{}, len(files))
	for _, f := range files {
		taken[strings.TrimSuffix(f, models.PostExt)] = struct{}{}
	}

	title := strings.TrimSpace(requestedTitle)
	if title == "" {
		title = frontmatter.DefaultTitle
	}
	s, err := slug.Uniquify(slug.Sanitize(title), taken)
	if err != nil {
		return models.Post{}, err
	}

	content := frontmatter.WithTitleAt(r.starterBody(project), title, r.now())
	if err := r.store.Create(postPath(project, s), []byte(content)); err != nil {
		return models.Post{}, apperr.E(apperr.ErrCreateFailed, op, project+"/"+s, err)
	}
	return buildPost(s, []byte(content)), nil
}

// Read loads one post.
func (r *Repository) Read(project, postSlug string) (models.Post, error) {
	const op = "read post"
	if !validIDs(project, postSlug) {
		return models.Post{}, apperr.E(apperr.ErrNotFound, op, project+"/"+postSlug, nil)
	}
	data, err := r.store.Read(postPath(project, postSlug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Post{}, apperr.E(apperr.ErrNotFound, op, project+"/"+postSlug, nil)
		}
		return models.Post{}, apperr.E(apperr.ErrReadFailed, op, project+"/"+postSlug, err)
	}
	return buildPost(postSlug, data), nil
}

// Update replaces the content of an existing post verbatim.
func (r *Repository) Update(project, postSlug, content string) error {
	const op = "update post"
	subject := project + "/" + postSlug
	if !validIDs(project, postSlug) {
		return apperr.E(apperr.ErrNotFound, op, subject, nil)
	}
	p := postPath(project, postSlug)
	info, err := r.store.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return apperr.E(apperr.ErrNotFound, op, subject, nil)
	}
	if err != nil {
		return apperr.E(apperr.ErrWriteFailed, op, subject, err)
	}
	if err := r.store.Write(p, []byte(content)); err != nil {
		return apperr.E(apperr.ErrWriteFailed, op, subject, err)
	}
	return nil
}

// Retitle rewrites the frontmatter title of a post. The slug is unchanged.
func (r *Repository) Retitle(project, postSlug, title string) (models.Post, error) {
	post, err := r.Read(project, postSlug)
	if err != nil {
		return models.Post{}, err
	}
	content := frontmatter.WithTitleAt(post.Content, title, r.now())
	if content == post.Content {
		return post, nil
	}
	if err := r.Update(project, postSlug, content); err != nil {
		return models.Post{}, err
	}
	return buildPost(postSlug, []byte(content)), nil
}

// Delete removes a post. Deleting a missing post is NotFound.
func (r *Repository) Delete(project, postSlug string) error {
	const op = "delete post"
	subject := project + "/" + postSlug
	if !validIDs(project, postSlug) {
		return apperr.E(apperr.ErrNotFound, op, subject, nil)
	}
	if err := r.store.Delete(postPath(project, postSlug)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.E(apperr.ErrNotFound, op, subject, nil)
		}
		return apperr.E(apperr.ErrDeleteFailed, op, subject, err)
	}
	return nil
}

func (r *Repository) projectDir(project string) error {
	if !storage.ValidName(project) {
		return fmt.Errorf("invalid project name %q", project)
	}
	info, err := r.store.Stat(project)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", project)
	}
	return nil
}

// starterBody lays out one section per recipe field of the project.
func (r *Repository) starterBody(project string) string {
	if r.projects == nil {
		return ""
	}
	p, err := r.projects.Get(project)
	if err != nil {
		r.logger.Warn("posts: load project recipe",
			slog.String("project", project),
			slog.String("error", err.Error()))
		return ""
	}
	var b strings.Builder
	for _, field := range p.Settings.PostRecipe {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		b.WriteString("## " + field + "\n\n")
	}
	return b.String()
}

func buildPost(postSlug string, data []byte) models.Post {
	content := string(data)
	return models.Post{
		Filename: postSlug + models.PostExt,
		Slug:     postSlug,
		Title:    frontmatter.ExtractTitle(content),
		Content:  content,
		Checksum: checksum.Sum(data),
	}
}

func postPath(project, postSlug string) string {
	return path.Join(project, postSlug+models.PostExt)
}

func validIDs(project, postSlug string) bool {
	return storage.ValidName(project) && storage.ValidName(postSlug)
}
