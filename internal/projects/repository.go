// Package projects manages project directories under the workspace root.
package projects

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/models"
	"github.com/starford/studio/internal/slug"
	"github.com/starford/studio/internal/storage"
)

const (
	// SidecarName is the per-project metadata file. It is hidden, so it never
	// shows up as a post.
	SidecarName = ".project.yaml"

	// StarterFolder and StarterName describe the project seeded into a new
	// workspace.
	StarterFolder = "welcome"
	StarterName   = "Welcome"

	placeholderFormat = "Project %d"
)

// sidecar is the on-disk shape of SidecarName.
type sidecar struct {
	DisplayName            string `yaml:"display_name,omitempty"`
	models.ProjectSettings `yaml:",inline"`
}

func (s sidecar) empty() bool {
	return s.DisplayName == "" && s.Description == "" && s.Intention == "" && len(s.PostRecipe) == 0
}

// Repository implements project operations on top of a storage.Provider.
// It keeps no state; every call re-reads the file system.
type Repository struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewRepository creates a project repository.
func NewRepository(store storage.Provider, logger *slog.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

// Initialize creates the workspace root and the starter project. If the
// root already exists it returns false and touches nothing.
func (r *Repository) Initialize() (bool, error) {
	created, err := r.store.InitRoot()
	if err != nil {
		return false, apperr.E(apperr.ErrCreateFailed, "initialize workspace", r.store.Root(), err)
	}
	if !created {
		return false, nil
	}
	if err := r.store.Mkdir(StarterFolder); err != nil {
		return true, apperr.E(apperr.ErrCreateFailed, "initialize workspace", StarterFolder, err)
	}
	if err := r.writeSidecar(StarterFolder, sidecar{DisplayName: StarterName}); err != nil {
		return true, apperr.E(apperr.ErrCreateFailed, "initialize workspace", StarterFolder, err)
	}
	return true, nil
}

// List returns every first-level directory of the root as a project.
func (r *Repository) List() ([]models.Project, error) {
	folders, err := r.store.ListDirs("")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.E(apperr.ErrNotFound, "list projects", r.store.Root(), err)
		}
		return nil, apperr.E(apperr.ErrReadFailed, "list projects", r.store.Root(), err)
	}
	out := make([]models.Project, 0, len(folders))
	for _, folder := range folders {
		out = append(out, r.project(folder, r.readSidecar(folder)))
	}
	return out, nil
}

// Get returns one project.
func (r *Repository) Get(folder string) (models.Project, error) {
	if err := r.mustExist("get project", folder); err != nil {
		return models.Project{}, err
	}
	return r.project(folder, r.readSidecar(folder)), nil
}

// Create makes a new empty project directory. An empty requested name gets
// the first free "Project N" placeholder.
func (r *Repository) Create(requestedName string) (models.Project, error) {
	const op = "create project"
	existing, err := r.store.ListDirs("")
	if err != nil {
		return models.Project{}, apperr.E(apperr.ErrCreateFailed, op, requestedName, err)
	}
	taken := slug.Set(existing)

	name := strings.TrimSpace(requestedName)
	if name == "" {
		name = placeholder(taken)
	}
	folder, err := slug.Uniquify(slug.Sanitize(name), taken)
	if err != nil {
		return models.Project{}, err
	}
	if err := r.store.Mkdir(folder); err != nil {
		return models.Project{}, apperr.E(apperr.ErrCreateFailed, op, folder, err)
	}

	meta := sidecar{}
	if name != folder {
		meta.DisplayName = name
	}
	if err := r.writeSidecar(folder, meta); err != nil {
		if rmErr := r.store.RemoveAll(folder); rmErr != nil {
			r.logger.Warn("projects: cleanup after failed create",
				slog.String("folder", folder),
				slog.String("error", rmErr.Error()))
		}
		return models.Project{}, apperr.E(apperr.ErrCreateFailed, op, folder, err)
	}
	return r.project(folder, meta), nil
}

// Rename gives a project a new display name and moves its directory to the
// matching folder name. The display name is written into the old directory
// first and the directory is moved as one rename, so on failure the old
// directory is restored to exactly its previous state.
func (r *Repository) Rename(oldFolder, newDisplayName string) (models.Project, error) {
	const op = "rename project"
	if err := r.mustExist(op, oldFolder); err != nil {
		return models.Project{}, err
	}
	name := strings.TrimSpace(newDisplayName)
	if name == "" {
		return models.Project{}, apperr.E(apperr.ErrInvalidArgument, op, oldFolder, errors.New("display name is empty"))
	}

	folders, err := r.store.ListDirs("")
	if err != nil {
		return models.Project{}, apperr.E(apperr.ErrRenameFailed, op, oldFolder, err)
	}
	others := slug.Set(folders)
	delete(others, oldFolder)
	newFolder, err := slug.Uniquify(slug.Sanitize(name), others)
	if err != nil {
		return models.Project{}, err
	}

	prevRaw, hadSidecar, err := r.rawSidecar(oldFolder)
	if err != nil {
		return models.Project{}, apperr.E(apperr.ErrRenameFailed, op, oldFolder, err)
	}
	meta := r.readSidecar(oldFolder)
	meta.DisplayName = ""
	if name != newFolder {
		meta.DisplayName = name
	}
	if err := r.writeSidecar(oldFolder, meta); err != nil {
		r.restoreSidecar(oldFolder, prevRaw, hadSidecar)
		return models.Project{}, apperr.E(apperr.ErrRenameFailed, op, oldFolder, err)
	}
	if newFolder == oldFolder {
		return r.project(oldFolder, meta), nil
	}
	if err := r.store.RenameDir(oldFolder, newFolder); err != nil {
		r.restoreSidecar(oldFolder, prevRaw, hadSidecar)
		return models.Project{}, apperr.E(apperr.ErrRenameFailed, op, oldFolder+" -> "+newFolder, err)
	}
	return r.project(newFolder, meta), nil
}

// Delete removes a project directory with all of its posts.
func (r *Repository) Delete(folder string) error {
	const op = "delete project"
	if err := r.mustExist(op, folder); err != nil {
		return err
	}
	if err := r.store.RemoveAll(folder); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.E(apperr.ErrNotFound, op, folder, nil)
		}
		return apperr.E(apperr.ErrDeleteFailed, op, folder, err)
	}
	return nil
}

// UpdateSettings replaces the settings of a project and keeps its display name.
func (r *Repository) UpdateSettings(folder string, settings models.ProjectSettings) (models.Project, error) {
	const op = "update project settings"
	if err := r.mustExist(op, folder); err != nil {
		return models.Project{}, err
	}
	meta := r.readSidecar(folder)
	meta.ProjectSettings = settings
	if err := r.writeSidecar(folder, meta); err != nil {
		return models.Project{}, apperr.E(apperr.ErrWriteFailed, op, folder, err)
	}
	return r.project(folder, meta), nil
}

func (r *Repository) mustExist(op, folder string) error {
	if !storage.ValidName(folder) {
		return apperr.E(apperr.ErrNotFound, op, folder, nil)
	}
	info, err := r.store.Stat(folder)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return apperr.E(apperr.ErrNotFound, op, folder, nil)
	}
	if err != nil {
		return apperr.E(apperr.ErrReadFailed, op, folder, err)
	}
	return nil
}

func (r *Repository) project(folder string, meta sidecar) models.Project {
	abs, _ := r.store.Abs(folder)
	name := meta.DisplayName
	if name == "" {
		name = folder
	}
	return models.Project{
		Name:       name,
		FolderName: folder,
		Path:       abs,
		Settings:   meta.ProjectSettings,
	}
}

func sidecarPath(folder string) string {
	return path.Join(folder, SidecarName)
}

func (r *Repository) rawSidecar(folder string) ([]byte, bool, error) {
	data, err := r.store.Read(sidecarPath(folder))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// readSidecar never fails: an unreadable or invalid sidecar is logged and
// the project falls back to its folder name.
func (r *Repository) readSidecar(folder string) sidecar {
	var meta sidecar
	data, ok, err := r.rawSidecar(folder)
	if err != nil {
		r.logger.Warn("projects: read sidecar",
			slog.String("folder", folder),
			slog.String("error", err.Error()))
		return meta
	}
	if !ok {
		return meta
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		r.logger.Warn("projects: parse sidecar",
			slog.String("folder", folder),
			slog.String("error", err.Error()))
		return sidecar{}
	}
	return meta
}

// writeSidecar stores meta, or removes the sidecar when there is nothing
// to store.
func (r *Repository) writeSidecar(folder string, meta sidecar) error {
	if meta.empty() {
		if err := r.store.Delete(sidecarPath(folder)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	return r.store.Write(sidecarPath(folder), data)
}

func (r *Repository) restoreSidecar(folder string, prev []byte, existed bool) {
	var err error
	if existed {
		err = r.store.Write(sidecarPath(folder), prev)
	} else if delErr := r.store.Delete(sidecarPath(folder)); delErr != nil && !errors.Is(delErr, fs.ErrNotExist) {
		err = delErr
	}
	if err != nil {
		r.logger.Error("projects: restore sidecar",
			slog.String("folder", folder),
			slog.String("error", err.Error()))
	}
}

// placeholder returns the first "Project N" whose folder name is free.
func placeholder(taken map[string]struct{}) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf(placeholderFormat, n)
		if _, ok := taken[slug.Sanitize(name)]; !ok {
			return name
		}
	}
}
