// Package workspace prepares a fresh workspace root on first start.
package workspace

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/storage"
)

//go:embed starter
var starterFS embed.FS

const starterDir = "starter"

// RootInitializer creates the workspace root and reports whether it did.
type RootInitializer interface {
	Initialize() (bool, error)
}

// Initializer seeds a newly created workspace with the starter assets.
type Initializer struct {
	projects RootInitializer
	store    storage.Provider
	assets   fs.FS
	logger   *slog.Logger
}

// NewInitializer returns an Initializer using the embedded starter assets.
func NewInitializer(projects RootInitializer, store storage.Provider, logger *slog.Logger) *Initializer {
	sub, err := fs.Sub(starterFS, starterDir)
	if err != nil {
		panic(err) // embedded directory is always present
	}
	return &Initializer{projects: projects, store: store, assets: sub, logger: logger}
}

// Initialize creates the workspace if needed. Assets are written only when
// the root was created by this call; an existing workspace is left alone.
// Errors are not retried and should be shown to the user as a setup failure.
func (i *Initializer) Initialize(_ context.Context) (bool, error) {
	created, err := i.projects.Initialize()
	if err != nil {
		return false, fmt.Errorf("workspace setup failed, check permissions on %s: %w", i.store.Root(), err)
	}
	if !created {
		i.logger.Debug("workspace: root exists", slog.String("root", i.store.Root()))
		return false, nil
	}
	if err := i.writeAssets(); err != nil {
		return true, fmt.Errorf("workspace setup failed, check permissions on %s: %w", i.store.Root(), err)
	}
	i.logger.Info("workspace: created", slog.String("root", i.store.Root()))
	return true, nil
}

func (i *Initializer) writeAssets() error {
	return fs.WalkDir(i.assets, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return apperr.E(apperr.ErrCreateFailed, "write starter assets", p, walkErr)
		}
		if p == "." {
			return nil
		}
		if d.IsDir() {
			if err := i.store.Mkdir(p); err != nil && !errors.Is(err, fs.ErrExist) {
				return apperr.E(apperr.ErrCreateFailed, "write starter assets", p, err)
			}
			return nil
		}
		data, err := fs.ReadFile(i.assets, p)
		if err != nil {
			return apperr.E(apperr.ErrCreateFailed, "write starter assets", p, err)
		}
		if err := i.store.Create(p, data); err != nil {
			return apperr.E(apperr.ErrCreateFailed, "write starter assets", p, err)
		}
		return nil
	})
}
