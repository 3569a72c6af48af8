// Package watcher turns on-disk changes under the workspace root into
// project and post change notifications. It never becomes a source of
// truth: every notification is derived from a fresh scan of the root.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/studio/internal/checksum"
	"github.com/starford/studio/internal/models"
	"github.com/starford/studio/internal/projects"
	"github.com/starford/studio/internal/storage"
)

// Entity and kind values carried by Change.
const (
	EntityProject = "project"
	EntityPost    = "post"

	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 150 * time.Millisecond

// Change describes one project or post that changed on disk.
type Change struct {
	Entity  string
	Kind    string
	Project string
	Slug    string
}

// Callback is called for every detected change, from the watcher goroutine.
type Callback func(Change)

type postKey struct {
	project string
	slug    string
}

// snapshot is what a scan of the workspace saw, keyed to content checksums.
type snapshot struct {
	projects map[string]string
	posts    map[postKey]string
}

// Watch starts an fsnotify watcher on the workspace root and each project
// directory and reports changes until ctx is cancelled. Bursts of events
// (an atomic write is a create plus a rename) are debounced into a single
// rescan that is diffed against the previous one.
func Watch(ctx context.Context, store storage.Provider, logger *slog.Logger, debounce time.Duration, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	folders, err := store.ListDirs("")
	if err != nil {
		return err
	}
	for _, folder := range folders {
		addDir(w, filepath.Join(root, folder), logger)
	}

	current := scan(store, logger)
	logger.Info("watcher: started", slog.String("root", root))

	// rescanTimer is used to debounce bursts of events.
	var rescanTimer *time.Timer
	var rescanCh <-chan time.Time

	scheduleRescan := func() {
		if rescanTimer == nil {
			rescanTimer = time.NewTimer(debounce)
			rescanCh = rescanTimer.C
		} else {
			rescanTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rescanTimer != nil {
				rescanTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rescanCh:
			next := scan(store, logger)
			// A renamed folder keeps its inode, so it is re-added under its new path.
			for folder := range next.projects {
				if _, seen := current.projects[folder]; !seen {
					addDir(w, filepath.Join(root, folder), logger)
				}
			}
			for _, c := range diff(current, next) {
				logger.Debug("watcher: change",
					slog.String("entity", c.Entity),
					slog.String("kind", c.Kind),
					slog.String("project", c.Project),
					slog.String("slug", c.Slug))
				if cb != nil {
					cb(c)
				}
			}
			current = next

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil || strings.HasPrefix(filepath.Base(rel), storage.TempPrefix) {
				continue
			}

			// New project directories are watched as they appear.
			if ev.Op&fsnotify.Create != 0 && !strings.Contains(rel, string(filepath.Separator)) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					addDir(w, ev.Name, logger)
				}
			}
			scheduleRescan()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func addDir(w *fsnotify.Watcher, dir string, logger *slog.Logger) {
	if err := w.Add(dir); err != nil {
		logger.Warn("watcher: add dir failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: watching dir", slog.String("path", dir))
}

// scan reads every project sidecar and post. Read errors are logged and the
// affected entry is left out, which the next successful scan repairs.
func scan(store storage.Provider, logger *slog.Logger) snapshot {
	s := snapshot{projects: map[string]string{}, posts: map[postKey]string{}}
	folders, err := store.ListDirs("")
	if err != nil {
		logger.Warn("watcher: list projects", slog.String("error", err.Error()))
		return s
	}
	for _, folder := range folders {
		var sum string
		if data, err := store.Read(path.Join(folder, projects.SidecarName)); err == nil {
			sum = checksum.Sum(data)
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("watcher: read sidecar", slog.String("project", folder), slog.String("error", err.Error()))
		}
		s.projects[folder] = sum

		files, err := store.ListFiles(folder, models.PostExt)
		if err != nil {
			continue
		}
		for _, name := range files {
			data, err := store.Read(path.Join(folder, name))
			if err != nil {
				continue
			}
			s.posts[postKey{folder, strings.TrimSuffix(name, models.PostExt)}] = checksum.Sum(data)
		}
	}
	return s
}

// diff lists the changes between two scans in a stable order: projects
// first, then posts. Posts inside a project that appeared or disappeared
// are covered by the project change.
func diff(prev, next snapshot) []Change {
	var out []Change
	for folder, sum := range next.projects {
		old, existed := prev.projects[folder]
		switch {
		case !existed:
			out = append(out, Change{Entity: EntityProject, Kind: KindCreated, Project: folder})
		case old != sum:
			out = append(out, Change{Entity: EntityProject, Kind: KindUpdated, Project: folder})
		}
	}
	for folder := range prev.projects {
		if _, ok := next.projects[folder]; !ok {
			out = append(out, Change{Entity: EntityProject, Kind: KindDeleted, Project: folder})
		}
	}

	stable := func(folder string) bool {
		_, before := prev.projects[folder]
		_, after := next.projects[folder]
		return before && after
	}
	for key, sum := range next.posts {
		if !stable(key.project) {
			continue
		}
		old, existed := prev.posts[key]
		switch {
		case !existed:
			out = append(out, Change{Entity: EntityPost, Kind: KindCreated, Project: key.project, Slug: key.slug})
		case old != sum:
			out = append(out, Change{Entity: EntityPost, Kind: KindUpdated, Project: key.project, Slug: key.slug})
		}
	}
	for key := range prev.posts {
		if !stable(key.project) {
			continue
		}
		if _, ok := next.posts[key]; !ok {
			out = append(out, Change{Entity: EntityPost, Kind: KindDeleted, Project: key.project, Slug: key.slug})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Entity != b.Entity {
			return a.Entity == EntityProject
		}
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		return a.Slug < b.Slug
	})
	return out
}
