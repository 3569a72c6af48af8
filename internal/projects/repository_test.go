package projects

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/models"
	"github.com/starford/studio/internal/storage"
)

func testRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return NewRepository(store, slog.New(slog.NewTextHandler(io.Discard, nil))), root
}

func TestInitialize(t *testing.T) {
	root := filepath.Join(t.TempDir(), "workspace")
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	r := NewRepository(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	created, err := r.Initialize()
	if err != nil || !created {
		t.Fatalf("first Initialize = %v, %v", created, err)
	}
	list, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].FolderName != StarterFolder || list[0].Name != StarterName {
		t.Fatalf("starter layout = %+v", list)
	}

	// A second call must not touch anything, even after user changes.
	if err := os.RemoveAll(filepath.Join(root, StarterFolder)); err != nil {
		t.Fatal(err)
	}
	created, err = r.Initialize()
	if err != nil || created {
		t.Fatalf("second Initialize = %v, %v", created, err)
	}
	if list, _ := r.List(); len(list) != 0 {
		t.Errorf("existing root was modified: %+v", list)
	}
}

func TestCreateSameNameTwice(t *testing.T) {
	r, root := testRepo(t)

	first, err := r.Create("My Project!")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := r.Create("My Project!")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.FolderName != "my-project" || second.FolderName != "my-project-1" {
		t.Fatalf("folders = %q, %q", first.FolderName, second.FolderName)
	}
	if first.Name != "My Project!" || second.Name != "My Project!" {
		t.Errorf("names = %q, %q", first.Name, second.Name)
	}
	if first.Path != filepath.Join(root, "my-project") {
		t.Errorf("path = %q", first.Path)
	}
	if info, err := os.Stat(second.Path); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCreatePlainNameLeavesEmptyDir(t *testing.T) {
	r, _ := testRepo(t)
	p, err := r.Create("notes")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries, err := os.ReadDir(p.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, got %d entries", len(entries))
	}
	if p.Name != "notes" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestCreatePlaceholder(t *testing.T) {
	r, _ := testRepo(t)
	a, err := r.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := r.Create("   ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Name != "Project 1" || a.FolderName != "project-1" {
		t.Errorf("first placeholder = %+v", a)
	}
	if b.Name != "Project 2" || b.FolderName != "project-2" {
		t.Errorf("second placeholder = %+v", b)
	}
}

func TestRenamePreservesPosts(t *testing.T) {
	r, root := testRepo(t)
	if _, err := r.Create("alpha"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	posts := map[string][]byte{
		"one.md": []byte("---\ntitle: \"One\"\n---\n\nbody\r\n"),
		"two.md": {0x00, 0xff, 'x'},
	}
	for name, data := range posts {
		if err := os.WriteFile(filepath.Join(root, "alpha", name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p, err := r.Rename("alpha", "Alpha 2.0")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.FolderName != "alpha-2-0" || p.Name != "Alpha 2.0" {
		t.Fatalf("renamed = %+v", p)
	}
	for name, want := range posts {
		got, err := os.ReadFile(filepath.Join(root, "alpha-2-0", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != string(want) {
			t.Errorf("%s changed: %q", name, got)
		}
	}

	list, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, proj := range list {
		if proj.FolderName == "alpha" {
			t.Error("alpha is still listed")
		}
	}
	if len(list) != 1 || list[0].Name != "Alpha 2.0" {
		t.Errorf("list = %+v", list)
	}
}

func TestRenameSameFolderUpdatesName(t *testing.T) {
	r, _ := testRepo(t)
	if _, err := r.Create("draft"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p, err := r.Rename("draft", "Draft")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.FolderName != "draft" || p.Name != "Draft" {
		t.Errorf("renamed = %+v", p)
	}
	got, _ := r.Get("draft")
	if got.Name != "Draft" {
		t.Errorf("Get name = %q", got.Name)
	}

	// Renaming back to the folder name drops the sidecar.
	p, err = r.Rename("draft", "draft")
	if err != nil || p.Name != "draft" {
		t.Fatalf("rename back = %+v, %v", p, err)
	}
	if _, err := os.Stat(filepath.Join(p.Path, SidecarName)); !os.IsNotExist(err) {
		t.Errorf("sidecar still present: %v", err)
	}
}

func TestRenameUniquifiesAgainstOthers(t *testing.T) {
	r, _ := testRepo(t)
	_, _ = r.Create("beta")
	_, _ = r.Create("gamma")
	p, err := r.Rename("gamma", "Beta")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.FolderName != "beta-1" {
		t.Errorf("folder = %q, want beta-1", p.FolderName)
	}
}

// failingRename wraps a provider and fails every directory rename.
type failingRename struct {
	storage.Provider
}

func (failingRename) RenameDir(_, _ string) error { return os.ErrPermission }

func TestRenameFailureRestoresOriginal(t *testing.T) {
	root := t.TempDir()
	fsStore, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	r := NewRepository(failingRename{fsStore}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := r.Create("My Notes"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	sidecarFile := filepath.Join(root, "my-notes", SidecarName)
	before, err := os.ReadFile(sidecarFile)
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Rename("my-notes", "Archive")
	if !errors.Is(err, apperr.ErrRenameFailed) {
		t.Fatalf("err = %v, want rename failed", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("cause lost: %v", err)
	}
	after, err := os.ReadFile(sidecarFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("sidecar not restored: %q", after)
	}
	p, err := r.Get("my-notes")
	if err != nil || p.Name != "My Notes" {
		t.Errorf("Get = %+v, %v", p, err)
	}
}

func TestRenameFailureRemovesNewSidecar(t *testing.T) {
	root := t.TempDir()
	fsStore, _ := storage.NewFS(root)
	r := NewRepository(failingRename{fsStore}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, _ = r.Create("plain")

	if _, err := r.Rename("plain", "Other"); !errors.Is(err, apperr.ErrRenameFailed) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "plain", SidecarName)); !os.IsNotExist(err) {
		t.Errorf("sidecar left behind: %v", err)
	}
}

func TestRenameMissing(t *testing.T) {
	r, _ := testRepo(t)
	if _, err := r.Rename("ghost", "Anything"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	r, root := testRepo(t)
	p, _ := r.Create("trash")
	_ = os.WriteFile(filepath.Join(p.Path, "post.md"), []byte("x"), 0o644)

	if err := r.Delete("trash"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "trash")); !os.IsNotExist(err) {
		t.Errorf("directory still present: %v", err)
	}
	if err := r.Delete("trash"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete err = %v, want not found", err)
	}
}

func TestDeleteRejectsNonProjects(t *testing.T) {
	r, root := testRepo(t)
	_ = os.WriteFile(filepath.Join(root, "README.md"), []byte("keep"), 0o644)
	for _, folder := range []string{"README.md", "", "..", "../x", ".hidden"} {
		if err := r.Delete(folder); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Delete(%q) err = %v, want not found", folder, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "README.md")); err != nil {
		t.Errorf("file removed: %v", err)
	}
}

func TestListFallsBackOnBrokenSidecar(t *testing.T) {
	r, root := testRepo(t)
	_ = os.Mkdir(filepath.Join(root, "broken"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "broken", SidecarName), []byte("display_name: [unclosed"), 0o644)
	_ = os.Mkdir(filepath.Join(root, "Hand Made"), 0o755)

	list, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	for _, p := range list {
		if p.Name != p.FolderName {
			t.Errorf("name = %q, folder = %q", p.Name, p.FolderName)
		}
	}
}

func TestListMissingRoot(t *testing.T) {
	store, _ := storage.NewFS(filepath.Join(t.TempDir(), "absent"))
	r := NewRepository(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := r.List(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	r, _ := testRepo(t)
	_, _ = r.Create("Blog Ideas")
	settings := models.ProjectSettings{
		Description: "Short essays",
		Intention:   "Publish weekly",
		PostRecipe:  []string{"Hook", "Argument"},
	}
	p, err := r.UpdateSettings("blog-ideas", settings)
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if p.Name != "Blog Ideas" {
		t.Errorf("display name lost: %q", p.Name)
	}
	got, err := r.Get("blog-ideas")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Settings.Description != "Short essays" || len(got.Settings.PostRecipe) != 2 {
		t.Errorf("settings = %+v", got.Settings)
	}

	// Renaming keeps the settings.
	renamed, err := r.Rename("blog-ideas", "Essays")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Settings.Intention != "Publish weekly" {
		t.Errorf("settings after rename = %+v", renamed.Settings)
	}
}

// unstattable wraps a provider and fails every listing and stat.
type unstattable struct {
	storage.Provider
}

func (unstattable) ListDirs(string) ([]string, error) { return nil, os.ErrPermission }
func (unstattable) Stat(string) (fs.FileInfo, error)  { return nil, os.ErrPermission }

func TestReadErrorsAreTyped(t *testing.T) {
	fsStore, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	r := NewRepository(unstattable{fsStore}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = r.List()
	if !errors.Is(err, apperr.ErrReadFailed) || !errors.Is(err, os.ErrPermission) {
		t.Errorf("List err = %v, want read failed wrapping permission", err)
	}
	_, err = r.Get("alpha")
	if !errors.Is(err, apperr.ErrReadFailed) {
		t.Errorf("Get err = %v, want read failed", err)
	}
	if err := r.Delete("alpha"); apperr.Code(err) != "read_failed" {
		t.Errorf("Delete code = %q (%v)", apperr.Code(err), err)
	}
}
