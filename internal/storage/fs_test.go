package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempWorkspace(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempWorkspace(t)
	if _, err := s.Read("nope.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.Root(), TempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCreateIsExclusive(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Create("new.md", []byte("first")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create("new.md", []byte("second"))
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second Create err = %v, want fs.ErrExist", err)
	}
	got, _ := s.Read("new.md")
	if string(got) != "first" {
		t.Errorf("content = %q, existing file was overwritten", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), TempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCreateInMissingDir(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Create("ghost/post.md", []byte("x")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("del.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second Delete err = %v, want fs.ErrNotExist", err)
	}
}

func TestListings(t *testing.T) {
	s := tempWorkspace(t)
	for _, d := range []string{"beta", "alpha", ".hidden"} {
		if err := s.Mkdir(d); err != nil {
			t.Fatalf("Mkdir %s: %v", d, err)
		}
	}
	_ = s.Write("alpha/b.md", []byte("b"))
	_ = s.Write("alpha/a.md", []byte("a"))
	_ = s.Write("alpha/readme.txt", []byte("not md"))
	_ = s.Write("alpha/.draft.md", []byte("hidden"))
	_ = s.Mkdir("alpha/sub.md")

	dirs, err := s.ListDirs("")
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	if !reflect.DeepEqual(dirs, []string{"alpha", "beta"}) {
		t.Errorf("dirs = %v", dirs)
	}

	files, err := s.ListFiles("alpha", ".md")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"a.md", "b.md"}) {
		t.Errorf("files = %v", files)
	}

	empty, err := s.ListFiles("beta", ".md")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty listing = %#v, %v", empty, err)
	}
}

func TestMkdirIsExclusive(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Mkdir("p"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := s.Mkdir("p"); !errors.Is(err, fs.ErrExist) {
		t.Errorf("err = %v, want fs.ErrExist", err)
	}
}

func TestRenameDir(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Mkdir("old")
	_ = s.Write("old/post.md", []byte("data"))
	if err := s.RenameDir("old", "new"); err != nil {
		t.Fatalf("RenameDir: %v", err)
	}
	got, err := s.Read("new/post.md")
	if err != nil || string(got) != "data" {
		t.Fatalf("Read after rename = %q, %v", got, err)
	}
	if _, err := s.Stat("old"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("old path should not exist: %v", err)
	}
}

func TestRenameDirRefusesExistingDestination(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Mkdir("src")
	_ = s.Write("src/post.md", []byte("data"))
	_ = s.Mkdir("dst")

	if err := s.RenameDir("src", "dst"); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("err = %v, want fs.ErrExist", err)
	}
	if got, _ := s.Read("src/post.md"); string(got) != "data" {
		t.Errorf("source changed: %q", got)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Mkdir("p")
	_ = s.Write("p/a.md", []byte("a"))
	if err := s.RemoveAll("p"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if err := s.RemoveAll("p"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second RemoveAll err = %v, want fs.ErrNotExist", err)
	}
	if err := s.RemoveAll(""); err == nil {
		t.Error("expected refusal to remove the root")
	}
}

func TestInitRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "workspace")
	s, err := NewFS(root)
	if err != nil {
		t.Fatalf("NewFS on missing root: %v", err)
	}
	created, err := s.InitRoot()
	if err != nil || !created {
		t.Fatalf("first InitRoot = %v, %v", created, err)
	}
	created, err = s.InitRoot()
	if err != nil || created {
		t.Fatalf("second InitRoot = %v, %v", created, err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.RemoveAll(p); err == nil {
			t.Errorf("expected error for remove of %q", p)
		}
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "studio-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestNewFS_UnreachableRootDefersToInitRoot(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFS(filepath.Join(blocker, "studio"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if created, err := s.InitRoot(); err == nil || created {
		t.Errorf("InitRoot = %v, %v; want failure", created, err)
	}
}
