package contentservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/storage"
)

func testService(t *testing.T) (*Service, *bytes.Buffer) {
	t.Helper()
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "studio"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	var logs bytes.Buffer
	svc := NewService(store, slog.New(slog.NewJSONHandler(&logs, nil)))
	if _, err := svc.InitializeWorkspace(context.Background()); err != nil {
		t.Fatalf("InitializeWorkspace: %v", err)
	}
	return svc, &logs
}

func TestWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	project, err := svc.CreateProject(ctx, "Field Notes")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	post, err := svc.CreatePost(ctx, project.FolderName, "Day One")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := svc.UpdatePost(ctx, project.FolderName, post.Slug, post.Content+"It rained.\n", post.Checksum); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	renamed, err := svc.RenameProject(ctx, project.FolderName, "Travel Notes")
	if err != nil {
		t.Fatalf("RenameProject: %v", err)
	}
	got, err := svc.ReadPost(ctx, renamed.FolderName, post.Slug)
	if err != nil {
		t.Fatalf("ReadPost after rename: %v", err)
	}
	if !strings.HasSuffix(got.Content, "It rained.\n") || got.Title != "Day One" {
		t.Errorf("post = %+v", got)
	}

	list, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	names := map[string]bool{}
	for _, p := range list {
		names[p.FolderName] = true
	}
	if !names["travel-notes"] || names["field-notes"] || !names["welcome"] {
		t.Errorf("projects = %v", names)
	}

	if err := svc.DeleteProject(ctx, renamed.FolderName); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := svc.ListPosts(ctx, renamed.FolderName); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ListPosts after delete err = %v", err)
	}
}

func TestInitializeTwice(t *testing.T) {
	svc, _ := testService(t)
	created, err := svc.InitializeWorkspace(context.Background())
	if err != nil || created {
		t.Errorf("second InitializeWorkspace = %v, %v", created, err)
	}
}

func TestUpdatePostStaleChecksum(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	post, _ := svc.CreatePost(ctx, "welcome", "Versioned")
	if err := svc.UpdatePost(ctx, "welcome", post.Slug, "v2", ""); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	err := svc.UpdatePost(ctx, "welcome", post.Slug, "v3", post.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	got, _ := svc.ReadPost(ctx, "welcome", post.Slug)
	if got.Content != "v2" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestFailuresAreLogged(t *testing.T) {
	svc, logs := testService(t)
	err := svc.DeletePost(context.Background(), "welcome", "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, `"op":"delete_post"`) || !strings.Contains(out, `"kind":"not_found"`) {
		t.Errorf("log = %s", out)
	}
}

func TestRetitlePost(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	post, _ := svc.CreatePost(ctx, "welcome", "Working Title")
	got, err := svc.RetitlePost(ctx, "welcome", post.Slug, "Final Title")
	if err != nil {
		t.Fatalf("RetitlePost: %v", err)
	}
	if got.Slug != "working-title" || got.Title != "Final Title" {
		t.Errorf("post = %+v", got)
	}
	list, _ := svc.ListPosts(ctx, "welcome")
	found := false
	for _, p := range list {
		if p.Slug == "working-title" && p.Title == "Final Title" {
			found = true
		}
	}
	if !found {
		t.Errorf("list = %+v", list)
	}
}
