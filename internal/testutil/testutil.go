// Package testutil provides shared test helpers for setting up workspaces.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/studio/internal/contentservice"
	"github.com/starford/studio/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWorkspace returns a storage.Provider rooted at a workspace directory
// that does not exist yet, inside a temp dir that is cleaned up.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "studio")
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestService creates a content service over an initialized workspace.
func TestService(t *testing.T) (*contentservice.Service, string) {
	t.Helper()
	root, store := TestWorkspace(t)
	svc := contentservice.NewService(store, Logger())
	if _, err := svc.InitializeWorkspace(t.Context()); err != nil {
		t.Fatalf("InitializeWorkspace: %v", err)
	}
	return svc, root
}
