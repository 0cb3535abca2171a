package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openlearnhub/hub-edge/internal/catalog"
)

// setupTestCatalog writes a small content inventory to a temp dir.
func setupTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	reactDir := filepath.Join(dir, "web", "react")
	if err := os.MkdirAll(reactDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	writeFile(t, filepath.Join(reactDir, "hooks.yaml"), `
id: content-react-hooks
title: React Hooks Complete Guide
description: useState, useEffect and custom hooks from scratch.
subject: Web Development
level: intermediate
type: video
video_count: 14
hours: 6.5
uploaded_by: priya
approved: true
`)
	writeFile(t, filepath.Join(reactDir, "hooks.notes.md"), "# React Hooks\n\nStart with useState.\n")

	writeFile(t, filepath.Join(dir, "pending.yaml"), `
id: content-pending
title: Unreviewed Upload
approved: false
`)

	// Not an item file: no id. Must be skipped quietly.
	writeFile(t, filepath.Join(dir, "subjects.yaml"), `
subjects:
  - Web Development
`)

	writeFile(t, filepath.Join(dir, "broken.yaml"), "title: [unclosed\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "not yaml")

	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewFromDir(t *testing.T) {
	store, err := catalog.NewFromDir(setupTestCatalog(t))
	if err != nil {
		t.Fatalf("NewFromDir() error = %v", err)
	}

	item, ok := store.ByID(t.Context(), "content-react-hooks")
	if !ok {
		t.Fatal("ByID(content-react-hooks) not found")
	}
	if item.Title != "React Hooks Complete Guide" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.VideoCount != 14 || item.Hours != 6.5 {
		t.Errorf("VideoCount/Hours = %d/%v, want 14/6.5", item.VideoCount, item.Hours)
	}
	if item.Body == "" {
		t.Error("Body is empty, want notes sidecar content")
	}
}

func TestNewFromDir_UnapprovedHidden(t *testing.T) {
	store, err := catalog.NewFromDir(setupTestCatalog(t))
	if err != nil {
		t.Fatalf("NewFromDir() error = %v", err)
	}
	ctx := t.Context()

	if _, ok := store.ByID(ctx, "content-pending"); ok {
		t.Error("ByID returned an unapproved item")
	}
	for _, item := range store.All(ctx) {
		if !item.Approved {
			t.Errorf("All() returned unapproved item %s", item.ID)
		}
	}
}

func TestNewFromDir_SkipsNonItems(t *testing.T) {
	store, err := catalog.NewFromDir(setupTestCatalog(t))
	if err != nil {
		t.Fatalf("NewFromDir() error = %v", err)
	}

	// react item + pending item; index and broken files skipped.
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func TestReloadFromDir(t *testing.T) {
	dir := setupTestCatalog(t)
	store, err := catalog.NewFromDir(dir)
	if err != nil {
		t.Fatalf("NewFromDir() error = %v", err)
	}

	writeFile(t, filepath.Join(dir, "sql.yaml"), `
id: content-sql-basics
title: SQL Basics
level: beginner
approved: true
`)
	if err := store.ReloadFromDir(dir); err != nil {
		t.Fatalf("ReloadFromDir() error = %v", err)
	}

	if _, ok := store.ByID(t.Context(), "content-sql-basics"); !ok {
		t.Error("new item missing after reload")
	}
}

func TestViewPath(t *testing.T) {
	item := catalog.Item{ID: "content-1"}
	if got := item.ViewPath(); got != "/note/content-1" {
		t.Errorf("ViewPath() = %q, want /note/content-1", got)
	}
}
