package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadEntries_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admins.yaml")
	content := []byte("admins:\n  - username: root\n    email: root@x.com\n  - username: ops\n    email: ops@x.com\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	entries, err := NewReader(path).ReadEntries()
	if err != nil {
		t.Fatalf("read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "root" || entries[0].Email != "root@x.com" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestReadEntries_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admins.json")
	content := []byte(`{"admins":[{"username":"root","email":"root@x.com"}]}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	entries, err := NewReader(path).ReadEntries()
	if err != nil {
		t.Fatalf("read entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Email != "root@x.com" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadEntries_Missing(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.yaml")).ReadEntries()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadEntries_EmptyPath(t *testing.T) {
	if _, err := NewReader("").ReadEntries(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty path, got %v", err)
	}
}
