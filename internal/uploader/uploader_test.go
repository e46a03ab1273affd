package uploader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		ext     string
		wantSuf string
	}{
		{".jpg", ".jpg"},
		{"jpg", ".jpg"},
		{".PNG", ".png"},
		{"  .webp ", ".webp"},
		{"", ""},
	}

	for _, tt := range tests {
		name := Filename(tt.ext)
		if !strings.HasSuffix(name, tt.wantSuf) {
			t.Errorf("Filename(%q) = %q; want suffix %q", tt.ext, name, tt.wantSuf)
		}
		base := strings.TrimSuffix(name, tt.wantSuf)
		if len(base) != 36 {
			t.Errorf("Filename(%q) = %q; base is not a uuid", tt.ext, name)
		}
	}
}

func TestFilenameUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := Filename(".jpg")
		if seen[name] {
			t.Fatalf("duplicate filename generated: %s", name)
		}
		seen[name] = true
	}
}

func TestLocalStoreSaveRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	name := Filename(".jpg")

	if err := store.Save(ctx, name, strings.NewReader("fake image bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("saved content = %q", data)
	}

	if err := store.Remove(ctx, name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove")
	}

	// Removing a missing file is not an error
	if err := store.Remove(ctx, name); err != nil {
		t.Errorf("Remove on missing file: %v", err)
	}
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, "../escape.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// filepath.Base strips the traversal, so the file lands inside dir.
	if _, err := os.Stat(filepath.Join(dir, "escape.jpg")); err != nil {
		t.Errorf("expected file inside upload dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.jpg")); !os.IsNotExist(err) {
		t.Errorf("file escaped the upload dir")
	}
}
