package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreWrite(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	written, err := store.Write(context.Background(), "graphs/graph_abc.gml", []byte("graph []"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written != filepath.Join(root, "graphs", "graph_abc.gml") {
		t.Fatalf("written = %q", written)
	}
	data, err := os.ReadFile(written)
	if err != nil || string(data) != "graph []" {
		t.Fatalf("read back %q, %v", data, err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "  ", ".", "..", "../etc/passwd", "a/../../b", `..\windows`} {
		if _, err := sanitizeKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("sanitizeKey(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
	got, err := sanitizeKey("/abs/./graph.gml")
	if err != nil || got != "abs/graph.gml" {
		t.Fatalf("sanitizeKey = %q, %v", got, err)
	}
}

func TestWriteCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "graph.gml", nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestArtifactKey(t *testing.T) {
	if got := ArtifactKey("graph_abc.gml"); got != "graph_abc.gml" {
		t.Fatalf("ArtifactKey = %q", got)
	}
	if got := ArtifactKey("../../etc/passwd"); got != "passwd" {
		t.Fatalf("ArtifactKey traversal = %q", got)
	}
	a, b := ArtifactKey(""), ArtifactKey("..")
	if !strings.HasPrefix(a, "graph_") || !strings.HasSuffix(a, ".gml") || a == b {
		t.Fatalf("generated keys %q, %q", a, b)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(" "); err == nil {
		t.Fatal("expected error for empty base path")
	}
	var nilStore *FileStore
	if nilStore.Root() != "" {
		t.Fatal("nil store root should be empty")
	}
}

func TestWriteReplacesAndLeavesNoPartials(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, body := range []string{"graph [ a ]", "graph [ b ]"} {
		if _, err := store.Write(context.Background(), "graph.gml", []byte(body)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "graph.gml" {
		t.Fatalf("entries = %v", entries)
	}
	data, _ := os.ReadFile(filepath.Join(root, "graph.gml"))
	if string(data) != "graph [ b ]" {
		t.Fatalf("content = %q", data)
	}
}
