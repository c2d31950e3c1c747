package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	if err := SafeWriteFile(p, []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "new" {
		t.Fatalf("content = %q, want new", b)
	}
	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "absent", "run.json")
	if err := SafeWriteFile(p, []byte("{}")); err == nil {
		t.Fatal("expected error for missing parent dir")
	}
}

func TestPrettyJSONEndsWithNewline(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 2})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if string(b) != "{\n  \"rows\": 2\n}\n" {
		t.Fatalf("got %q", b)
	}
}

func TestFindBaseDirWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "scripts")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindBaseDir(nested, "data")
	if err != nil {
		t.Fatalf("FindBaseDir: %v", err)
	}
	if got != root {
		t.Fatalf("base = %q, want %q", got, root)
	}
}

func TestFindBaseDirMissingMarker(t *testing.T) {
	_, err := FindBaseDir(t.TempDir(), "no-such-marker-dir")
	if !errors.Is(err, ErrBaseDirNotFound) {
		t.Fatalf("err = %v, want ErrBaseDirNotFound", err)
	}
}
