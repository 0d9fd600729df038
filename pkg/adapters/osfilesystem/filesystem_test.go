package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSystem_WriteAndExists(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.txt")

	if ok, err := fs.Exists(path); err != nil || ok {
		t.Fatalf("expected missing file, got ok=%v err=%v", ok, err)
	}
	if err := fs.WriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if ok, _ := fs.Exists(path); !ok {
		t.Error("expected file to exist")
	}
	data, err := fs.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("unexpected read %q, %v", data, err)
	}
}

func TestFileSystem_Glob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"take_Miqus_2.avi", "take_Miqus_1.avi", "take.avi", "other_Miqus_1.avi"} {
		touch(t, filepath.Join(dir, name))
	}

	matches, err := New().Glob(filepath.Join(dir, "take_Miqus*.avi"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	if filepath.Base(matches[0]) != "take_Miqus_1.avi" {
		t.Errorf("expected sorted matches, got %v", matches)
	}
}

func TestFileSystem_Walk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.qtm"))
	touch(t, filepath.Join(root, "day1", "b.qtm"))
	touch(t, filepath.Join(root, "day1", "deep", "c.qtm"))
	touch(t, filepath.Join(root, "day1", "c.avi"))

	found, err := New().Walk(root, "*.qtm")
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 recordings, got %v", found)
	}
}

func TestFileSystem_WalkBadPattern(t *testing.T) {
	if _, err := New().Walk(t.TempDir(), "["); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestFileSystem_Size(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "out.avi")
	if err := fs.WriteFile(path, make([]byte, 1234)); err != nil {
		t.Fatal(err)
	}

	size, err := fs.Size(path)
	if err != nil || size != 1234 {
		t.Errorf("expected 1234 bytes, got %d (%v)", size, err)
	}
	if _, err := fs.Size(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}
