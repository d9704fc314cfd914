package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_CreateMakesParents(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "nested", "out", "log.csv")

	w, err := osfs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("frame\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "frame\n" {
		t.Errorf("expected %q, got %q", "frame\n", data)
	}

	info, err := osfs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 6 {
		t.Errorf("expected size 6, got %d", info.Size())
	}

	if err := osfs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := osfs.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist after Remove, got %v", err)
	}
}

func TestMemoryFileSystem_ContentVisibleAfterClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/run.csv")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !mfs.IsOpen("/out/run.csv") {
		t.Error("expected file to be open before Close")
	}

	data, _ := mfs.ReadFile("/out/run.csv")
	if len(data) != 0 {
		t.Errorf("expected no content before Close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if mfs.IsOpen("/out/run.csv") {
		t.Error("expected file to be closed")
	}

	data, err = mfs.ReadFile("/out/../out/run.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemoryFileSystem_WriteAfterClose(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, _ := mfs.Create("a.txt")
	_ = w.Close()

	if _, err := w.Write([]byte("x")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := w.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("expected ErrClosed on double close, got %v", err)
	}
}

func TestMemoryFileSystem_StatRemoveNames(t *testing.T) {
	mfs := NewMemoryFileSystem()
	for _, name := range []string{"b.png", "a.csv"} {
		w, _ := mfs.Create(name)
		_, _ = w.Write([]byte("12345"))
		_ = w.Close()
	}

	if got := mfs.Names(); len(got) != 2 || got[0] != "a.csv" || got[1] != "b.png" {
		t.Errorf("Names() = %v", got)
	}

	info, err := mfs.Stat("a.csv")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.Name() != "a.csv" || info.IsDir() {
		t.Errorf("unexpected info: %+v", info)
	}

	if err := mfs.Remove("a.csv"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mfs.Remove("a.csv"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if _, err := mfs.ReadFile("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFileSystemInterface(t *testing.T) {
	var _ FileSystem = OSFileSystem{}
	var _ FileSystem = NewMemoryFileSystem()
}
