package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Stat(t *testing.T) {
	fsys := OSFileSystem{}

	info, err := fsys.Stat("filesystem.go")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected filesystem.go to be non-empty")
	}

	if _, err := fsys.Stat("nonexistent_file_xyz.go"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOSFileSystem_WriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "scene.splat")
	fsys := OSFileSystem{}

	if err := fsys.WriteFile(target, []byte("old contents"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFileAtomic(fsys, target, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected %q, got %q", "new", data)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestOSFileSystem_WriteFileAtomicMissingDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "scene.splat")
	if err := WriteFileAtomic(OSFileSystem{}, target, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}

	// Mutating the returned slice must not alter stored contents.
	data[0] = 'J'
	again, _ := mfs.ReadFile("/test.txt")
	if string(again) != string(testData) {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("/nope.ply")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Rename(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/a.tmp", []byte("payload"), 0644)

	if err := mfs.Rename("/a.tmp", "/a.splat"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if mfs.Exists("/a.tmp") {
		t.Error("source should be gone after rename")
	}
	data, err := mfs.ReadFile("/a.splat")
	if err != nil || string(data) != "payload" {
		t.Errorf("unexpected rename result %q, %v", data, err)
	}

	if err := mfs.Rename("/missing", "/b"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist renaming missing file, got %v", err)
	}
}

func TestMemoryFileSystem_WriteFileAtomic(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/out/scene.splat", []byte("old"), 0644)

	if err := WriteFileAtomic(mfs, "/out/scene.splat", []byte("new"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, _ := mfs.ReadFile("/out/scene.splat")
	if string(data) != "new" {
		t.Errorf("expected %q, got %q", "new", data)
	}
	if tmp := mfs.TempFiles(); len(tmp) != 0 {
		t.Errorf("expected no temp files, got %v", tmp)
	}
	if got := mfs.Writes("/out/scene.splat"); got != 2 {
		t.Errorf("expected 2 writes to target, got %d", got)
	}
}

func TestMemoryFileSystem_StatAndDirs(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}

	_ = mfs.WriteFile("/a/b/file.splat", make([]byte, 64), 0644)
	info, err := mfs.Stat("/a/b/file.splat")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 64 || info.Name() != "file.splat" || info.IsDir() {
		t.Errorf("unexpected file info: size=%d name=%s dir=%v", info.Size(), info.Name(), info.IsDir())
	}

	dirInfo, err := mfs.Stat("/a/b")
	if err != nil || !dirInfo.IsDir() {
		t.Errorf("expected directory info, got %v, %v", dirInfo, err)
	}

	if _, err := mfs.Stat("/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Remove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/x.splat", []byte("x"), 0644)
	_ = mfs.MkdirAll("/d", 0755)

	if err := mfs.Remove("/x.splat"); err != nil {
		t.Fatalf("Remove file failed: %v", err)
	}
	if err := mfs.Remove("/d"); err != nil {
		t.Fatalf("Remove dir failed: %v", err)
	}
	if err := mfs.Remove("/x.splat"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist on second remove, got %v", err)
	}
	if got := mfs.Files(); len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}
