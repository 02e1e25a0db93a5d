package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("%s should not exist (stat err: %v)", path, err)
	}
}

// snapshot records every path and file body under root.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			files[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestMerge_MissingSourceIsNoop(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(dst, "Existing.cs"), "keep")
	before := snapshot(t, dst)

	if err := Merge(filepath.Join(dir, "does-not-exist"), dst); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	after := snapshot(t, dst)
	if len(before) != len(after) {
		t.Fatalf("destination changed: before=%v after=%v", before, after)
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("%s changed: %q -> %q", k, v, after[k])
		}
	}
}

func TestMerge_FlattensOneLevel(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(dir, "staging", "src")
	dst := filepath.Join(dir, "functions", "Billing", "src")

	writeFile(t, filepath.Join(staging, "Billing.Lambda", "Billing.Lambda.csproj"), "<Project/>")
	writeFile(t, filepath.Join(staging, "Billing.Lambda", "Properties", "launchSettings.json"), "{}")
	writeFile(t, filepath.Join(staging, "README.md"), "readme")

	if err := Merge(staging, dst); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "Billing.Lambda", "Billing.Lambda.csproj")); got != "<Project/>" {
		t.Errorf("csproj content = %q", got)
	}
	// Subdirectories move wholesale, not flattened further.
	if got := readFile(t, filepath.Join(dst, "Billing.Lambda", "Properties", "launchSettings.json")); got != "{}" {
		t.Errorf("nested file content = %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "README.md")); got != "readme" {
		t.Errorf("README content = %q", got)
	}
	assertNotExist(t, staging)
	// Only src itself is removed, never its parent.
	if _, err := os.Stat(filepath.Join(dir, "staging")); err != nil {
		t.Errorf("parent of source should remain: %v", err)
	}
}

func TestMerge_OverwritesExistingEntries(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nested")
	dst := filepath.Join(dir, "flat")

	writeFile(t, filepath.Join(src, "Function.cs"), "new")
	writeFile(t, filepath.Join(src, "Tests", "A.cs"), "new-a")
	writeFile(t, filepath.Join(dst, "Function.cs"), "old")
	writeFile(t, filepath.Join(dst, "Tests", "Stale.cs"), "stale")
	writeFile(t, filepath.Join(dst, "Untouched.cs"), "same")

	if err := Merge(src, dst); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "Function.cs")); got != "new" {
		t.Errorf("Function.cs = %q, want overwritten content", got)
	}
	if got := readFile(t, filepath.Join(dst, "Tests", "A.cs")); got != "new-a" {
		t.Errorf("Tests/A.cs = %q", got)
	}
	// A replaced directory is replaced, not merged.
	assertNotExist(t, filepath.Join(dst, "Tests", "Stale.cs"))
	if got := readFile(t, filepath.Join(dst, "Untouched.cs")); got != "same" {
		t.Errorf("Untouched.cs = %q", got)
	}
	assertNotExist(t, src)
}

func TestMerge_SourceIsFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file.txt")
	writeFile(t, src, "x")

	err := Merge(src, filepath.Join(dir, "dst"))
	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("error = %v, want *FilesystemError", err)
	}
	if fsErr.Op != "merge" {
		t.Errorf("Op = %q, want %q", fsErr.Op, "merge")
	}
}

func TestMerge_CrossDeviceFallback(t *testing.T) {
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, filepath.Join(src, "App", "App.csproj"), "<Project/>")
	writeFile(t, filepath.Join(src, "top.txt"), "top")

	if err := Merge(src, dst); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "App", "App.csproj")); got != "<Project/>" {
		t.Errorf("copied content = %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "top.txt")); got != "top" {
		t.Errorf("copied content = %q", got)
	}
	assertNotExist(t, src)
}

func TestMerge_RenameFailure(t *testing.T) {
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EACCES}
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.txt"), "a")

	err := Merge(src, filepath.Join(dir, "dst"))
	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("error = %v, want *FilesystemError", err)
	}
	if fsErr.Op != "rename" {
		t.Errorf("Op = %q, want %q", fsErr.Op, "rename")
	}
	if _, statErr := os.Stat(filepath.Join(src, "a.txt")); statErr != nil {
		t.Errorf("source should be left in place after failure: %v", statErr)
	}
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scratch", "src", "Billing.Application")
	dst := filepath.Join(dir, "functions", "Billing", "src", "Billing.Application")
	writeFile(t, filepath.Join(src, "Billing.Application.csproj"), "<Project/>")

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "Billing.Application.csproj")); got != "<Project/>" {
		t.Errorf("moved content = %q", got)
	}
	assertNotExist(t, src)
}

func TestMove_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	writeFile(t, filepath.Join(src, "x"), "x")
	writeFile(t, filepath.Join(dst, "y"), "y")

	err := Move(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("error = %v, want fs.ErrExist", err)
	}
}

func TestMove_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Move(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestMkdirTemp(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "functions")

	path, err := MkdirTemp(parent, ".forge-*")
	if err != nil {
		t.Fatalf("MkdirTemp() error: %v", err)
	}
	if filepath.Dir(path) != parent {
		t.Errorf("MkdirTemp() = %q, want a child of %q", path, parent)
	}
	if err := RemoveAll(path); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	assertNotExist(t, path)
}
